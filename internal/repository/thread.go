package repository

import (
	"database/sql"
	"fmt"
	"time"

	"threadboard/internal/database"
	"threadboard/internal/models"
)

// ThreadRepository handles thread data operations.
type ThreadRepository struct {
	db *database.DB
}

// NewThreadRepository creates a new ThreadRepository.
func NewThreadRepository(db *database.DB) *ThreadRepository {
	return &ThreadRepository{db: db}
}

// Create inserts a new thread and returns the ID.
func (r *ThreadRepository) Create(thread *models.Thread) (int64, error) {
	query := `
		INSERT INTO threads (user_id, title, body, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, thread.UserID, thread.Title, thread.Body, time.Now())
	if err != nil {
		return 0, fmt.Errorf("creating thread: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

// GetByID retrieves a thread by ID. Returns nil if not found.
func (r *ThreadRepository) GetByID(id int64) (*models.Thread, error) {
	query := `
		SELECT t.id, t.user_id, t.title, t.body, u.username, t.created_at
		FROM threads t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = ?
	`

	thread := &models.Thread{}
	err := r.db.QueryRow(query, id).Scan(
		&thread.ID,
		&thread.UserID,
		&thread.Title,
		&thread.Body,
		&thread.Author,
		&thread.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting thread by id: %w", err)
	}

	return thread, nil
}

// List retrieves threads, newest first. When search is non-empty, only
// threads whose title or body contains the term are returned.
func (r *ThreadRepository) List(search string) ([]*models.Thread, error) {
	query := `
		SELECT t.id, t.user_id, t.title, t.body, u.username, t.created_at
		FROM threads t
		JOIN users u ON u.id = t.user_id
	`
	var args []any
	if search != "" {
		query += ` WHERE t.title LIKE ? OR t.body LIKE ?`
		like := "%" + search + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY t.created_at DESC, t.id DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	defer rows.Close()

	var threads []*models.Thread
	for rows.Next() {
		thread := &models.Thread{}
		err := rows.Scan(
			&thread.ID,
			&thread.UserID,
			&thread.Title,
			&thread.Body,
			&thread.Author,
			&thread.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning thread: %w", err)
		}
		threads = append(threads, thread)
	}

	return threads, nil
}

// ListPage retrieves one page of threads, newest first, with the same
// search semantics as List.
func (r *ThreadRepository) ListPage(search string, p Pagination) (PaginatedResult[*models.Thread], error) {
	var zero PaginatedResult[*models.Thread]

	query := `
		SELECT t.id, t.user_id, t.title, t.body, u.username, t.created_at
		FROM threads t
		JOIN users u ON u.id = t.user_id
	`
	countQuery := `SELECT COUNT(*) FROM threads t`
	var args, countArgs []any
	if search != "" {
		where := ` WHERE t.title LIKE ? OR t.body LIKE ?`
		like := "%" + search + "%"
		query += where
		countQuery += where
		args = append(args, like, like)
		countArgs = append(countArgs, like, like)
	}
	query += ` ORDER BY t.created_at DESC, t.id DESC LIMIT ? OFFSET ?`
	args = append(args, p.Limit, p.Offset)

	var total int64
	if err := r.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return zero, fmt.Errorf("counting threads: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return zero, fmt.Errorf("listing threads: %w", err)
	}
	defer rows.Close()

	var threads []*models.Thread
	for rows.Next() {
		thread := &models.Thread{}
		err := rows.Scan(
			&thread.ID,
			&thread.UserID,
			&thread.Title,
			&thread.Body,
			&thread.Author,
			&thread.CreatedAt,
		)
		if err != nil {
			return zero, fmt.Errorf("scanning thread: %w", err)
		}
		threads = append(threads, thread)
	}

	return NewPaginatedResult(threads, total, p), nil
}

// Delete removes a thread by ID.
func (r *ThreadRepository) Delete(id int64) error {
	query := `DELETE FROM threads WHERE id = ?`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("deleting thread: %w", err)
	}

	return nil
}

// CountAll returns the total number of threads.
func (r *ThreadRepository) CountAll() (int, error) {
	query := `SELECT COUNT(*) FROM threads`

	var count int
	err := r.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting threads: %w", err)
	}

	return count, nil
}
