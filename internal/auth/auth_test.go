package auth

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"threadboard/internal/database"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := database.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *database.DB) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO users (username, email, password_hash)
		VALUES (?, ?, ?)
	`, "testuser", "test@example.com", "hashedpassword")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to get user id: %v", err)
	}

	return id
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("mysecretpassword")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "" {
		t.Error("HashPassword() returned empty hash")
	}
	if hash == "mysecretpassword" {
		t.Error("HashPassword() returned plaintext password")
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("HashPassword() = %q, want bcrypt format", hash)
	}
}

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	hash1, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	hash2, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash1 == hash2 {
		t.Error("HashPassword() returned identical hashes; salt missing?")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correctpassword")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", "correctpassword", hash, true},
		{"wrong password", "wrongpassword", hash, false},
		{"empty password", "", hash, false},
		{"empty hash", "correctpassword", "", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionManager_Create(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	session, err := sm.Create(userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if session.ID == "" {
		t.Error("session ID is empty")
	}
	if len(session.ID) != 64 {
		t.Errorf("session ID length = %d, want 64 hex chars", len(session.ID))
	}
	if session.UserID != userID {
		t.Errorf("session UserID = %d, want %d", session.UserID, userID)
	}
	if session.CSRFToken != "" {
		t.Errorf("new session CSRFToken = %q, want empty", session.CSRFToken)
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Error("session already expired at creation")
	}
}

func TestSessionManager_Create_UniqueIDs(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		session, err := sm.Create(userID)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if seen[session.ID] {
			t.Fatalf("duplicate session ID: %s", session.ID)
		}
		seen[session.ID] = true
	}
}

func TestSessionManager_Get(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	created, err := sm.Create(userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := sm.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for existing session")
	}
	if got.ID != created.ID {
		t.Errorf("Get() ID = %q, want %q", got.ID, created.ID)
	}
	if got.UserID != userID {
		t.Errorf("Get() UserID = %d, want %d", got.UserID, userID)
	}
}

func TestSessionManager_Get_NotFound(t *testing.T) {
	db := setupTestDB(t)
	sm := NewSessionManager(db)

	got, err := sm.Get("nonexistent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %v, want nil for missing session", got)
	}
}

func TestSessionManager_Validate(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	created, err := sm.Create(userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	session, err := sm.Validate(created.ID)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if session.ID != created.ID {
		t.Errorf("Validate() ID = %q, want %q", session.ID, created.ID)
	}
	if session.UserID != userID {
		t.Errorf("Validate() UserID = %d, want %d", session.UserID, userID)
	}
}

func TestSessionManager_Validate_NotFound(t *testing.T) {
	db := setupTestDB(t)
	sm := NewSessionManager(db)

	_, err := sm.Validate("nonexistent")
	if err != ErrSessionNotFound {
		t.Errorf("Validate() error = %v, want %v", err, ErrSessionNotFound)
	}
}

func TestSessionManager_Validate_Expired(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db).WithDuration(-time.Hour)

	created, err := sm.Create(userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = sm.Validate(created.ID)
	if err != ErrSessionExpired {
		t.Errorf("Validate() error = %v, want %v", err, ErrSessionExpired)
	}

	// Expired sessions are removed on validation
	got, err := sm.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Error("expired session still present after Validate()")
	}
}

func TestSessionManager_SetCSRFToken(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	session, err := sm.Create(userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := sm.SetCSRFToken(session.ID, "token123"); err != nil {
		t.Fatalf("SetCSRFToken() error = %v", err)
	}

	got, err := sm.Get(session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CSRFToken != "token123" {
		t.Errorf("CSRFToken = %q, want %q", got.CSRFToken, "token123")
	}
}

func TestSessionManager_Delete(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	session, err := sm.Create(userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := sm.Delete(session.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := sm.Get(session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Error("session still present after Delete()")
	}
}

func TestSessionManager_DeleteByUserID(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	for i := 0; i < 3; i++ {
		if _, err := sm.Create(userID); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	if err := sm.DeleteByUserID(userID); err != nil {
		t.Fatalf("DeleteByUserID() error = %v", err)
	}

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		t.Fatalf("counting sessions: %v", err)
	}
	if count != 0 {
		t.Errorf("session count = %d, want 0", count)
	}
}

func TestSessionManager_CleanExpired(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)

	expired := NewSessionManager(db).WithDuration(-time.Hour)
	for i := 0; i < 2; i++ {
		if _, err := expired.Create(userID); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	valid := NewSessionManager(db)
	liveSession, err := valid.Create(userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	count, err := valid.CleanExpired()
	if err != nil {
		t.Fatalf("CleanExpired() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CleanExpired() = %d, want 2", count)
	}

	got, err := valid.Get(liveSession.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Error("valid session removed by CleanExpired()")
	}
}
