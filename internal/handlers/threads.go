package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"threadboard/internal/middleware"
	"threadboard/internal/models"
	"threadboard/internal/repository"
	"threadboard/internal/sanitize"
)

// ThreadHandler handles thread routes.
type ThreadHandler struct {
	threadRepo *repository.ThreadRepository
}

// NewThreadHandler creates a new ThreadHandler.
func NewThreadHandler(threadRepo *repository.ThreadRepository) *ThreadHandler {
	return &ThreadHandler{threadRepo: threadRepo}
}

// threadView is a thread prepared for rendering. Body was sanitized through
// the allow-list filter at creation time, so it renders as HTML.
type threadView struct {
	Title  string
	Body   template.HTML
	Author string
}

// List renders the thread list, optionally filtered by a search query.
func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	query := sanitize.SearchQuery(r.URL.Query().Get("q"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	result, err := h.threadRepo.ListPage(query, repository.PageToPagination(page, repository.DefaultLimit))
	if err != nil {
		log.Printf("Thread list error: %v", err)
		http.Error(w, "Error loading threads", http.StatusInternalServerError)
		return
	}

	views := make([]threadView, 0, len(result.Items))
	for _, t := range result.Items {
		views = append(views, threadView{
			Title:  t.Title,
			Body:   template.HTML(t.Body),
			Author: t.Author,
		})
	}

	render(w, "threads.html", http.StatusOK, map[string]any{
		"Title":    "Threads",
		"Query":    query,
		"Threads":  views,
		"Page":     result.Page,
		"HasMore":  result.HasMore,
		"NextPage": result.Page + 1,
	})
}

// NewForm renders the new-thread form with the CSRF token embedded.
func (h *ThreadHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	render(w, "thread_new.html", http.StatusOK, map[string]any{
		"Title":     "New thread",
		"CSRFToken": middleware.CSRFToken(r),
	})
}

// Create handles the new-thread form submission.
func (h *ThreadHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderNewError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	// Titles allow no markup at all; bodies keep safe formatting only
	title := sanitize.Text(r.FormValue("title"))
	body := sanitize.HTML(r.FormValue("body"))

	if title == "" {
		h.renderNewError(w, r, http.StatusBadRequest, "Title is required")
		return
	}
	if body == "" {
		h.renderNewError(w, r, http.StatusBadRequest, "Body is required")
		return
	}

	thread := &models.Thread{
		UserID: user.ID,
		Title:  title,
		Body:   body,
	}

	if _, err := h.threadRepo.Create(thread); err != nil {
		log.Printf("Thread create error: %v", err)
		h.renderNewError(w, r, http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	http.Redirect(w, r, "/threads", http.StatusSeeOther)
}

// renderNewError renders the new-thread form with an error message.
func (h *ThreadHandler) renderNewError(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	render(w, "thread_new.html", status, map[string]any{
		"Title":     "New thread",
		"CSRFToken": middleware.CSRFToken(r),
		"Error":     errMsg,
	})
}

// Main renders the authenticated landing page.
func Main(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	render(w, "main.html", http.StatusOK, map[string]any{
		"Title":     "Main",
		"User":      user,
		"CSRFToken": middleware.CSRFToken(r),
	})
}

// Home renders the public landing page.
func Home(w http.ResponseWriter, r *http.Request) {
	render(w, "home.html", http.StatusOK, map[string]any{
		"Title": "Threadboard",
	})
}
