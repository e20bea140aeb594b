package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"threadboard/internal/middleware"
	"threadboard/internal/sanitize"
)

// UploadHandler handles file upload routes. Upload endpoints are exempt
// from CSRF validation, so they perform their own authentication check.
type UploadHandler struct {
	uploadDir string
	maxSize   int64
}

// NewUploadHandler creates a new UploadHandler storing files in uploadDir.
func NewUploadHandler(uploadDir string, maxSize int64) *UploadHandler {
	return &UploadHandler{
		uploadDir: uploadDir,
		maxSize:   maxSize,
	}
}

// UploadImage accepts a multipart image upload.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	h.saveUpload(w, r, "image/")
}

// UploadVideo accepts a multipart video upload.
func (h *UploadHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	h.saveUpload(w, r, "video/")
}

// saveUpload validates and stores an uploaded file whose sniffed MIME type
// matches wantPrefix. The stored name is a uuid plus the sanitized original
// filename, never the client-supplied name alone.
func (h *UploadHandler) saveUpload(w http.ResponseWriter, r *http.Request, wantPrefix string) {
	// CSRF exemption means this endpoint authenticates on its own
	user := middleware.GetUser(r)
	if user == nil {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "reading upload")
		return
	}

	// Sniff the content instead of trusting the declared Content-Type
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), wantPrefix) {
		writeJSONError(w, http.StatusUnsupportedMediaType, "unexpected file type "+mtype.String())
		return
	}

	name := sanitize.Filename(header.Filename)
	if name == "" {
		name = "upload" + mtype.Extension()
	}
	stored := uuid.NewString() + "_" + name

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		log.Printf("Upload mkdir error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "storing upload")
		return
	}
	if err := os.WriteFile(filepath.Join(h.uploadDir, stored), data, 0644); err != nil {
		log.Printf("Upload write error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "storing upload")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"filename":     stored,
		"content_type": mtype.String(),
	})
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
