package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"billsplit/internal/bill"
	"billsplit/internal/capture"
	"billsplit/internal/parse"
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes an {error} response with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// billView is the edit screen's snapshot of the session.
type billView struct {
	Items []bill.LineItem `json:"items"`
	Total string          `json:"total"`
	Empty bool            `json:"empty"`
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleUploadBill runs the capture stage for one uploaded image: validate
// the selection, send it to the parsing collaborator, persist the parsed
// document, and reset the edit session so the edit screen picks it up.
func (s *Server) handleUploadBill(w http.ResponseWriter, r *http.Request) {
	// 50MB cap to handle high-resolution phone photos
	maxFormSize := int64(50 << 20)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, capture.ErrNoFileSelected.Error(), http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxFormSize {
		jsonError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeForExt(header.Filename)
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	flow := capture.NewFlow(s.parser, s.store)
	if err := flow.Select(header.Filename, contentType, data); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := flow.Upload(r.Context())
	if err != nil {
		slog.Error("Error processing bill", "filename", header.Filename, "error", err)
		var transportErr *parse.TransportError
		if errors.As(err, &transportErr) {
			jsonError(w, err.Error(), http.StatusBadGateway)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.keepImage(header.Filename, contentType, data)

	s.mu.Lock()
	// A new upload overwrites the live document; any ongoing edit session is
	// stale now.
	s.session = nil
	s.mu.Unlock()

	setCORSHeaders(w)
	writeJSON(w, http.StatusCreated, doc)
}

// keepImage stores the raw upload so the preview stays available. Failures
// are logged and ignored; the parsed document already made it to the store.
func (s *Server) keepImage(filename, contentType string, data []byte) {
	if s.images == nil {
		return
	}
	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitizeFilename(filename))
	saved, err := s.images.Save(name, data)
	if err != nil {
		slog.Warn("Failed to store bill image", "filename", filename, "error", err)
		return
	}

	s.mu.Lock()
	previous := s.lastImage
	s.lastImage = saved
	s.lastType = contentType
	s.mu.Unlock()

	if previous != "" && previous != saved {
		if err := s.images.Delete(previous); err != nil {
			slog.Warn("Failed to delete previous bill image", "path", previous, "error", err)
		}
	}
}

// contentTypeForExt guesses a media type when the upload did not declare one.
func contentTypeForExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleGetBill returns the edit session view, loading it from the shared
// store on first access.
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.editSession()
	if err != nil {
		slog.Error("Error loading bill", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, billView{
		Items: session.Items(),
		Total: session.Total(),
		Empty: session.Empty(),
	})
}

// handleAddItem appends a blank line item.
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.editSession()
	if err != nil {
		slog.Error("Error loading bill", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	session.AddItem()

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, billView{
		Items: session.Items(),
		Total: session.Total(),
		Empty: session.Empty(),
	})
}

// handleUpdateItem replaces one field of the item at {index}.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		jsonError(w, "Invalid item index", http.StatusBadRequest)
		return
	}

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.editSession()
	if err != nil {
		slog.Error("Error loading bill", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := session.UpdateField(index, req.Field, req.Value); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, billView{
		Items: session.Items(),
		Total: session.Total(),
		Empty: session.Empty(),
	})
}

// handleRemoveItem drops the item at {index}.
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		jsonError(w, "Invalid item index", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.editSession()
	if err != nil {
		slog.Error("Error loading bill", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := session.RemoveItem(index); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, billView{
		Items: session.Items(),
		Total: session.Total(),
		Empty: session.Empty(),
	})
}

// handleConfirm writes the edited document back to the shared store and
// returns it for the split screen.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.editSession()
	if err != nil {
		slog.Error("Error loading bill", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	doc, err := session.Confirm()
	if err != nil {
		slog.Error("Error confirming bill", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, doc)
}

// handleGetImage serves the most recently uploaded bill image.
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	path, contentType := s.lastImage, s.lastType
	s.mu.Unlock()

	if path == "" || s.images == nil {
		jsonError(w, "No bill image uploaded", http.StatusNotFound)
		return
	}

	data, err := s.images.Get(path)
	if err != nil {
		jsonError(w, "Image not found", http.StatusNotFound)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
