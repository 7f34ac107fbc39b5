package web

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"billsplit/internal/edit"
	"billsplit/internal/handoff"
	"billsplit/internal/parse"
)

// Server exposes the capture and edit stages over HTTP. It is single-user by
// design: one shared document, one edit session, no concurrent tabs.
type Server struct {
	parser parse.Parser
	store  handoff.Store
	images ImageStorage
	mux    *http.ServeMux

	mu        sync.Mutex
	session   *edit.Session
	lastImage string
	lastType  string
}

// NewServer creates a new Server with a default mux.
func NewServer(parser parse.Parser, store handoff.Store, images ImageStorage) *Server {
	return NewServerWithMux(parser, store, images, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing.
func NewServerWithMux(parser parse.Parser, store handoff.Store, images ImageStorage, mux *http.ServeMux) *Server {
	s := &Server{
		parser: parser,
		store:  store,
		images: images,
		mux:    mux,
	}
	s.registerRoutes()
	return s
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux
// Routes must be registered from most specific to least specific to avoid conflicts
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/bill/image", s.handleGetImage)
	s.mux.HandleFunc("POST /api/bill/confirm", s.handleConfirm)
	s.mux.HandleFunc("POST /api/bill/items", s.handleAddItem)
	s.mux.HandleFunc("PATCH /api/bill/items/{index}", s.handleUpdateItem)
	s.mux.HandleFunc("DELETE /api/bill/items/{index}", s.handleRemoveItem)
	s.mux.HandleFunc("GET /api/bill", s.handleGetBill)
	s.mux.HandleFunc("POST /api/bill", s.handleUploadBill)

	// Static HTML interface (register last as it's the catch-all)
	s.mux.HandleFunc("GET /index.html", s.handleIndex)
	s.mux.HandleFunc("GET /", s.handleIndex)
}

// editSession returns the current edit session, seeding it from the shared
// store on first use. Callers must hold s.mu.
func (s *Server) editSession() (*edit.Session, error) {
	if s.session != nil {
		return s.session, nil
	}
	session := edit.NewSession(s.store)
	if err := session.Load(); err != nil {
		return nil, err
	}
	s.session = session
	return session, nil
}

// sanitizeFilename cleans up phone-generated filenames before they hit the
// image store: special characters removed, length capped.
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`).ReplaceAllString(base, "")
	base = regexp.MustCompile(`\s+`).ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "bill"
	}

	return base + ext
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.mux.ServeHTTP(w, r)
		})(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
