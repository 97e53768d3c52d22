// Package httpapi exposes the sync engine over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/mirror/pkg/core"
)

// Service is the part of core.Service the server uses.
type Service interface {
	Sync(ctx context.Context) (*core.SyncReport, error)
	Changes(ctx context.Context) (core.DiffResult, error)
	Files(ctx context.Context) ([]core.FileStat, error)
	ListDocuments(ctx context.Context) ([]core.Document, error)
	State() any
}

// Server routes requests to the service.
type Server struct {
	svc    Service
	logger *slog.Logger
}

// NewServer creates a handler for svc. A nil logger discards.
func NewServer(svc Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{svc: svc, logger: logger}
}

// DocumentView is the wire shape of a document.
type DocumentView struct {
	Title    string        `json:"title"`
	Text     *string       `json:"text,omitempty"`
	Metadata core.Metadata `json:"fields,omitempty"`
}

// FilesResponse wraps a file listing or, when filtered, a preview diff.
type FilesResponse struct {
	Files any `json:"files"`
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/health" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case path == "/filesystem/load-changes-from-disk" && (r.Method == http.MethodGet || r.Method == http.MethodPost):
		s.handleSync(w, r)
	case path == "/filesystem/files" && r.Method == http.MethodGet:
		s.handleFiles(w, r)
	case path == "/documents" && r.Method == http.MethodGet:
		s.handleDocuments(w, r)
	case path == "/state" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.svc.State())
	default:
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	}
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Sync(r.Context())
	if err != nil {
		s.fail(w, "sync", err)
		return
	}
	writeJSON(w, http.StatusOK, core.NewSyncResult(report))
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	switch filter := r.URL.Query().Get("filter"); filter {
	case "":
		files, err := s.svc.Files(r.Context())
		if err != nil {
			s.fail(w, "list files", err)
			return
		}
		if files == nil {
			files = []core.FileStat{}
		}
		writeJSON(w, http.StatusOK, FilesResponse{Files: files})
	case "newOrDeleted":
		diff, err := s.svc.Changes(r.Context())
		if err != nil {
			s.fail(w, "preview changes", err)
			return
		}
		writeJSON(w, http.StatusOK, FilesResponse{Files: diff})
	default:
		writeError(w, http.StatusBadRequest, "bad_request", "unknown filter "+filter)
	}
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.svc.ListDocuments(r.Context())
	if err != nil {
		s.fail(w, "list documents", err)
		return
	}
	withContent := r.URL.Query().Get("exclude") != "content"

	out := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		v := DocumentView{Title: d.ID, Metadata: d.Metadata}
		if withContent {
			text := d.Content
			v.Text = &text
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, core.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrReadOnly):
		status, code = http.StatusForbidden, "read_only"
	case errors.Is(err, context.Canceled):
		status, code = http.StatusServiceUnavailable, "cancelled"
	case errors.Is(err, core.ErrIO):
		code = "io_error"
	}
	s.logger.Error("request failed", "op", op, "error", err)
	writeError(w, status, code, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"code":    code,
		"message": message,
	})
}
