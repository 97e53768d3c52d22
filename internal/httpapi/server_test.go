package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mirror/internal/platform"
	"github.com/aretw0/mirror/pkg/core"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("---\ntags: [x]\n---\nalpha"), 0644))

	svc, err := platform.New(root)
	require.NoError(t, err)
	return NewServer(svc, nil), root
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLoadChangesFromDisk(t *testing.T) {
	srv, root := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/filesystem/load-changes-from-disk")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"new":[],"deleted":[],"modified":[],"failed":[],"skipped":[]}`, rec.Body.String())

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("beta"), 0644))
	require.NoError(t, os.Remove(filepath.Join(root, "a.md")))

	rec = do(t, srv, http.MethodPost, "/filesystem/load-changes-from-disk")
	require.Equal(t, http.StatusOK, rec.Code)

	var res core.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{filepath.Join(root, "b.txt")}, res.New)
	require.Len(t, res.Deleted, 1)
	assert.Equal(t, "a", res.Deleted[0].Title)
	assert.Equal(t, filepath.Join(root, "a.md"), res.Deleted[0].File)
}

func TestFiles(t *testing.T) {
	srv, root := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/filesystem/files")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Files []core.FileStat `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Files, 1)
	assert.Equal(t, filepath.Join(root, "a.md"), listing.Files[0].Path)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.md"), []byte("n"), 0644))
	rec = do(t, srv, http.MethodGet, "/filesystem/files?filter=newOrDeleted")
	require.Equal(t, http.StatusOK, rec.Code)
	var preview struct {
		Files core.DiffResult `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, []string{filepath.Join(root, "new.md")}, preview.Files.Created)

	rec = do(t, srv, http.MethodGet, "/filesystem/files?filter=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocuments(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/documents")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"title":"a","text":"alpha","fields":{"tags":["x"]}}]`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/documents?exclude=content")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"title":"a","fields":{"tags":["x"]}}]`, rec.Body.String())
}

func TestState(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/state")
	require.Equal(t, http.StatusOK, rec.Code)

	var state map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, float64(1), state["documents"])
	assert.Equal(t, "fs-repository", state["repository_type"])
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/nope").Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/documents").Code)
}

type failingService struct{ Service }

func (failingService) Sync(context.Context) (*core.SyncReport, error) {
	return nil, &core.IOError{Op: "scan", Path: "/w", Err: errors.New("permission denied")}
}

func TestSyncFailure(t *testing.T) {
	srv := NewServer(failingService{}, nil)
	rec := do(t, srv, http.MethodPost, "/filesystem/load-changes-from-disk")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "io_error", body["code"])
}
