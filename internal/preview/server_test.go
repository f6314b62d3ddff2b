package preview

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueroomhub/blueroom-builder/internal/analytics"
	"github.com/blueroomhub/blueroom-builder/internal/domain"
	"github.com/blueroomhub/blueroom-builder/internal/search"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	outputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "index.html"), []byte("<h1>home</h1>"), 0o644))

	idx, err := search.Open(filepath.Join(t.TempDir(), "index.bleve"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	require.NoError(t, idx.IndexCatalog([]*domain.Game{{
		Slug:       "midnight-vault",
		Title:      "The Midnight Vault",
		Summary:    "Crack the vault.",
		Difficulty: domain.DifficultyHard,
	}}, nil))

	counters, err := analytics.Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { counters.Close() })

	return NewServer(outputDir, idx, counters, nil), outputDir
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestStaticFiles(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>home</h1>")
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=vault", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "midnight-vault")
}

func TestSearchEndpoint_MissingQuery(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpoint_NoIndex(t *testing.T) {
	srv := NewServer(t.TempDir(), nil, nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=vault", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events/pageview/midnight-vault", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events/guide-click/midnight-vault", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
