package serverhttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-matcher/internal/config"
	recSvc "catalog-matcher/internal/reconcile/service"
)

func newTestRouter() http.Handler {
	cfg := config.Config{AllowOrigins: []string{"*"}, MaxUploadMB: 1, Workers: 2}
	return NewRouter(cfg, recSvc.NewMatcher(recSvc.DefaultVocabulary()), zerolog.Nop())
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/match", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMatchRoute(t *testing.T) {
	body := `{"query":"p-3014-10","catalog":[{"identifier":"p-3014-10","displayName":"Hanging Foldable Trunk Organizer"}]}`
	req := httptest.NewRequest(http.MethodPost, "/match", strings.NewReader(body))
	req.Header.Set("X-Request-ID", "rid-7")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "rid-7", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), `"tier": "identifier"`)
}

func TestBodyLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/match", strings.NewReader(strings.Repeat("x", 2<<20)))
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/match", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
