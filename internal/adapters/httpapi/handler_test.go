package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resourcebank/internal/core"
	"resourcebank/internal/storage"
	"resourcebank/pkg/domain"
)

type apiFixture struct {
	handler *Handler
	svc     *core.Service
	cookies []*http.Cookie
}

func newFixture(t *testing.T, archive bool) *apiFixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(reg)
	require.NoError(t, err)
	svc, err := core.Open(context.Background(), core.Options{
		Store:          storage.NewMemory(),
		Metrics:        metrics,
		ArchiveExports: archive,
	})
	require.NoError(t, err)
	sessions, err := NewSessions("0123456789abcdef0123456789abcdef", false)
	require.NoError(t, err)
	h, err := NewHandler(svc, Options{Sessions: sessions, Gatherer: reg})
	require.NoError(t, err)
	return &apiFixture{handler: h, svc: svc}
}

func (f *apiFixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		f.cookies = cookies
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListResources(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/api/v1/resources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode(t, rec)["resources"].([]any)
	assert.Len(t, rows, 3)
	first := rows[0].(map[string]any)
	assert.Equal(t, domain.Seed()[0].Title, first["title"])
	assert.Equal(t, false, first["favorite"])

	rec = f.do(t, http.MethodGet, "/api/v1/resources?type=Formation&search=SHERBROOKE", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["resources"], 1)

	rec = f.do(t, http.MethodGet, "/api/v1/resources?favorites=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTypesAndCompetencies(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/api/v1/types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Guide", "Vidéo", "Formation"}, decode(t, rec)["types"])

	rec = f.do(t, http.MethodGet, "/api/v1/competencies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["competencies"], 12)
}

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t, false)
	title := domain.Seed()[2].Title
	rec := f.do(t, http.MethodPost, "/api/v1/favorites/toggle", map[string]string{"title": title})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"title": title, "favorite": true}, decode(t, rec))

	rec = f.do(t, http.MethodGet, "/api/v1/resources?favorites=true", nil)
	rows := decode(t, rec)["resources"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, true, rows[0].(map[string]any)["favorite"])

	rec = f.do(t, http.MethodPost, "/api/v1/favorites/toggle", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddResourceRequiresAdmin(t *testing.T) {
	f := newFixture(t, false)
	candidate := domain.Candidate{Title: "Balado", Competencies: "A, B", Link: "https://p"}

	rec := f.do(t, http.MethodPost, "/api/v1/resources", candidate)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.cookies)

	rec = f.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": "admin123"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, f.cookies)

	rec = f.do(t, http.MethodPost, "/api/v1/resources", candidate)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decode(t, rec)["accepted"])
	assert.Len(t, f.svc.Resources(), 4)

	rec = f.do(t, http.MethodPost, "/api/v1/resources", domain.Candidate{Title: "no link"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["accepted"])
	assert.Equal(t, []any{"link"}, body["missing"])
	assert.Len(t, f.svc.Resources(), 4)

	rec = f.do(t, http.MethodPost, "/api/v1/admin/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/resources", candidate)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/api/v1/export.csv?type=Guide", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="banque_ressources.csv"`, rec.Header().Get("Content-Disposition"))
	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Title","Source","Linked competencies","Theme","Type","Format","Link"`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"Guide de co-développement Aire ouverte"`))
}

func TestArchiveExports(t *testing.T) {
	disabled := newFixture(t, false)
	disabled.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": "admin123"})
	rec := disabled.do(t, http.MethodPost, "/api/v1/exports", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f := newFixture(t, true)
	rec = f.do(t, http.MethodPost, "/api/v1/exports", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": "admin123"})
	rec = f.do(t, http.MethodPost, "/api/v1/exports?search=vid", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	art := decode(t, rec)
	assert.EqualValues(t, 1, art["records"])

	rec = f.do(t, http.MethodGet, "/api/v1/exports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["exports"], 1)
}

func TestOpenArchivedExport(t *testing.T) {
	disabled := newFixture(t, false)
	disabled.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": "admin123"})
	rec := disabled.do(t, http.MethodGet, "/api/v1/exports/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f := newFixture(t, true)
	rec = f.do(t, http.MethodGet, "/api/v1/exports/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": "admin123"})
	rec = f.do(t, http.MethodPost, "/api/v1/exports?type=Guide", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id, ok := decode(t, rec)["id"].(string)
	require.True(t, ok)

	rec = f.do(t, http.MethodGet, "/api/v1/exports/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="banque_ressources.csv"`, rec.Header().Get("Content-Disposition"))
	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `"Guide de co-développement Aire ouverte"`))

	rec = f.do(t, http.MethodGet, "/api/v1/exports/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/v1/exports/not-an-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	f.do(t, http.MethodGet, "/api/v1/resources", nil)
	rec = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resourcebank_service_operations_total")
}

func TestNewHandlerRequiresCatalog(t *testing.T) {
	_, err := NewHandler(nil, Options{})
	assert.Error(t, err)
}
