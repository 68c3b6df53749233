// Package httpapi exposes the catalog service as a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"resourcebank/internal/catalog"
	"resourcebank/internal/core"
	"resourcebank/internal/export"
	"resourcebank/internal/storage"
	"resourcebank/pkg/domain"
)

// Catalog is the service surface the API needs. *core.Service satisfies it.
type Catalog interface {
	Browse(criteria domain.Criteria) []core.Entry
	Types() []string
	Competencies() []string
	ToggleFavorite(ctx context.Context, title string) bool
	Authenticate(password string) bool
	SubmitResource(ctx context.Context, c domain.Candidate) error
	ExportCSV(criteria domain.Criteria) string
	ArchiveExport(ctx context.Context, criteria domain.Criteria) (export.Artifact, error)
	Exports(ctx context.Context) ([]export.Artifact, error)
	OpenExport(ctx context.Context, id string) (string, error)
}

// Options configures the handler.
type Options struct {
	Logger   *zap.Logger
	Sessions *Sessions
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// Handler routes API requests to the catalog.
type Handler struct {
	catalog  Catalog
	sessions *Sessions
	logger   *zap.Logger
	router   chi.Router
}

// NewHandler builds the router.
func NewHandler(c Catalog, opts Options) (*Handler, error) {
	if c == nil {
		return nil, errors.New("httpapi: catalog is required")
	}
	h := &Handler{catalog: c, sessions: opts.Sessions, logger: opts.Logger}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.sessions == nil {
		s, err := NewSessions("", false)
		if err != nil {
			return nil, err
		}
		h.sessions = s
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/resources", h.handleListResources)
		api.Get("/types", h.handleTypes)
		api.Get("/competencies", h.handleCompetencies)
		api.Post("/favorites/toggle", h.handleToggleFavorite)
		api.Get("/export.csv", h.handleExportCSV)
		api.Post("/admin/login", h.handleLogin)
		api.Post("/admin/logout", h.handleLogout)

		api.Group(func(admin chi.Router) {
			admin.Use(h.requireAdmin)
			admin.Post("/resources", h.handleAddResource)
			admin.Get("/exports", h.handleListExports)
			admin.Post("/exports", h.handleArchiveExport)
			admin.Get("/exports/{id}", h.handleOpenExport)
		})
	})
	h.router = r
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.sessions.IsAdmin(r) {
			writeError(w, http.StatusUnauthorized, "admin authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// parseCriteria reads search, competency, type and favorites query values.
func parseCriteria(r *http.Request) (domain.Criteria, error) {
	q := r.URL.Query()
	c := domain.Criteria{
		Search:     q.Get("search"),
		Competency: q.Get("competency"),
		Type:       q.Get("type"),
	}
	if raw := q.Get("favorites"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Criteria{}, fmt.Errorf("favorites must be a boolean")
		}
		c.FavoritesOnly = v
	}
	return c, nil
}

func (h *Handler) handleListResources(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": h.catalog.Browse(criteria)})
}

func (h *Handler) handleTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"types": h.catalog.Types()})
}

func (h *Handler) handleCompetencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"competencies": h.catalog.Competencies()})
}

type toggleRequest struct {
	Title string `json:"title"`
}

func (h *Handler) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}
	fav := h.catalog.ToggleFavorite(r.Context(), req.Title)
	writeJSON(w, http.StatusOK, map[string]any{"title": req.Title, "favorite": fav})
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeCSV(w, h.catalog.ExportCSV(criteria))
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.catalog.Authenticate(req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false, "error": "invalid password"})
		return
	}
	if err := h.sessions.Grant(w, r); err != nil {
		h.logger.Error("session save failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Revoke(w, r); err != nil {
		h.logger.Warn("session revoke failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
}

func (h *Handler) handleAddResource(w http.ResponseWriter, r *http.Request) {
	var c domain.Candidate
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.catalog.SubmitResource(r.Context(), c)
	var se catalog.SubmissionError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]any{"accepted": true})
	case errors.As(err, &se):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"accepted": false, "missing": se.Fields})
	case errors.Is(err, catalog.ErrInvalidSubmission):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"accepted": false})
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) handleListExports(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.Exports(r.Context())
	if errors.Is(err, core.ErrArchiveDisabled) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": list})
}

func (h *Handler) handleArchiveExport(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	art, err := h.catalog.ArchiveExport(r.Context(), criteria)
	if errors.Is(err, core.ErrArchiveDisabled) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, art)
}

func (h *Handler) handleOpenExport(w http.ResponseWriter, r *http.Request) {
	body, err := h.catalog.OpenExport(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeCSV(w, body)
	case errors.Is(err, core.ErrArchiveDisabled), errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeCSV(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
