// Package api provides the HTTP handlers for the cube REST API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"cubemap/internal/middleware"
	"cubemap/internal/service"
	"cubemap/internal/sqlgen"
)

// Handler serves the cube API backed by one workspace.
type Handler struct {
	ws     *service.Workspace
	logger *slog.Logger
}

// NewHandler creates a handler. A nil logger defaults to slog.Default.
func NewHandler(ws *service.Workspace, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{ws: ws, logger: logger}
}

// Routes builds the router: health plus the versioned cube endpoints,
// behind request-ID and rate-limit middleware.
func (h *Handler) Routes(rl middleware.RateLimitConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	if rl.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimiter(rl))
	}

	r.Get("/health", h.health)
	r.Route("/v1/cubes", func(r chi.Router) {
		r.Get("/", h.listCubes)
		r.Route("/{cube}", func(r chi.Router) {
			r.Get("/", h.getCube)
			r.Get("/attributes", h.attributes)
			r.Post("/sql", h.explainSQL)
			r.Post("/facts", h.factsSQL)
			r.Post("/aggregate", h.aggregate)
		})
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"cubes":  len(h.ws.ListCubes()),
	})
}

func (h *Handler) listCubes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cubes": h.ws.ListCubes(),
	})
}

func (h *Handler) getCube(w http.ResponseWriter, r *http.Request) {
	cube, err := h.ws.Cube(chi.URLParam(r, "cube"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCubeResponse(cube))
}

func (h *Handler) attributes(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "cube")
	locale := r.URL.Query().Get("locale")

	attrs, err := h.ws.Attributes(name, locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cube":       name,
		"attributes": attrs,
	})
}

func (h *Handler) explainSQL(w http.ResponseWriter, r *http.Request) {
	var req sqlgen.AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.ws.ExplainAggregate(chi.URLParam(r, "cube"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) factsSQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Attributes []string     `json:"attributes"`
		Cuts       []sqlgen.Cut `json:"cuts"`
		Locale     string       `json:"locale"`
		Limit      uint64       `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.ws.ExplainFacts(chi.URLParam(r, "cube"), req.Attributes, req.Cuts, req.Locale, req.Limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) aggregate(w http.ResponseWriter, r *http.Request) {
	var req sqlgen.AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.ws.Aggregate(r.Context(), chi.URLParam(r, "cube"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err)
	}
	h.writeErrorStatus(w, r, status, err.Error())
}

func (h *Handler) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":      message,
		"request_id": middleware.RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
