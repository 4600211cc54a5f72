package companies

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-group/internal/platform/httpx"
)

// Handler exposes company endpoints as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers company routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/hierarchy", h.hierarchy)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "list companies failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"companies": list, "total": len(list)})
}

func (h *Handler) hierarchy(w http.ResponseWriter, r *http.Request) {
	forest, err := h.service.Hierarchy(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "build hierarchy failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"hierarchy": forest})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	company, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get company failed", err, slog.Int64("id", id))
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateCompanyInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.Fail(w, h.logger, "create company failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in UpdateCompanyInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		httpx.Fail(w, h.logger, "update company failed", err, slog.Int64("id", id))
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Fail(w, h.logger, "delete company failed", err, slog.Int64("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
