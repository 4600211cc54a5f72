package elimination

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-group/internal/platform/httpx"
)

// Handler exposes elimination entries as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers elimination routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	entries, err := h.service.List(r.Context(), period)
	if err != nil {
		httpx.Fail(w, h.logger, "list eliminations failed", err, slog.String("period", period))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"eliminations": entries, "total": len(entries)})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateEntryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.Fail(w, h.logger, "create elimination failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Fail(w, h.logger, "delete elimination failed", err, slog.Int64("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
