package masterdata

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-group/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// Handler exposes one record type as JSON.
type Handler[T any, P Record[T]] struct {
	logger  *slog.Logger
	service *Service[T, P]
}

// NewHandler builds Handler instance.
func NewHandler[T any, P Record[T]](logger *slog.Logger, service *Service[T, P]) *Handler[T, P] {
	return &Handler[T, P]{logger: logger, service: service}
}

// MountRoutes registers CRUD routes for the record type.
func (h *Handler[T, P]) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler[T, P]) list(w http.ResponseWriter, r *http.Request) {
	var companyID int64
	if raw := r.URL.Query().Get("company_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.RespondError(w, shared.Validation("Invalid company ID."))
			return
		}
		companyID = id
	}
	records, err := h.service.List(r.Context(), companyID)
	if err != nil {
		httpx.Fail(w, h.logger, "list records failed", err, slog.String("kind", h.service.kind))
		return
	}
	page, err := shared.PaginationFromQuery(r.URL.Query(), len(records))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	start, end := page.Bounds()
	httpx.JSON(w, http.StatusOK, map[string]any{"data": records[start:end], "total": len(records), "pagination": page})
}

func (h *Handler[T, P]) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get record failed", err, slog.String("kind", h.service.kind), slog.Int64("id", id))
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler[T, P]) create(w http.ResponseWriter, r *http.Request) {
	var record T
	if err := httpx.DecodeJSON(r, &record); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), record)
	if err != nil {
		httpx.Fail(w, h.logger, "create record failed", err, slog.String("kind", h.service.kind))
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler[T, P]) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var record T
	if err := httpx.DecodeJSON(r, &record); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), id, record)
	if err != nil {
		httpx.Fail(w, h.logger, "update record failed", err, slog.String("kind", h.service.kind), slog.Int64("id", id))
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler[T, P]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Fail(w, h.logger, "delete record failed", err, slog.String("kind", h.service.kind), slog.Int64("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
