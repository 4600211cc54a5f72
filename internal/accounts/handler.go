package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-group/internal/platform/httpx"
)

// Handler serves chart of accounts endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountCompanyRoutes registers routes nested under /companies/{companyID}.
func (h *Handler) MountCompanyRoutes(r chi.Router) {
	r.Get("/", h.tree)
	r.Post("/", h.create)
}

// MountRoutes registers routes addressed by account id.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.IDParam(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if r.URL.Query().Get("flat") == "true" {
		list, err := h.service.List(r.Context(), companyID)
		if err != nil {
			httpx.Fail(w, h.logger, "list accounts failed", err, slog.Int64("company_id", companyID))
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"accounts": list, "total": len(list)})
		return
	}
	forest, err := h.service.Tree(r.Context(), companyID)
	if err != nil {
		httpx.Fail(w, h.logger, "build account tree failed", err, slog.Int64("company_id", companyID))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": forest})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.IDParam(r, "companyID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in CreateAccountInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), companyID, in)
	if err != nil {
		httpx.Fail(w, h.logger, "create account failed", err, slog.Int64("company_id", companyID))
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
	var in UpdateAccountInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		httpx.Fail(w, h.logger, "update account failed", err, slog.Int64("id", id))
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
		httpx.Fail(w, h.logger, "delete account failed", err, slog.Int64("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
