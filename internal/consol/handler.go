package consol

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-group/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// Handler serves consolidated reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers consolidation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/report", h.report)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.Report(r.Context(), filters)
	if err != nil {
		httpx.Fail(w, h.logger, "consolidated report failed", err, slog.String("period", filters.Period))
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// ParseFilters reads report filters from the query string.
func ParseFilters(r *http.Request) (Filters, error) {
	q := r.URL.Query()
	f := Filters{
		Period: q.Get("period"),
		Scope:  Scope(q.Get("scope")),
	}
	if raw := strings.TrimSpace(q.Get("group_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return Filters{}, shared.Validation("Invalid group ID.")
		}
		f.GroupID = id
	}
	if raw := strings.TrimSpace(q.Get("entities")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || id <= 0 {
				return Filters{}, shared.Validation("Invalid entities list.")
			}
			f.Entities = append(f.Entities, id)
		}
	}
	return f, nil
}
