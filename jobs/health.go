package jobs

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-group/internal/platform/httpx"
)

// QueueInspector is the part of asynq.Inspector the health endpoint reads.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// Handler serves job queue health.
type Handler struct {
	inspector QueueInspector
	logger    *slog.Logger
}

// NewHandler constructs the handler. inspector is nil when the worker is
// disabled.
func NewHandler(inspector QueueInspector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{inspector: inspector, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

type queueHealth struct {
	Queue          string  `json:"queue"`
	Enabled        bool    `json:"enabled"`
	Paused         bool    `json:"paused"`
	Pending        int     `json:"pending"`
	Active         int     `json:"active"`
	Scheduled      int     `json:"scheduled"`
	Retry          int     `json:"retry"`
	Failed         int     `json:"failed"`
	LatencySeconds float64 `json:"latency_seconds"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.inspector == nil {
		httpx.JSON(w, http.StatusOK, queueHealth{Queue: QueueDefault})
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "Job queue is unavailable.")
		return
	}
	out := queueHealth{Queue: QueueDefault, Enabled: true}
	if info != nil {
		out.Paused = info.Paused
		out.Pending = info.Pending
		out.Active = info.Active
		out.Scheduled = info.Scheduled
		out.Retry = info.Retry
		out.Failed = info.Failed
		out.LatencySeconds = info.Latency.Seconds()
	}
	httpx.JSON(w, http.StatusOK, out)
}
