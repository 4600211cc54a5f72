package app

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/odyssey-erp/odyssey-group/internal/observability"
	"github.com/odyssey-erp/odyssey-group/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// IdempotencyHeader carries the client supplied key for mutating requests.
const IdempotencyHeader = "Idempotency-Key"

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger      *slog.Logger
	Config      *Config
	Idempotency *shared.IdempotencyStore
	Metrics     *observability.Metrics
}

// MiddlewareStack installs the Odyssey middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'",
		SSLRedirect:           cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !cfg.Config.IsProduction(),
	})

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
	}
	if cfg.Config != nil && cfg.Config.RateLimitPerMinute > 0 {
		middlewares = append(middlewares, httprate.Limit(cfg.Config.RateLimitPerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, cfg.Metrics.Middleware)
	}
	if cfg.Idempotency != nil {
		middlewares = append(middlewares, IdempotencyMiddleware(cfg.Idempotency, cfg.Metrics, logger))
	}
	return middlewares
}

// IdempotencyMiddleware rejects a mutating request whose Idempotency-Key was
// already used for the same module. Requests without the header pass through.
// A key is released again when the handler does not succeed, so the client
// may retry with it.
func IdempotencyMiddleware(store *shared.IdempotencyStore, metrics *observability.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" || !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			module := moduleFor(r.URL.Path)
			if err := store.CheckAndInsert(r.Context(), key, module); err != nil {
				if errors.Is(err, shared.ErrIdempotencyConflict) {
					metrics.IdempotencyConflict(module)
				}
				httpx.Fail(w, logger, "idempotency check failed", err, slog.String("module", module))
				return
			}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() >= http.StatusBadRequest {
				if err := store.Delete(r.Context(), key, module); err != nil {
					logger.Warn("release idempotency key", slog.String("module", module), slog.Any("error", err))
				}
			}
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// moduleFor names the resource family a path belongs to, e.g.
// /api/masterdata/customers/4 -> masterdata.customers.
func moduleFor(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 && parts[0] == "api" {
		parts = parts[1:]
	}
	switch {
	case len(parts) == 0 || parts[0] == "":
		return "root"
	case parts[0] == "masterdata" && len(parts) > 1:
		return "masterdata." + parts[1]
	case parts[0] == "companies" && len(parts) > 2 && parts[2] == "accounts":
		return "accounts"
	default:
		return parts[0]
	}
}
