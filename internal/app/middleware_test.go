package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-group/internal/observability"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

const testKey = "0b6f2a52-3a52-4a5e-9c1f-6c4d6a0b7e11"

func idempotentRouter(store *shared.IdempotencyStore, metrics *observability.Metrics, status *int, calls *int) http.Handler {
	r := chi.NewRouter()
	r.Use(IdempotencyMiddleware(store, metrics, slog.New(slog.NewTextHandler(io.Discard, nil))))
	handler := func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(*status)
	}
	r.Post("/api/companies", handler)
	r.Get("/api/companies", handler)
	return r
}

func send(h http.Handler, method, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/companies", strings.NewReader("{}"))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyRejectsReplayedKey(t *testing.T) {
	metrics := observability.NewMetrics()
	status, calls := http.StatusCreated, 0
	h := idempotentRouter(shared.NewIdempotencyStore(nil, 0), metrics, &status, &calls)

	assert.Equal(t, http.StatusCreated, send(h, http.MethodPost, testKey).Code)
	rec := send(h, http.MethodPost, testKey)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), shared.ErrIdempotencyConflict.Error())
	assert.Equal(t, 1, calls)

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, scrape.Body.String(), `odyssey_idempotency_conflicts_total{module="companies"} 1`)
}

func TestIdempotencyReleasesKeyOnFailure(t *testing.T) {
	status, calls := http.StatusBadRequest, 0
	h := idempotentRouter(shared.NewIdempotencyStore(nil, 0), nil, &status, &calls)

	assert.Equal(t, http.StatusBadRequest, send(h, http.MethodPost, testKey).Code)
	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, send(h, http.MethodPost, testKey).Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyIgnoresReadsAndMissingKeys(t *testing.T) {
	status, calls := http.StatusOK, 0
	h := idempotentRouter(shared.NewIdempotencyStore(nil, 0), nil, &status, &calls)

	send(h, http.MethodGet, testKey)
	send(h, http.MethodGet, testKey)
	send(h, http.MethodPost, "")
	send(h, http.MethodPost, "")
	assert.Equal(t, 4, calls)
}

func TestIdempotencyRejectsMalformedKey(t *testing.T) {
	status, calls := http.StatusCreated, 0
	h := idempotentRouter(shared.NewIdempotencyStore(nil, 0), nil, &status, &calls)

	rec := send(h, http.MethodPost, "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, calls)
}

func TestIdempotencyUsesRedisWhenConfigured(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	status, calls := http.StatusCreated, 0
	h := idempotentRouter(shared.NewIdempotencyStore(client, 0), nil, &status, &calls)

	require.Equal(t, http.StatusCreated, send(h, http.MethodPost, testKey).Code)
	assert.True(t, mr.Exists("idempotency:companies:"+testKey))
	assert.Equal(t, http.StatusConflict, send(h, http.MethodPost, testKey).Code)
}

func TestModuleFor(t *testing.T) {
	cases := map[string]string{
		"/api/companies":              "companies",
		"/api/companies/4":            "companies",
		"/api/companies/4/accounts":   "accounts",
		"/api/accounts/9":             "accounts",
		"/api/eliminations":           "eliminations",
		"/api/masterdata/customers/2": "masterdata.customers",
		"/api/masterdata":             "masterdata",
		"/":                           "root",
	}
	for path, want := range cases {
		assert.Equal(t, want, moduleFor(path), path)
	}
}
