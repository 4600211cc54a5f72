package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-group/internal/app"
)

type harness struct {
	t      *testing.T
	app    *app.App
	server *httptest.Server
}

func newHarness(t *testing.T, redisClient *redis.Client) *harness {
	t.Helper()
	cfg := &app.Config{AppEnv: "test", LogFormat: "json"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	application, err := app.New(cfg, logger, redisClient)
	require.NoError(t, err)
	srv := httptest.NewServer(application.NewRouter(nil))
	t.Cleanup(srv.Close)
	return &harness{t: t, app: application, server: srv}
}

type response struct {
	Status int
	Body   map[string]any
	Raw    []byte
}

func (h *harness) do(method, path string, body any, headers ...string) response {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, h.server.URL+path, reader)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-Proto", "https")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := h.server.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	out := response{Status: resp.StatusCode, Raw: raw}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(h.t, json.Unmarshal(raw, &out.Body))
	}
	return out
}

func (r response) id(t *testing.T) int64 {
	t.Helper()
	v, ok := r.Body["id"].(float64)
	require.True(t, ok, "response has no id: %s", r.Raw)
	return int64(v)
}

func (r response) detail() string {
	s, _ := r.Body["detail"].(string)
	return s
}
