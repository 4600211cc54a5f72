package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-group/internal/app"
	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/consol"
	"github.com/odyssey-erp/odyssey-group/internal/platform/httpx"
)

// dataSource answers the read-only commands either from a running server or
// from an in-process store loaded with the demo group.
type dataSource interface {
	Hierarchy(ctx context.Context) ([]*companies.HierarchyNode, error)
	Report(ctx context.Context, f consol.Filters) (consol.Report, error)
}

func newDataSource(ctx context.Context, server string, stderr io.Writer) (dataSource, error) {
	if server != "" {
		return &remoteSource{base: strings.TrimRight(server, "/"), client: &http.Client{Timeout: 30 * time.Second}}, nil
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg := &app.Config{LogFormat: "pretty"}
	application, err := app.New(cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	if _, err := application.Seed(ctx); err != nil {
		return nil, err
	}
	return localSource{app: application}, nil
}

type localSource struct {
	app *app.App
}

func (s localSource) Hierarchy(ctx context.Context) ([]*companies.HierarchyNode, error) {
	return s.app.Companies.Hierarchy(ctx)
}

func (s localSource) Report(ctx context.Context, f consol.Filters) (consol.Report, error) {
	return s.app.Consol.Build(ctx, f)
}

type remoteSource struct {
	base   string
	client *http.Client
}

func (s *remoteSource) Hierarchy(ctx context.Context) ([]*companies.HierarchyNode, error) {
	var body struct {
		Hierarchy []*companies.HierarchyNode `json:"hierarchy"`
	}
	if err := s.get(ctx, "/api/companies/hierarchy", nil, &body); err != nil {
		return nil, err
	}
	return body.Hierarchy, nil
}

func (s *remoteSource) Report(ctx context.Context, f consol.Filters) (consol.Report, error) {
	q := url.Values{}
	q.Set("period", f.Period)
	if f.Scope != "" {
		q.Set("scope", string(f.Scope))
	}
	if f.GroupID > 0 {
		q.Set("group_id", fmt.Sprint(f.GroupID))
	}
	if len(f.Entities) > 0 {
		parts := make([]string, len(f.Entities))
		for i, id := range f.Entities {
			parts[i] = fmt.Sprint(id)
		}
		q.Set("entities", strings.Join(parts, ","))
	}
	var report consol.Report
	if err := s.get(ctx, "/api/consolidation/report", q, &report); err != nil {
		return consol.Report{}, err
	}
	return report, nil
}

func (s *remoteSource) get(ctx context.Context, path string, query url.Values, dest any) error {
	target := s.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("cli: GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var problem httpx.ProblemDetail
		if err := json.NewDecoder(resp.Body).Decode(&problem); err == nil && problem.Detail != "" {
			return fmt.Errorf("cli: GET %s: %d %s", path, resp.StatusCode, problem.Detail)
		}
		return fmt.Errorf("cli: GET %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
