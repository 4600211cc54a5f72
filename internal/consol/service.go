package consol

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-group/internal/accounts"
	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/elimination"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// Source is the read-only view of the store a report is built from.
type Source interface {
	ListCompanies(ctx context.Context) ([]companies.Company, error)
	ListAccounts(ctx context.Context, companyID int64) ([]accounts.Account, error)
	ListEliminations(ctx context.Context, period string) ([]elimination.Entry, error)
}

// Service builds consolidated reports.
type Service struct {
	source Source
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
	builds singleflight.Group
}

// NewService constructs a consolidation service. cache may be nil.
func NewService(source Source, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, logger: logger, now: time.Now}
}

// WithClock overrides the clock for deterministic tests.
func (s *Service) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Invalidate drops every cached report.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// NormalizeFilters validates filters and fills in defaults.
func NormalizeFilters(f Filters) (Filters, error) {
	period, err := shared.NormalizePeriod(f.Period)
	if err != nil {
		return Filters{}, err
	}
	f.Period = period
	f.Scope = Scope(strings.ToLower(strings.TrimSpace(string(f.Scope))))
	switch f.Scope {
	case "":
		f.Scope = ScopeFull
	case ScopeFull:
	case ScopeProportional, ScopeEquity:
		return Filters{}, shared.NotImplemented(fmt.Sprintf("Consolidation scope %s is not implemented.", f.Scope))
	default:
		return Filters{}, shared.Validation("Scope must be one of: full proportional equity.")
	}
	if f.GroupID < 0 {
		return Filters{}, shared.Validation("Invalid group ID.")
	}
	if len(f.Entities) > 0 {
		entities := append([]int64(nil), f.Entities...)
		sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })
		deduped := entities[:0]
		for i, id := range entities {
			if i > 0 && id == entities[i-1] {
				continue
			}
			deduped = append(deduped, id)
		}
		f.Entities = deduped
	} else {
		f.Entities = nil
	}
	return f, nil
}

// Report returns the consolidated report for the filters, served from the
// cache when the store has not changed since it was built.
func (s *Service) Report(ctx context.Context, f Filters) (Report, error) {
	f, err := NormalizeFilters(f)
	if err != nil {
		return Report{}, err
	}
	key, err := s.cache.BuildKey(ctx, "consol", "report", f.Period, string(f.Scope), strconv.FormatInt(f.GroupID, 10), entitiesToken(f.Entities))
	if err != nil {
		return Report{}, fmt.Errorf("consol: build cache key: %w", err)
	}

	ch := s.builds.DoChan(key, func() (any, error) {
		// Callers share this build, so one caller going away must not cancel it.
		ctx := context.WithoutCancel(ctx)
		var report Report
		hit, err := s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
			return s.build(ctx, f)
		})
		if err != nil {
			return Report{}, err
		}
		recordCacheResult(f.Scope, hit)
		return report, nil
	})
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	}
}

// Build computes a report without consulting the cache.
func (s *Service) Build(ctx context.Context, f Filters) (Report, error) {
	f, err := NormalizeFilters(f)
	if err != nil {
		return Report{}, err
	}
	return s.build(ctx, f)
}

func (s *Service) build(ctx context.Context, f Filters) (Report, error) {
	started := time.Now()
	defer func() { observeBuildDuration(f.Scope, time.Since(started)) }()

	all, err := s.source.ListCompanies(ctx)
	if err != nil {
		return Report{}, err
	}
	members, err := resolveMembers(all, f)
	if err != nil {
		return Report{}, err
	}

	inScope := make(map[int64]bool, len(members))
	accountsByCompany := make(map[int64][]accounts.Account, len(members))
	for _, m := range members {
		inScope[m.ID] = true
		list, err := s.source.ListAccounts(ctx, m.ID)
		if err != nil {
			return Report{}, err
		}
		accountsByCompany[m.ID] = list
	}

	entries, err := s.source.ListEliminations(ctx, f.Period)
	if err != nil {
		return Report{}, err
	}
	applied := make([]elimination.Entry, 0, len(entries))
	for _, e := range entries {
		if inScope[e.SourceCompanyID] && inScope[e.TargetCompanyID] {
			applied = append(applied, e)
		}
	}

	result := Consolidate(accountsByCompany, applied)
	for _, w := range result.Warnings {
		s.logger.Warn("consolidation warning", slog.String("period", f.Period), slog.String("warning", w))
	}
	return Report{
		Filters:     f,
		Members:     members,
		Applied:     len(applied),
		GeneratedAt: s.now().UTC(),
		Result:      result,
	}, nil
}

func resolveMembers(all []companies.Company, f Filters) ([]Member, error) {
	candidates := all
	if f.GroupID > 0 {
		var group *companies.Company
		for i := range all {
			if all[i].ID == f.GroupID {
				group = &all[i]
				break
			}
		}
		if group == nil {
			return nil, shared.Validation("Group company not found.")
		}
		if group.CompanyType != companies.TypeHolding {
			return nil, shared.Validation("Group must reference a holding company.")
		}
		candidates = make([]companies.Company, 0)
		for _, c := range all {
			if c.RootID == group.ID {
				candidates = append(candidates, c)
			}
		}
	}

	if len(f.Entities) > 0 {
		byID := make(map[int64]companies.Company, len(candidates))
		for _, c := range candidates {
			byID[c.ID] = c
		}
		selected := make([]companies.Company, 0, len(f.Entities))
		for _, id := range f.Entities {
			c, ok := byID[id]
			if !ok {
				return nil, shared.Validation(fmt.Sprintf("Entity %d is not part of the consolidation scope.", id))
			}
			selected = append(selected, c)
		}
		candidates = selected
	}

	members := make([]Member, 0, len(candidates))
	for _, c := range candidates {
		members = append(members, Member{ID: c.ID, Code: c.Code, Name: c.Name, CompanyType: c.CompanyType, Level: c.Level})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func entitiesToken(ids []int64) string {
	if len(ids) == 0 {
		return "all"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// ListGroupIDs returns the ids of every holding company, ascending.
func (s *Service) ListGroupIDs(ctx context.Context) ([]int64, error) {
	all, err := s.source.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0)
	for _, c := range all {
		if c.CompanyType == companies.TypeHolding {
			ids = append(ids, c.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ActiveConsolidationPeriod is the latest period carrying elimination
// entries, or the current month when none exist.
func (s *Service) ActiveConsolidationPeriod(ctx context.Context) (string, error) {
	entries, err := s.source.ListEliminations(ctx, "")
	if err != nil {
		return "", err
	}
	latest := ""
	for _, e := range entries {
		if e.Period > latest {
			latest = e.Period
		}
	}
	if latest == "" {
		latest = s.now().UTC().Format(shared.PeriodLayout)
	}
	return latest, nil
}
