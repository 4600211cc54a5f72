package perf

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-group/internal/accounts"
	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/consol"
	"github.com/odyssey-erp/odyssey-group/internal/elimination"
	"github.com/odyssey-erp/odyssey-group/internal/seed"
	"github.com/odyssey-erp/odyssey-group/internal/store"
)

// syntheticGroup builds n companies sharing a chart of leaves accounts under
// one header, plus one elimination per neighbouring pair.
func syntheticGroup(n, leaves int) (map[int64][]accounts.Account, []elimination.Entry) {
	byCompany := make(map[int64][]accounts.Account, n)
	for c := int64(1); c <= int64(n); c++ {
		headerID := c * 10_000
		list := []accounts.Account{{ID: headerID, CompanyID: c, Code: "1000", Name: "Assets", Type: accounts.TypeAsset, Level: 1}}
		for i := 1; i <= leaves; i++ {
			parent := headerID
			list = append(list, accounts.Account{
				ID: headerID + int64(i), CompanyID: c, Code: fmt.Sprintf("1%03d", i), Name: "Leaf",
				Type: accounts.TypeAsset, ParentID: &parent, Level: 2, IsPostable: true,
				Balance: decimal.NewFromInt(int64(i) * 100),
			})
		}
		byCompany[c] = list
	}
	entries := make([]elimination.Entry, 0, n)
	for c := int64(1); c < int64(n); c++ {
		entries = append(entries, elimination.Entry{
			ID: c, Period: "2024-12", DebitAccount: "1001", CreditAccount: "1002",
			Amount: decimal.NewFromInt(50), SourceCompanyID: c, TargetCompanyID: c + 1,
		})
	}
	return byCompany, entries
}

func BenchmarkConsolidate(b *testing.B) {
	for _, size := range []struct{ companies, leaves int }{{3, 20}, {25, 100}, {100, 250}} {
		byCompany, entries := syntheticGroup(size.companies, size.leaves)
		b.Run(fmt.Sprintf("%dx%d", size.companies, size.leaves), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				consol.Consolidate(byCompany, entries)
			}
		})
	}
}

func seededStore(tb testing.TB) *store.Store {
	tb.Helper()
	st := store.New()
	_, err := seed.Demo(context.Background(), seed.Services{
		Companies:    companies.NewService(st.Companies(), nil, nil),
		Accounts:     accounts.NewService(st.Accounts(), st, nil, nil),
		Eliminations: elimination.NewService(st.Eliminations(), nil, nil),
		Records:      st.MasterData(),
		Lookup:       st,
	})
	if err != nil {
		tb.Fatalf("seed: %v", err)
	}
	return st
}

func BenchmarkReportCached(b *testing.B) {
	mr := miniredis.RunT(b)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b.Cleanup(func() { _ = client.Close() })

	svc := consol.NewService(seededStore(b), consol.NewCache(client, time.Minute), nil)
	ctx := context.Background()
	filters := consol.Filters{Period: seed.DemoPeriod}
	if _, err := svc.Report(ctx, filters); err != nil {
		b.Fatalf("warm: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Report(ctx, filters); err != nil {
			b.Fatal(err)
		}
	}
}

func TestReportBuildLatencyTarget(t *testing.T) {
	svc := consol.NewService(seededStore(t), nil, nil)
	ctx := context.Background()

	samples := make([]time.Duration, 0, 50)
	for i := 0; i < cap(samples); i++ {
		start := time.Now()
		if _, err := svc.Build(ctx, consol.Filters{Period: seed.DemoPeriod}); err != nil {
			t.Fatalf("build: %v", err)
		}
		samples = append(samples, time.Since(start))
	}
	if p95 := percentile95(samples); p95 > 250*time.Millisecond {
		t.Fatalf("report build latency regression: p95=%s", p95)
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	return sorted[index]
}
