package consol

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheMetricsMu   sync.Mutex
	cacheMetricsDone bool
	cacheMetricsErr  error

	cacheHitCounter    *prometheus.CounterVec
	cacheMissCounter   *prometheus.CounterVec
	reportBuildSeconds *prometheus.HistogramVec
)

// SetupCacheMetrics registers report cache metrics once; later calls return
// the first outcome.
func SetupCacheMetrics(reg prometheus.Registerer) error {
	cacheMetricsMu.Lock()
	defer cacheMetricsMu.Unlock()
	if cacheMetricsDone {
		return cacheMetricsErr
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_consol_cache_hits_total",
		Help: "Number of consolidated report cache hits.",
	}, []string{"scope"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_consol_cache_miss_total",
		Help: "Number of consolidated report cache misses.",
	}, []string{"scope"})
	build := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_consol_report_build_duration_seconds",
		Help:    "Duration required to build a consolidated report.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})

	cacheMetricsDone = true
	hits, cacheMetricsErr = registerCounter(reg, hits)
	if cacheMetricsErr != nil {
		return cacheMetricsErr
	}
	misses, cacheMetricsErr = registerCounter(reg, misses)
	if cacheMetricsErr != nil {
		return cacheMetricsErr
	}
	if err := reg.Register(build); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			cacheMetricsErr = err
			return err
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			cacheMetricsErr = fmt.Errorf("consol metrics: unexpected collector type %T", already.ExistingCollector)
			return cacheMetricsErr
		}
		build = existing
	}
	cacheHitCounter, cacheMissCounter, reportBuildSeconds = hits, misses, build
	return nil
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("consol metrics: unexpected collector type %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return c, nil
}

func recordCacheResult(scope Scope, hit bool) {
	counter := cacheMissCounter
	if hit {
		counter = cacheHitCounter
	}
	if counter == nil {
		return
	}
	counter.WithLabelValues(string(scope)).Inc()
}

func observeBuildDuration(scope Scope, d time.Duration) {
	if reportBuildSeconds == nil {
		return
	}
	reportBuildSeconds.WithLabelValues(string(scope)).Observe(d.Seconds())
}
