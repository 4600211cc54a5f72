// Package jobmetrics instruments background jobs.
package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the job collectors.
type Metrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	groups      *prometheus.CounterVec
	warnings    *prometheus.CounterVec
	now         func() time.Time
}

var defaultMetrics = sync.OnceValue(func() *Metrics {
	return buildMetrics(prometheus.DefaultRegisterer)
})

// NewMetrics registers the collectors on registerer, or returns the shared
// default-registry instance when registerer is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		return defaultMetrics()
	}
	return buildMetrics(registerer)
}

// Run times one job execution.
type Run struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track starts timing job.
func (m *Metrics) Track(job string) *Run {
	if m == nil {
		return &Run{job: job}
	}
	return &Run{metrics: m, job: job, start: m.now()}
}

// End records the outcome and returns err unchanged, so it can be deferred
// over a named result.
func (r *Run) End(err error) error {
	if r == nil || r.metrics == nil {
		return err
	}
	m := r.metrics
	end := m.now()
	m.duration.WithLabelValues(r.job).Observe(end.Sub(r.start).Seconds())
	if err != nil {
		m.runs.WithLabelValues(r.job, "failure").Inc()
		return err
	}
	m.runs.WithLabelValues(r.job, "success").Inc()
	m.lastSuccess.WithLabelValues(r.job).Set(float64(end.Unix()))
	return nil
}

// ObserveRefresh counts the groups a consolidated report refresh warmed or
// failed on, and the report warnings it saw for period.
func (m *Metrics) ObserveRefresh(period string, refreshed, failed, warnings int) {
	if m == nil {
		return
	}
	m.groups.WithLabelValues("refreshed").Add(float64(refreshed))
	m.groups.WithLabelValues("failed").Add(float64(failed))
	if warnings > 0 {
		m.warnings.WithLabelValues(period).Add(float64(warnings))
	}
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_jobs_total",
			Help: "Job executions by job name and status.",
		}, []string{"job", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "odyssey_job_duration_seconds",
			Help:    "Job execution time.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "odyssey_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}, []string{"job"}),
		groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_consol_refresh_groups_total",
			Help: "Consolidation groups processed by report refreshes, by outcome.",
		}, []string{"status"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_consol_warnings_total",
			Help: "Consolidation warnings raised while refreshing reports, by period.",
		}, []string{"period"}),
		now: time.Now,
	}
	registerer.MustRegister(m.runs, m.duration, m.lastSuccess, m.groups, m.warnings)
	return m
}
