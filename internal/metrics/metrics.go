package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	KindDefault            = "default"
	KindBoundProposer      = "proposer_bound"
	KindStandaloneProposer = "proposer"
)

// Metrics collects per-run counters on a private registry. A seed run is a
// batch job, so the registry is written to a node-exporter textfile at the
// end instead of being scraped.
type Metrics struct {
	registry *prometheus.Registry

	RowsInserted *prometheus.CounterVec
	RunDuration  prometheus.Gauge
	LastSuccess  prometheus.Gauge
	LastFailure  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RowsInserted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "execseed_rows_inserted_total",
				Help: "Rows issued to the execution configs table in the current run",
			},
			[]string{"kind"},
		),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "execseed_run_duration_seconds",
			Help: "Wall time of the last seed run",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "execseed_last_success_timestamp_seconds",
			Help: "Unix time of the last committed seed run",
		}),
		LastFailure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "execseed_last_failure_timestamp_seconds",
			Help: "Unix time of the last rolled back seed run",
		}),
	}
	m.registry.MustRegister(m.RowsInserted, m.RunDuration, m.LastSuccess, m.LastFailure)
	return m
}

func (m *Metrics) IncRow(kind string) {
	m.RowsInserted.WithLabelValues(kind).Inc()
}

func (m *Metrics) Finish(d time.Duration, err error) {
	m.RunDuration.Set(d.Seconds())
	if err != nil {
		m.LastFailure.SetToCurrentTime()
		return
	}
	m.LastSuccess.SetToCurrentTime()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
