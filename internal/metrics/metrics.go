package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives engine events worth counting.
type Recorder interface {
	SnapshotFetch(outcome string)
	ThemeOperation(mode, outcome string)
	StaleContent(layer string)
	SeedSkipped(reason string)
}

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNoop    = "noop"
)

// NoOp returns a Recorder that drops every event.
func NoOp() Recorder {
	return noopRecorder{}
}

type noopRecorder struct{}

func (noopRecorder) SnapshotFetch(string)          {}
func (noopRecorder) ThemeOperation(string, string) {}
func (noopRecorder) StaleContent(string)           {}
func (noopRecorder) SeedSkipped(string)            {}

// Prometheus holds the engine collectors.
type Prometheus struct {
	SnapshotFetchTotal   *prometheus.CounterVec
	ThemeOperationsTotal *prometheus.CounterVec
	StaleContentTotal    *prometheus.CounterVec
	SeedSkippedTotal     *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg. A nil
// registerer leaves the collectors unregistered.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	m := &Prometheus{
		SnapshotFetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livesite",
			Name:      "snapshot_fetch_total",
			Help:      "Tenant snapshot fetch attempts by outcome",
		}, []string{"outcome"}),
		ThemeOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livesite",
			Name:      "theme_operations_total",
			Help:      "Theme apply and reset operations by mode and outcome",
		}, []string{"mode", "outcome"}),
		StaleContentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livesite",
			Name:      "resolution_stale_total",
			Help:      "Component content discarded as stale during resolution, by layer",
		}, []string{"layer"}),
		SeedSkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livesite",
			Name:      "registry_seed_skipped_total",
			Help:      "Pages left untouched while seeding the registry from a snapshot, by reason",
		}, []string{"reason"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, collector := range []prometheus.Collector{
		m.SnapshotFetchTotal,
		m.ThemeOperationsTotal,
		m.StaleContentTotal,
		m.SeedSkippedTotal,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) SnapshotFetch(outcome string) {
	m.SnapshotFetchTotal.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) ThemeOperation(mode, outcome string) {
	m.ThemeOperationsTotal.WithLabelValues(mode, outcome).Inc()
}

func (m *Prometheus) StaleContent(layer string) {
	m.StaleContentTotal.WithLabelValues(layer).Inc()
}

func (m *Prometheus) SeedSkipped(reason string) {
	m.SeedSkippedTotal.WithLabelValues(reason).Inc()
}
