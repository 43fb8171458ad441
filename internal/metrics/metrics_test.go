package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg)
	require.NoError(t, err)

	var rec Recorder = m
	rec.SnapshotFetch(OutcomeSuccess)
	rec.SnapshotFetch(OutcomeFailure)
	rec.SnapshotFetch(OutcomeSuccess)
	rec.ThemeOperation("apply", OutcomeSuccess)
	rec.StaleContent("registry")
	rec.SeedSkipped("theme_guard")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SnapshotFetchTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotFetchTotal.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ThemeOperationsTotal.WithLabelValues("apply", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleContentTotal.WithLabelValues("registry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeedSkippedTotal.WithLabelValues("theme_guard")))
}

func TestNewPrometheusRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}

func TestNoOpRecorder(t *testing.T) {
	rec := NoOp()
	rec.SnapshotFetch(OutcomeNoop)
	rec.ThemeOperation("reset", OutcomeFailure)
	rec.StaleContent("snapshot")
	rec.SeedSkipped("revision")
}
