package nocopyring

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithMetricsExportsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New[byte](8, WithMetrics(reg, "staging"))
	require.NoError(t, err)

	_, err = r.Reserve(6)
	require.NoError(t, err)
	require.NoError(t, r.Commit(6))
	_, err = r.Reserve(3)
	require.Error(t, err)

	expected := `
# HELP nocopyring_ring_committed_elements Elements committed and not yet consumed
# TYPE nocopyring_ring_committed_elements gauge
nocopyring_ring_committed_elements{ring="staging"} 6
# HELP nocopyring_ring_rejections_total Total number of rejected ring operations by reason
# TYPE nocopyring_ring_rejections_total counter
nocopyring_ring_rejections_total{op="reserve",reason="insufficient_reservable",ring="staging"} 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"nocopyring_ring_committed_elements", "nocopyring_ring_rejections_total")
	require.NoError(t, err)
}

func TestWithMetricsDuplicateNameFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New[byte](8, WithMetrics(reg, "dup"))
	require.NoError(t, err)

	_, err = New[byte](8, WithMetrics(reg, "dup"))
	assert.Error(t, err)
}

func TestWithMetricsIgnoresNilRegistry(t *testing.T) {
	r, err := New[byte](8, WithMetrics(nil, "x"))
	require.NoError(t, err)
	assert.Nil(t, r.exporter)
}
