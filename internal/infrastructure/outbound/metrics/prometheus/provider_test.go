package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetricsProvider(t *testing.T) {
	p := NewPrometheusMetricsProvider()

	before := testutil.ToFloat64(SessionOutcomesTotal.WithLabelValues("rollback_failed"))
	p.IncrementSessionOutcomes("rollback_failed")
	assert.Equal(t, before+1, testutil.ToFloat64(SessionOutcomesTotal.WithLabelValues("rollback_failed")))

	p.SetActiveConnections(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(ActiveConnections))

	p.SetServiceHealth(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(ServiceHealth))
	p.SetServiceHealth(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(ServiceHealth))
}
