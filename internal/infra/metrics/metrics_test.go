//go:build !integration

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestGenerationCounters(t *testing.T) {
	attempts := generationAttemptsTotal.WithLabelValues("parse_failed")
	before := counterValue(t, attempts)
	IncGenerationAttempt(" Parse_Failed ")
	assert.Equal(t, before+1, counterValue(t, attempts))

	dropped := counterValue(t, generationPartialDaysDropped)
	AddPartialDaysDropped(0)
	AddPartialDaysDropped(2)
	assert.Equal(t, dropped+2, counterValue(t, generationPartialDaysDropped))
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		MustRegister()
		MustRegister()
	})
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestRuntimeGauges(t *testing.T) {
	SetBuildInfo("v1.2.3", "abc")
	SetBuildInfo("v1.2.4", "def")
	ch := make(chan prometheus.Metric, 4)
	buildInfo.Collect(ch)
	close(ch)
	assert.Len(t, ch, 1)

	SetDBPoolStats(PoolStats{Total: 4, Idle: 1, Acquired: 3, Max: 10, Acquires: 42, Canceled: 2})
	assert.Equal(t, 3.0, gaugeValue(t, dbPoolConns.WithLabelValues("acquired")))
	assert.Equal(t, 10.0, gaugeValue(t, dbPoolConns.WithLabelValues("max")))
	assert.Equal(t, 42.0, gaugeValue(t, dbPoolAcquires.WithLabelValues("total")))
	assert.Equal(t, 0.0, gaugeValue(t, dbPoolAcquires.WithLabelValues("empty")))
}
