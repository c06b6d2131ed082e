// SPDX-License-Identifier: MIT
package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func TestRecordJobTransition(t *testing.T) {
	before := counterValue(t, jobTransitions.WithLabelValues("completed"))
	RecordJobTransition("completed")
	RecordJobTransition("completed")
	after := counterValue(t, jobTransitions.WithLabelValues("completed"))
	assert.Equal(t, before+2, after)
}

func TestRecordModelBuildSetsSizes(t *testing.T) {
	RecordModelBuild("success", 128, 52, 1)
	assert.Equal(t, 128.0, gaugeValue(t, modelSize.WithLabelValues("nodes")))
	assert.Equal(t, 52.0, gaugeValue(t, modelSize.WithLabelValues("beams")))
	assert.Equal(t, 1.0, gaugeValue(t, modelSize.WithLabelValues("planes")))

	// A failed build must not clobber the last known sizes.
	RecordModelBuild("invalid", 0, 0, 0)
	assert.Equal(t, 128.0, gaugeValue(t, modelSize.WithLabelValues("nodes")))
}

func TestRecordArtifactWrite(t *testing.T) {
	before := counterValue(t, artifactBytes.WithLabelValues(".pdf"))
	RecordArtifactWrite(".pdf", 2048)
	RecordArtifactWrite(".pdf", 1024)
	assert.Equal(t, before+3072, counterValue(t, artifactBytes.WithLabelValues(".pdf")))
}

func TestCacheCounters(t *testing.T) {
	hits := counterValue(t, cacheOps.WithLabelValues("hit"))
	misses := counterValue(t, cacheOps.WithLabelValues("miss"))
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheMiss()
	assert.Equal(t, hits+1, counterValue(t, cacheOps.WithLabelValues("hit")))
	assert.Equal(t, misses+2, counterValue(t, cacheOps.WithLabelValues("miss")))
}

func TestHTTPMiddlewareCountsByStatusClass(t *testing.T) {
	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	m := &dto.Metric{}
	hist, err := httpDuration.GetMetricWithLabelValues(http.MethodGet, "4xx")
	require.NoError(t, err)
	require.NoError(t, hist.(prometheus.Histogram).Write(m))
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))

	// In-flight gauge returns to its resting value once the handler is done.
	assert.Equal(t, 0.0, gaugeValue(t, httpInFlight))
}
