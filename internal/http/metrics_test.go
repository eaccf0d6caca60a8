package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics_MetricsMiddleware(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	ts := setupTestServer(t, nil, WithMeterProvider(mp))

	ts.do(http.MethodPost, "/api/v1/predictions", `{"description":"tower"}`)
	ts.do(http.MethodPost, "/api/v1/predictions", `{"description":""}`)
	ts.do(http.MethodGet, "/health", "")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))

	found := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = m
		}
	}

	requests, ok := found["wordsense.http.requests_total"]
	require.True(t, ok, "requests counter not found")
	sum, ok := requests.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byStatus := map[int64]int64{}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
		status, _ := dp.Attributes.Value(attribute.Key("status"))
		byStatus[status.AsInt64()] += dp.Value
	}
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), byStatus[http.StatusOK])
	// The rejected request is counted with the status the client saw.
	assert.Equal(t, int64(1), byStatus[http.StatusBadRequest])

	duration, ok := found["wordsense.http.request_duration_seconds"]
	require.True(t, ok, "duration histogram not found")
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)

	_, ok = found["wordsense.http.response_size_bytes"]
	assert.True(t, ok, "response size histogram not found")

	active, ok := found["wordsense.http.active_requests"]
	require.True(t, ok, "active requests gauge not found")
	activeSum, ok := active.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range activeSum.DataPoints {
		assert.Equal(t, int64(0), dp.Value)
	}
}

func TestNewHTTPMetrics_CreatesInstruments(t *testing.T) {
	m := NewHTTPMetrics(metric.NewMeterProvider(), nil)

	assert.NotNil(t, m.requestsTotal)
	assert.NotNil(t, m.requestDur)
	assert.NotNil(t, m.responseSize)
	assert.NotNil(t, m.activeRequests)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unmatched"},
		{"/*", "unmatched"},
		{"/health", "/health"},
		{"/api/v1/predictions", "/api/v1/predictions"},
		{"/api/v1/predictions/feedback", "/api/v1/predictions/feedback"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizePath(tt.input), tt.input)
	}
}
