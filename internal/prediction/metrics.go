package prediction

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fyrsmithlabs/wordsense/internal/prediction"

// Metrics records prediction latency and result counts.
type Metrics struct {
	duration metric.Float64Histogram
	results  metric.Int64Histogram
	requests metric.Int64Counter
}

// NewMetrics creates prediction instruments on mp, or on the global
// provider when mp is nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(
		"wordsense.prediction.duration",
		metric.WithDescription("Prediction latency including query encoding"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	results, err := meter.Int64Histogram(
		"wordsense.prediction.results",
		metric.WithDescription("Number of labels returned per prediction"),
		metric.WithUnit("{label}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 5, 10),
	)
	if err != nil {
		return nil, err
	}
	requests, err := meter.Int64Counter(
		"wordsense.prediction.requests",
		metric.WithDescription("Predictions served by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{duration: duration, results: results, requests: requests}, nil
}

func (m *Metrics) record(ctx context.Context, d time.Duration, n int, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.duration.Record(ctx, d.Seconds(), attrs)
	m.requests.Add(ctx, 1, attrs)
	if err == nil {
		m.results.Record(ctx, int64(n))
	}
}
