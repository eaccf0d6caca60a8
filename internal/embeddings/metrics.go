package embeddings

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/wordsense/internal/embeddings"

// Metrics holds embedding-related instruments.
type Metrics struct {
	duration  metric.Float64Histogram
	batchSize metric.Int64Histogram
	errors    metric.Int64Counter
}

// NewMetrics creates embedding instruments on mp, or on the global provider
// when mp is nil. Instrument creation failures are logged and leave the
// instrument unset.
func NewMetrics(mp metric.MeterProvider, logger *zap.Logger) *Metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	meter := mp.Meter(instrumentationName)
	m := &Metrics{}

	var err error
	// Embedding generation duration by model and operation
	m.duration, err = meter.Float64Histogram(
		"wordsense.embedding.duration",
		metric.WithDescription("Duration of embedding generation by model and operation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	// Batch size histogram
	m.batchSize, err = meter.Int64Histogram(
		"wordsense.embedding.batch_size",
		metric.WithDescription("Number of texts per embedding request"),
		metric.WithUnit("{text}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 25, 50, 100, 250, 500),
	)
	if err != nil {
		logger.Warn("failed to create batch size histogram", zap.Error(err))
	}

	// Error count by model and operation
	m.errors, err = meter.Int64Counter(
		"wordsense.embedding.errors",
		metric.WithDescription("Embedding generation errors by model and operation"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		logger.Warn("failed to create errors counter", zap.Error(err))
	}

	return m
}

// RecordGeneration records one embedding call.
func (m *Metrics) RecordGeneration(ctx context.Context, model, operation string, duration time.Duration, batchSize int, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("operation", operation),
	)

	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds(), attrs)
	}
	if batchSize > 0 && m.batchSize != nil {
		m.batchSize.Record(ctx, int64(batchSize), attrs)
	}
	if err != nil && m.errors != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

// Instrumented wraps a Provider and records metrics for every call.
type Instrumented struct {
	Provider
	metrics *Metrics
}

// WithMetrics returns p wrapped with metrics recording.
func WithMetrics(p Provider, m *Metrics) *Instrumented {
	return &Instrumented{Provider: p, metrics: m}
}

// Encode records and delegates.
func (i *Instrumented) Encode(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	v, err := i.Provider.Encode(ctx, text)
	i.metrics.RecordGeneration(ctx, i.ModelID(), "encode", time.Since(start), 1, err)
	return v, err
}

// EncodeBatch records and delegates.
func (i *Instrumented) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	v, err := i.Provider.EncodeBatch(ctx, texts)
	i.metrics.RecordGeneration(ctx, i.ModelID(), "encode_batch", time.Since(start), len(texts), err)
	return v, err
}
