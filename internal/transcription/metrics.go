package transcription

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fyrsmithlabs/wordsense/internal/transcription"

// Metrics counts transcription outcomes.
type Metrics struct {
	outcomes metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates instruments on mp, or the global provider when nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	outcomes, err := meter.Int64Counter(
		"wordsense.transcription.outcomes",
		metric.WithDescription("Transcription requests by result"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"wordsense.transcription.duration",
		metric.WithDescription("Transcription latency including the recognizer call"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{outcomes: outcomes, duration: duration}, nil
}

func (m *Metrics) record(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("result", resultOf(err)))
	m.outcomes.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidAudio):
		return "invalid_audio"
	case errors.Is(err, ErrLowQuality):
		return "low_quality"
	case errors.Is(err, ErrRecognition):
		return "recognition_error"
	default:
		return "error"
	}
}
