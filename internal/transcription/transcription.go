// Package transcription validates audio payloads and turns them into text
// through an external speech recognizer.
package transcription

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wordsense/internal/logging"
)

// DefaultConfidenceThreshold is the minimum confidence accepted for the top
// alternative.
const DefaultConfidenceThreshold = 0.5

var (
	// ErrInvalidAudio indicates a payload that is not base64 WAV (RIFF) data.
	ErrInvalidAudio = errors.New("invalid audio payload")
	// ErrLowQuality indicates no usable result or a confidence below threshold.
	ErrLowQuality = errors.New("audio quality too low")
	// ErrRecognition indicates the recognizer call failed.
	ErrRecognition = errors.New("speech recognition failed")
)

var riffSignature = []byte("RIFF")

// Alternative is one candidate transcript.
type Alternative struct {
	Transcript string
	Confidence float32
}

// Result groups the ranked alternatives for one utterance.
type Result struct {
	Alternatives []Alternative
}

// Recognizer converts raw audio bytes to recognition results.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte) ([]Result, error)
}

// Outcome is a successful transcription.
type Outcome struct {
	Transcript string
	Confidence float32
}

// IsAudioContentValid reports whether encoded is padded standard base64
// whose decoded bytes begin with the RIFF signature. Line breaks and
// non-zero trailing bits are tolerated.
func IsAudioContentValid(encoded string) bool {
	_, ok := decodeAudio(encoded)
	return ok
}

func decodeAudio(encoded string) ([]byte, bool) {
	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	return audio, bytes.HasPrefix(audio, riffSignature)
}

// Service runs the validate, decode, recognize, evaluate pipeline once per
// request, without retries.
type Service struct {
	recognizer Recognizer
	threshold  float32
	metrics    *Metrics
	logger     *logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithThreshold overrides DefaultConfidenceThreshold.
func WithThreshold(t float64) Option {
	return func(s *Service) { s.threshold = float32(t) }
}

// WithMetrics records outcomes.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a Service using r.
func NewService(r Recognizer, opts ...Option) *Service {
	s := &Service{
		recognizer: r,
		threshold:  DefaultConfidenceThreshold,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transcribe returns the top transcript of the base64 WAV payload encoded.
func (s *Service) Transcribe(ctx context.Context, encoded string) (Outcome, error) {
	start := time.Now()
	out, err := s.transcribe(ctx, encoded)
	s.metrics.record(ctx, time.Since(start), err)
	return out, err
}

func (s *Service) transcribe(ctx context.Context, encoded string) (Outcome, error) {
	audio, ok := decodeAudio(encoded)
	if !ok {
		return Outcome{}, ErrInvalidAudio
	}

	results, err := s.recognizer.Recognize(ctx, audio)
	if err != nil {
		s.logger.Error(ctx, "speech recognition failed",
			zap.Int("audio_bytes", len(audio)),
			zap.Error(err),
		)
		return Outcome{}, fmt.Errorf("%w: %w", ErrRecognition, err)
	}

	if len(results) == 0 || len(results[0].Alternatives) == 0 {
		return Outcome{}, fmt.Errorf("%w: no results", ErrLowQuality)
	}

	top := results[0].Alternatives[0]
	if top.Confidence < s.threshold {
		s.logger.Debug(ctx, "transcript below confidence threshold",
			zap.Float32("confidence", top.Confidence),
			zap.Float32("threshold", s.threshold),
		)
		return Outcome{}, fmt.Errorf("%w: confidence %.2f", ErrLowQuality, top.Confidence)
	}

	return Outcome{Transcript: top.Transcript, Confidence: top.Confidence}, nil
}
