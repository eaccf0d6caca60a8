package services

import (
	"context"

	"github.com/fyrsmithlabs/wordsense/internal/feedback"
	"github.com/fyrsmithlabs/wordsense/internal/prediction"
	"github.com/fyrsmithlabs/wordsense/internal/transcription"
)

// Predictor ranks corpus labels for a description.
type Predictor interface {
	PredictDefault(ctx context.Context, query string) ([]prediction.Result, error)
	ModelVersion() string
	CorpusSize() int
}

// FeedbackRecorder persists feedback records.
type FeedbackRecorder interface {
	Record(ctx context.Context, rec feedback.Record) (string, error)
	Backend() string
}

// Transcriber converts base64 WAV audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, encoded string) (transcription.Outcome, error)
}

// Pinger is a dependency probed by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Registry provides access to all wordsense services.
type Registry interface {
	Predictor() Predictor
	Feedback() FeedbackRecorder
	Transcriber() Transcriber
	// Dependencies returns the named dependencies probed for readiness.
	Dependencies() map[string]Pinger
}

// Options configures the registry with service instances.
type Options struct {
	Predictor    Predictor
	Feedback     FeedbackRecorder
	Transcriber  Transcriber
	Dependencies map[string]Pinger
}

type registry struct {
	predictor    Predictor
	feedback     FeedbackRecorder
	transcriber  Transcriber
	dependencies map[string]Pinger
}

// NewRegistry creates a new service registry.
func NewRegistry(opts Options) Registry {
	deps := make(map[string]Pinger, len(opts.Dependencies))
	for name, p := range opts.Dependencies {
		if p != nil {
			deps[name] = p
		}
	}
	return &registry{
		predictor:    opts.Predictor,
		feedback:     opts.Feedback,
		transcriber:  opts.Transcriber,
		dependencies: deps,
	}
}

func (r *registry) Predictor() Predictor            { return r.predictor }
func (r *registry) Feedback() FeedbackRecorder      { return r.feedback }
func (r *registry) Transcriber() Transcriber        { return r.transcriber }
func (r *registry) Dependencies() map[string]Pinger { return r.dependencies }

var (
	_ Predictor        = (*prediction.Engine)(nil)
	_ FeedbackRecorder = (*feedback.Recorder)(nil)
	_ Transcriber      = (*transcription.Service)(nil)
)
