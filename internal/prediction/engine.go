// Package prediction ranks corpus labels by cosine similarity to a query.
package prediction

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wordsense/internal/corpus"
	"github.com/fyrsmithlabs/wordsense/internal/logging"
)

// DefaultTopK is the number of distinct labels returned when the caller
// does not ask for a specific count.
const DefaultTopK = 3

var (
	// ErrModelMismatch indicates the encoder is not the model that built
	// the corpus.
	ErrModelMismatch = errors.New("encoder model does not match corpus")
	// ErrDimensionMismatch indicates a query vector of the wrong dimension.
	ErrDimensionMismatch = errors.New("query embedding dimension mismatch")
	// ErrEncoding wraps embedding provider failures.
	ErrEncoding = errors.New("query encoding failed")
)

// Encoder embeds a single query text.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	ModelID() string
}

// Result is one ranked label.
type Result struct {
	Text string `json:"text"`
	Rank int    `json:"rank"`
}

// Engine answers nearest-neighbor label queries against a fixed corpus.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	corpus      *corpus.Corpus
	encoder     Encoder
	defaultTopK int
	metrics     *Metrics
	logger      *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultTopK sets the count used by PredictDefault.
func WithDefaultTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.defaultTopK = k
		}
	}
}

// WithMetrics records latency and result counts.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an engine over c. The encoder must report the same model id
// the corpus was built with.
func New(c *corpus.Corpus, enc Encoder, opts ...Option) (*Engine, error) {
	if c == nil || c.Len() == 0 {
		return nil, corpus.ErrEmptyCorpus
	}
	if enc.ModelID() != c.ModelVersion() {
		return nil, fmt.Errorf("%w: encoder %q, corpus %q", ErrModelMismatch, enc.ModelID(), c.ModelVersion())
	}

	e := &Engine{
		corpus:      c,
		encoder:     enc,
		defaultTopK: DefaultTopK,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ModelVersion returns the corpus model version tag.
func (e *Engine) ModelVersion() string { return e.corpus.ModelVersion() }

// CorpusSize returns the number of corpus entries.
func (e *Engine) CorpusSize() int { return e.corpus.Len() }

// PredictDefault calls Predict with the configured default top-k.
func (e *Engine) PredictDefault(ctx context.Context, query string) ([]Result, error) {
	return e.Predict(ctx, query, e.defaultTopK)
}

// Predict returns up to topK distinct labels ranked by descending cosine
// similarity to query. Equal similarities keep corpus order. A blank query
// or non-positive topK yields an empty, non-nil result.
func (e *Engine) Predict(ctx context.Context, query string, topK int) ([]Result, error) {
	if strings.TrimSpace(query) == "" || topK <= 0 {
		return []Result{}, nil
	}

	start := time.Now()
	q, err := e.encoder.Encode(ctx, query)
	if err != nil {
		e.metrics.record(ctx, time.Since(start), 0, err)
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	if len(q) != e.corpus.Dimension() {
		err := fmt.Errorf("%w: got %d, corpus has %d", ErrDimensionMismatch, len(q), e.corpus.Dimension())
		e.metrics.record(ctx, time.Since(start), 0, err)
		return nil, err
	}

	results := e.rank(q, topK)
	e.metrics.record(ctx, time.Since(start), len(results), nil)
	e.logger.Debug(ctx, "prediction ranked",
		zap.Int("query_length", len(query)),
		zap.Int("top_k", topK),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func (e *Engine) rank(q []float32, topK int) []Result {
	n := e.corpus.Len()
	qNorm := corpus.Norm(q)

	sims := make([]float64, n)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		sims[i] = cosine(q, qNorm, e.corpus.Embedding(i), e.corpus.Norm(i))
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(sims[b], sims[a])
	})

	results := make([]Result, 0, min(topK, e.corpus.DistinctLabels()))
	emitted := make(map[string]struct{}, topK)
	for _, idx := range order {
		label := e.corpus.Label(idx)
		if _, dup := emitted[label]; dup {
			continue
		}
		emitted[label] = struct{}{}
		results = append(results, Result{Text: label, Rank: len(results) + 1})
		if len(results) == topK {
			break
		}
	}
	return results
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either has zero norm or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	return cosine(a, corpus.Norm(a), b, corpus.Norm(b))
}

func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}
