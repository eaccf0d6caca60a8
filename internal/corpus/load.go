package corpus

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/wordsense/internal/logging"
)

// Source yields the raw corpus records.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// Embedder encodes descriptions in batches.
type Embedder interface {
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelID() string
}

// LoadOptions tunes corpus encoding.
type LoadOptions struct {
	// BatchSize is the number of descriptions per encode call. Defaults to 64.
	BatchSize int
	// Workers bounds concurrent encode calls. Defaults to 4.
	Workers int
	Logger  *logging.Logger
}

func (o *LoadOptions) applyDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 64
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
}

// Load fetches every record from src, validates it, encodes its description
// with emb and assembles the Corpus. Any failure aborts the load; a partial
// corpus is never returned.
func Load(ctx context.Context, src Source, emb Embedder, opts LoadOptions) (*Corpus, error) {
	opts.applyDefaults()
	start := time.Now()

	records, err := src.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching corpus records: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyCorpus
	}

	descriptions := make([]string, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		descriptions[i] = r.Description
	}

	vectors := make([][]float32, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for lo := 0; lo < len(descriptions); lo += opts.BatchSize {
		hi := min(lo+opts.BatchSize, len(descriptions))
		g.Go(func() error {
			batch, err := emb.EncodeBatch(gctx, descriptions[lo:hi])
			if err != nil {
				return fmt.Errorf("encoding records %d-%d: %w", lo, hi-1, err)
			}
			if len(batch) != hi-lo {
				return fmt.Errorf("encoding records %d-%d: got %d embeddings", lo, hi-1, len(batch))
			}
			copy(vectors[lo:hi], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, len(records))
	for i, r := range records {
		entries[i] = Entry{Label: r.Label, Embedding: vectors[i]}
	}

	c, err := New(emb.ModelID(), entries)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info(ctx, "corpus loaded",
		zap.Int("entries", c.Len()),
		zap.Int("labels", c.DistinctLabels()),
		zap.Int("dimension", c.Dimension()),
		zap.String("model", c.ModelVersion()),
		zap.Duration("duration", time.Since(start)),
	)
	return c, nil
}
