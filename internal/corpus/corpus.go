// Package corpus holds the labeled reference embeddings that predictions are
// ranked against.
//
// A Corpus is built once at startup and never mutated, so it is safe for
// any number of concurrent readers without locking.
package corpus

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidRecord indicates a stored record is missing a label or description.
	ErrInvalidRecord = errors.New("invalid corpus record")
	// ErrEmptyCorpus indicates the source returned no records.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrDimensionMismatch indicates embeddings of differing or zero dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Record is the storage schema of a corpus document.
type Record struct {
	Label       string `bson:"correct_word" json:"correct_word" yaml:"correct_word"`
	Description string `bson:"description" json:"description" yaml:"description"`
}

// Validate rejects records with a blank label or description.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return fmt.Errorf("%w: correct_word is blank", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: description is blank for %q", ErrInvalidRecord, r.Label)
	}
	return nil
}

// Entry pairs a label with its precomputed embedding.
type Entry struct {
	Label     string
	Embedding []float32
}

// Corpus is an immutable, ordered table of entries sharing one embedding
// dimension.
type Corpus struct {
	entries      []Entry
	norms        []float64
	dimension    int
	modelVersion string
	labels       int
}

// New builds a Corpus from entries, copying them. Every embedding must have
// the same non-zero dimension.
func New(modelVersion string, entries []Entry) (*Corpus, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCorpus
	}

	dim := len(entries[0].Embedding)
	if dim == 0 {
		return nil, fmt.Errorf("%w: entry 0 has an empty embedding", ErrDimensionMismatch)
	}

	c := &Corpus{
		entries:      make([]Entry, len(entries)),
		norms:        make([]float64, len(entries)),
		dimension:    dim,
		modelVersion: modelVersion,
	}

	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if len(e.Embedding) != dim {
			return nil, fmt.Errorf("%w: entry %d has dimension %d, want %d", ErrDimensionMismatch, i, len(e.Embedding), dim)
		}
		vec := make([]float32, dim)
		copy(vec, e.Embedding)
		c.entries[i] = Entry{Label: e.Label, Embedding: vec}
		c.norms[i] = Norm(vec)
		seen[e.Label] = struct{}{}
	}
	c.labels = len(seen)

	return c, nil
}

// Len returns the number of entries.
func (c *Corpus) Len() int { return len(c.entries) }

// Dimension returns the shared embedding dimension.
func (c *Corpus) Dimension() int { return c.dimension }

// ModelVersion returns the identifier of the model that built the corpus.
func (c *Corpus) ModelVersion() string { return c.modelVersion }

// DistinctLabels returns the number of distinct labels.
func (c *Corpus) DistinctLabels() int { return c.labels }

// Label returns the label of entry i.
func (c *Corpus) Label(i int) string { return c.entries[i].Label }

// Embedding returns the embedding of entry i. Callers must not modify it.
func (c *Corpus) Embedding(i int) []float32 { return c.entries[i].Embedding }

// Norm returns the precomputed Euclidean norm of entry i.
func (c *Corpus) Norm(i int) float64 { return c.norms[i] }

// Norm computes the Euclidean norm of v in float64.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
