package mongodb

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/wordsense/internal/corpus"
	"github.com/fyrsmithlabs/wordsense/internal/feedback"
)

// CorpusSource reads corpus records from a collection.
type CorpusSource struct {
	client     *Client
	collection string
	filter     any
}

// NewCorpusSource returns a source reading every document of collection.
func NewCorpusSource(c *Client, collection string) *CorpusSource {
	return &CorpusSource{client: c, collection: collection}
}

// WithFilter restricts the documents read.
func (s *CorpusSource) WithFilter(filter any) *CorpusSource {
	s.filter = filter
	return s
}

// Records implements corpus.Source.
func (s *CorpusSource) Records(ctx context.Context) ([]corpus.Record, error) {
	var records []corpus.Record
	if err := s.client.Find(ctx, s.collection, s.filter, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FeedbackStore appends feedback records to a collection.
type FeedbackStore struct {
	client     *Client
	collection string
}

// NewFeedbackStore returns a store writing to collection.
func NewFeedbackStore(c *Client, collection string) *FeedbackStore {
	return &FeedbackStore{client: c, collection: collection}
}

// Name implements feedback.Store.
func (s *FeedbackStore) Name() string { return "mongodb" }

// Insert implements feedback.Store.
func (s *FeedbackStore) Insert(ctx context.Context, rec feedback.Record) (string, error) {
	id, err := s.client.InsertOne(ctx, s.collection, rec)
	if err != nil {
		if IsUnavailable(err) {
			return "", fmt.Errorf("%w: %w", feedback.ErrUnavailable, err)
		}
		return "", fmt.Errorf("%w: %w", feedback.ErrWrite, err)
	}
	return id, nil
}
