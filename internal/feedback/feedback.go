// Package feedback persists user corrections to predictions.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wordsense/internal/logging"
)

var (
	// ErrUnavailable indicates the backing store could not be reached.
	ErrUnavailable = errors.New("feedback store unavailable")
	// ErrWrite indicates the store was reached but the write failed.
	ErrWrite = errors.New("feedback write failed")
)

// Record is one feedback submission. It is immutable once stored.
type Record struct {
	Description string       `bson:"description" json:"description"`
	UserInput   string       `bson:"user_input" json:"user_input"`
	Predictions []Prediction `bson:"predictions" json:"predictions"`
	// VersionModel identifies the model that produced Predictions.
	VersionModel string `bson:"version_model" json:"version_model"`
	// CorrectPredictionIndex is -1 when the answer was not predicted.
	// The range is not validated.
	CorrectPredictionIndex int       `bson:"correct_prediction_index" json:"correct_prediction_index"`
	CreatedDate            time.Time `bson:"created_date" json:"created_date"`
}

// Store appends records to durable storage.
type Store interface {
	// Insert persists rec and returns the storage-assigned id. Connection
	// failures wrap ErrUnavailable.
	Insert(ctx context.Context, rec Record) (string, error)
	// Name identifies the backend, e.g. "mongodb" or "file".
	Name() string
}

// Recorder stamps and persists feedback records.
type Recorder struct {
	store  Store
	now    func() time.Time
	logger *logging.Logger
}

// NewRecorder returns a Recorder writing to store.
func NewRecorder(store Store, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// Backend returns the store name.
func (r *Recorder) Backend() string {
	return r.store.Name()
}

// Record sets CreatedDate to the current UTC time and appends rec.
func (r *Recorder) Record(ctx context.Context, rec Record) (string, error) {
	rec.CreatedDate = r.now().UTC()

	id, err := r.store.Insert(ctx, rec)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrWrite) {
			err = fmt.Errorf("%w: %w", ErrWrite, err)
		}
		r.logger.Error(ctx, "feedback not recorded",
			zap.String("backend", r.store.Name()),
			zap.Error(err),
		)
		return "", err
	}

	r.logger.Info(ctx, "feedback recorded",
		zap.String("backend", r.store.Name()),
		zap.String("id", id),
		zap.Int("correct_prediction_index", rec.CorrectPredictionIndex),
	)
	return id, nil
}
