package feedback

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/wordsense/internal/logging"
)

type memoryStore struct {
	records []Record
	err     error
}

func (m *memoryStore) Insert(_ context.Context, rec Record) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.records = append(m.records, rec)
	return "65f0c0ffee", nil
}

func (m *memoryStore) Name() string { return "memory" }

func sampleRecord() Record {
	return Record{
		Description:            "A place in New York where a lot of people are gathering",
		UserInput:              "Central Park",
		Predictions:            []Prediction{Ranked("Times Square", 1), Ranked("Colosseum", 2), Label("Western Wall")},
		VersionModel:           "sentence-transformers/all-MiniLM-L6-v2",
		CorrectPredictionIndex: -1,
	}
}

func TestRecorder_Record(t *testing.T) {
	store := &memoryStore{}
	tl := logging.NewTestLogger()
	r := NewRecorder(store, tl.Logger)
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.FixedZone("KST", 9*3600))
	r.now = func() time.Time { return fixed }

	id, err := r.Record(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee", id)
	assert.Equal(t, "memory", r.Backend())

	require.Len(t, store.records, 1)
	got := store.records[0]
	assert.Equal(t, -1, got.CorrectPredictionIndex)
	assert.Len(t, got.Predictions, 3)
	assert.Equal(t, time.UTC, got.CreatedDate.Location())
	assert.True(t, got.CreatedDate.Equal(fixed))

	tl.AssertLogged(t, zapcore.InfoLevel, "feedback recorded")
}

func TestRecorder_Errors(t *testing.T) {
	t.Run("unavailable kept", func(t *testing.T) {
		r := NewRecorder(&memoryStore{err: ErrUnavailable}, nil)
		_, err := r.Record(context.Background(), sampleRecord())
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.NotErrorIs(t, err, ErrWrite)
	})

	t.Run("other errors become write failures", func(t *testing.T) {
		r := NewRecorder(&memoryStore{err: errors.New("duplicate key")}, nil)
		_, err := r.Record(context.Background(), sampleRecord())
		assert.ErrorIs(t, err, ErrWrite)
	})
}

func TestPrediction_JSON(t *testing.T) {
	var preds []Prediction
	require.NoError(t, json.Unmarshal([]byte(`[{"text":"Times Square","rank":1}, "Colosseum"]`), &preds))
	assert.Equal(t, []Prediction{Ranked("Times Square", 1), Label("Colosseum")}, preds)

	out, err := json.Marshal(preds)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"text":"Times Square","rank":1},"Colosseum"]`, string(out))

	for _, bad := range []string{`[1]`, `[{"text":1,"rank":1}]`, `[{"text":"x"}]`, `[{"text":"x","rank":"1"}]`, `[null]`,
		`[{"text":null,"rank":1}]`, `[{"text":"x","rank":null}]`, `[{"text":"x","rank":1.5}]`} {
		var p []Prediction
		assert.ErrorIs(t, json.Unmarshal([]byte(bad), &p), ErrInvalidPrediction, bad)
	}
}

func TestPrediction_BSON(t *testing.T) {
	rec := sampleRecord()
	data, err := bson.Marshal(rec)
	require.NoError(t, err)

	raw := bson.Raw(data)
	preds := raw.Lookup("predictions").Array()
	values, err := preds.Values()
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, bson.TypeEmbeddedDocument, values[0].Type)
	assert.Equal(t, bson.TypeString, values[2].Type)
	assert.Equal(t, int32(-1), raw.Lookup("correct_prediction_index").Int32())

	var back Record
	require.NoError(t, bson.Unmarshal(data, &back))
	assert.Equal(t, rec.Predictions, back.Predictions)
	assert.Equal(t, rec.CorrectPredictionIndex, back.CorrectPredictionIndex)
}

func TestFileStore_Insert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "feedback.jsonl")
	store := NewFileStore(path)
	assert.Equal(t, "file", store.Name())

	id1, err := store.Insert(context.Background(), sampleRecord())
	require.NoError(t, err)
	id2, err := store.Insert(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, id1, lines[0]["_id"])
	assert.Equal(t, float64(-1), lines[0]["correct_prediction_index"])
	assert.Equal(t, "Western Wall", lines[0]["predictions"].([]any)[2])
}

func TestFileStore_Unavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	store := NewFileStore(filepath.Join(blocker, "feedback.jsonl"))
	_, err := store.Insert(context.Background(), sampleRecord())
	assert.ErrorIs(t, err, ErrUnavailable)
}
