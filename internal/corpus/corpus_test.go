package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"valid", Record{Label: "Times Square", Description: "busy plaza in New York"}, false},
		{"blank label", Record{Label: "  ", Description: "x"}, true},
		{"blank description", Record{Label: "Colosseum", Description: ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	src := []Entry{
		{Label: "a", Embedding: []float32{3, 4}},
		{Label: "b", Embedding: []float32{0, 0}},
		{Label: "a", Embedding: []float32{1, 0}},
	}
	c, err := New("model-x", src)
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Dimension())
	assert.Equal(t, 2, c.DistinctLabels())
	assert.Equal(t, "model-x", c.ModelVersion())
	assert.InDelta(t, 5.0, c.Norm(0), 1e-9)
	assert.Equal(t, 0.0, c.Norm(1))
	assert.Equal(t, "a", c.Label(2))

	// The corpus owns its vectors.
	src[0].Embedding[0] = 100
	assert.Equal(t, float32(3), c.Embedding(0)[0])
}

func TestNew_Errors(t *testing.T) {
	_, err := New("m", nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = New("m", []Entry{{Label: "a"}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = New("m", []Entry{
		{Label: "a", Embedding: []float32{1, 2}},
		{Label: "b", Embedding: []float32{1, 2, 3}},
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

type staticSource struct {
	records []Record
	err     error
}

func (s staticSource) Records(context.Context) ([]Record, error) {
	return s.records, s.err
}

// lengthEmbedder encodes a text as [len(text), 1].
type lengthEmbedder struct {
	calls atomic.Int32
	fail  int32
}

func (e *lengthEmbedder) EncodeBatch(_ context.Context, texts []string) ([][]float32, error) {
	n := e.calls.Add(1)
	if e.fail > 0 && n == e.fail {
		return nil, errors.New("onnx session closed")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (e *lengthEmbedder) ModelID() string { return "length-v1" }

func records(n int) []Record {
	out := make([]Record, n)
	desc := ""
	for i := range out {
		desc += "x"
		out[i] = Record{Label: "label", Description: desc}
	}
	return out
}

func TestLoad_PreservesOrderAcrossBatches(t *testing.T) {
	emb := &lengthEmbedder{}
	c, err := Load(context.Background(), staticSource{records: records(10)}, emb, LoadOptions{BatchSize: 3, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, int32(4), emb.calls.Load())
	require.Equal(t, 10, c.Len())
	for i := 0; i < 10; i++ {
		assert.Equal(t, float32(i+1), c.Embedding(i)[0])
	}
	assert.Equal(t, "length-v1", c.ModelVersion())
}

func TestLoad_FailsFast(t *testing.T) {
	t.Run("source error", func(t *testing.T) {
		_, err := Load(context.Background(), staticSource{err: errors.New("connection refused")}, &lengthEmbedder{}, LoadOptions{})
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Load(context.Background(), staticSource{}, &lengthEmbedder{}, LoadOptions{})
		assert.ErrorIs(t, err, ErrEmptyCorpus)
	})

	t.Run("invalid record", func(t *testing.T) {
		recs := records(3)
		recs[1].Label = ""
		_, err := Load(context.Background(), staticSource{records: recs}, &lengthEmbedder{}, LoadOptions{})
		assert.ErrorIs(t, err, ErrInvalidRecord)
		assert.ErrorContains(t, err, "record 1")
	})

	t.Run("encode error", func(t *testing.T) {
		_, err := Load(context.Background(), staticSource{records: records(10)}, &lengthEmbedder{fail: 2}, LoadOptions{BatchSize: 2, Workers: 1})
		assert.ErrorContains(t, err, "onnx session closed")
	})
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "corpus.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- correct_word: Times Square
  description: A busy intersection in Manhattan
- correct_word: Colosseum
  description: An ancient amphitheatre in Rome
`), 0o600))

	recs, err := NewFileSource(yamlPath).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Colosseum", recs[1].Label)

	jsonPath := filepath.Join(dir, "corpus.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"correct_word":"Western Wall","description":"Limestone wall in Jerusalem"}]`), 0o600))
	recs, err = NewFileSource(jsonPath).Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Record{{Label: "Western Wall", Description: "Limestone wall in Jerusalem"}}, recs)

	_, err = NewFileSource(filepath.Join(dir, "corpus.csv")).Records(context.Background())
	assert.Error(t, err)

	_, err = NewFileSource(filepath.Join(dir, "missing.yaml")).Records(context.Background())
	assert.Error(t, err)
}
