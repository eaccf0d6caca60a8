package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/wordsense/internal/feedback"
	"github.com/fyrsmithlabs/wordsense/internal/logging"
	"github.com/fyrsmithlabs/wordsense/internal/prediction"
	"github.com/fyrsmithlabs/wordsense/internal/services"
	"github.com/fyrsmithlabs/wordsense/internal/telemetry"
	"github.com/fyrsmithlabs/wordsense/internal/transcription"
	v1 "github.com/fyrsmithlabs/wordsense/pkg/api/v1"
)

type fakePredictor struct {
	results []prediction.Result
	err     error
	query   string
}

func (f *fakePredictor) PredictDefault(_ context.Context, q string) ([]prediction.Result, error) {
	f.query = q
	return f.results, f.err
}
func (f *fakePredictor) ModelVersion() string { return "all-MiniLM-L6-v2" }
func (f *fakePredictor) CorpusSize() int      { return 42 }

type fakeRecorder struct {
	backend string
	id      string
	err     error
	got     *feedback.Record
}

func (f *fakeRecorder) Record(_ context.Context, rec feedback.Record) (string, error) {
	f.got = &rec
	return f.id, f.err
}
func (f *fakeRecorder) Backend() string { return f.backend }

type fakeTranscriber struct {
	out transcription.Outcome
	err error
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (transcription.Outcome, error) {
	return f.out, f.err
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	*Server
	predictor   *fakePredictor
	recorder    *fakeRecorder
	transcriber *fakeTranscriber
	logs        *logging.TestLogger
}

func setupTestServer(t *testing.T, deps map[string]services.Pinger, opts ...Option) *testServer {
	t.Helper()
	ts := &testServer{
		predictor: &fakePredictor{results: []prediction.Result{
			{Text: "Tokyo Skytree", Rank: 1},
			{Text: "Colosseum", Rank: 2},
		}},
		recorder:    &fakeRecorder{backend: "mongodb", id: "65f1c0ffee0000000000beef"},
		transcriber: &fakeTranscriber{out: transcription.Outcome{Transcript: "hello world", Confidence: 0.93}},
		logs:        logging.NewTestLogger(),
	}
	registry := services.NewRegistry(services.Options{
		Predictor:    ts.predictor,
		Feedback:     ts.recorder,
		Transcriber:  ts.transcriber,
		Dependencies: deps,
	})
	server, err := NewServer(registry, ts.logs.Logger, nil, opts...)
	require.NoError(t, err)
	ts.Server = server
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) v1.ErrorResponse {
	t.Helper()
	var resp v1.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, v1.StatusError, resp.Status)
	assert.Equal(t, rec.Code, resp.Code)
	assert.Equal(t, http.StatusText(rec.Code), resp.Message)
	return resp
}

func TestNewServer(t *testing.T) {
	registry := services.NewRegistry(services.Options{
		Predictor:   &fakePredictor{},
		Feedback:    &fakeRecorder{},
		Transcriber: &fakeTranscriber{},
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(registry, logging.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost:8000", server.Addr())
		assert.Equal(t, "v1", server.config.APIVersion)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(registry, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when registry is nil", func(t *testing.T) {
		_, err := NewServer(nil, logging.NewNop(), nil)
		require.Error(t, err)
	})

	t.Run("returns error when a service is missing", func(t *testing.T) {
		_, err := NewServer(services.NewRegistry(services.Options{Predictor: &fakePredictor{}}), logging.NewNop(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing a service")
	})

	t.Run("rejects invalid body limit", func(t *testing.T) {
		_, err := NewServer(registry, logging.NewNop(), &Config{Host: "localhost", Port: 8000, BodyLimit: "lots"})
		require.Error(t, err)
	})

	t.Run("rejects negative rate limit", func(t *testing.T) {
		_, err := NewServer(registry, logging.NewNop(), &Config{Port: 8000, RateLimit: -1})
		require.Error(t, err)
	})
}

func TestHandlePredict(t *testing.T) {
	t.Run("returns ranked predictions", func(t *testing.T) {
		ts := setupTestServer(t, nil)

		rec := ts.do(http.MethodPost, "/api/v1/predictions", `{"description":"tall tower in Tokyo"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			v1.Response
			Data v1.PredictionData `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, v1.StatusSuccess, resp.Status)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "OK", resp.Message)
		assert.Equal(t, []v1.Prediction{
			{Text: "Tokyo Skytree", Rank: 1},
			{Text: "Colosseum", Rank: 2},
		}, resp.Data.Predictions)
		assert.Equal(t, "tall tower in Tokyo", ts.predictor.query)
	})

	t.Run("returns an empty list rather than null", func(t *testing.T) {
		ts := setupTestServer(t, nil)
		ts.predictor.results = nil

		rec := ts.do(http.MethodPost, "/api/v1/predictions", `{"description":"anything"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"predictions":[]`)
	})

	t.Run("rejects blank description", func(t *testing.T) {
		ts := setupTestServer(t, nil)

		rec := ts.do(http.MethodPost, "/api/v1/predictions", `{"description":"   "}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, v1.AttrDescription, resp.Details.Attribute)
		assert.Equal(t, reasonEmptyDescription, resp.Details.Reason)
	})

	t.Run("maps engine failure to model error", func(t *testing.T) {
		ts := setupTestServer(t, nil)
		ts.predictor.err = fmt.Errorf("%w: connection refused", prediction.ErrEncoding)

		rec := ts.do(http.MethodPost, "/api/v1/predictions", `{"description":"tower"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, v1.AttrModel, resp.Details.Attribute)
		assert.Equal(t, reasonModel, resp.Details.Reason)
		assert.NotContains(t, rec.Body.String(), "connection refused")
		ts.logs.AssertLogged(t, zapcore.ErrorLevel, "request failed")
	})

	t.Run("reports missing field", func(t *testing.T) {
		ts := setupTestServer(t, nil)

		rec := ts.do(http.MethodPost, "/api/v1/predictions", `{"text":"tower"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, "description", resp.Details.Attribute)
		assert.Equal(t, "The required field `description` is missing. Please check your request.", resp.Details.Reason)
	})

	t.Run("uses configured api version", func(t *testing.T) {
		registry := services.NewRegistry(services.Options{
			Predictor:   &fakePredictor{},
			Feedback:    &fakeRecorder{},
			Transcriber: &fakeTranscriber{},
		})
		server, err := NewServer(registry, logging.NewNop(), &Config{Port: 8000, APIVersion: "v2"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v2/predictions", strings.NewReader(`{"description":"x"}`))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		req = httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(`{"description":"x"}`))
		rec = httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

const validFeedback = `{
	"description": "tall tower in Tokyo",
	"user_input": "Tokyo Skytree",
	"predictions": [{"text": "Tokyo Skytree", "rank": 1}, "Colosseum"],
	"version_model": "all-MiniLM-L6-v2",
	"correct_prediction_index": 0
}`

func TestHandleFeedback(t *testing.T) {
	t.Run("stores feedback and returns id", func(t *testing.T) {
		ts := setupTestServer(t, nil)

		rec := ts.do(http.MethodPost, "/api/v1/predictions/feedback", validFeedback)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			v1.Response
			Data v1.FeedbackData `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Created", resp.Message)
		assert.Equal(t, "65f1c0ffee0000000000beef", resp.Data.ID)

		got := ts.recorder.got
		require.NotNil(t, got)
		assert.Equal(t, "Tokyo Skytree", got.UserInput)
		assert.Equal(t, []feedback.Prediction{
			feedback.Ranked("Tokyo Skytree", 1),
			feedback.Label("Colosseum"),
		}, got.Predictions)
		assert.Equal(t, 0, got.CorrectPredictionIndex)
	})

	t.Run("accepts not-predicted index", func(t *testing.T) {
		ts := setupTestServer(t, nil)
		body := strings.Replace(validFeedback, `"correct_prediction_index": 0`, `"correct_prediction_index": -1`, 1)

		rec := ts.do(http.MethodPost, "/api/v1/predictions/feedback", body)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, -1, ts.recorder.got.CorrectPredictionIndex)
	})

	t.Run("rejects malformed prediction items", func(t *testing.T) {
		ts := setupTestServer(t, nil)
		body := strings.Replace(validFeedback, `"Colosseum"`, `42`, 1)

		rec := ts.do(http.MethodPost, "/api/v1/predictions/feedback", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, v1.AttrFeedback, resp.Details.Attribute)
		assert.Equal(t, reasonFeedbackFormat, resp.Details.Reason)
		assert.Nil(t, ts.recorder.got)
	})

	t.Run("rejects null prediction text", func(t *testing.T) {
		ts := setupTestServer(t, nil)
		body := strings.Replace(validFeedback, `{"text": "Tokyo Skytree", "rank": 1}`, `{"text": null, "rank": 1}`, 1)

		rec := ts.do(http.MethodPost, "/api/v1/predictions/feedback", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, v1.AttrFeedback, resp.Details.Attribute)
		assert.Nil(t, ts.recorder.got)
	})

	t.Run("rejects wrong field type", func(t *testing.T) {
		ts := setupTestServer(t, nil)
		body := strings.Replace(validFeedback, `"correct_prediction_index": 0`, `"correct_prediction_index": "0"`, 1)

		rec := ts.do(http.MethodPost, "/api/v1/predictions/feedback", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, "correct_prediction_index", resp.Details.Attribute)
		assert.Equal(t, "The field `correct_prediction_index` should be integer type.", resp.Details.Reason)
	})

	tests := []struct {
		name      string
		backend   string
		err       error
		attribute string
		reason    string
	}{
		{
			name:      "mongodb unavailable",
			backend:   "mongodb",
			err:       fmt.Errorf("%w: server selection timeout", feedback.ErrUnavailable),
			attribute: "mongodb",
			reason:    "An internal error occurred while connecting to MongoDB. Please try again later.",
		},
		{
			name:      "file store unavailable",
			backend:   "file",
			err:       fmt.Errorf("%w: permission denied", feedback.ErrUnavailable),
			attribute: "file",
			reason:    reasonStoreUnavailable,
		},
		{
			name:      "write failure",
			backend:   "mongodb",
			err:       fmt.Errorf("%w: duplicate key", feedback.ErrWrite),
			attribute: "mongodb",
			reason:    reasonStoreWrite,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t, nil)
			ts.recorder.backend = tt.backend
			ts.recorder.err = tt.err

			rec := ts.do(http.MethodPost, "/api/v1/predictions/feedback", validFeedback)
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			resp := decodeError(t, rec)
			assert.Equal(t, tt.attribute, resp.Details.Attribute)
			assert.Equal(t, tt.reason, resp.Details.Reason)
		})
	}
}

func TestHandleTranscribe(t *testing.T) {
	t.Run("returns transcript", func(t *testing.T) {
		ts := setupTestServer(t, nil)

		rec := ts.do(http.MethodPost, "/api/v1/transcriptions", `{"audio":"UklGRg=="}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			v1.Response
			Data v1.TranscriptionData `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "hello world", resp.Data.Transcription)
	})

	tests := []struct {
		name      string
		err       error
		code      int
		attribute string
		reason    string
	}{
		{"invalid audio", transcription.ErrInvalidAudio, http.StatusBadRequest, v1.AttrAudio, reasonInvalidAudio},
		{"low quality", fmt.Errorf("%w: confidence 0.20", transcription.ErrLowQuality), http.StatusBadRequest, v1.AttrAudio, reasonLowQuality},
		{"upstream failure", fmt.Errorf("%w: unavailable", transcription.ErrRecognition), http.StatusInternalServerError, v1.AttrExternal, reasonExternal},
		{"unclassified failure", errors.New("boom"), http.StatusInternalServerError, v1.AttrExternal, reasonExternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t, nil)
			ts.transcriber.err = tt.err

			rec := ts.do(http.MethodPost, "/api/v1/transcriptions", `{"audio":"UklGRg=="}`)
			require.Equal(t, tt.code, rec.Code)

			resp := decodeError(t, rec)
			assert.Equal(t, tt.attribute, resp.Details.Attribute)
			assert.Equal(t, tt.reason, resp.Details.Reason)
		})
	}

	t.Run("rejects non-string audio", func(t *testing.T) {
		ts := setupTestServer(t, nil)

		rec := ts.do(http.MethodPost, "/api/v1/transcriptions", `{"audio":123}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, "audio", resp.Details.Attribute)
		assert.Equal(t, "The field `audio` should be string type.", resp.Details.Reason)
	})
}

func TestHandleHealth(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		v1.Response
		Data v1.HealthData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Data.Status)
	assert.Equal(t, "all-MiniLM-L6-v2", resp.Data.ModelVersion)
	assert.Equal(t, 42, resp.Data.CorpusSize)
	ts.logs.AssertNotLogged(t, zapcore.InfoLevel, "http request")
}

func TestHandleReady(t *testing.T) {
	t.Run("ready when all dependencies respond", func(t *testing.T) {
		ts := setupTestServer(t, map[string]services.Pinger{
			"mongodb": pingFunc(func(context.Context) error { return nil }),
		})

		rec := ts.do(http.MethodGet, "/ready", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			v1.Response
			Data v1.ReadyData `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, map[string]string{"mongodb": "ok"}, resp.Data.Checks)
	})

	t.Run("unavailable when a dependency fails", func(t *testing.T) {
		ts := setupTestServer(t, map[string]services.Pinger{
			"mongodb": pingFunc(func(context.Context) error { return errors.New("no reachable servers") }),
		})

		rec := ts.do(http.MethodGet, "/ready", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, "mongodb", resp.Details.Attribute)
		assert.Equal(t, reasonNotReady, resp.Details.Reason)
		assert.NotContains(t, rec.Body.String(), "no reachable servers")
	})
}

func TestErrorHandling(t *testing.T) {
	t.Run("unknown route uses error envelope", func(t *testing.T) {
		ts := setupTestServer(t, nil)

		rec := ts.do(http.MethodGet, "/api/v1/nope", "")
		require.Equal(t, http.StatusNotFound, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, v1.AttrRequest, resp.Details.Attribute)
	})

	t.Run("panic becomes generic internal error", func(t *testing.T) {
		ts := setupTestServer(t, nil)
		ts.echo.GET("/boom", func(echo.Context) error { panic("kaboom") })

		rec := ts.do(http.MethodGet, "/boom", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, v1.AttrInternal, resp.Details.Attribute)
		assert.Equal(t, v1.ReasonInternal, resp.Details.Reason)
		assert.NotContains(t, rec.Body.String(), "kaboom")
		ts.logs.AssertLogged(t, zapcore.ErrorLevel, "panic recovered")
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		registry := services.NewRegistry(services.Options{
			Predictor:   &fakePredictor{},
			Feedback:    &fakeRecorder{},
			Transcriber: &fakeTranscriber{},
		})
		server, err := NewServer(registry, logging.NewNop(), &Config{Port: 8000, BodyLimit: "1K"})
		require.NoError(t, err)

		body := `{"audio":"` + strings.Repeat("A", 2048) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transcriptions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		var resp v1.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, v1.StatusError, resp.Status)
	})
}

func TestRequestLogging(t *testing.T) {
	ts := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(`{"description":"tower"}`))
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))
	ts.logs.AssertField(t, "http request", "request.id", "req-123")
	ts.logs.AssertField(t, "http request", "status", 200)
}

func TestRequestID_Generated(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/health", "")
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestRateLimit(t *testing.T) {
	registry := services.NewRegistry(services.Options{
		Predictor:   &fakePredictor{},
		Feedback:    &fakeRecorder{},
		Transcriber: &fakeTranscriber{},
	})
	server, err := NewServer(registry, logging.NewNop(), &Config{Port: 8000, RateLimit: 1})
	require.NoError(t, err)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(`{"description":"x"}`))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes[1:], http.StatusTooManyRequests)

	// Probes are never limited.
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestCORS(t *testing.T) {
	registry := services.NewRegistry(services.Options{
		Predictor:   &fakePredictor{},
		Feedback:    &fakeRecorder{},
		Transcriber: &fakeTranscriber{},
	})
	server, err := NewServer(registry, logging.NewNop(), &Config{Port: 8000, AllowedOrigin: "https://app.example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(`{"description":"x"}`))
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	req = httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(`{"description":"x"}`))
	req.Header.Set(echo.HeaderOrigin, "https://evil.example.com")
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestTracing(t *testing.T) {
	tel := telemetry.NewTestTelemetry()
	ts := setupTestServer(t, nil, WithTracerProvider(tel.TracerProvider()))

	rec := ts.do(http.MethodPost, "/api/v1/predictions", `{"description":"tower"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(http.MethodPost, "/api/v1/transcriptions", `{"audio":"UklGRg=="}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, tel.Spans(), 2)
	tel.AssertSpanExists(t, "predictions.create")
	tel.AssertSpanAttribute(t, "predictions.create", "model.version", "all-MiniLM-L6-v2")
	tel.AssertSpanAttribute(t, "predictions.create", "predictions.count", int64(2))
	tel.AssertSpanExists(t, "transcriptions.create")
}

func TestMetrics_WithTelemetry(t *testing.T) {
	tel := telemetry.NewTestTelemetry()
	ts := setupTestServer(t, nil,
		WithMeterProvider(tel.MeterProvider()),
		WithMetricsHandler(tel.Handler()),
	)

	ts.do(http.MethodPost, "/api/v1/predictions", `{"description":"tower"}`)
	ts.do(http.MethodPost, "/api/v1/predictions", `{}`)

	rm := tel.Collect(t)
	requests, ok := telemetry.FindMetric(rm, "wordsense.http.requests_total")
	require.True(t, ok)
	sum, ok := requests.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	rec := ts.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
