package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wordsense/internal/feedback"
	v1 "github.com/fyrsmithlabs/wordsense/pkg/api/v1"
)

const readyTimeout = 3 * time.Second

func success(c echo.Context, code int, data any) error {
	return c.JSON(code, v1.Response{
		Status:  v1.StatusSuccess,
		Code:    code,
		Message: http.StatusText(code),
		Data:    data,
	})
}

// handlePredict ranks corpus labels for the submitted description.
func (s *Server) handlePredict(c echo.Context) error {
	var req v1.PredictionRequest
	if err := bindBody(c, predictionFields, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Description) == "" {
		return v1.BadRequest(v1.AttrDescription, reasonEmptyDescription)
	}

	ctx, span := s.tracer.Start(c.Request().Context(), "predictions.create")
	defer span.End()

	predictor := s.services.Predictor()
	results, err := predictor.PredictDefault(ctx, req.Description)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prediction failed")
		return v1.InternalError(v1.AttrModel, reasonModel, err)
	}
	span.SetAttributes(
		attribute.String("model.version", predictor.ModelVersion()),
		attribute.Int("predictions.count", len(results)),
	)

	preds := make([]v1.Prediction, len(results))
	for i, r := range results {
		preds[i] = v1.Prediction{Text: r.Text, Rank: r.Rank}
	}
	return success(c, http.StatusOK, v1.PredictionData{Predictions: preds})
}

// handleFeedback stores the user's correction of a prediction.
func (s *Server) handleFeedback(c echo.Context) error {
	var req v1.FeedbackRequest
	if err := bindBody(c, feedbackFields, &req); err != nil {
		return err
	}

	var preds []feedback.Prediction
	if err := json.Unmarshal(req.Predictions, &preds); err != nil {
		return v1.BadRequest(v1.AttrFeedback, reasonFeedbackFormat)
	}

	ctx, span := s.tracer.Start(c.Request().Context(), "predictions.feedback")
	defer span.End()

	recorder := s.services.Feedback()
	id, err := recorder.Record(ctx, feedback.Record{
		Description:            req.Description,
		UserInput:              req.UserInput,
		Predictions:            preds,
		VersionModel:           req.VersionModel,
		CorrectPredictionIndex: req.CorrectPredictionIndex,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "feedback not recorded")
		return feedbackError(recorder.Backend(), err)
	}
	span.SetAttributes(attribute.String("feedback.backend", recorder.Backend()))

	return success(c, http.StatusCreated, v1.FeedbackData{ID: id})
}

// handleTranscribe converts base64 WAV audio to text.
func (s *Server) handleTranscribe(c echo.Context) error {
	var req v1.TranscriptionRequest
	if err := bindBody(c, transcriptionFields, &req); err != nil {
		return err
	}

	ctx, span := s.tracer.Start(c.Request().Context(), "transcriptions.create")
	defer span.End()

	out, err := s.services.Transcriber().Transcribe(ctx, req.Audio)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transcription failed")
		return transcriptionError(err)
	}
	span.SetAttributes(attribute.Float64("transcription.confidence", float64(out.Confidence)))

	return success(c, http.StatusOK, v1.TranscriptionData{Transcription: out.Transcript})
}

// handleHealth reports liveness. It never touches dependencies.
func (s *Server) handleHealth(c echo.Context) error {
	p := s.services.Predictor()
	return success(c, http.StatusOK, v1.HealthData{
		Status:       "ok",
		ModelVersion: p.ModelVersion(),
		CorpusSize:   p.CorpusSize(),
	})
}

// handleReady pings every registered dependency.
func (s *Server) handleReady(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
	defer cancel()

	deps := s.services.Dependencies()
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := deps[name].Ping(ctx); err != nil {
			s.logger.Warn(ctx, "dependency not ready", zap.String("dependency", name), zap.Error(err))
			return &v1.Error{
				Code:      http.StatusServiceUnavailable,
				Message:   http.StatusText(http.StatusServiceUnavailable),
				Attribute: name,
				Reason:    reasonNotReady,
				Err:       err,
			}
		}
		checks[name] = "ok"
	}

	return success(c, http.StatusOK, v1.ReadyData{Status: "ready", Checks: checks})
}
