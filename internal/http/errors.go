package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wordsense/internal/config"
	"github.com/fyrsmithlabs/wordsense/internal/feedback"
	"github.com/fyrsmithlabs/wordsense/internal/transcription"
	v1 "github.com/fyrsmithlabs/wordsense/pkg/api/v1"
)

const (
	reasonEmptyDescription = "The description is empty. Please check the data and resend it."
	reasonModel            = "An error occurred while performing model inference. Please try again later."
	reasonFeedbackFormat   = "The provided feedback is not in the correct format. Please resend the data."
	reasonStoreUnavailable = "An internal error occurred while connecting to the feedback store. Please try again later."
	reasonStoreWrite       = "An internal error occurred while processing your feedback. Please try again later."
	reasonInvalidAudio     = "The audio data provided is not supported. Please send a valid audio."
	reasonLowQuality       = "The audio quality might be low. Please provide clearer audio."
	reasonExternal         = "An error occurred while communicating with other servers. Please try again later."
	reasonNotReady         = "A required dependency is not reachable. Please try again later."
)

// storeUnavailableReasons overrides reasonStoreUnavailable per backend.
var storeUnavailableReasons = map[string]string{
	config.SourceMongoDB: "An internal error occurred while connecting to MongoDB. Please try again later.",
}

func feedbackError(backend string, err error) *v1.Error {
	if errors.Is(err, feedback.ErrUnavailable) {
		reason, ok := storeUnavailableReasons[backend]
		if !ok {
			reason = reasonStoreUnavailable
		}
		return v1.InternalError(backend, reason, err)
	}
	return v1.InternalError(backend, reasonStoreWrite, err)
}

func transcriptionError(err error) *v1.Error {
	switch {
	case errors.Is(err, transcription.ErrInvalidAudio):
		return v1.BadRequest(v1.AttrAudio, reasonInvalidAudio)
	case errors.Is(err, transcription.ErrLowQuality):
		return v1.BadRequest(v1.AttrAudio, reasonLowQuality)
	default:
		return v1.InternalError(v1.AttrExternal, reasonExternal, err)
	}
}

// toAPIError classifies any handler error. Anything unrecognized becomes the
// generic internal error so no internal detail reaches the client.
func toAPIError(err error) *v1.Error {
	var apiErr *v1.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return &v1.Error{
			Code:      he.Code,
			Message:   http.StatusText(he.Code),
			Attribute: v1.AttrRequest,
			Reason:    fmt.Sprint(he.Message),
			Err:       err,
		}
	}
	return v1.GenericInternalError(err)
}

// handleError renders every error in the error envelope.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	apiErr := toAPIError(err)
	ctx := c.Request().Context()
	fields := []zap.Field{
		zap.Int("status", apiErr.Code),
		zap.String("attribute", apiErr.Attribute),
		zap.String("path", c.Path()),
	}
	if apiErr.Err != nil {
		fields = append(fields, zap.Error(apiErr.Err))
	}
	if apiErr.Code >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", fields...)
	} else {
		s.logger.Debug(ctx, "request rejected", fields...)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(apiErr.Code)
	} else {
		err = c.JSON(apiErr.Code, apiErr.Envelope())
	}
	if err != nil {
		s.logger.Warn(ctx, "failed to write error response", zap.Error(err))
	}
}
