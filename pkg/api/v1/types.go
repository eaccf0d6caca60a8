// Package v1 defines the wire types of the wordsense HTTP API.
package v1

import "encoding/json"

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the success envelope.
type Response struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorResponse is the envelope for every non-2xx response.
type ErrorResponse struct {
	Status  string       `json:"status"`
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Details ErrorDetails `json:"details"`
}

// ErrorDetails names the offending attribute and why it was rejected.
type ErrorDetails struct {
	Attribute string `json:"attribute"`
	Reason    string `json:"reason"`
}

// PredictionRequest is the body of POST /predictions.
type PredictionRequest struct {
	Description string `json:"description"`
}

// Prediction is one ranked label.
type Prediction struct {
	Text string `json:"text"`
	Rank int    `json:"rank"`
}

// PredictionData is the data payload of a successful prediction.
type PredictionData struct {
	Predictions []Prediction `json:"predictions"`
}

// FeedbackRequest is the body of POST /predictions/feedback.
//
// Predictions is kept raw: the list may hold ranked objects or plain label
// strings and is persisted in the shape it was sent.
type FeedbackRequest struct {
	Description            string          `json:"description"`
	UserInput              string          `json:"user_input"`
	Predictions            json.RawMessage `json:"predictions"`
	VersionModel           string          `json:"version_model"`
	CorrectPredictionIndex int             `json:"correct_prediction_index"`
}

// FeedbackData is the data payload of a stored feedback record.
type FeedbackData struct {
	ID string `json:"_id"`
}

// TranscriptionRequest is the body of POST /transcriptions.
type TranscriptionRequest struct {
	Audio string `json:"audio"`
}

// TranscriptionData is the data payload of a successful transcription.
type TranscriptionData struct {
	Transcription string `json:"transcription"`
}

// HealthData is the data payload of GET /health.
type HealthData struct {
	Status       string `json:"status"`
	ModelVersion string `json:"model_version,omitempty"`
	CorpusSize   int    `json:"corpus_size"`
}

// ReadyData is the data payload of a successful GET /ready.
type ReadyData struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
