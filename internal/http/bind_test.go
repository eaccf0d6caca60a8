package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/fyrsmithlabs/wordsense/pkg/api/v1"
)

func TestValidateBody(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		fields    []field
		attribute string
		reason    string
	}{
		{
			name:      "empty body",
			body:      "",
			fields:    predictionFields,
			attribute: "",
			reason:    "The request body is empty. Please check your request.",
		},
		{
			name:      "whitespace body",
			body:      " \n\t",
			fields:    predictionFields,
			attribute: "",
			reason:    "The request body is empty. Please check your request.",
		},
		{
			name:      "null body",
			body:      "null",
			fields:    transcriptionFields,
			attribute: "",
			reason:    "The request body is empty. Please check your request.",
		},
		{
			name:      "malformed json",
			body:      `{"description": `,
			fields:    predictionFields,
			attribute: v1.AttrBody,
			reason:    "The request body is not valid JSON. Please check your request.",
		},
		{
			name:      "json array",
			body:      `["description"]`,
			fields:    predictionFields,
			attribute: v1.AttrBody,
			reason:    "The request body is not valid JSON. Please check your request.",
		},
		{
			name:      "missing field",
			body:      `{}`,
			fields:    transcriptionFields,
			attribute: "audio",
			reason:    "The required field `audio` is missing. Please check your request.",
		},
		{
			name:      "null is a type error",
			body:      `{"description": null}`,
			fields:    predictionFields,
			attribute: "description",
			reason:    "The field `description` should be string type.",
		},
		{
			name:      "first violation wins",
			body:      `{"description": "d", "predictions": "nope"}`,
			fields:    feedbackFields,
			attribute: "user_input",
			reason:    "The required field `user_input` is missing. Please check your request.",
		},
		{
			name:      "array expected",
			body:      `{"description": "d", "user_input": "u", "predictions": "nope", "version_model": "m", "correct_prediction_index": 1}`,
			fields:    feedbackFields,
			attribute: "predictions",
			reason:    "The field `predictions` should be array type.",
		},
		{
			name:      "fractional index",
			body:      `{"description": "d", "user_input": "u", "predictions": [], "version_model": "m", "correct_prediction_index": 1.5}`,
			fields:    feedbackFields,
			attribute: "correct_prediction_index",
			reason:    "The field `correct_prediction_index` should be integer type.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBody([]byte(tt.body), tt.fields)
			require.NotNil(t, err)
			assert.Equal(t, 400, err.Code)
			assert.Equal(t, tt.attribute, err.Attribute)
			assert.Equal(t, tt.reason, err.Reason)
		})
	}
}

func TestValidateBody_Valid(t *testing.T) {
	assert.Nil(t, validateBody([]byte(`{"description": "tower", "extra": 1}`), predictionFields))
	assert.Nil(t, validateBody([]byte(`{"description": "d", "user_input": "u", "predictions": ["a", {"text": "b", "rank": 2}], "version_model": "m", "correct_prediction_index": -1}`), feedbackFields))
}
