package v1

import (
	"fmt"
	"net/http"
)

// Attributes name the field or subsystem an error is about.
const (
	AttrAudio       = "audio"
	AttrDescription = "description"
	AttrFeedback    = "feedback"
	AttrMongoDB     = "mongodb"
	AttrModel       = "model"
	AttrExternal    = "external"
	AttrInternal    = "internal"
	AttrRequest     = "request"
	AttrBody        = "body"
)

// ReasonInternal is the generic reason returned for unexpected faults.
const ReasonInternal = "An internal error occurred while processing the request. Please try again later."

// Error is an API error rendered in the uniform error envelope.
//
// Code is the HTTP status code. Attribute names the offending field or
// subsystem and Reason is the user-facing explanation. Err, when set, is the
// underlying cause; it is logged but never serialized.
type Error struct {
	Code      int
	Message   string
	Attribute string
	Reason    string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %s: %s: %v", e.Code, e.Message, e.Attribute, e.Reason, e.Err)
	}
	return fmt.Sprintf("%d %s: %s: %s", e.Code, e.Message, e.Attribute, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Envelope converts the error into its wire representation.
func (e *Error) Envelope() ErrorResponse {
	return ErrorResponse{
		Status:  StatusError,
		Code:    e.Code,
		Message: e.Message,
		Details: ErrorDetails{
			Attribute: e.Attribute,
			Reason:    e.Reason,
		},
	}
}

// BadRequest returns a 400 error for malformed or invalid input.
func BadRequest(attribute, reason string) *Error {
	return &Error{
		Code:      http.StatusBadRequest,
		Message:   http.StatusText(http.StatusBadRequest),
		Attribute: attribute,
		Reason:    reason,
	}
}

// InternalError returns a 500 error for an unexpected fault. cause is kept
// for logging only.
func InternalError(attribute, reason string, cause error) *Error {
	return &Error{
		Code:      http.StatusInternalServerError,
		Message:   http.StatusText(http.StatusInternalServerError),
		Attribute: attribute,
		Reason:    reason,
		Err:       cause,
	}
}

// GenericInternalError is the fallback for faults nobody classified.
func GenericInternalError(cause error) *Error {
	return InternalError(AttrInternal, ReasonInternal, cause)
}
