package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"

	v1 "github.com/fyrsmithlabs/wordsense/pkg/api/v1"
)

const (
	reasonEmptyBody     = "The request body is empty. Please check your request."
	reasonMalformedBody = "The request body is not valid JSON. Please check your request."
	reasonMissingField  = "The required field `%s` is missing. Please check your request."
	reasonWrongType     = "The field `%s` should be %s type."
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInteger
	kindArray
)

func (k fieldKind) String() string {
	switch k {
	case kindInteger:
		return "integer"
	case kindArray:
		return "array"
	default:
		return "string"
	}
}

func (k fieldKind) matches(r gjson.Result) bool {
	switch k {
	case kindString:
		return r.Type == gjson.String
	case kindInteger:
		if r.Type != gjson.Number {
			return false
		}
		_, err := strconv.ParseInt(r.Raw, 10, 64)
		return err == nil
	case kindArray:
		return r.IsArray()
	}
	return false
}

// field is a required body field.
type field struct {
	name string
	kind fieldKind
}

var (
	predictionFields = []field{
		{"description", kindString},
	}
	feedbackFields = []field{
		{"description", kindString},
		{"user_input", kindString},
		{"predictions", kindArray},
		{"version_model", kindString},
		{"correct_prediction_index", kindInteger},
	}
	transcriptionFields = []field{
		{"audio", kindString},
	}
)

// bindBody reads the request body, checks every required field in order and
// decodes it into dst. The first violation is returned as a 400 *v1.Error.
func bindBody(c echo.Context, fields []field, dst any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		// Body limit violations surface here as *echo.HTTPError.
		return err
	}
	if err := validateBody(body, fields); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return v1.BadRequest(v1.AttrBody, reasonMalformedBody)
	}
	return nil
}

func validateBody(body []byte, fields []field) *v1.Error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return v1.BadRequest("", reasonEmptyBody)
	}
	if !gjson.ValidBytes(trimmed) {
		return v1.BadRequest(v1.AttrBody, reasonMalformedBody)
	}
	doc := gjson.ParseBytes(trimmed)
	if !doc.IsObject() {
		return v1.BadRequest(v1.AttrBody, reasonMalformedBody)
	}

	for _, f := range fields {
		val := doc.Get(f.name)
		if !val.Exists() {
			return v1.BadRequest(f.name, fmt.Sprintf(reasonMissingField, f.name))
		}
		if !f.kind.matches(val) {
			return v1.BadRequest(f.name, fmt.Sprintf(reasonWrongType, f.name, f.kind))
		}
	}
	return nil
}
