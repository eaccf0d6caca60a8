package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ErrInvalidPrediction indicates a prediction that is neither a label string
// nor a {text, rank} object.
var ErrInvalidPrediction = errors.New("prediction must be a string or an object with text and rank")

// Prediction is a prediction shown to the user. Clients send either the
// ranked object returned by the prediction endpoint or a bare label; the
// submitted shape is preserved in storage.
type Prediction struct {
	Text string
	Rank int
	// Plain marks a bare label string.
	Plain bool
}

// Ranked returns an object-shaped prediction.
func Ranked(text string, rank int) Prediction {
	return Prediction{Text: text, Rank: rank}
}

// Label returns a bare-string prediction.
func Label(text string) Prediction {
	return Prediction{Text: text, Plain: true}
}

type rankedShape struct {
	Text string `json:"text" bson:"text"`
	Rank int    `json:"rank" bson:"rank"`
}

// MarshalJSON writes a string for plain predictions and an object otherwise.
func (p Prediction) MarshalJSON() ([]byte, error) {
	if p.Plain {
		return json.Marshal(p.Text)
	}
	return json.Marshal(rankedShape{Text: p.Text, Rank: p.Rank})
}

// UnmarshalJSON accepts a string or a {text, rank} object.
func (p *Prediction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrInvalidPrediction
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
		}
		*p = Label(s)
		return nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
		}
		var r rankedShape
		if err := decodeField(fields["text"], &r.Text); err != nil {
			return fmt.Errorf("%w: text must be a string", ErrInvalidPrediction)
		}
		if err := decodeField(fields["rank"], &r.Rank); err != nil {
			return fmt.Errorf("%w: rank must be an integer", ErrInvalidPrediction)
		}
		*p = Ranked(r.Text, r.Rank)
		return nil
	default:
		return ErrInvalidPrediction
	}
}

// decodeField rejects a missing or null member, which json.Unmarshal would
// otherwise leave as the zero value.
func decodeField(raw json.RawMessage, dst any) error {
	if raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errors.New("missing or null")
	}
	return json.Unmarshal(raw, dst)
}

// MarshalBSONValue stores plain predictions as strings and ranked ones as
// embedded documents.
func (p Prediction) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if p.Plain {
		return bson.MarshalValue(p.Text)
	}
	return bson.MarshalValue(rankedShape{Text: p.Text, Rank: p.Rank})
}

// UnmarshalBSONValue reverses MarshalBSONValue.
func (p *Prediction) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		s, ok := raw.StringValueOK()
		if !ok {
			return ErrInvalidPrediction
		}
		*p = Label(s)
		return nil
	case bsontype.EmbeddedDocument:
		var r rankedShape
		if err := raw.Unmarshal(&r); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
		}
		*p = Ranked(r.Text, r.Rank)
		return nil
	default:
		return fmt.Errorf("%w: bson type %s", ErrInvalidPrediction, t)
	}
}
