package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Submission is the weakly typed POST /score body after field-by-field
// coercion. Fields of the wrong JSON type decode as their zero value.
type Submission struct {
	Game  string
	Mode  string
	Level string
	Name  string
	Score float64
}

// DecodeSubmission rejects bodies that are not JSON at all. Valid JSON that
// is not an object is accepted and behaves like an object with no fields.
func DecodeSubmission(body []byte) (Submission, error) {
	if !json.Valid(body) {
		return Submission{}, invalid(CodeInvalidJSON)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		fields = nil
	}

	return Submission{
		Game:  CoerceString(fields["game"]),
		Mode:  CoerceString(fields["mode"]),
		Level: CoerceString(fields["level"]),
		Name:  CoerceString(fields["name"]),
		Score: CoerceNumber(fields["score"]),
	}, nil
}

// CoerceString returns raw when it holds a JSON string and "" otherwise.
func CoerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// CoerceNumber converts a JSON value to a number the way a lenient client
// would: numbers as is, numeric strings parsed, booleans as 1/0, null and
// missing as 0. Anything else is NaN.
func CoerceNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return math.NaN()
	}
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// CoerceTimestamp only accepts a finite JSON number.
func CoerceTimestamp(raw json.RawMessage) *int64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	ts := int64(f)
	return &ts
}
