package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseError is returned when the text is not a JSON object even after repair.
// It keeps the message of the strict parse failure.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

var errNotObject = errors.New("expected a JSON object")

// Parse decodes text as a JSON object. When strict decoding fails it runs one
// structural repair pass (unterminated strings, trailing commas, missing
// brackets) and decodes again.
func Parse(text string) (map[string]any, error) {
	obj, strictErr := decodeObject(text)
	if strictErr == nil {
		return obj, nil
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Err: strictErr}
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, &ParseError{Err: strictErr}
	}
	obj, err = decodeObject(repaired)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("%w (after repair: %v)", strictErr, err)}
	}
	return obj, nil
}

func decodeObject(text string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}
