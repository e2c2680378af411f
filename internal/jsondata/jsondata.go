// Package jsondata turns the JSON payload of a generation request into the
// data model handed to the merge engine.
package jsondata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrParse is returned for malformed JSON or a payload that is not an object.
var ErrParse = errors.New("invalid JSON data")

// ParseJSONToMap decodes a JSON object into a string-keyed map.
//
// Objects become map[string]any, arrays []any, integral numbers int64 and
// any other number float64. Strings, booleans and null keep their usual
// decoded form.
func ParseJSONToMap(data string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after top-level value", ErrParse)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value must be an object, got %s", ErrParse, kindOf(raw))
	}
	return normalizeMap(obj), nil
}

func normalizeMap(in map[string]any) map[string]any {
	for k, v := range in {
		in[k] = normalize(v)
	}
	return in
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		// out of float64 range; keep the literal
		return t.String()
	default:
		return v
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
