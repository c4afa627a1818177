package store

import (
	"encoding/json"
	"strconv"
)

// Codec converts a value to and from its stored string form.
type Codec[T any] interface {
	Encode(v T) (string, error)
	Decode(s string) (T, error)
}

// JSONCodec stores records as JSON.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (JSONCodec[T]) Decode(s string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}

// StringCodec stores strings verbatim, without JSON quoting.
type StringCodec struct{}

func (StringCodec) Encode(v string) (string, error) { return v, nil }
func (StringCodec) Decode(s string) (string, error) { return s, nil }

// IntCodec stores integers in decimal form.
type IntCodec struct{}

func (IntCodec) Encode(v int) (string, error) { return strconv.Itoa(v), nil }
func (IntCodec) Decode(s string) (int, error) { return strconv.Atoi(s) }

// BoolCodec stores booleans as "true" or "false".
type BoolCodec struct{}

func (BoolCodec) Encode(v bool) (string, error) { return strconv.FormatBool(v), nil }
func (BoolCodec) Decode(s string) (bool, error) { return strconv.ParseBool(s) }

// MergeCodec stores records as JSON and decodes them over a fresh default
// value, so fields missing from an older stored record keep their default.
type MergeCodec[T any] struct {
	Defaults func() T
}

func (MergeCodec[T]) Encode(v T) (string, error) { return JSONCodec[T]{}.Encode(v) }

func (c MergeCodec[T]) Decode(s string) (T, error) {
	v := c.Defaults()
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
