// Package codec converts the composite fields of an analysis result
// (parameter lists, pattern lists, scenario lists) to and from the textual
// encoding stored in row columns.
//
// The encoding is JSON, but that is an internal detail of this package: the
// row store treats encoded fields as opaque text, and only the domain
// repositories call Encode/Decode. Malformed stored text decodes to
// ErrCorruptRecord so a corrupt field is never mistaken for an empty one.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorruptRecord indicates a stored composite field could not be decoded.
var ErrCorruptRecord = errors.New("corrupt record")

// Encode serializes a sequence for storage. A nil sequence encodes as the
// empty sequence, so encode/decode round-trips to an empty non-nil slice.
func Encode[T any](values []T) (string, error) {
	if values == nil {
		values = []T{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode composite field: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored composite field back into a sequence. Empty input
// and malformed input both fail with ErrCorruptRecord; a legitimately empty
// sequence is stored as "[]", never as "".
func Decode[T any](text string) ([]T, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty composite field", ErrCorruptRecord)
	}
	var values []T
	if err := json.Unmarshal([]byte(text), &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if values == nil {
		values = []T{}
	}
	return values, nil
}

// EncodeValue serializes a single composite record (not a sequence).
func EncodeValue[T any](value T) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode composite field: %w", err)
	}
	return string(data), nil
}

// DecodeValue parses a single stored composite record.
func DecodeValue[T any](text string) (T, error) {
	var value T
	if text == "" {
		return value, fmt.Errorf("%w: empty composite field", ErrCorruptRecord)
	}
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return value, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return value, nil
}
