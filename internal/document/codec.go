package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseError means a document could not be read as the expected shape.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Source, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// SerializeError means a patched tree could not be emitted.
type SerializeError struct {
	Source string
	Err    error
}

func (e *SerializeError) Error() string { return fmt.Sprintf("serialize %s: %v", e.Source, e.Err) }

func (e *SerializeError) Unwrap() error { return e.Err }

// ShapeError builds the ParseError returned when a document parses but is not
// the kind of value a category expects.
func ShapeError(source, want string, got any) error {
	return &ParseError{Source: source, Err: fmt.Errorf("expected %s at document root, found %s", want, kindOf(got))}
}

// Decode parses data into a generic tree. Numbers are kept as json.Number so
// they serialize back unchanged.
func Decode(data []byte, source string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Source: source, Err: errors.New("unexpected data after top-level value")}
	}
	return doc, nil
}

// DecodeArray parses a document whose root must be an array.
func DecodeArray(data []byte, source string) ([]any, error) {
	doc, err := Decode(data, source)
	if err != nil {
		return nil, err
	}
	arr, ok := doc.([]any)
	if !ok {
		return nil, ShapeError(source, "array", doc)
	}
	return arr, nil
}

// Encode pretty-prints doc with two-space indentation, leaving HTML
// characters unescaped.
func Encode(doc any, source string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, &SerializeError{Source: source, Err: err}
	}
	return buf.Bytes(), nil
}
