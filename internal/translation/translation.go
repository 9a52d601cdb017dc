// Package translation talks to the model server that translates single
// strings.
package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyTranslation is returned when the model answers with no usable text.
var ErrEmptyTranslation = errors.New("empty translation")

// Example is a previously accepted translation shown to the model.
type Example struct {
	Source string
	Target string
}

// Request is one string to translate together with its prompt context.
type Request struct {
	Text       string
	FieldType  string
	SourceLang string
	TargetLang string
	// Glossary maps source terms found in Text to their fixed translation.
	Glossary map[string]string
	Examples []Example
}

// Provider translates one request.
type Provider interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// ProviderError is a non-2xx answer from the model server.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Body)
}

// Retryable reports whether the request may succeed if repeated.
func (e *ProviderError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}
