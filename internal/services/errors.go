package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks a network failure or a non-2xx platform response.
	ErrTransport = errors.New("transport error")
	// ErrNotFound marks a legitimately empty result, distinct from a failed call.
	ErrNotFound = errors.New("not found")
	// ErrExhausted marks a retry budget spent without success.
	ErrExhausted = errors.New("retry budget exhausted")
	// ErrConfiguration marks unusable component configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
