package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPrecondition marks a missing input or malformed structure that makes
	// the single build or serve operation impossible.
	ErrPrecondition = errors.New("precondition failure")
	// ErrTransientIO marks filesystem failures that this module never retries.
	ErrTransientIO = errors.New("transient io failure")
	// ErrProtocolMismatch marks an intercepted request whose body did not have
	// the expected shape. The exchange is passed through.
	ErrProtocolMismatch = errors.New("protocol mismatch")
	// ErrUnknownIdentifier marks a download identifier this process did not mint.
	ErrUnknownIdentifier = errors.New("unknown identifier")
	// ErrConfiguration marks invalid settings.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransientIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify returns a short label for the marker carried by err.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPrecondition):
		return "precondition"
	case errors.Is(err, ErrProtocolMismatch):
		return "protocol_mismatch"
	case errors.Is(err, ErrUnknownIdentifier):
		return "unknown_identifier"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "io"
	}
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
		return "failure"
	}
	return strings.Join(parts, ": ")
}
