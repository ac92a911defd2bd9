// Package errors provides shared error wrapping helpers for the session viewer.
package errors

import "fmt"

// WrapWithContext wraps err with a short description of the failing step.
// A nil err stays nil so callers can wrap unconditionally.
func WrapWithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// WrapWithContextf wraps err with formatted context information.
func WrapWithContextf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
