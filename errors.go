// Package coffee is a data access layer for Go that keeps application code
// away from the wire protocol of any particular backend. Typed objects are
// loaded, recorded and erased through accessors, and the most recently used
// objects are kept in per-entity caches (see package persistence).
//
// The statement/connection protocol lives in package dbms, the closed set of
// value cells in package datatype. This package only holds the pieces that
// every layer shares: the error taxonomy and the optional logger.
package coffee

import (
	"errors"
	"fmt"
)

// Error classes shared by every package of the module. Concrete errors wrap
// one of them, so callers classify with errors.Is.
var (
	// ErrConfiguration is a setup problem: binder counts that do not match the
	// backend, a malformed class, a duplicated name. It is never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidData is a data cell used with the wrong type, read while null
	// or given a value it can't hold.
	ErrInvalidData = errors.New("invalid data")

	// ErrGuardMisuse is an access to a connection or statement outside of the
	// guard protocol, or over a connection that is not available.
	ErrGuardMisuse = errors.New("guard misuse")
)

// ConfigurationError returns a formatted error wrapping ErrConfiguration.
func ConfigurationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// InvalidDataError returns a formatted error wrapping ErrInvalidData.
func InvalidDataError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidData, fmt.Sprintf(format, args...))
}

// GuardMisuseError returns a formatted error wrapping ErrGuardMisuse.
func GuardMisuseError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrGuardMisuse, fmt.Sprintf(format, args...))
}
