// Package weld holds the error taxonomy shared by the compile, schema and
// query packages.
package weld

import (
	"errors"
	"fmt"
)

// Standard sentinel errors.
var (
	// ErrNoPrimaryKey is returned when a row-targeted update or delete is
	// compiled against a table with no primary key.
	ErrNoPrimaryKey = errors.New("weld: table has no primary key")

	// ErrMissingColumn is matched by every *MissingColumnError.
	ErrMissingColumn = errors.New("weld: missing column")

	// ErrUnsupportedOperation is matched by every *UnsupportedOperationError.
	ErrUnsupportedOperation = errors.New("weld: unsupported operation")

	// ErrParamLimitExceeded is matched by every *ParamLimitError.
	ErrParamLimitExceeded = errors.New("weld: parameter limit exceeded")
)

// MissingColumnError reports a clause or bind that references a column the
// table does not have.
type MissingColumnError struct {
	Table  string
	Column string
}

// Error returns the error string.
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("weld: column %q not found on %s", e.Column, e.Table)
}

// Is reports whether the target error matches MissingColumnError.
// This allows errors.Is(err, ErrMissingColumn) to return true.
func (e *MissingColumnError) Is(err error) bool {
	return err == ErrMissingColumn
}

// UnsupportedOperationError reports a dialect feature that a backend lacks.
type UnsupportedOperationError struct {
	Dialect   string
	Operation string
}

// Error returns the error string.
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("weld: %s does not support %s", e.Dialect, e.Operation)
}

// Is reports whether the target error matches UnsupportedOperationError.
func (e *UnsupportedOperationError) Is(err error) bool {
	return err == ErrUnsupportedOperation
}

// ParamLimitError reports a statement that binds more arguments than the
// dialect accepts. Callers are expected to chunk their input.
type ParamLimitError struct {
	Dialect string
	Count   int
	Max     int
}

// Error returns the error string.
func (e *ParamLimitError) Error() string {
	return fmt.Sprintf("weld: %s statement binds %d parameters, limit is %d", e.Dialect, e.Count, e.Max)
}

// Is reports whether the target error matches ParamLimitError.
func (e *ParamLimitError) Is(err error) bool {
	return err == ErrParamLimitExceeded
}

// IsMissingColumn returns true if the error is a MissingColumnError.
func IsMissingColumn(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingColumnError
	return errors.As(err, &e)
}

// IsUnsupported returns true if the error is an UnsupportedOperationError.
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedOperationError
	return errors.As(err, &e)
}

// IsParamLimit returns true if the error is a ParamLimitError.
func IsParamLimit(err error) bool {
	if err == nil {
		return false
	}
	var e *ParamLimitError
	return errors.As(err, &e)
}
