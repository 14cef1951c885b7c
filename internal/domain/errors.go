package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match them with errors.Is; the concrete errors below wrap them.
var (
	ErrConnectivity = errors.New("connectivity error")
	ErrSchema       = errors.New("schema error")
	ErrRowTransform = errors.New("row transform error")
	ErrReferential  = errors.New("referential error")
	ErrCleanup      = errors.New("cleanup error")
	ErrVerification = errors.New("verification error")
	ErrPrepare      = errors.New("prepare error")
	ErrBatchWrite   = errors.New("batch write error")
	ErrRowWrite     = errors.New("row write error")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
)

// IsFatal reports whether err must abort an import run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrConnectivity) ||
		errors.Is(err, ErrSchema) ||
		errors.Is(err, ErrCleanup) ||
		errors.Is(err, ErrReferential) ||
		errors.Is(err, ErrPrepare)
}

// SchemaError lists the required columns absent from a dataset header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// RowError describes why a single dataset row could not be transformed or written.
type RowError struct {
	Line           int
	EmployeeNumber int
	Column         string
	Kind           error
	Err            error
}

func (e *RowError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d", e.Line)
	if e.EmployeeNumber > 0 {
		fmt.Fprintf(&sb, " (employee %d)", e.EmployeeNumber)
	}
	if e.Column != "" {
		fmt.Fprintf(&sb, " column %s", e.Column)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *RowError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
