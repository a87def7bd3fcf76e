package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType classifies pipeline failures.
type ErrorType string

const (
	ErrTypeSourceNotFound ErrorType = "SOURCE_NOT_FOUND"
	ErrTypeAmbiguousYear  ErrorType = "AMBIGUOUS_YEAR"
	ErrTypeLayoutMismatch ErrorType = "LAYOUT_MISMATCH"
	ErrTypeUnknownProgram ErrorType = "UNKNOWN_PROGRAM"
	ErrTypeUnknownModule  ErrorType = "UNKNOWN_MODULE"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeConfig         ErrorType = "CONFIG"
	ErrTypeStorage        ErrorType = "STORAGE"
)

// AppError is an application-specific error. Structural and integrity
// errors abort the whole pipeline run; the Context map carries the
// offending file, category and cell location for the operator.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to work with AppError.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// NewSourceNotFoundError reports a data directory without any import workbook.
func NewSourceNotFoundError(dir, pattern string) *AppError {
	return NewAppError(ErrTypeSourceNotFound,
		fmt.Sprintf("no import workbook matching %q in %s", pattern, dir), nil).
		WithContext("directory", dir).
		WithContext("pattern", pattern)
}

// NewAmbiguousYearError reports two import files claiming the same year.
// The locator never silently picks one.
func NewAmbiguousYearError(year int, files []string) *AppError {
	return NewAppError(ErrTypeAmbiguousYear,
		fmt.Sprintf("multiple import workbooks claim year %d", year), nil).
		WithContext("year", year).
		WithContext("files", files)
}

// NewLayoutMismatchError reports a header that is missing or relocated.
// Always fatal: a misaligned layout would corrupt every downstream metric.
func NewLayoutMismatchError(file, category, cell, expected, got string) *AppError {
	return NewAppError(ErrTypeLayoutMismatch,
		fmt.Sprintf("expected header %q at %s, got %q", expected, cell, got), nil).
		WithContext("file", file).
		WithContext("category", category).
		WithContext("cell", cell)
}

// NewUnknownProgramError reports a row referencing a program that no
// enrollment table knows about.
func NewUnknownProgramError(table string, row int, program string) *AppError {
	return NewAppError(ErrTypeUnknownProgram,
		fmt.Sprintf("table %s row %d references unknown program %q", table, row, program), nil).
		WithContext("table", table).
		WithContext("row", row).
		WithContext("program", program)
}

// NewUnknownModuleError reports a module-enrollment row referencing a module
// missing from the roster.
func NewUnknownModuleError(row int, module string) *AppError {
	return NewAppError(ErrTypeUnknownModule,
		fmt.Sprintf("module enrollment row %d references unknown module %q", row, module), nil).
		WithContext("row", row).
		WithContext("module", module)
}

// NewParsingError creates a parsing-related error.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewStorageError creates a storage-related error.
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}
