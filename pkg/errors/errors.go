// Package errors provides structured error types for sankeyflow.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - MISSING_NODE, CYCLIC_GRAPH: Graph structure errors from the layout engine
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "link %d has negative value", i)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Map layout engine errors
//	if _, err := sankey.Compute(g); err != nil {
//	    return errors.FromLayoutError(err)
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/sankeyflow/pkg/sankey"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Graph structure errors
	ErrCodeMissingNode   Code = "MISSING_NODE"
	ErrCodeDuplicateNode Code = "DUPLICATE_NODE"
	ErrCodeCyclicGraph   Code = "CYCLIC_GRAPH"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// FromLayoutError converts an error returned by the layout engine into a
// coded *Error. Errors that already carry a code and nil are returned
// unchanged; anything unrecognised becomes ErrCodeInternal.
func FromLayoutError(err error) error {
	if err == nil {
		return nil
	}
	if GetCode(err) != "" {
		return err
	}

	var (
		missing *sankey.MissingNodeError
		dup     *sankey.DuplicateNodeError
		cyclic  *sankey.CyclicGraphError
	)
	switch {
	case errors.As(err, &missing):
		return Wrap(ErrCodeMissingNode, err, "link %d references unknown node %q", missing.Link, missing.ID)
	case errors.As(err, &dup):
		return Wrap(ErrCodeDuplicateNode, err, "node id %q is used more than once", dup.ID)
	case errors.As(err, &cyclic):
		return Wrap(ErrCodeCyclicGraph, err, "graph contains a cycle (detected in %s pass)", cyclic.Pass)
	case errors.Is(err, sankey.ErrInvariant):
		return Wrap(ErrCodeInternal, err, "layout violates its invariants")
	}
	return Wrap(ErrCodeInternal, err, "layout failed")
}

// HTTPStatus maps an error to the HTTP status an API should answer with.
// Malformed requests get 400, structurally invalid graphs 422 and
// everything else 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeMissingNode, ErrCodeDuplicateNode, ErrCodeCyclicGraph:
		return http.StatusUnprocessableEntity
	case ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
