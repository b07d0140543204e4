// Package domain defines the cube model types, reference encodings, and
// errors shared across the mapping engine.
package domain

import "fmt"

// MissingCubeError indicates a mapper was constructed without a cube.
type MissingCubeError struct {
	Message string
}

func (e *MissingCubeError) Error() string { return e.Message }

// InvalidReferenceError indicates a raw physical reference that is neither a
// recognized string/list/record shape nor has 2-3 elements.
type InvalidReferenceError struct {
	Message string
}

func (e *InvalidReferenceError) Error() string { return e.Message }

// InvalidJoinError indicates a join whose detail table is empty or equal to
// the fact table.
type InvalidJoinError struct {
	Message string
}

func (e *InvalidJoinError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ErrMissingCube creates a MissingCubeError with a formatted message.
func ErrMissingCube(format string, args ...interface{}) *MissingCubeError {
	return &MissingCubeError{Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidReference creates an InvalidReferenceError with a formatted message.
func ErrInvalidReference(format string, args ...interface{}) *InvalidReferenceError {
	return &InvalidReferenceError{Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidJoin creates an InvalidJoinError with a formatted message.
func ErrInvalidJoin(format string, args ...interface{}) *InvalidJoinError {
	return &InvalidJoinError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}
