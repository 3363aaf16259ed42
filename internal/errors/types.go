// Package errors defines the structured error taxonomy shared by every
// stencil package.
//
// Errors carry a Type (the broad category used for handling decisions) and a
// Code (the precise failure). Two StencilError values compare equal under
// errors.Is when both Type and Code match, so callers can test against the
// constructors below without caring about message text:
//
//	if errors.Is(err, stencilerrors.ErrUnresolvedComponent("")) { ... }
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeStructural ErrorType = "structural"
	ErrorTypeComponent  ErrorType = "component"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// StencilError is a structured error type with context.
type StencilError struct {
	Type      ErrorType
	Code      string
	Message   string
	Cause     error
	Context   map[string]interface{}
	Component string
	FilePath  string
}

// Error implements the error interface.
func (e *StencilError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *StencilError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *StencilError) Is(target error) bool {
	var t *StencilError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *StencilError) WithContext(key string, value interface{}) *StencilError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithComponent adds component context.
func (e *StencilError) WithComponent(component string) *StencilError {
	e.Component = component

	return e
}

// WithFile adds the file the error originated from.
func (e *StencilError) WithFile(path string) *StencilError {
	e.FilePath = path

	return e
}

// NewStructuralError creates a structural error. Structural errors mean the
// template and the tree it was applied to disagree about their shape.
func NewStructuralError(code, message string) *StencilError {
	return &StencilError{
		Type:    ErrorTypeStructural,
		Code:    code,
		Message: message,
	}
}

// NewComponentError creates a component resolution error.
func NewComponentError(code, message string, cause error) *StencilError {
	return &StencilError{
		Type:    ErrorTypeComponent,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *StencilError {
	return &StencilError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *StencilError {
	return &StencilError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *StencilError {
	return &StencilError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *StencilError {
	return &StencilError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsStructural checks if an error reports a template/tree shape mismatch.
func IsStructural(err error) bool {
	var se *StencilError
	if errors.As(err, &se) {
		return se.Type == ErrorTypeStructural
	}

	return false
}

// IsComponentError checks if an error is related to component slots.
func IsComponentError(err error) bool {
	var se *StencilError
	if errors.As(err, &se) {
		return se.Type == ErrorTypeComponent
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error at a level chosen by its type.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var se *StencilError
	if !errors.As(err, &se) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch se.Type {
	case ErrorTypeValidation, ErrorTypeConfig:
		h.logger.Warn(ctx, err, "Invalid input",
			"type", se.Type,
			"code", se.Code,
			"file", se.FilePath,
			"detail", FormatError(se))
	case ErrorTypeComponent:
		h.logger.Error(ctx, err, "Component slot could not be materialized",
			"code", se.Code,
			"component", se.Component,
			"detail", FormatError(se))
	default:
		h.logger.Error(ctx, err, "Error occurred",
			"type", se.Type,
			"code", se.Code,
			"detail", FormatError(se))
	}
}

// Common error codes.
const (
	ErrCodeStructuralMisalignment = "ERR_STRUCTURAL_MISALIGNMENT"
	ErrCodeUnresolvedComponent    = "ERR_UNRESOLVED_COMPONENT"
	ErrCodeInvalidComponent       = "ERR_INVALID_COMPONENT"
	ErrCodeInvalidTemplate        = "ERR_INVALID_TEMPLATE"
	ErrCodeUnsupportedBinding     = "ERR_UNSUPPORTED_BINDING"
	ErrCodeAlreadyInstantiated    = "ERR_ALREADY_INSTANTIATED"
	ErrCodeConfigInvalid          = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound           = "ERR_FILE_NOT_FOUND"
	ErrCodeReadFailed             = "ERR_READ_FAILED"
	ErrCodeWriteFailed            = "ERR_WRITE_FAILED"
	ErrCodeInternalError          = "ERR_INTERNAL"
)

// ErrStructuralMisalignment reports that traversal could not reach a
// position the template declared.
func ErrStructuralMisalignment(format string, args ...interface{}) *StencilError {
	return NewStructuralError(ErrCodeStructuralMisalignment, fmt.Sprintf(format, args...))
}

// ErrUnresolvedComponent reports a component slot whose name no registry
// knows.
func ErrUnresolvedComponent(name string) *StencilError {
	return NewComponentError(
		ErrCodeUnresolvedComponent,
		fmt.Sprintf("no constructor declared for component slot %q", name),
		nil,
	).WithComponent(name)
}

// ErrInvalidComponent reports a constructor that failed or returned
// something other than an element.
func ErrInvalidComponent(name string, cause error) *StencilError {
	return NewComponentError(
		ErrCodeInvalidComponent,
		"constructor did not produce an element",
		cause,
	).WithComponent(name)
}

// ErrInvalidTemplate reports a malformed template.
func ErrInvalidTemplate(message string) *StencilError {
	return NewValidationError(ErrCodeInvalidTemplate, message)
}

// ErrUnsupportedBinding reports an expression in a position that cannot be
// bound.
func ErrUnsupportedBinding(message string) *StencilError {
	return NewValidationError(ErrCodeUnsupportedBinding, message)
}

// ErrAlreadyInstantiated reports a second instantiation of one instance.
func ErrAlreadyInstantiated() *StencilError {
	return NewInternalError(ErrCodeAlreadyInstantiated, "template instance already instantiated", nil)
}

// ErrFileNotFound creates a file not found error.
func ErrFileNotFound(path string, cause error) *StencilError {
	return NewIOError(ErrCodeFileNotFound, "file not found", cause).WithFile(path)
}
