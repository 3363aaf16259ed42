package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Wrap wraps an error with additional context, creating a StencilError if the
// input is not already one.
func Wrap(err error, errType ErrorType, code, message string) *StencilError {
	if err == nil {
		return nil
	}

	// Keep the component and file of an inner StencilError visible at the top.
	var se *StencilError
	if errors.As(err, &se) {
		return &StencilError{
			Type:      errType,
			Code:      code,
			Message:   message,
			Cause:     se,
			Context:   se.Context,
			Component: se.Component,
			FilePath:  se.FilePath,
		}
	}

	return &StencilError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error.
func WrapIO(err error, code, message string) *StencilError {
	return Wrap(err, ErrorTypeIO, code, message)
}

// WrapConfig wraps an error as a configuration error.
func WrapConfig(err error, code, message string) *StencilError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// WrapValidation wraps an error as a validation error.
func WrapValidation(err error, code, message string) *StencilError {
	return Wrap(err, ErrorTypeValidation, code, message)
}

// FormatError formats an error for user display. Context attached with
// WithContext is appended in key order.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var se *StencilError
	if !errors.As(err, &se) {
		return err.Error()
	}

	result := se.Error()
	if len(se.Context) == 0 {
		return result
	}

	keys := make([]string, 0, len(se.Context))
	for k := range se.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, se.Context[k])
	}
	return result + " (" + strings.Join(pairs, ", ") + ")"
}

// GetErrorContext extracts context information from a StencilError.
func GetErrorContext(err error) map[string]interface{} {
	var se *StencilError
	if errors.As(err, &se) {
		context := make(map[string]interface{})
		for k, v := range se.Context {
			context[k] = v
		}
		if se.Component != "" {
			context["component"] = se.Component
		}
		if se.FilePath != "" {
			context["file"] = se.FilePath
		}
		context["type"] = string(se.Type)
		context["code"] = se.Code
		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}

// ExtractCause extracts the root cause from a wrapped error.
func ExtractCause(err error) error {
	for err != nil {
		var se *StencilError
		if !errors.As(err, &se) {
			return err
		}
		if se.Cause == nil {
			return se
		}
		err = se.Cause
	}
	return nil
}
