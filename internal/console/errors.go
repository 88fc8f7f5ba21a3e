package console

import (
	"errors"
	"fmt"

	"github.com/smazurov/ptzdeck/internal/backend"
	"github.com/smazurov/ptzdeck/internal/editor"
	"github.com/smazurov/ptzdeck/internal/presets"
	"github.com/smazurov/ptzdeck/internal/ptz"
	"github.com/smazurov/ptzdeck/internal/render"
	"github.com/smazurov/ptzdeck/internal/store"
)

// ErrNoSelection is returned by operations that need a selected camera.
var ErrNoSelection = errors.New("no camera selected")

// ConsoleError is a console failure with a stable code for API mapping.
type ConsoleError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ConsoleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConsoleError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeNoSelection  = "NO_SELECTION"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalid      = "INVALID_PARAMS"
	ErrCodeNotConfirmed = "NOT_CONFIRMED"
	ErrCodePending      = "PENDING"
	ErrCodeBackend      = "BACKEND_ERROR"
	ErrCodeInternal     = "INTERNAL"
)

// NewConsoleError creates a console error.
func NewConsoleError(code, message string, cause error) *ConsoleError {
	return &ConsoleError{Code: code, Message: message, Cause: cause}
}

// classify wraps err in a ConsoleError. Nil stays nil.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConsoleError
	if errors.As(err, &ce) {
		return err
	}

	var apiErr *backend.APIError
	switch {
	case errors.Is(err, ErrNoSelection):
		return NewConsoleError(ErrCodeNoSelection, "select a camera first", err)
	case errors.Is(err, store.ErrUnknownCamera):
		return NewConsoleError(ErrCodeNotFound, "camera not found", err)
	case errors.Is(err, render.ErrNotMounted):
		return NewConsoleError(ErrCodeNotFound, "camera has no preview slot", err)
	case errors.Is(err, editor.ErrNotConfirmed):
		return NewConsoleError(ErrCodeNotConfirmed, "delete was not confirmed", err)
	case errors.Is(err, presets.ErrPresetNotVisible):
		return NewConsoleError(ErrCodePending, "preset saved but not listed yet", err)
	case errors.Is(err, presets.ErrEmptyName), errors.Is(err, ptz.ErrUnknownControl):
		return NewConsoleError(ErrCodeInvalid, err.Error(), err)
	case len(editor.FieldErrors(err)) > 0:
		return NewConsoleError(ErrCodeInvalid, "invalid camera form", err)
	case errors.As(err, &apiErr):
		return NewConsoleError(ErrCodeBackend, "backend request failed", err)
	default:
		return NewConsoleError(ErrCodeInternal, "internal error", err)
	}
}
