package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotFound is returned when a conversation has no stored state.
var ErrSessionNotFound = errors.New("session not found")

// ErrMissingDialogContext is reported when no dialog is active for a conversation.
var ErrMissingDialogContext = errors.New("no active dialog")

// ErrUnknownDialog is returned when an entry point has no loaded dialog.
var ErrUnknownDialog = errors.New("unknown dialog")

// ErrInvalidDialog wraps every dialog definition validation failure.
var ErrInvalidDialog = errors.New("invalid dialog")

// ValidationError represents a single dialog definition problem.
type ValidationError struct {
	Path   string // e.g. "sequences[2].items_ids"
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// AggregateError represents every problem found in one dialog.
type AggregateError struct {
	DialogID int
	Errors   []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("dialog %d: %s", e.DialogID, e.Errors[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "dialog %d: %d validation errors:\n", e.DialogID, len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err)
	}
	return sb.String()
}

// Unwrap lets errors.Is match ErrInvalidDialog.
func (e *AggregateError) Unwrap() error {
	return ErrInvalidDialog
}

// ValidationErrors returns all validation errors if err is an AggregateError.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
