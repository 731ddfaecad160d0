package domain

import (
	"strconv"
	"strings"
)

// tokenSeparator splits the two halves of a position token.
// Bare tokens (entry point and parent markers) never contain it.
const tokenSeparator = ":"

// Token encodes the position as a trace token ("<sequenceId>:<itemIndex>").
func (p Position) Token() string {
	return strconv.Itoa(p.SequenceID) + tokenSeparator + strconv.Itoa(p.ItemIndex)
}

// ParsePositionToken decodes a token produced by Position.Token.
// It reports false for bare tokens and malformed input.
func ParsePositionToken(token string) (Position, bool) {
	seq, idx, found := strings.Cut(token, tokenSeparator)
	if !found {
		return Position{}, false
	}
	s, err := strconv.Atoi(seq)
	if err != nil {
		return Position{}, false
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 {
		return Position{}, false
	}
	return Position{SequenceID: s, ItemIndex: i}, true
}

// Callback payload actions understood by the engine and its host.
const (
	// ActionItem renders the current step; "item:<optionId>" also selects an option.
	ActionItem = "item"
	// ActionBack walks one step back through the trace.
	ActionBack = "back"
)

// SelectionPayload builds the callback payload carried by an option button.
func SelectionPayload(optionID int) string {
	return ActionItem + tokenSeparator + strconv.Itoa(optionID)
}

// ParseSelection extracts the option id of an "<action>:<id>" payload.
// A missing or non-numeric suffix yields false; it is not an error.
func ParseSelection(payload string) (int, bool) {
	_, suffix, found := strings.Cut(payload, tokenSeparator)
	if !found || suffix == "" {
		return 0, false
	}
	id, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return id, true
}

// PayloadAction returns the action half of a callback payload.
func PayloadAction(payload string) string {
	action, _, _ := strings.Cut(payload, tokenSeparator)
	return action
}
