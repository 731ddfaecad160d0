// Package router keeps the navigation trace of a conversation.
//
// The trace is a stack of tokens: index 0 holds the entry point, index 1 the
// parent marker, and every later slot the position token of an answered step.
// Readers report absence with ok=false; missing state is never an error.
package router

import (
	"context"

	"github.com/aretw0/arbor/pkg/session"
)

// placeholder fills index 0 when a parent is set on an empty trace.
const placeholder = ""

const (
	entryIndex  = 0
	parentIndex = 1
)

// TraceRouter manipulates the trace of one conversation.
type TraceRouter struct {
	scope *session.Scope
}

// New binds a router to a conversation scope.
func New(scope *session.Scope) *TraceRouter {
	return &TraceRouter{scope: scope}
}

// CurrentTrace returns a copy of the trace.
func (r *TraceRouter) CurrentTrace(ctx context.Context) ([]string, error) {
	return r.scope.Trace(ctx)
}

// SetEntryPoint resets the trace to [token].
func (r *TraceRouter) SetEntryPoint(ctx context.Context, token string) error {
	return r.scope.SetTrace(ctx, []string{token})
}

// SetParent writes index 1 of the trace.
func (r *TraceRouter) SetParent(ctx context.Context, token string) error {
	trace, err := r.scope.Trace(ctx)
	if err != nil {
		return err
	}
	switch {
	case len(trace) == 0:
		trace = []string{placeholder, token}
	case len(trace) == 1:
		trace = append(trace, token)
	default:
		trace[parentIndex] = token
	}
	return r.scope.SetTrace(ctx, trace)
}

// PushTraceItem appends a token.
func (r *TraceRouter) PushTraceItem(ctx context.Context, token string) error {
	trace, err := r.scope.Trace(ctx)
	if err != nil {
		return err
	}
	return r.scope.SetTrace(ctx, append(trace, token))
}

// PopPreviousTraceItem removes and returns the last token.
// It reports false on an empty trace, which callers treat as END.
func (r *TraceRouter) PopPreviousTraceItem(ctx context.Context) (string, bool, error) {
	trace, err := r.scope.Trace(ctx)
	if err != nil || len(trace) == 0 {
		return "", false, err
	}
	last := trace[len(trace)-1]
	if err := r.scope.SetTrace(ctx, trace[:len(trace)-1]); err != nil {
		return "", false, err
	}
	return last, true, nil
}

// EntryPoint returns trace[0].
func (r *TraceRouter) EntryPoint(ctx context.Context) (string, bool, error) {
	return r.at(ctx, entryIndex)
}

// Parent returns trace[1].
func (r *TraceRouter) Parent(ctx context.Context) (string, bool, error) {
	return r.at(ctx, parentIndex)
}

// ResetToEntryPoint truncates the trace to its entry point.
// It reports false when there is no entry point to keep.
func (r *TraceRouter) ResetToEntryPoint(ctx context.Context) (string, bool, error) {
	entry, ok, err := r.EntryPoint(ctx)
	if err != nil || !ok {
		return "", false, err
	}
	return entry, true, r.SetEntryPoint(ctx, entry)
}

func (r *TraceRouter) at(ctx context.Context, i int) (string, bool, error) {
	trace, err := r.scope.Trace(ctx)
	if err != nil || len(trace) <= i || trace[i] == placeholder {
		return "", false, err
	}
	return trace[i], true, nil
}
