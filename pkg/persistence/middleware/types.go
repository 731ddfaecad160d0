// Package middleware wraps session stores with extra behaviour.
package middleware

import "github.com/aretw0/arbor/pkg/ports"

// Middleware allows wrapping a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore
