/*
Package session gives the engine typed access to per-conversation state.

A Manager serialises updates of the same conversation, in process and,
with a DistributedLocker, across replicas. A Scope binds a SessionStore to
one conversation and decodes stored values back into domain types.
*/
package session
