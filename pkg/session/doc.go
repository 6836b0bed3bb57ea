// Package session binds visitors to their session-scoped attribute store.
// The manager issues cookie-based session IDs and serializes access to a
// session with reference-counted in-process locks, so handlers touching
// the same session never interleave their scope writes.
package session
