// Package domain holds the shared vocabulary of the Arbor toolkit:
// the attribute scopes, their fixed search order, and the sentinel
// errors adapters and helpers agree on.
package domain
