// Package httpx binds the scope machinery to net/http: a chi-compatible
// middleware that builds the per-request evaluation context (session
// cookie, view and flash scopes included), and handlers for postback
// dispatch and diagnostics.
package httpx
