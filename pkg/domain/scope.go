package domain

// Scope identifies one of the named attribute buckets a request can see.
type Scope string

const (
	// ScopeApplication holds attributes shared by every request for the
	// lifetime of the process.
	ScopeApplication Scope = "application"

	// ScopeSession holds attributes bound to one visitor across requests.
	ScopeSession Scope = "session"

	// ScopeView holds attributes bound to a single rendered view.
	ScopeView Scope = "view"

	// ScopeRequest holds attributes that live for one request only.
	ScopeRequest Scope = "request"

	// ScopeFlash holds attributes that survive exactly one follow-up
	// request before being discarded.
	ScopeFlash Scope = "flash"
)

// searchOrder is the fixed priority used by name lookup. Callers observe
// this exact order; changing it changes which binding shadows which.
var searchOrder = []Scope{
	ScopeApplication,
	ScopeSession,
	ScopeView,
	ScopeRequest,
	ScopeFlash,
}

// SearchOrder returns the fixed scope priority for name lookup,
// highest priority first.
func SearchOrder() []Scope {
	out := make([]Scope, len(searchOrder))
	copy(out, searchOrder)
	return out
}

// Valid reports whether s names one of the five known scopes.
func (s Scope) Valid() bool {
	for _, known := range searchOrder {
		if s == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (s Scope) String() string {
	return string(s)
}
