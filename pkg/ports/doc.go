// Package ports defines the interfaces between the Arbor core and its
// adapters, plus reusable contract tests that every adapter must pass.
package ports
