/*
Package arbor is a toolkit for server-rendered web UIs built around three
pieces: named attribute scopes with a fixed lookup order, an expression
language bound to those scopes, and programmatic command components that
fire method expressions.

It implements the classic request-lifecycle model: every request gets a
Context carrying five scopes (application, session, view, request, flash),
and page logic addresses beans in those scopes by name through expressions
such as "user.name" or "form.save". The package-level helpers remove the
boilerplate of wiring expressions, beans, and components together by hand.

# Concept

An App holds what is shared by every request: the application scope, the
expression factory, and the component registry. A Context is created per
request (by the HTTP middleware in pkg/adapters/httpx, or directly in
tests) and is never shared across requests. Helpers are plain functions
over a Context; nothing in this package keeps per-call state.

# Usage

	package main

	import (
		"fmt"
		"reflect"

		"github.com/aretw0/arbor"
	)

	func main() {
		app := arbor.New()
		ctx := app.NewContext()

		// Bind a bean and read it back through an expression.
		if err := arbor.SetExpressionValue(ctx, "Ada", "user"); err != nil {
			panic(err)
		}
		ve, err := arbor.CreateValueExpression(ctx, "user", reflect.String)
		if err != nil {
			panic(err)
		}
		name, _ := ve.Get(ctx.Resolution())
		fmt.Println(name) // Ada

		// Build a command component wired to an action expression.
		btn, err := arbor.NewCommandButton(ctx, "form.save", "Save")
		if err != nil {
			panic(err)
		}
		_ = btn
	}

Scope lookup follows a fixed priority: application, then session, view,
request, and flash. The order is part of the contract; code that relies on
shadowing between scopes can depend on it.
*/
package arbor
