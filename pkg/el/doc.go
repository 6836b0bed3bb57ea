/*
Package el implements Arbor's expression layer: parsing string expressions
into evaluatable value expressions and invocable method expressions, bound
at evaluation time to the attribute scopes of a request.

Value expressions are compiled with expr-lang and evaluated against an
environment flattened from the scope chain, so `user.name` or
`cart.total * 1.2` behave the way a page author expects. Dotted l-value
expressions additionally support writes back into the owning scope.

Method expressions name a bean and a method (`greeter.Greet`); the bean is
resolved through the scope chain at invocation time and the method is
located and checked by reflection. A string that does not form a method
reference is treated as a literal whose invocation returns the literal,
coerced to the expected return type.

All parse, coercion and evaluation failures surface to the caller
unchanged apart from `%w` wrapping; nothing is retried or translated.
*/
package el
