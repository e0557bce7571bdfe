// Package middleware provides optional request wrappers an embedder
// can compose around a route.Handler, in the function-wrapping style
// of bolt/middleware (core.Middleware = func(Handler) Handler). None
// of this is required by the server core; RegisterHandler accepts a
// plain route.Handler either way.
package middleware

import "github.com/yourusername/relay/route"

// Middleware wraps a Handler with additional behavior.
type Middleware func(route.Handler) route.Handler

// Chain applies middlewares to h in the order given, so the first
// middleware in the list is the outermost wrapper (runs first on the
// way in, last on the way out).
func Chain(h route.Handler, mw ...Middleware) route.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
