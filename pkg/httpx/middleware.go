// Package httpx holds the HTTP plumbing shared by the service handlers:
// middleware chaining, bearer authentication, role checks, rate limiting and
// JSON responses.
package httpx

import "net/http"

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one listed runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
