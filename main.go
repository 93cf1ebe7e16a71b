// Package gomensasquirrel assembles the meal service: the mensa.Meals gRPC
// service and the HTTP JSON API over a shared resolver, plus metrics and
// health endpoints.
package gomensasquirrel

import "net/http"

// Middleware wraps an http.Handler with pre/post behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares from left to right, i.e., Chain(A, B)(h) => A(B(h)).
func Chain(mw ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}

// Wrap applies the middleware chain to a handler and returns the wrapped handler.
func Wrap(h http.Handler, mw ...Middleware) http.Handler {
	if len(mw) == 0 {
		return h
	}
	return Chain(mw...)(h)
}
