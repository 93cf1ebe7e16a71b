// Package core assembles the gRPC interceptor chain of the server.
package core

import (
	"cmp"
	"slices"

	"google.golang.org/grpc"
)

// middleware is a single interceptor with a deterministic execution order.
// Lower Order values run first.
type middleware struct {
	Name  string
	Unary grpc.UnaryServerInterceptor
	Order int
}

// MiddlewareBuilder collects interceptors and produces them sorted, ready
// for chaining.
type MiddlewareBuilder struct {
	entries []middleware
}

// Add registers an interceptor with the given order. A nil interceptor is
// ignored.
func (b *MiddlewareBuilder) Add(order int, name string, unary grpc.UnaryServerInterceptor) {
	if unary == nil {
		return
	}
	b.entries = append(b.entries, middleware{Name: name, Unary: unary, Order: order})
}

// Names returns the registered names in execution order.
func (b *MiddlewareBuilder) Names() []string {
	b.sort()
	names := make([]string, len(b.entries))
	for i, m := range b.entries {
		names[i] = m.Name
	}
	return names
}

func (b *MiddlewareBuilder) sort() {
	slices.SortStableFunc(b.entries, func(a, c middleware) int {
		return cmp.Compare(a.Order, c.Order)
	})
}

// Build sorts the collected entries by Order (stable) and returns the
// interceptors.
func (b *MiddlewareBuilder) Build() []grpc.UnaryServerInterceptor {
	b.sort()
	unary := make([]grpc.UnaryServerInterceptor, 0, len(b.entries))
	for _, m := range b.entries {
		unary = append(unary, m.Unary)
	}
	return unary
}
