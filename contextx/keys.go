// Package contextx carries request-scoped values through a context.
package contextx

// contextKey is an unexported type used as context key to avoid collisions
// with keys defined in other packages.
type contextKey int

const (
	requestIDKey contextKey = iota
)

// Request id carriers on the wire.
const (
	HeaderRequestID   = "X-Request-Id"
	MetadataRequestID = "x-request-id"
)
