package gomensasquirrel

// DefaultOptions returns the recommended set of options for production use:
// recovery, request ids, tracing and access logging on both surfaces.
func DefaultOptions() []Option {
	return []Option{
		WithRecovery(),
		WithRequestID(),
		WithTracing(),
		WithAccessLog(),
	}
}
