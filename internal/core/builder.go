package core

import "google.golang.org/grpc"

// BuildServerOptions turns the ordered interceptors into grpc.ServerOption
// values for grpc.NewServer, followed by extra. The first interceptor is the
// outermost. This keeps the wiring logic isolated from the public API
// surface.
func BuildServerOptions(unary []grpc.UnaryServerInterceptor, extra ...grpc.ServerOption) []grpc.ServerOption {
	var opts []grpc.ServerOption

	if len(unary) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(unary...))
	}

	return append(opts, extra...)
}
