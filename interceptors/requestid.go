package interceptors

import (
	"context"

	"github.com/Keksclan/goMensaSquirrel/contextx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// incomingRequestID returns the first x-request-id value of the incoming
// metadata, if any.
func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(contextx.MetadataRequestID); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// RequestIDUnary returns a unary server interceptor that ensures a request ID
// is present in the context. A client-supplied x-request-id is kept; the
// final id is echoed in the response header.
func RequestIDUnary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx = contextx.EnsureRequestID(ctx, incomingRequestID(ctx))
		_ = grpc.SetHeader(ctx, metadata.Pairs(contextx.MetadataRequestID, contextx.RequestIDFromContext(ctx)))
		return handler(ctx, req)
	}
}
