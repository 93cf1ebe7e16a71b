// Package interceptors holds the unary gRPC server interceptors of the meal
// service: recovery, request ids and access logging.
package interceptors

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/Keksclan/goMensaSquirrel/contextx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoveryUnary returns a unary server interceptor that recovers from panics,
// logs them with the stack and returns an Internal gRPC error instead of
// crashing the process.
func RecoveryUnary(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				contextx.Logger(ctx, log).ErrorContext(ctx, "panic in handler",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()))
				resp = nil
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}
