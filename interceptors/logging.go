package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/Keksclan/goMensaSquirrel/contextx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingUnary returns a unary server interceptor that writes one access log
// line per call. Server-side failures log at error level, client errors at
// info.
func LoggingUnary(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		began := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		level := slog.LevelInfo
		switch code {
		case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss:
			level = slog.LevelError
		}
		attrs := []any{
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(began),
		}
		if err != nil {
			attrs = append(attrs, "error", err)
		}
		contextx.Logger(ctx, log).Log(ctx, level, "rpc", attrs...)
		return resp, err
	}
}
