package interceptors

import (
	"context"
	"strings"
	"testing"

	"github.com/Keksclan/goMensaSquirrel/contextx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// okHandler is a trivial handler that always succeeds.
func okHandler(_ context.Context, _ any) (any, error) { return "ok", nil }

func TestLoggingUnary_LogsCall(t *testing.T) {
	log, buf := bufLogger()
	ic := LoggingUnary(log)

	ctx := contextx.WithRequestID(t.Context(), "req-1")
	_, err := ic(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/mensa.Meals/GetDay"}, okHandler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"level=INFO", "method=/mensa.Meals/GetDay", "code=OK", "request_id=req-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestLoggingUnary_ServerErrorsLogAtError(t *testing.T) {
	log, buf := bufLogger()
	ic := LoggingUnary(log)

	failing := func(context.Context, any) (any, error) {
		return nil, status.Error(codes.Unavailable, "upstream down")
	}
	if _, err := ic(t.Context(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/M"}, failing); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "code=Unavailable") {
		t.Fatalf("unexpected log %q", buf.String())
	}
}
