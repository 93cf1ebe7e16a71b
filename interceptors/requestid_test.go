package interceptors

import (
	"context"
	"testing"

	"github.com/Keksclan/goMensaSquirrel/contextx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func requestIDOf(t *testing.T, ctx context.Context) string {
	t.Helper()
	var got string
	handler := func(ctx context.Context, _ any) (any, error) {
		got = contextx.RequestIDFromContext(ctx)
		return nil, nil
	}
	if _, err := RequestIDUnary()(ctx, nil, &grpc.UnaryServerInfo{}, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return got
}

func TestRequestIDUnary_Generates(t *testing.T) {
	if id := requestIDOf(t, t.Context()); id == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestRequestIDUnary_KeepsClientID(t *testing.T) {
	ctx := metadata.NewIncomingContext(t.Context(), metadata.Pairs("x-request-id", "client-7"))
	if id := requestIDOf(t, ctx); id != "client-7" {
		t.Fatalf("got %q, want %q", id, "client-7")
	}
}

func TestRequestIDUnary_KeepsContextID(t *testing.T) {
	ctx := contextx.WithRequestID(t.Context(), "already-set")
	if id := requestIDOf(t, ctx); id != "already-set" {
		t.Fatalf("got %q, want %q", id, "already-set")
	}
}
