package gomensasquirrel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Keksclan/goMensaSquirrel/contextx"
	"github.com/Keksclan/goMensaSquirrel/meal"
	"github.com/Keksclan/goMensaSquirrel/mealsvc"
	"github.com/Keksclan/goMensaSquirrel/resolve"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

var friday = civil.Date{Year: 2024, Month: time.June, Day: 21}

// stubQuerier knows one day of facility "321" and panics for facility
// "panic".
type stubQuerier struct {
	waited atomic.Int32
}

func (q *stubQuerier) GetPlan(_ context.Context, facility, _ string) (*meal.Plan, error) {
	if facility == "panic" {
		panic("boom")
	}
	if facility != "321" {
		return nil, resolve.ErrNotFound
	}
	p := meal.NewPlan("Mensa Nord")
	p.AddDay(meal.NewDay(friday))
	return p, nil
}

func (q *stubQuerier) GetDay(ctx context.Context, facility, lang string, date civil.Date) (meal.Day, error) {
	p, err := q.GetPlan(ctx, facility, lang)
	if err != nil {
		return meal.Day{}, err
	}
	d, ok := p.Day(date)
	if !ok {
		return meal.Day{}, resolve.ErrNotFound
	}
	return d, nil
}

func (q *stubQuerier) Wait() { q.waited.Add(1) }

func thursday() time.Time { return time.Date(2024, time.June, 20, 8, 0, 0, 0, time.UTC) }

func newTestServer(t *testing.T, opts ...Option) (*Server, *stubQuerier, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	q := &stubQuerier{}
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithGatherer(prometheus.NewRegistry()),
		WithClock(thursday),
	}
	return NewServer(q, append(base, opts...)...), q, &buf
}

func TestNewServerReturnsNonNil(t *testing.T) {
	s, _, _ := newTestServer(t)
	if s == nil || s.GRPC() == nil || s.HTTPHandler() == nil {
		t.Fatal("NewServer() returned an incomplete server")
	}
}

func TestDefaultInterceptorOrder(t *testing.T) {
	s, _, _ := newTestServer(t, DefaultOptions()...)
	want := []string{"recovery", "request-id", "tracing", "logging"}
	if got := s.Interceptors(); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestHTTPRoutes(t *testing.T) {
	s, _, _ := newTestServer(t, DefaultOptions()...)
	h := s.HTTPHandler()

	tests := []struct {
		target string
		code   int
	}{
		{"/healthz", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/meals?mensa=321&day=tomorrow", http.StatusOK},
		{"/api/meals?mensa=321", http.StatusNotFound},
		{"/api/meals/plan?mensa=321", http.StatusOK},
		{"/api/meals?mensa=321&day=never", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
		if rec.Code != tt.code {
			t.Fatalf("%s: got %d, want %d", tt.target, rec.Code, tt.code)
		}
		if rec.Header().Get(contextx.HeaderRequestID) == "" {
			t.Fatalf("%s: missing request id header", tt.target)
		}
	}
}

func TestHTTPRecoversPanics(t *testing.T) {
	s, _, buf := newTestServer(t, DefaultOptions()...)
	rec := httptest.NewRecorder()
	s.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/meals/plan?mensa=panic", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rec.Code)
	}
	if !strings.Contains(buf.String(), "panic in handler") {
		t.Fatalf("panic not logged:\n%s", buf.String())
	}
}

func TestHTTPMiddlewareRunsInnermost(t *testing.T) {
	var sawID string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawID = contextx.RequestIDFromContext(r.Context())
			next.ServeHTTP(w, r)
		})
	}
	s, _, _ := newTestServer(t, append(DefaultOptions(), WithHTTPMiddleware(mw))...)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(contextx.HeaderRequestID, "outer-id")
	s.HTTPHandler().ServeHTTP(httptest.NewRecorder(), req)
	if sawID != "outer-id" {
		t.Fatalf("got %q, want %q", sawID, "outer-id")
	}
}

func dialServer(t *testing.T, s *Server) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.GRPC().Serve(lis) }()
	t.Cleanup(s.GRPC().Stop)

	conn, err := grpc.NewClient("passthrough:///bufconn",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPCGetDayAndRequestID(t *testing.T) {
	s, _, buf := newTestServer(t, DefaultOptions()...)
	conn := dialServer(t, s)

	ctx := metadata.AppendToOutgoingContext(t.Context(), contextx.MetadataRequestID, "rpc-7")
	var header metadata.MD
	resp := new(mealsvc.DayResponse)
	err := conn.Invoke(ctx, mealsvc.GetDayMethod,
		&mealsvc.DayRequest{Mensa: "321", Day: "friday"}, resp, grpc.Header(&header))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Day.Date != friday {
		t.Fatalf("got %v, want %v", resp.Day.Date, friday)
	}
	if got := header.Get(contextx.MetadataRequestID); len(got) != 1 || got[0] != "rpc-7" {
		t.Fatalf("got request id header %v, want [rpc-7]", got)
	}
	if !strings.Contains(buf.String(), "request_id=rpc-7") {
		t.Fatalf("access log lacks request id:\n%s", buf.String())
	}
}

func TestGRPCUserInterceptorRunsInnermost(t *testing.T) {
	var sawID string
	ic := func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		sawID = contextx.RequestIDFromContext(ctx)
		return handler(ctx, req)
	}
	s, _, _ := newTestServer(t, append(DefaultOptions(), WithUnaryInterceptor(ic))...)
	conn := dialServer(t, s)

	ctx := metadata.AppendToOutgoingContext(t.Context(), contextx.MetadataRequestID, "rpc-9")
	err := conn.Invoke(ctx, mealsvc.GetDayMethod,
		&mealsvc.DayRequest{Mensa: "321", Day: "friday"}, new(mealsvc.DayResponse))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawID != "rpc-9" {
		t.Fatalf("got %q, want %q", sawID, "rpc-9")
	}
}

func TestGRPCRecoversPanics(t *testing.T) {
	s, _, _ := newTestServer(t, DefaultOptions()...)
	conn := dialServer(t, s)

	err := conn.Invoke(t.Context(), mealsvc.GetPlanMethod, &mealsvc.PlanRequest{Mensa: "panic"}, new(mealsvc.PlanResponse))
	if status.Code(err) != codes.Internal {
		t.Fatalf("got %v, want Internal", status.Code(err))
	}
}

func TestServeAndShutdown(t *testing.T) {
	s, q, _ := newTestServer(t, DefaultOptions()...)
	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, httpLis, grpcLis) }()

	resp, err := http.Get("http://" + httpLis.Addr().String() + "/api/meals/plan?mensa=321")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	var plan meal.Plan
	if err := json.Unmarshal(body, &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if plan.Name() != "Mensa Nord" {
		t.Fatalf("got %q, want %q", plan.Name(), "Mensa Nord")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if q.waited.Load() != 1 {
		t.Fatalf("expected querier to be drained once, got %d", q.waited.Load())
	}
}

func TestShutdownRunsHooksBeforeDrain(t *testing.T) {
	var drainedAtHook []int32
	var s *Server
	var q *stubQuerier
	hookErr := errors.New("scheduler stuck")
	s, q, _ = newTestServer(t,
		WithShutdownHook(func(context.Context) error {
			drainedAtHook = append(drainedAtHook, q.waited.Load())
			return nil
		}),
		WithShutdownHook(func(context.Context) error {
			drainedAtHook = append(drainedAtHook, q.waited.Load())
			return hookErr
		}),
	)

	err := s.Shutdown(t.Context())
	if !errors.Is(err, hookErr) {
		t.Fatalf("got %v, want hook error", err)
	}
	if !slices.Equal(drainedAtHook, []int32{0, 0}) {
		t.Fatalf("hooks saw drain counts %v, want both before the drain", drainedAtHook)
	}
	if q.waited.Load() != 1 {
		t.Fatalf("expected querier to be drained once, got %d", q.waited.Load())
	}
}
