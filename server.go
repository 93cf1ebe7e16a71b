package gomensasquirrel

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Keksclan/goMensaSquirrel/httpapi"
	"github.com/Keksclan/goMensaSquirrel/internal/core"
	"github.com/Keksclan/goMensaSquirrel/mealsvc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// Querier answers plan and day queries. *resolve.Manager implements it.
type Querier interface {
	httpapi.Querier
	mealsvc.Querier
}

// drainer is implemented by queriers with background work to finish on
// shutdown.
type drainer interface {
	Wait()
}

// Server serves one Querier over gRPC (mensa.Meals) and HTTP (/api/meals,
// /api/meals/plan, /metrics, /healthz). Layers are added via functional
// [Option] values passed to [NewServer]; their execution order is fixed by
// priority, not by the order options are passed.
//
//	srv := gms.NewServer(manager, gms.DefaultOptions()...)
//	err := srv.Serve(ctx, httpLis, grpcLis)
type Server struct {
	q          Querier
	grpcServer *grpc.Server
	httpServer *http.Server
	names      []string
	hooks      []func(context.Context) error
}

// NewServer builds both surfaces around q.
func NewServer(q Querier, opts ...Option) *Server {
	cfg := config{
		log:      slog.Default(),
		gatherer: prometheus.DefaultGatherer,
		now:      time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}
	cfg.finish()

	names := cfg.middlewares.Names()
	serverOpts := core.BuildServerOptions(cfg.middlewares.Build())
	grpcServer := grpc.NewServer(serverOpts...)
	mealsvc.Register(grpcServer, mealsvc.NewService(q,
		mealsvc.WithClock(cfg.now),
		mealsvc.WithLogger(cfg.log)))

	mux := http.NewServeMux()
	httpapi.New(q, httpapi.WithClock(cfg.now), httpapi.WithLogger(cfg.log)).Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		q:          q,
		grpcServer: grpcServer,
		httpServer: &http.Server{
			Handler:           Wrap(mux, cfg.httpChain()...),
			ReadHeaderTimeout: 10 * time.Second,
		},
		names: names,
		hooks: cfg.shutdownHooks,
	}
}

// GRPC returns the underlying *grpc.Server so callers can register more
// services.
func (s *Server) GRPC() *grpc.Server {
	return s.grpcServer
}

// HTTPHandler returns the wrapped HTTP handler.
func (s *Server) HTTPHandler() http.Handler {
	return s.httpServer.Handler
}

// Interceptors returns the names of the installed gRPC interceptors in
// execution order.
func (s *Server) Interceptors() []string {
	return s.names
}

// Serve runs both surfaces until ctx is done or one of them fails. Either
// listener may be nil to leave that surface off. When ctx ends the servers
// are shut down gracefully.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	if httpLis != nil {
		g.Go(func() error {
			if err := s.httpServer.Serve(httpLis); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	if grpcLis != nil {
		g.Go(func() error {
			if err := s.grpcServer.Serve(grpcLis); !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown stops accepting calls and waits for in-flight ones. It then runs
// the shutdown hooks and finally waits for background persistence of the
// querier, all bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	err := s.httpServer.Shutdown(ctx)
	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}

	for _, h := range s.hooks {
		err = errors.Join(err, h(ctx))
	}

	if d, ok := s.q.(drainer); ok {
		drained := make(chan struct{})
		go func() {
			d.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		}
	}
	return err
}
