package commands

import (
	"context"
	"net"
	"time"

	gms "github.com/Keksclan/goMensaSquirrel"
	"github.com/Keksclan/goMensaSquirrel/cache"
	"github.com/Keksclan/goMensaSquirrel/metrics"
	"github.com/Keksclan/goMensaSquirrel/ratelimit"
	"github.com/Keksclan/goMensaSquirrel/resolve"
	"github.com/Keksclan/goMensaSquirrel/schedule"
	"github.com/Keksclan/goMensaSquirrel/tracing"
	"github.com/Keksclan/goMensaSquirrel/upstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/zerr"
)

// shutdownTimeout bounds draining on exit.
const shutdownTimeout = 30 * time.Second

func (c *CLI) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and gRPC APIs and refresh plans on schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runServe(cmd)
		},
	}
}

func (c *CLI) runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, log, err := c.loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var tp trace.TracerProvider = otel.GetTracerProvider()
	if cfg.Tracing.Stdout {
		sdk, err := tracing.NewStdoutProvider(cmd.ErrOrStderr())
		if err != nil {
			return zerr.Wrap(err, "create stdout tracer")
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			_ = sdk.Shutdown(sctx)
		}()
		otel.SetTracerProvider(sdk)
		tp = sdk
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mt := metrics.New(reg)

	days, err := cache.NewDayCache(cfg.Cache.DayCacheSize, cfg.Cache.DayCacheTTL)
	if err != nil {
		return zerr.Wrap(err, "create day cache")
	}
	defer days.Close()

	opts := []resolve.Option{
		resolve.WithDayCache(days),
		resolve.WithLogger(log),
		resolve.WithTracerProvider(tp),
		resolve.WithMetrics(mt),
		resolve.WithRefreshLimiter(ratelimit.NewLimiter(cfg.Refresh.Rate, 1)),
	}
	store, err := openStore(ctx, cfg.Durable, log)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := store.Close(sctx); err != nil {
				log.Error("could not close durable store", "error", err)
			}
		}()
		opts = append(opts, resolve.WithDurable(store))
	}

	client := upstream.NewClient(
		upstream.WithURL(cfg.Upstream.URL),
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithLogger(log),
	)
	manager := resolve.New(client, opts...)
	// Runs before the store is closed; plans stored later stay in memory.
	defer manager.Close()

	sched, err := schedule.New(cfg.Refresh.Schedule, manager,
		schedule.WithLogger(log),
		schedule.WithLocation(loc))
	if err != nil {
		return err
	}
	sched.Start()
	log.Info("started refresh schedule", "spec", cfg.Refresh.Schedule, "next", sched.Next())
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := sched.Stop(sctx); err != nil {
			log.Warn("refresh did not stop in time", "error", err)
		}
	}()

	httpLis, err := net.Listen("tcp", cfg.Server.HTTPAddr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "listen http"), "addr", cfg.Server.HTTPAddr)
	}
	grpcLis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		_ = httpLis.Close()
		return zerr.With(zerr.Wrap(err, "listen grpc"), "addr", cfg.Server.GRPCAddr)
	}

	srv := gms.NewServer(manager, append(gms.DefaultOptions(),
		gms.WithLogger(log),
		gms.WithTracerProvider(tp),
		gms.WithGatherer(reg),
		gms.WithClock(func() time.Time { return time.Now().In(loc) }),
		gms.WithShutdownHook(sched.Stop),
	)...)

	log.Info("starting server",
		"http", "http://"+httpLis.Addr().String(),
		"grpc", grpcLis.Addr().String())
	err = srv.Serve(ctx, httpLis, grpcLis)
	log.Info("server stopped")
	return err
}
