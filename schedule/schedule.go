// Package schedule runs the refresh sweep on a cron schedule.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/Keksclan/goMensaSquirrel/resolve"
	"github.com/robfig/cron/v3"
	"go.trai.ch/zerr"
)

// DefaultSpec fires every day at 00:01:00. The first field is seconds.
const DefaultSpec = "0 1 0 * * *"

// Refresher is the part of resolve.Manager the scheduler drives.
type Refresher interface {
	RefreshAll(ctx context.Context) resolve.RefreshSummary
}

// Scheduler invokes a Refresher on a cron schedule. A sweep that is still
// running when the next one is due causes that one to be skipped.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
	ctx  context.Context
	stop context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*settings)

type settings struct {
	log *slog.Logger
	loc *time.Location
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithLocation sets the time zone the spec is evaluated in. Default UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) { s.loc = loc }
}

// New parses spec (with a seconds field) and registers r. The schedule is
// not running until Start.
func New(spec string, r Refresher, opts ...Option) (*Scheduler, error) {
	st := settings{log: slog.Default(), loc: time.UTC}
	for _, o := range opts {
		o(&st)
	}

	logger := cronLogger{st.log}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(st.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, log: st.log, ctx: ctx, stop: cancel}

	if _, err := c.AddFunc(spec, func() { s.run(r) }); err != nil {
		cancel()
		return nil, zerr.With(zerr.Wrap(err, "invalid refresh schedule"), "spec", spec)
	}
	return s, nil
}

func (s *Scheduler) run(r Refresher) {
	s.log.Info("refresh started")
	sum := r.RefreshAll(s.ctx)
	s.log.Info("refresh finished",
		"pairs", sum.Pairs,
		"refreshed", sum.Refreshed,
		"failed", sum.Failed,
		"skipped", sum.Skipped,
		"duration", sum.Duration)
}

// Next returns the next activation time, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Start runs the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and cancels a running sweep. It waits for the
// sweep to return or for ctx to end, whichever happens first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
