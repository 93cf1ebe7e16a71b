package durable

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/Keksclan/goMensaSquirrel/breaker"
	"github.com/Keksclan/goMensaSquirrel/meal"
)

// Guarded wraps a Store with a circuit breaker. While the breaker is open
// every call fails fast with [breaker.ErrOpen] instead of waiting on an
// unreachable backend. Calls whose caller context is done count as neither
// success nor failure.
type Guarded struct {
	next Store
	b    *breaker.Breaker
}

// Guard decorates s with a breaker built from cfg.
func Guard(s Store, cfg breaker.Config, opts ...breaker.Option) *Guarded {
	return &Guarded{next: s, b: breaker.New(cfg, opts...)}
}

// State returns the breaker state.
func (g *Guarded) State() breaker.State { return g.b.State() }

func (g *Guarded) do(ctx context.Context, fn func() error) error {
	if !g.b.Allow() {
		return breaker.ErrOpen
	}
	err := fn()
	switch {
	case err == nil:
		g.b.Success()
	case ctx.Err() != nil:
		// Backends wrap driver errors, so a done caller context is taken as
		// the cause. The backend's health is unknown and nothing is recorded.
	default:
		g.b.Failure()
	}
	return err
}

func (g *Guarded) UpsertFacility(ctx context.Context, facility, lang, name string) (string, error) {
	var id string
	err := g.do(ctx, func() (err error) {
		id, err = g.next.UpsertFacility(ctx, facility, lang, name)
		return err
	})
	return id, err
}

func (g *Guarded) UpsertDay(ctx context.Context, recordID string, day meal.Day) error {
	return g.do(ctx, func() error { return g.next.UpsertDay(ctx, recordID, day) })
}

func (g *Guarded) FindFacility(ctx context.Context, facility, lang string) (string, bool, error) {
	var (
		id string
		ok bool
	)
	err := g.do(ctx, func() (err error) {
		id, ok, err = g.next.FindFacility(ctx, facility, lang)
		return err
	})
	return id, ok, err
}

func (g *Guarded) FindDay(ctx context.Context, recordID string, date civil.Date) (meal.Day, bool, error) {
	var (
		day meal.Day
		ok  bool
	)
	err := g.do(ctx, func() (err error) {
		day, ok, err = g.next.FindDay(ctx, recordID, date)
		return err
	})
	return day, ok, err
}

// Close closes the wrapped store regardless of the breaker state.
func (g *Guarded) Close(ctx context.Context) error {
	return g.next.Close(ctx)
}
