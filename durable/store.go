// Package durable defines the optional backing store of the meal-plan
// engine and the helpers that mirror plans into it.
package durable

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/Keksclan/goMensaSquirrel/cache"
	"github.com/Keksclan/goMensaSquirrel/meal"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Store persists facility records and individual days. Facilities are keyed
// by (facility, language) and carry an opaque record id; days are keyed by
// (record id, date). Both writes are upserts.
type Store interface {
	UpsertFacility(ctx context.Context, facility, lang, name string) (string, error)
	UpsertDay(ctx context.Context, recordID string, day meal.Day) error
	FindFacility(ctx context.Context, facility, lang string) (string, bool, error)
	FindDay(ctx context.Context, recordID string, date civil.Date) (meal.Day, bool, error)
	Close(ctx context.Context) error
}

// PersistenceError wraps a failed durable-store operation.
type PersistenceError struct {
	Op       string
	Facility string
	Lang     string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("durable %s %s: %v", e.Op, cache.Key(e.Facility, e.Lang), e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StorePlan upserts the facility record and then every day of plan. It
// stops at the first failure.
func StorePlan(ctx context.Context, s Store, facility, lang string, plan *meal.Plan) error {
	lang = cache.NormalizeLang(lang)
	id, err := s.UpsertFacility(ctx, facility, lang, plan.Name())
	if err != nil {
		return &PersistenceError{Op: "upsert facility", Facility: facility, Lang: lang, Err: err}
	}
	for day := range plan.All() {
		if err := s.UpsertDay(ctx, id, day); err != nil {
			return &PersistenceError{
				Op: "upsert day " + day.Date.String(), Facility: facility, Lang: lang, Err: err,
			}
		}
	}
	return nil
}

// LoadDay resolves the facility record and reads one day from it.
func LoadDay(ctx context.Context, s Store, facility, lang string, date civil.Date) (meal.Day, bool, error) {
	lang = cache.NormalizeLang(lang)
	id, ok, err := s.FindFacility(ctx, facility, lang)
	if err != nil {
		return meal.Day{}, false, &PersistenceError{Op: "find facility", Facility: facility, Lang: lang, Err: err}
	}
	if !ok {
		return meal.Day{}, false, nil
	}
	day, ok, err := s.FindDay(ctx, id, date)
	if err != nil {
		return meal.Day{}, false, &PersistenceError{
			Op: "find day " + date.String(), Facility: facility, Lang: lang, Err: err,
		}
	}
	return day, ok, nil
}
