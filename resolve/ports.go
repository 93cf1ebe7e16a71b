// Package resolve answers plan and day queries from a tiered lookup chain:
// the in-memory plan collection, an optional durable store and finally the
// upstream API. It also owns the daily refresh sweep.
package resolve

//go:generate mockgen -source=ports.go -destination=mocks/mock_fetcher.go -package=mocks

import (
	"context"

	"github.com/Keksclan/goMensaSquirrel/meal"
)

// Fetcher loads the current plan of a facility from the upstream source.
// upstream.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, facility, lang string) (*meal.Plan, error)
}
