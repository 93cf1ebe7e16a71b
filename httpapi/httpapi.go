// Package httpapi serves plan and day queries as JSON over HTTP.
//
// Failures are reported as a JSON string body:
//
//	GET /api/meals?mensa=321&day=tomorrow   400 "invalid_date"
//	GET /api/meals/plan?mensa=999           404 "plan_not_found"
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Keksclan/goMensaSquirrel/contextx"
	"github.com/Keksclan/goMensaSquirrel/meal"
	"github.com/Keksclan/goMensaSquirrel/resolve"
)

// Error bodies.
const (
	ErrPlanNotFound = "plan_not_found"
	ErrInvalidDate  = "invalid_date"
	ErrMissingMensa = "missing_mensa"
)

// Routes.
const (
	DayPath  = "/api/meals"
	PlanPath = "/api/meals/plan"
)

// Querier is the part of resolve.Manager the handlers need.
type Querier interface {
	GetPlan(ctx context.Context, facility, lang string) (*meal.Plan, error)
	GetDay(ctx context.Context, facility, lang string, date civil.Date) (meal.Day, error)
}

// API holds the route handlers.
type API struct {
	q   Querier
	now func() time.Time
	log *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithClock sets the source of "now" used to resolve relative days.
func WithClock(now func() time.Time) Option {
	return func(a *API) { a.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *API) { a.log = l }
}

// New returns the API for q.
func New(q Querier, opts ...Option) *API {
	a := &API{q: q, now: time.Now, log: slog.Default()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Register adds the routes to mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+DayPath, a.day)
	mux.HandleFunc("GET "+PlanPath, a.plan)
}

// Handler returns a mux serving only the API routes.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.Register(mux)
	return mux
}

func (a *API) day(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mensa := q.Get("mensa")
	if mensa == "" {
		writeJSON(w, http.StatusBadRequest, ErrMissingMensa)
		return
	}
	spec, err := meal.ParseDateSpec(q.Get("day"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrInvalidDate)
		return
	}
	day, err := a.q.GetDay(r.Context(), mensa, q.Get("lang"), spec.Resolve(a.now()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (a *API) plan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mensa := q.Get("mensa")
	if mensa == "" {
		writeJSON(w, http.StatusBadRequest, ErrMissingMensa)
		return
	}
	plan, err := a.q.GetPlan(r.Context(), mensa, q.Get("lang"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// fail reports every resolution failure as a missing plan. Failures other
// than a plain miss are logged first.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if ctx.Err() != nil {
		// client is gone
		return
	}
	if !errors.Is(err, resolve.ErrNotFound) {
		contextx.Logger(ctx, a.log).WarnContext(ctx, "lookup failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, http.StatusNotFound, ErrPlanNotFound)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
