package mealsvc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Keksclan/goMensaSquirrel/contextx"
	"github.com/Keksclan/goMensaSquirrel/meal"
	"github.com/Keksclan/goMensaSquirrel/resolve"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Status messages carried by failed calls.
const (
	MsgPlanNotFound = "plan_not_found"
	MsgInvalidDate  = "invalid_date"
	MsgMissingMensa = "missing_mensa"
)

// Querier is the part of resolve.Manager the service needs.
type Querier interface {
	GetPlan(ctx context.Context, facility, lang string) (*meal.Plan, error)
	GetDay(ctx context.Context, facility, lang string, date civil.Date) (meal.Day, error)
}

// Service implements Handler on a Querier.
type Service struct {
	q   Querier
	now func() time.Time
	log *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock sets the source of "now" for relative day inputs. The location
// of the returned time decides which date "today" is.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// NewService returns a Handler backed by q.
func NewService(q Querier, opts ...ServiceOption) *Service {
	s := &Service{q: q, now: time.Now, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) GetPlan(ctx context.Context, req *PlanRequest) (*PlanResponse, error) {
	if req.Mensa == "" {
		return nil, status.Error(codes.InvalidArgument, MsgMissingMensa)
	}
	plan, err := s.q.GetPlan(ctx, req.Mensa, req.Lang)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &PlanResponse{Plan: plan}, nil
}

func (s *Service) GetDay(ctx context.Context, req *DayRequest) (*DayResponse, error) {
	if req.Mensa == "" {
		return nil, status.Error(codes.InvalidArgument, MsgMissingMensa)
	}
	spec, err := meal.ParseDateSpec(req.Day)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, MsgInvalidDate)
	}
	day, err := s.q.GetDay(ctx, req.Mensa, req.Lang, spec.Resolve(s.now()))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &DayResponse{Day: day}, nil
}

// toStatus maps resolution failures to the two outcomes clients see. Any
// failure other than a plain miss is logged before it is hidden.
func (s *Service) toStatus(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return status.FromContextError(ctxErr).Err()
	}
	if !errors.Is(err, resolve.ErrNotFound) {
		contextx.Logger(ctx, s.log).WarnContext(ctx, "lookup failed", "error", err)
	}
	return status.Error(codes.NotFound, MsgPlanNotFound)
}
