// Package mealsvc exposes plan and day queries as the mensa.Meals gRPC
// service. It uses [grpc.ServiceDesc] registration so that no protobuf code
// generation is required; messages are plain Go structs carried as JSON by
// the codec registered in this package.
package mealsvc

import (
	"context"

	"github.com/Keksclan/goMensaSquirrel/meal"
	"google.golang.org/grpc"
)

// PlanRequest selects the plan of a facility. Lang defaults to English.
type PlanRequest struct {
	Mensa string `json:"mensa"`
	Lang  string `json:"lang,omitempty"`
}

type PlanResponse struct {
	Plan *meal.Plan `json:"plan"`
}

// DayRequest selects one day. Day accepts everything meal.ParseDateSpec
// does and defaults to today.
type DayRequest struct {
	Mensa string `json:"mensa"`
	Lang  string `json:"lang,omitempty"`
	Day   string `json:"day,omitempty"`
}

type DayResponse struct {
	Day meal.Day `json:"day"`
}

// Handler is the interface that a Meals service implementation must satisfy.
type Handler interface {
	GetPlan(ctx context.Context, req *PlanRequest) (*PlanResponse, error)
	GetDay(ctx context.Context, req *DayRequest) (*DayResponse, error)
}

// Full method names.
const (
	GetPlanMethod = "/mensa.Meals/GetPlan"
	GetDayMethod  = "/mensa.Meals/GetDay"
)

// ServiceDesc is the grpc.ServiceDesc for the mensa.Meals service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "mensa.Meals",
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPlan", Handler: getPlanHandler},
		{MethodName: "GetDay", Handler: getDayHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mensa/meals.proto",
}

func getPlanHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(PlanRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).GetPlan(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetPlanMethod}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).GetPlan(ctx, r.(*PlanRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func getDayHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(DayRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).GetDay(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetDayMethod}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).GetDay(ctx, r.(*DayRequest))
	}
	return interceptor(ctx, req, info, handler)
}

// Register registers a Meals service implementation on the given gRPC server.
func Register(s *grpc.Server, h Handler) {
	s.RegisterService(&ServiceDesc, h)
}
