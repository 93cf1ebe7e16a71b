package mealsvc

import (
	"encoding/json"
	"fmt"

	grpcEncoding "google.golang.org/grpc/encoding"
	_ "google.golang.org/grpc/encoding/proto" // ensure default proto codec is registered first
	"google.golang.org/protobuf/proto"
)

func init() {
	// Replace the default proto codec with a thin wrapper that JSON-encodes
	// meal messages and delegates all other (protobuf) messages to proto.
	grpcEncoding.RegisterCodec(codec{})
}

// mealMsg is a marker interface satisfied by the request and response types
// of this package.
type mealMsg interface {
	isMealMsg()
}

func (*PlanRequest) isMealMsg()  {}
func (*PlanResponse) isMealMsg() {}
func (*DayRequest) isMealMsg()   {}
func (*DayResponse) isMealMsg()  {}

// codec handles meal messages via JSON and everything else via proto.
type codec struct{}

func (codec) Name() string { return "proto" }

func (codec) Marshal(v any) ([]byte, error) {
	if _, ok := v.(mealMsg); ok {
		return json.Marshal(v)
	}
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("mealsvc codec: unsupported message type %T", v)
}

func (codec) Unmarshal(data []byte, v any) error {
	if _, ok := v.(mealMsg); ok {
		return json.Unmarshal(data, v)
	}
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("mealsvc codec: unsupported message type %T", v)
}
