package presser

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "presser.v1.PresserService"

// Full method names.
const (
	PressMethod            = "/" + ServiceName + "/Press"
	GetSettingsMethod      = "/" + ServiceName + "/GetSettings"
	SetPressDurationMethod = "/" + ServiceName + "/SetPressDuration"
	SetDutyCycleMethod     = "/" + ServiceName + "/SetDutyCycle"
	GetStatusMethod        = "/" + ServiceName + "/GetStatus"
)

// SourceMetadataKey carries the caller identity attached to presses.
const SourceMetadataKey = "x-presser-source"

// Field names used in Struct responses.
const (
	FieldPressDuration = "press_duration"
	FieldDutyCycle     = "duty_cycle"
	FieldState         = "state"
	FieldCompleted     = "completed"
	FieldAborted       = "aborted"
	FieldPending       = "pending"
)

// PresserServiceServer is the server API for the presser service.
type PresserServiceServer interface {
	// Press enqueues one actuation.
	Press(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error)
	// GetSettings returns the stored settings; unset keys are omitted.
	GetSettings(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	// SetPressDuration stores the press duration in milliseconds, 0..255.
	SetPressDuration(ctx context.Context, in *wrapperspb.UInt32Value) (*emptypb.Empty, error)
	// SetDutyCycle stores the duty cycle, 0..255.
	SetDutyCycle(ctx context.Context, in *wrapperspb.UInt32Value) (*emptypb.Empty, error)
	// GetStatus reports the sequencer state and counters.
	GetStatus(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterPresserServiceServer registers srv on s.
func RegisterPresserServiceServer(s grpc.ServiceRegistrar, srv PresserServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc is the grpc.ServiceDesc for the presser service.
//
//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PresserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Press",
			Handler: unary(PressMethod, newEmpty,
				func(s PresserServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
					return s.Press(ctx, in)
				}),
		},
		{
			MethodName: "GetSettings",
			Handler: unary(GetSettingsMethod, newEmpty,
				func(s PresserServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
					return s.GetSettings(ctx, in)
				}),
		},
		{
			MethodName: "SetPressDuration",
			Handler: unary(SetPressDurationMethod, newUInt32,
				func(s PresserServiceServer, ctx context.Context, in *wrapperspb.UInt32Value) (proto.Message, error) {
					return s.SetPressDuration(ctx, in)
				}),
		},
		{
			MethodName: "SetDutyCycle",
			Handler: unary(SetDutyCycleMethod, newUInt32,
				func(s PresserServiceServer, ctx context.Context, in *wrapperspb.UInt32Value) (proto.Message, error) {
					return s.SetDutyCycle(ctx, in)
				}),
		},
		{
			MethodName: "GetStatus",
			Handler: unary(GetStatusMethod, newEmpty,
				func(s PresserServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
					return s.GetStatus(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "presser/v1/presser.proto",
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

func newUInt32() *wrapperspb.UInt32Value { return new(wrapperspb.UInt32Value) }

// unary adapts a typed call into a grpc.MethodHandler, honouring interceptors.
func unary[Req proto.Message](
	fullMethod string,
	newReq func() Req,
	call func(PresserServiceServer, context.Context, Req) (proto.Message, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}

		svc, _ := srv.(PresserServiceServer)

		if interceptor == nil {
			return call(svc, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(Req)

			return call(svc, ctx, typed)
		})
	}
}

// PresserServiceClient is the client API for the presser service.
type PresserServiceClient interface {
	Press(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetSettings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SetPressDuration(ctx context.Context, in *wrapperspb.UInt32Value, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SetDutyCycle(ctx context.Context, in *wrapperspb.UInt32Value, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type presserServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPresserServiceClient creates a client over cc.
//
//nolint:ireturn // Mirrors the generated-client constructor shape.
func NewPresserServiceClient(cc grpc.ClientConnInterface) PresserServiceClient {
	return &presserServiceClient{cc: cc}
}

func (c *presserServiceClient) Press(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, PressMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *presserServiceClient) GetSettings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetSettingsMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *presserServiceClient) SetPressDuration(ctx context.Context, in *wrapperspb.UInt32Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, SetPressDurationMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *presserServiceClient) SetDutyCycle(ctx context.Context, in *wrapperspb.UInt32Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, SetDutyCycleMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *presserServiceClient) GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetStatusMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
