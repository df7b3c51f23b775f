package presser

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/button-presser/internal/domain/actuator"
	"github.com/oshokin/button-presser/internal/logger"
)

// triggerSource tags triggers coming through this transport.
const triggerSource = "grpc"

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Press(ctx context.Context, source string) error
	GetSetting(ctx context.Context, key domain.Key) (uint8, bool, error)
	SetSetting(ctx context.Context, key domain.Key, value uint8) error
	Status(ctx context.Context) domain.Status
}

// Server implements the PresserService gRPC API.
type Server struct {
	// service provides the business logic for presser operations.
	service Service
}

var _ PresserServiceServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Press enqueues one actuation.
func (s *Server) Press(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.service.Press(ctx, sourceFrom(ctx)); err != nil {
		return nil, toStatus(ctx, err)
	}

	return new(emptypb.Empty), nil
}

// GetSettings returns the stored settings, omitting keys that were never set.
func (s *Server) GetSettings(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	result := &structpb.Struct{
		Fields: make(map[string]*structpb.Value, len(domain.Keys())),
	}

	for _, key := range domain.Keys() {
		value, ok, err := s.service.GetSetting(ctx, key)
		if err != nil {
			return nil, toStatus(ctx, err)
		}

		if ok {
			result.Fields[string(key)] = structpb.NewNumberValue(float64(value))
		}
	}

	return result, nil
}

// SetPressDuration stores the press duration.
func (s *Server) SetPressDuration(ctx context.Context, req *wrapperspb.UInt32Value) (*emptypb.Empty, error) {
	return s.set(ctx, domain.KeyPressDuration, req)
}

// SetDutyCycle stores the duty cycle.
func (s *Server) SetDutyCycle(ctx context.Context, req *wrapperspb.UInt32Value) (*emptypb.Empty, error) {
	return s.set(ctx, domain.KeyDutyCycle, req)
}

// GetStatus reports the sequencer state and counters.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.service.Status(ctx)

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldState:     structpb.NewStringValue(st.State.String()),
			FieldCompleted: structpb.NewNumberValue(float64(st.Completed)),
			FieldAborted:   structpb.NewNumberValue(float64(st.Aborted)),
			FieldPending:   structpb.NewNumberValue(float64(st.Pending)),
		},
	}, nil
}

// set validates and stores one setting. Unlike the HTTP surface, out-of-range
// values are reported to the caller.
func (s *Server) set(ctx context.Context, key domain.Key, req *wrapperspb.UInt32Value) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "value is required")
	}

	value, err := domain.CheckValue(uint64(req.GetValue()))
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	if err = s.service.SetSetting(ctx, key, value); err != nil {
		return nil, toStatus(ctx, err)
	}

	return new(emptypb.Empty), nil
}

// sourceFrom tags the trigger with the caller identity when the client sent one.
func sourceFrom(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return triggerSource
	}

	if values := md.Get(SourceMetadataKey); len(values) > 0 && values[0] != "" {
		return triggerSource + ":" + values[0]
	}

	return triggerSource
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrChannelClosed):
		return status.Error(codes.Unavailable, "service is shutting down")
	default:
		logger.ErrorKV(ctx, "Request failed", "error", err)

		return status.Error(codes.Internal, "unable to access settings")
	}
}
