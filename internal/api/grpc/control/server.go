package control

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/hourly-chime/internal/autostart"
	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

// CurrentHour asks TestPlay for the hour of the server clock.
const CurrentHour = -1

// Service abstracts the running scheduler the transport layer depends on.
type Service interface {
	TestPlay(ctx context.Context, hour int) (int, error)
	SetChimeStyle(ctx context.Context, style chime.Style) error
	Autostart(ctx context.Context, action autostart.Action) (bool, error)
	Status(ctx context.Context) (chime.Status, error)
	Exit()
}

// Server implements the ChimeControl gRPC API.
type Server struct {
	// service is the running scheduler.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// TestPlay chimes the requested hour without touching the schedule.
func (s *Server) TestPlay(ctx context.Context, req *wrapperspb.Int32Value) (*wrapperspb.Int32Value, error) {
	hour := int(req.GetValue())
	if hour != CurrentHour {
		if err := chime.ValidateHour(hour); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	played, err := s.service.TestPlay(ctx, hour)
	if err != nil {
		return nil, statusError(err)
	}

	return wrapperspb.Int32(int32(played)), nil //nolint:gosec // Hours are 0-23.
}

// ChimeStyle shows the style, or sets it when the request carries a name.
func (s *Server) ChimeStyle(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if req.GetValue() == "" {
		current, err := s.service.Status(ctx)
		if err != nil {
			return nil, statusError(err)
		}

		return wrapperspb.String(current.Style.String()), nil
	}

	style, ok := chime.ParseStyle(req.GetValue())
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown chime type %q", req.GetValue())
	}

	if err := s.service.SetChimeStyle(ctx, style); err != nil {
		return nil, statusError(err)
	}

	return wrapperspb.String(style.String()), nil
}

// Autostart applies an autostart action and returns the registration.
func (s *Server) Autostart(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	action, err := autostart.ParseAction(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	enabled, err := s.service.Autostart(ctx, action)
	if err != nil {
		return nil, statusError(err)
	}

	return wrapperspb.Bool(enabled), nil
}

// Status reports the effective settings and the last scheduled chime.
func (s *Server) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	current, err := s.service.Status(ctx)
	if err != nil {
		return nil, statusError(err)
	}

	result, err := StatusToStruct(current)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return result, nil
}

// Exit stops the running scheduler. The reply is sent before the process ends.
func (s *Server) Exit(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.service.Exit()

	return new(emptypb.Empty), nil
}

// statusError maps service failures to gRPC codes.
func statusError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
