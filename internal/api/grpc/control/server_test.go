package control

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/hourly-chime/internal/autostart"
	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

var errTestService = errors.New("test service failure")

// fakeService implements Service for unit testing the transport.
type fakeService struct {
	// status is returned by Status and updated by the setters.
	status chime.Status
	// hours records TestPlay requests.
	hours []int
	// actions records Autostart requests.
	actions []autostart.Action
	// exited counts Exit calls.
	exited int
	// err is returned from every call when set.
	err error
}

func (f *fakeService) TestPlay(_ context.Context, hour int) (int, error) {
	f.hours = append(f.hours, hour)

	if hour == CurrentHour {
		hour = 13
	}

	return hour, f.err
}

func (f *fakeService) SetChimeStyle(_ context.Context, style chime.Style) error {
	if f.err != nil {
		return f.err
	}

	f.status.Style = style

	return nil
}

func (f *fakeService) Autostart(_ context.Context, action autostart.Action) (bool, error) {
	f.actions = append(f.actions, action)
	f.status.AutoStart = action.Target(f.status.AutoStart)

	return f.status.AutoStart, f.err
}

func (f *fakeService) Status(context.Context) (chime.Status, error) {
	return f.status, f.err
}

func (f *fakeService) Exit() {
	f.exited++
}

// TestServer_TestPlay validates hours and forwards the request.
func TestServer_TestPlay(t *testing.T) {
	t.Parallel()

	svc := new(fakeService)
	s := NewServer(svc)

	response, err := s.TestPlay(context.Background(), wrapperspb.Int32(CurrentHour))
	require.NoError(t, err)
	require.Equal(t, int32(13), response.GetValue())

	response, err = s.TestPlay(context.Background(), wrapperspb.Int32(0))
	require.NoError(t, err)
	require.Zero(t, response.GetValue())

	_, err = s.TestPlay(context.Background(), wrapperspb.Int32(24))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	require.Equal(t, []int{CurrentHour, 0}, svc.hours)
}

// TestServer_ChimeStyle shows, sets and rejects styles.
func TestServer_ChimeStyle(t *testing.T) {
	t.Parallel()

	svc := new(fakeService)
	s := NewServer(svc)

	response, err := s.ChimeStyle(context.Background(), wrapperspb.String(""))
	require.NoError(t, err)
	require.Equal(t, "westminster", response.GetValue())

	response, err = s.ChimeStyle(context.Background(), wrapperspb.String("NORMAL"))
	require.NoError(t, err)
	require.Equal(t, "normal", response.GetValue())
	require.Equal(t, chime.Normal, svc.status.Style)

	_, err = s.ChimeStyle(context.Background(), wrapperspb.String("cuckoo"))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_Autostart parses actions before reaching the service.
func TestServer_Autostart(t *testing.T) {
	t.Parallel()

	svc := new(fakeService)
	s := NewServer(svc)

	response, err := s.Autostart(context.Background(), wrapperspb.String("toggle"))
	require.NoError(t, err)
	require.True(t, response.GetValue())

	_, err = s.Autostart(context.Background(), wrapperspb.String("sometimes"))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	require.Equal(t, []autostart.Action{autostart.ActionToggle}, svc.actions)
}

// TestServer_StatusRoundtrip encodes the status and decodes it back.
func TestServer_StatusRoundtrip(t *testing.T) {
	t.Parallel()

	want := chime.Status{
		Window:        chime.Window{StartHour: 8, EndHour: 20},
		Style:         chime.Normal,
		AutoStart:     true,
		LastFiredHour: 19,
		HasFired:      true,
	}

	s := NewServer(&fakeService{status: want})

	response, err := s.Status(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, want, StatusFromStruct(response))
}

// TestStatusFromStruct_Defaults falls back for empty or broken messages.
func TestStatusFromStruct_Defaults(t *testing.T) {
	t.Parallel()

	current := StatusFromStruct(nil)
	require.Equal(t, chime.DefaultWindow(), current.Window)
	require.Equal(t, chime.Westminster, current.Style)
	require.False(t, current.HasFired)

	broken, err := structpb.NewStruct(map[string]any{
		fieldStartHour: 30,
		fieldEndHour:   2,
		fieldChimeType: "cuckoo",
	})
	require.NoError(t, err)

	current = StatusFromStruct(broken)
	require.Equal(t, chime.DefaultWindow(), current.Window)
	require.Equal(t, chime.Westminster, current.Style)
}

// TestServer_Exit forwards the request.
func TestServer_Exit(t *testing.T) {
	t.Parallel()

	svc := new(fakeService)

	_, err := NewServer(svc).Exit(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, 1, svc.exited)
}

// TestServer_ServiceErrors maps service failures to gRPC codes.
func TestServer_ServiceErrors(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeService{err: errTestService})

	_, err := s.TestPlay(context.Background(), wrapperspb.Int32(7))
	require.Equal(t, codes.Internal, status.Code(err))

	_, err = s.Status(context.Background(), new(emptypb.Empty))
	require.Equal(t, codes.Internal, status.Code(err))

	s = NewServer(&fakeService{err: context.Canceled})

	_, err = s.ChimeStyle(context.Background(), wrapperspb.String("normal"))
	require.Equal(t, codes.Canceled, status.Code(err))
}
