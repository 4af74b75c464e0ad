package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "hourlychime.control.v1.ChimeControl"

const (
	testPlayMethod   = "/" + ServiceName + "/TestPlay"
	chimeStyleMethod = "/" + ServiceName + "/ChimeStyle"
	autostartMethod  = "/" + ServiceName + "/Autostart"
	statusMethod     = "/" + ServiceName + "/Status"
	exitMethod       = "/" + ServiceName + "/Exit"
)

// ChimeControlServer is the server side of the control channel.
type ChimeControlServer interface {
	// TestPlay chimes the requested hour, -1 meaning the current one, and returns the hour played.
	TestPlay(ctx context.Context, hour *wrapperspb.Int32Value) (*wrapperspb.Int32Value, error)
	// ChimeStyle sets the style when the value is not empty and returns the effective one.
	ChimeStyle(ctx context.Context, style *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// Autostart applies an action (on, off, toggle or empty) and returns the registration.
	Autostart(ctx context.Context, action *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	// Status reports the effective settings and the last scheduled chime.
	Status(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	// Exit stops the running scheduler.
	Exit(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error)
}

// RegisterChimeControlServer attaches srv to a gRPC server.
func RegisterChimeControlServer(registrar grpc.ServiceRegistrar, srv ChimeControlServer) {
	registrar.RegisterService(&serviceDesc, srv)
}

//nolint:gochecknoglobals // gRPC keeps a pointer to the descriptor.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChimeControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TestPlay", Handler: unary(testPlayMethod, ChimeControlServer.TestPlay)},
		{MethodName: "ChimeStyle", Handler: unary(chimeStyleMethod, ChimeControlServer.ChimeStyle)},
		{MethodName: "Autostart", Handler: unary(autostartMethod, ChimeControlServer.Autostart)},
		{MethodName: "Status", Handler: unary(statusMethod, ChimeControlServer.Status)},
		{MethodName: "Exit", Handler: unary(exitMethod, ChimeControlServer.Exit)},
	},
	Streams: []grpc.StreamDesc{},
}

// unary adapts a typed server method to a gRPC method handler.
func unary[Req, Resp any](
	fullMethod string,
	call func(ChimeControlServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(ChimeControlServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(*Req)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// ChimeControlClient is the client side of the control channel.
type ChimeControlClient struct {
	// cc carries the calls.
	cc grpc.ClientConnInterface
}

// NewChimeControlClient creates a client over an established connection.
func NewChimeControlClient(cc grpc.ClientConnInterface) *ChimeControlClient {
	return &ChimeControlClient{
		cc: cc,
	}
}

// TestPlay calls ChimeControl.TestPlay.
func (c *ChimeControlClient) TestPlay(
	ctx context.Context,
	in *wrapperspb.Int32Value,
	opts ...grpc.CallOption,
) (*wrapperspb.Int32Value, error) {
	return invoke[wrapperspb.Int32Value](ctx, c.cc, testPlayMethod, in, opts)
}

// ChimeStyle calls ChimeControl.ChimeStyle.
func (c *ChimeControlClient) ChimeStyle(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, chimeStyleMethod, in, opts)
}

// Autostart calls ChimeControl.Autostart.
func (c *ChimeControlClient) Autostart(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*wrapperspb.BoolValue, error) {
	return invoke[wrapperspb.BoolValue](ctx, c.cc, autostartMethod, in, opts)
}

// Status calls ChimeControl.Status.
func (c *ChimeControlClient) Status(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, statusMethod, in, opts)
}

// Exit calls ChimeControl.Exit.
func (c *ChimeControlClient) Exit(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, exitMethod, in, opts)
}

func invoke[Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in any,
	opts []grpc.CallOption,
) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
