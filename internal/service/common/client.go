//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/hourly-chime/internal/api/grpc/control"
	"github.com/oshokin/hourly-chime/internal/autostart"
	"github.com/oshokin/hourly-chime/internal/config"
	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

// Client wraps the ChimeControl gRPC client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the running scheduler.
	conn *grpc.ClientConn
	// api is the ChimeControl client.
	api *control.ChimeControlClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial prepares a connection to the control channel of the running scheduler.
// The channel only listens on loopback, so transport credentials are not used.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial control channel: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         control.NewChimeControlClient(conn),
		callTimeout: config.DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// TestPlay asks the running scheduler to chime hour, or the current hour when
// hour is control.CurrentHour. It returns the hour played.
func (c *Client) TestPlay(ctx context.Context, hour int) (int, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.TestPlay(callCtx, wrapperspb.Int32(int32(hour))) //nolint:gosec // Hours are small.
	if err != nil {
		return 0, fmt.Errorf("test play: %w", err)
	}

	return int(response.GetValue()), nil
}

// ChimeStyle shows the chime type, or sets it when value is not empty.
func (c *Client) ChimeStyle(ctx context.Context, value string) (chime.Style, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.ChimeStyle(callCtx, wrapperspb.String(value))
	if err != nil {
		return chime.DefaultStyle, fmt.Errorf("chime type: %w", err)
	}

	style, _ := chime.ParseStyle(response.GetValue())

	return style, nil
}

// Autostart applies action in the running scheduler and returns the registration.
func (c *Client) Autostart(ctx context.Context, action autostart.Action) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Autostart(callCtx, wrapperspb.String(string(action)))
	if err != nil {
		return false, fmt.Errorf("autostart: %w", err)
	}

	return response.GetValue(), nil
}

// Status retrieves the state of the running scheduler.
func (c *Client) Status(ctx context.Context) (chime.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Status(callCtx, new(emptypb.Empty))
	if err != nil {
		return chime.Status{}, fmt.Errorf("status: %w", err)
	}

	return control.StatusFromStruct(response), nil
}

// Exit stops the running scheduler.
func (c *Client) Exit(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.Exit(callCtx, new(emptypb.Empty)); err != nil {
		return fmt.Errorf("exit: %w", err)
	}

	return nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
