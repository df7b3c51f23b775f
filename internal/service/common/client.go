//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/button-presser/internal/api/grpc/presser"
	"github.com/oshokin/button-presser/internal/config"
	domain "github.com/oshokin/button-presser/internal/domain/actuator"
)

// Client wraps the gRPC PresserService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the button server.
	conn *grpc.ClientConn
	// api is the PresserService client.
	api api.PresserServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// source identifies this client on presses; empty sends nothing.
	source string
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

// WithSource attaches a caller identity to every press, see DetectSource.
func WithSource(source string) Option {
	return func(c *Client) {
		c.source = source
	}
}

// Settings are the values stored on the server. Absent keys are missing from the map.
type Settings map[domain.Key]uint8

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errBadField is returned when the server replies with an unexpected field type.
	errBadField = errors.New("unexpected field in server reply")
)

// Dial establishes a gRPC connection to the button server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial button server: %w", err)
	}

	return newClient(conn, api.NewPresserServiceClient(conn), opts...), nil
}

func newClient(conn *grpc.ClientConn, presser api.PresserServiceClient, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		api:         presser,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Press asks the server to run one actuation. It returns once the press is queued.
func (c *Client) Press(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if c.source != "" {
		callCtx = metadata.AppendToOutgoingContext(callCtx, api.SourceMetadataKey, c.source)
	}

	if _, err := c.api.Press(callCtx, new(emptypb.Empty)); err != nil {
		return fmt.Errorf("press: %w", err)
	}

	return nil
}

// GetSettings retrieves the stored press duration and duty cycle.
func (c *Client) GetSettings(ctx context.Context) (Settings, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetSettings(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	result := make(Settings, len(domain.Keys()))

	for _, key := range domain.Keys() {
		field, ok := resp.GetFields()[string(key)]
		if !ok {
			continue
		}

		value, err := number(field)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}

		if result[key], err = domain.CheckValue(value); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}

	return result, nil
}

// SetPressDuration stores the press duration in milliseconds.
func (c *Client) SetPressDuration(ctx context.Context, ms uint8) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.SetPressDuration(callCtx, wrapperspb.UInt32(uint32(ms))); err != nil {
		return fmt.Errorf("set press duration: %w", err)
	}

	return nil
}

// SetDutyCycle stores the duty cycle.
func (c *Client) SetDutyCycle(ctx context.Context, duty uint8) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.SetDutyCycle(callCtx, wrapperspb.UInt32(uint32(duty))); err != nil {
		return fmt.Errorf("set duty cycle: %w", err)
	}

	return nil
}

// GetStatus reports the sequencer state and queue depth.
func (c *Client) GetStatus(ctx context.Context) (domain.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx, new(emptypb.Empty))
	if err != nil {
		return domain.Status{}, fmt.Errorf("get status: %w", err)
	}

	fields := resp.GetFields()

	var (
		completed, aborted, pending uint64
		errs                        error
	)

	for name, dst := range map[string]*uint64{
		api.FieldCompleted: &completed,
		api.FieldAborted:   &aborted,
		api.FieldPending:   &pending,
	} {
		v, err := number(fields[name])
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))

			continue
		}

		*dst = v
	}

	if errs != nil {
		return domain.Status{}, errs
	}

	return domain.Status{
		State:     domain.ParseState(fields[api.FieldState].GetStringValue()),
		Completed: completed,
		Aborted:   aborted,
		Pending:   int(pending), //nolint:gosec // Queue depth fits in int.
	}, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// number extracts a non-negative integer from a Struct value.
func number(v *structpb.Value) (uint64, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue < 0 || n.NumberValue != float64(uint64(n.NumberValue)) {
		return 0, fmt.Errorf("%w: %v", errBadField, v)
	}

	return uint64(n.NumberValue), nil
}
