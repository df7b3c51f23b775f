package presser

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// dialBufconn serves srv on an in-memory listener and returns a connected client.
func dialBufconn(t *testing.T, srv PresserServiceServer, opts ...grpc.ServerOption) PresserServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 16)
	server := grpc.NewServer(opts...)
	RegisterPresserServiceServer(server, srv)

	go func() {
		_ = server.Serve(lis)
	}()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()

		server.Stop()
	})

	return NewPresserServiceClient(conn)
}

// TestServiceDesc_Roundtrip exercises every method through the hand-written descriptor.
func TestServiceDesc_Roundtrip(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	client := dialBufconn(t, NewServer(svc))
	ctx := context.Background()

	_, err := client.SetPressDuration(ctx, wrapperspb.UInt32(100))
	require.NoError(t, err)

	_, err = client.SetDutyCycle(ctx, wrapperspb.UInt32(128))
	require.NoError(t, err)

	_, err = client.SetDutyCycle(ctx, wrapperspb.UInt32(1000))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	settings, err := client.GetSettings(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.InDelta(t, 100, settings.GetFields()[FieldPressDuration].GetNumberValue(), 0)
	require.InDelta(t, 128, settings.GetFields()[FieldDutyCycle].GetNumberValue(), 0)

	_, err = client.Press(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, []string{"grpc"}, svc.presses)

	st, err := client.GetStatus(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, "idle", st.GetFields()[FieldState].GetStringValue())
}

// TestServiceDesc_Interceptor verifies interceptors see the full method name.
func TestServiceDesc_Interceptor(t *testing.T) {
	t.Parallel()

	var seen []string

	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)

		return handler(ctx, req)
	}

	client := dialBufconn(t, NewServer(newFakeService()), grpc.UnaryInterceptor(interceptor))

	_, err := client.Press(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	_, err = client.SetDutyCycle(context.Background(), wrapperspb.UInt32(1))
	require.NoError(t, err)

	require.Equal(t, []string{PressMethod, SetDutyCycleMethod}, seen)
}
