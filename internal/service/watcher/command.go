package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/button-presser/internal/config"
	domain "github.com/oshokin/button-presser/internal/domain/actuator"
	"github.com/oshokin/button-presser/internal/logger"
	"github.com/oshokin/button-presser/internal/service/common"
)

// Options controls the watcher polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval defines the interval between status checks.
	PollInterval time.Duration
	// Out receives one line per observed change, os.Stdout when nil.
	Out io.Writer
}

// DefaultPollInterval is short enough to see a 255 ms press as energized.
const DefaultPollInterval = 100 * time.Millisecond

// statusFetcher is the part of the client the watcher needs.
type statusFetcher interface {
	GetStatus(ctx context.Context) (domain.Status, error)
}

// Run polls the server status and prints every change until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err = logger.Configure(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	ctx = logger.WithName(ctx, "button-watch")

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	serverAddress := cfg.GRPCAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	logger.InfoKV(ctx, "Watching actuator status", "server_address", serverAddress, "interval", opts.PollInterval.String())

	return poll(ctx, client, opts.PollInterval, out)
}

// poll prints the first status and then every status that differs from the last one.
// Failed polls are logged and retried on the next tick.
func poll(ctx context.Context, client statusFetcher, interval time.Duration, out io.Writer) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last    domain.Status
		printed bool
	)

	for {
		st, err := client.GetStatus(ctx)

		switch {
		case err != nil:
			logger.ErrorKV(ctx, "Check status failed", "error", err)
		case !printed || st != last:
			if _, err = io.WriteString(out, formatStatus(time.Now(), st)); err != nil {
				return err
			}

			last, printed = st, true
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")

			return nil
		case <-ticker.C:
		}
	}
}

func formatStatus(at time.Time, st domain.Status) string {
	return fmt.Sprintf("%s %-9s completed=%d aborted=%d pending=%d\n",
		at.Format(time.TimeOnly), st.State, st.Completed, st.Aborted, st.Pending)
}
