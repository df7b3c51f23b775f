package client

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/button-presser/internal/config"
	domain "github.com/oshokin/button-presser/internal/domain/actuator"
	"github.com/oshokin/button-presser/internal/logger"
	"github.com/oshokin/button-presser/internal/service/common"
)

// Options configures how button-ctl reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Out receives human readable output, os.Stdout when nil.
	Out io.Writer
}

// action is one call against a connected client.
type action func(ctx context.Context, client *common.Client, out io.Writer) error

// Press queues one actuation on the server.
func Press(ctx context.Context, opts *Options) error {
	return run(ctx, opts, "press", func(ctx context.Context, client *common.Client, out io.Writer) error {
		if err := client.Press(ctx); err != nil {
			return err
		}

		_, err := fmt.Fprintln(out, "press queued")

		return err
	})
}

// Show prints the stored settings and the sequencer status.
func Show(ctx context.Context, opts *Options) error {
	return run(ctx, opts, "show", func(ctx context.Context, client *common.Client, out io.Writer) error {
		settings, err := client.GetSettings(ctx)
		if err != nil {
			return err
		}

		status, err := client.GetStatus(ctx)
		if err != nil {
			return err
		}

		_, err = io.WriteString(out, formatReport(settings, status))

		return err
	})
}

// SetPressDuration stores the press duration given as decimal milliseconds.
func SetPressDuration(ctx context.Context, opts *Options, raw string) error {
	return set(ctx, opts, domain.KeyPressDuration, raw)
}

// SetDutyCycle stores the duty cycle given as a decimal 0..255.
func SetDutyCycle(ctx context.Context, opts *Options, raw string) error {
	return set(ctx, opts, domain.KeyDutyCycle, raw)
}

// set validates locally so typos never reach the server.
func set(ctx context.Context, opts *Options, key domain.Key, raw string) error {
	value, err := domain.ParseValue(raw)
	if err != nil {
		return err
	}

	return run(ctx, opts, "set "+string(key), func(ctx context.Context, client *common.Client, out io.Writer) error {
		if key == domain.KeyPressDuration {
			err = client.SetPressDuration(ctx, value)
		} else {
			err = client.SetDutyCycle(ctx, value)
		}

		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(out, "%s set to %d\n", key, value)

		return err
	})
}

// run loads config, dials the server and executes fn.
func run(ctx context.Context, opts *Options, name string, fn action) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout carries only command output.
	if err = logger.Configure(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	ctx = logger.WithFields(ctx, "command", name)

	serverAddress := cfg.GRPCAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	clientOpts := []common.Option{common.WithCallTimeout(cfg.Timeout)}

	// A missing identity only makes the server log less precise.
	if source, sourceErr := common.DetectSource(); sourceErr == nil {
		clientOpts = append(clientOpts, common.WithSource(source))
	} else {
		logger.WarnKV(ctx, "Unable to detect caller identity", "error", sourceErr)
	}

	client, err := common.Dial(ctx, serverAddress, clientOpts...)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Calling button server", "server_address", serverAddress)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if err = fn(ctx, client, out); err != nil {
		logger.ErrorKV(ctx, "Request failed", "error", err)

		return err
	}

	return nil
}

// formatReport renders settings and status for a terminal.
func formatReport(settings common.Settings, status domain.Status) string {
	value := func(key domain.Key, unit string) string {
		v, ok := settings[key]
		if !ok {
			return "not set"
		}

		return fmt.Sprintf("%d%s", v, unit)
	}

	return fmt.Sprintf(
		"press duration: %s\nduty cycle:     %s\nstate:          %s\ncompleted:      %d\naborted:        %d\npending:        %d\n",
		value(domain.KeyPressDuration, " ms"),
		value(domain.KeyDutyCycle, "/255"),
		status.State,
		status.Completed,
		status.Aborted,
		status.Pending,
	)
}
