package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"go.uber.org/multierr"
	"google.golang.org/grpc"

	"github.com/oshokin/button-presser/internal/actuator"
	grpcapi "github.com/oshokin/button-presser/internal/api/grpc/presser"
	httpapi "github.com/oshokin/button-presser/internal/api/http/presser"
	"github.com/oshokin/button-presser/internal/config"
	"github.com/oshokin/button-presser/internal/logger"
	"github.com/oshokin/button-presser/internal/queue"
	repository "github.com/oshokin/button-presser/internal/repository/settings"
	"github.com/oshokin/button-presser/internal/service/sequencer"
	"github.com/oshokin/button-presser/internal/version"
)

// Options controls the button-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// HTTPAddress overrides http_addr from the config when set.
	HTTPAddress string
	// SettingsFile overrides the path of the persisted press settings.
	SettingsFile string
	// LogLevel overrides log_level from the config when set.
	LogLevel string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// components are the long-lived parts of a running server.
type components struct {
	driver     actuator.Device
	commands   *queue.Queue
	grpcServer *grpc.Server
	httpServer *http.Server
	// stopSequencer cancels the sequencer context; sequencerDone yields its result.
	stopSequencer context.CancelFunc
	sequencerDone chan error
}

// Run starts the actuator sequencer and the command transports,
// then blocks until ctx is canceled or a transport fails.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(settings, opts)

	if err = logger.Configure(os.Stdout, settings.LogLevel, settings.LogFormat); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	ctx = logger.WithFields(logger.WithName(ctx, "button-server"), "version", version.Short())

	grpcAddress, err := resolveListenAddress(settings.GRPCAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo := repository.NewFileRepository(settings.SettingsFile)

	driver, err := actuator.New(ctx, settings.Driver)
	if err != nil {
		return fmt.Errorf("initialise actuator: %w", err)
	}

	commands := queue.New()
	seq := sequencer.New(commands, repo, driver)

	// The output must be off before any trigger is accepted.
	if err = seq.Reset(ctx); err != nil {
		return multierr.Append(fmt.Errorf("reset actuator: %w", err), driver.Close())
	}

	lc := net.ListenConfig{}

	grpcListener, err := lc.Listen(ctx, "tcp", grpcAddress)
	if err != nil {
		return multierr.Append(fmt.Errorf("listen on %s: %w", grpcAddress, err), driver.Close())
	}

	var httpListener net.Listener
	if settings.HTTPAddress != "" {
		httpListener, err = lc.Listen(ctx, "tcp", settings.HTTPAddress)
		if err != nil {
			return multierr.Combine(
				fmt.Errorf("listen on %s: %w", settings.HTTPAddress, err),
				grpcListener.Close(),
				driver.Close(),
			)
		}
	}

	svc := newService(repo, commands, seq)

	c := &components{
		driver:        driver,
		commands:      commands,
		grpcServer:    grpc.NewServer(),
		sequencerDone: make(chan error, 1),
	}

	grpcapi.RegisterPresserServiceServer(c.grpcServer, grpcapi.NewServer(svc))

	// The sequencer outlives ctx so that shutdown can stop the transports first.
	var seqCtx context.Context
	seqCtx, c.stopSequencer = context.WithCancel(context.WithoutCancel(logger.WithName(ctx, "sequencer")))

	go func() {
		c.sequencerDone <- seq.Run(seqCtx)
	}()

	serveErrs := make(chan error, 2)

	go func() {
		if serveErr := c.grpcServer.Serve(grpcListener); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			serveErrs <- fmt.Errorf("serve gRPC: %w", serveErr)
		}
	}()

	if httpListener != nil {
		c.httpServer = &http.Server{
			Handler:           httpapi.NewRouter(ctx, svc),
			ReadHeaderTimeout: settings.Timeout,
		}

		go func() {
			if serveErr := c.httpServer.Serve(httpListener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				serveErrs <- fmt.Errorf("serve HTTP: %w", serveErr)
			}
		}()
	}

	logger.InfoKV(ctx, "Button server listening",
		"grpc_address", grpcAddress,
		"http_address", settings.HTTPAddress,
		"settings_file", settings.SettingsFile,
		"driver", settings.Driver.Kind,
	)

	var runErr error

	select {
	case <-ctx.Done():
	case runErr = <-serveErrs:
		logger.ErrorKV(ctx, "Transport failed", "error", runErr)
	}

	return multierr.Append(runErr, c.shutdown(ctx, settings))
}

// shutdown stops accepting commands, lets the in-flight press finish and
// releases the driver.
func (c *components) shutdown(ctx context.Context, settings *config.Config) error {
	logger.Info(ctx, "Shutting down")

	c.grpcServer.GracefulStop()

	var err error

	if c.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settings.Timeout)
		err = multierr.Append(err, c.httpServer.Shutdown(shutdownCtx))

		cancel()
	}

	c.commands.Close()

	if pending := c.commands.Len(); pending > 0 {
		logger.WarnKV(ctx, "Dropping queued presses", "pending", pending)
	}

	c.stopSequencer()

	err = multierr.Append(err, <-c.sequencerDone)
	err = multierr.Append(err, c.driver.Close())

	logger.Info(ctx, "Button server stopped")

	return err
}

// applyOverrides merges command line options into the loaded config.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.SettingsFile != "" {
		settings.SettingsFile = opts.SettingsFile
	}

	if opts.HTTPAddress != "" {
		settings.HTTPAddress = opts.HTTPAddress
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Port-only binds on all interfaces.
	return ":" + port, nil
}
