package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/button-presser/internal/config"
	"github.com/oshokin/button-presser/internal/service/server"
	"github.com/oshokin/button-presser/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// settingsFile where press duration and duty cycle are persisted.
	settingsFile string
	// httpAddress overrides http_addr from the config.
	httpAddress string
	// logLevel overrides log_level from the config.
	logLevel string

	// rootCmd represents the base command for running the button server.
	rootCmd = &cobra.Command{
		Use:   "button-server [listen-address]",
		Short: "Run the button presser actuator service.",
		Long: `Starts the service that drives the button presser actuator.

Every press request is queued and executed in order: the stored duty cycle is applied,
the output is enabled for the stored press duration, then disabled again.
Presses arrive over gRPC (used by button-ctl) and, when http_addr is configured,
over plain HTTP GET requests (/press, /set-press-duration?value=N, /set-duty-cycle?value=N).

Only the port from grpc_addr config is used for listening (e.g., :50051).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:50051).
Settings are persisted to a JSON file and survive restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				HTTPAddress:   httpAddress,
				SettingsFile:  settingsFile,
				LogLevel:      logLevel,
			})
		},
	}
)

// Execute runs the button-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&settingsFile, "settings-file", "s", "", "path to persist press settings (overrides config)")
	rootCmd.Flags().StringVar(&httpAddress, "http", "", "HTTP listen address (overrides config)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn, error (overrides config)")
}
