package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/button-presser/internal/config"
	client "github.com/oshokin/button-presser/internal/service/client"
	"github.com/oshokin/button-presser/internal/service/watcher"
	"github.com/oshokin/button-presser/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides grpc_addr from the config.
	serverAddress string
	// pollInterval is the watch polling period.
	pollInterval time.Duration

	// rootCmd represents the base command for controlling the button server.
	rootCmd = &cobra.Command{
		Use:   "button-ctl",
		Short: "Control a running button-server.",
		Long: `Sends commands to the button server over gRPC.

The server address is read from grpc_addr in the configuration file
unless --server is given.`,
		SilenceUsage: true,
	}

	pressCmd = &cobra.Command{
		Use:   "press",
		Short: "Queue one press of the button.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withSignals(func(ctx context.Context) error {
				return client.Press(ctx, options())
			})
		},
	}

	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the stored settings and the actuator status.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withSignals(func(ctx context.Context) error {
				return client.Show(ctx, options())
			})
		},
	}

	setDurationCmd = &cobra.Command{
		Use:   "set-duration <milliseconds>",
		Short: "Store how long a press holds the output enabled (0..255 ms).",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withSignals(func(ctx context.Context) error {
				return client.SetPressDuration(ctx, options(), args[0])
			})
		},
	}

	setDutyCmd = &cobra.Command{
		Use:   "set-duty <0..255>",
		Short: "Store the PWM duty cycle applied during a press.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withSignals(func(ctx context.Context) error {
				return client.SetDutyCycle(ctx, options(), args[0])
			})
		},
	}
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the actuator status every time it changes.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withSignals(func(ctx context.Context) error {
			return watcher.Run(ctx, &watcher.Options{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
				PollInterval:  pollInterval,
				Out:           rootCmd.OutOrStdout(),
			})
		})
	},
}

// Execute runs the button-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func options() *client.Options {
	return &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Out:           rootCmd.OutOrStdout(),
	}
}

func withSignals(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return fn(ctx)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&serverAddress, "server", "", "server address (overrides config)")

	watchCmd.Flags().
		DurationVarP(&pollInterval, "interval", "i", watcher.DefaultPollInterval, "status polling interval")

	rootCmd.AddCommand(pressCmd, showCmd, setDurationCmd, setDutyCmd, watchCmd)
}
