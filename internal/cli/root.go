package cli

import (
	"context"
	"time"

	"github.com/osvaldoandrade/movectl/internal/config"
	"github.com/osvaldoandrade/movectl/internal/platform"
	"github.com/osvaldoandrade/movectl/pkg/publisher"
	"github.com/spf13/cobra"
)

type RootOptions struct {
	ConfigFile string
	JSONOutput bool
	Config     config.Config
}

func newRootCmd() *cobra.Command {
	opts := &RootOptions{}
	defaults := config.Default()
	cmd := &cobra.Command{
		Use:           "movectl",
		Short:         "Build, publish and upgrade Move packages",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := config.Load(cmd.Context(), config.LoadOptions{
				ConfigFile: opts.ConfigFile,
				Flags:      cmd.Flags(),
			})
			if err != nil {
				return err
			}
			if _, err := platform.ConfigureLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()); err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "Path to a movectl.toml config file")
	flags.BoolVar(&opts.JSONOutput, "json", false, "Emit JSON output")
	flags.String("network", defaults.Network, "Target network (devnet, testnet, mainnet, localnet)")
	flags.String("rpc-url", "", "Fullnode JSON-RPC URL (defaults to the network's public fullnode)")
	flags.String("compiler", defaults.Compiler, "Move compiler binary")
	flags.String("sender", "", "Sender address for unsigned transactions")
	flags.Uint64("gas-budget", defaults.GasBudget, "Gas budget for submitted transactions")
	flags.String("journal", defaults.Journal, "Deployment journal path (empty disables it)")
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("log-format", defaults.LogFormat, "Log format (text, json)")
	flags.Duration("timeout", 0, "Abort the operation after this duration (0 waits indefinitely)")

	cmd.AddCommand(
		newBuildCmd(opts),
		newPublishCmd(opts),
		newPublishBatchCmd(opts),
		newUpgradeCmd(opts),
		newStateCmd(opts),
		newHistoryCmd(opts),
	)

	return cmd
}

// openClient builds a publisher client from the resolved configuration. The
// journal is opened only when withJournal is set.
func openClient(ctx context.Context, opts *RootOptions, withJournal bool) (*publisher.Client, error) {
	return publisher.Open(ctx, opts.Config.Publisher(withJournal))
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
