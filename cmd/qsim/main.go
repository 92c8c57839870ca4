package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/theapemachine/qsim/internal/config"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qsim",
		Short: "Noisy Bell-state sandbox",
		Long: `qsim prepares a two-qubit Bell state, runs it on a state-vector simulator
under a bit-flip noise model and prints the measurement histogram.

Noise is on by default. Pass --ideal to run the plain Bell circuit on a
noiseless simulator instead.

Without a subcommand it behaves like "qsim run".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSimulation,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./qsim.yaml or ~/.config/qsim/qsim.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "CLI log level: debug, info, warn, error (library logs go through errnie and are not filtered)")
	rootCmd.PersistentFlags().String("history-path", "", "Run history database (default .qsim/history.db)")

	addRunFlags(rootCmd)

	rootCmd.AddCommand(
		newRunCmd(),
		newNoiseCmd(),
		newQASMCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// loadConfig resolves settings against the flags of the running command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	return config.Load(cmd.Flags(), file)
}
