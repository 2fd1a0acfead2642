package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the trylite command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trylite",
		Short: "Run operations under retry, classification and fallback policies",
		Long: `trylite drives a simulated flaky operation through the resilience
executor so retry schedules, error classification and fallbacks can be
observed end to end.

Exit Codes:
  0  - Every run succeeded (or was substituted by a fallback)
  1  - At least one run failed, or the command could not start`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "dotenv files loaded before the config")

	rootCmd.AddCommand(newRunCmd(), newVersionCmd())
	return rootCmd
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}
