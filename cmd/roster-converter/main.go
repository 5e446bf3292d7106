package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "roster-converter: %v\n", err)
		os.Exit(1)
	}
}

var logLevel string

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster-converter",
		Short: "Build and inspect the student roster used by the fee desk",
		Long: `roster-converter turns the school's fee register spreadsheet into the JSON
roster the fee desk searches, and looks students up in an existing roster.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.AddCommand(
		newConvertCmd(),
		newLookupCmd(),
	)
	return cmd
}
