package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "membench [command] (flags)",
	Short: "membership structure benchmarking tool",
	Long: `membench compares a linear scan, binary search, a hash set, a Bloom
filter and a Cuckoo filter at answering "is this username taken" queries.`,
	SilenceUsage: true,
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(benchCmd, generateCmd)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra has already printed the error message.
		stop()
		os.Exit(1)
	}
}
