package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "summarizer",
		Short:        "Relay text to a hosted summarization model and keep a local history of summaries.",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// A missing .env file is fine; the environment may already be set.
			_ = godotenv.Load()
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(),
		newSummarizeCmd(),
		newHistoryCmd(),
		newMirrorCmd(),
		newShellCmd(),
	)

	return root
}

func newLogger(w io.Writer) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(w, nil))
	slog.SetDefault(log)

	return log
}
