package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one extraction for the previous business day and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), opts)
		},
	}
}

func runOnce(ctx context.Context, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.runAndPush(ctx); err != nil {
		a.log.Error("run failed", zap.Error(err))
		return err
	}
	return nil
}
