// cmd/admin_tools/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/logging"
	"storefront/internal/platform/di"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin_tools",
		Short:         "Storefront maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newGrantAdminCmd(), newBackfillVendorsCmd(), newSeedSamplesCmd())
	return root
}

// withContainer loads config, opens the store and runs fn.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *di.Container) error) error {
	cfg, err := appcfg.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Development: cfg.LogDevelopment, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	c, closeFn, err := di.Open(ctx, cfg, logger.Named("admin_tools"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()
	return fn(ctx, c)
}
