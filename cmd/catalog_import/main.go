// cmd/catalog_import/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gcsadapter "storefront/internal/adapters/out/gcs"
	usecase "storefront/internal/application/usecase"
	importdom "storefront/internal/domain/catalogimport"
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

type options struct {
	validateOnly bool
	format       string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "catalog_import <file.csv|file.xlsx|gs://bucket/object>",
		Short:        "Validate and import a product catalog file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.validateOnly, "validate-only", false, "check the file and exit without writing")
	cmd.Flags().StringVar(&opts.format, "format", "auto", "input format: auto, csv or xlsx")
	return cmd
}

func run(cmd *cobra.Command, src string, opts options) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// local files can be validated without touching any store
	if opts.validateOnly && !gcsadapter.IsObjectURI(src) {
		raw, err := readSource(ctx, src, opts.format, nil)
		if err != nil {
			return err
		}
		return report(out, importdom.Validate(raw))
	}

	cfg, err := appcfg.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Development: cfg.LogDevelopment, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, closeFn, err := di.Open(ctx, cfg, logger.Named("catalog_import"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()

	var objects objectReader
	if c.ImportSource != nil {
		objects = c.ImportSource
	}
	raw, err := readSource(ctx, src, opts.format, objects)
	if err != nil {
		return err
	}

	if opts.validateOnly {
		return report(out, c.ImportUC.Validate(raw))
	}

	res, err := c.ImportUC.Import(ctx, raw)
	if err != nil {
		return report(out, err)
	}
	printResult(out, res)
	if res.Outcome == usecase.ImportFailed {
		return errors.New("no rows were imported")
	}
	return nil
}

func report(w io.Writer, err error) error {
	if err == nil {
		fmt.Fprintln(w, "valid")
		return nil
	}
	var ve *importdom.ValidationError
	if errors.As(err, &ve) {
		fmt.Fprintf(w, "invalid (%s): %s\n", ve.Rule, ve.Reason)
	}
	return err
}

func printResult(w io.Writer, res usecase.ImportResult) {
	fmt.Fprintf(w, "outcome=%s imported=%d failed=%d\n", res.Outcome, res.Imported, res.Failed)
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  line %d %q: %v\n", f.Line, f.Name, f.Err)
	}
	if res.RefreshErr != nil {
		fmt.Fprintf(w, "catalog refresh failed: %v\n", res.RefreshErr)
	}
}
