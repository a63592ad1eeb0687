package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/platform/di"
)

func newGrantAdminCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "grant-admin",
		Short: "Give the admin role to the profile with the given email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("--email is required")
			}
			return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				u, err := c.ProfileUC.GrantAdmin(ctx, email)
				if errors.Is(err, usecase.ErrProfileNotRegistered) {
					return fmt.Errorf("no profile for %s: ask the user to sign in once, then run this again", email)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "granted admin to %s (uid=%s)\n", u.Email, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the profile to promote")
	return cmd
}

func newBackfillVendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-vendors",
		Short: "Give every product without a vendor a default one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				res, err := c.CatalogUC.BackfillVendors(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "updated=%d skipped=%d\n", res.Updated, res.Skipped)
				return err
			})
		},
	}
}

func newSeedSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-samples",
		Short: "Add the sample products to the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				added, err := c.CatalogUC.SeedSamples(ctx)
				for _, p := range added {
					fmt.Fprintf(cmd.OutOrStdout(), "added %s %q\n", p.ID, p.Name)
				}
				return err
			})
		},
	}
}
