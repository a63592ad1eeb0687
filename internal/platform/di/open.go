// internal/platform/di/open.go
package di

import (
	"context"
	"errors"

	"go.uber.org/zap"

	appcfg "storefront/internal/infra/config"
	shared "storefront/internal/platform/di/shared"
)

// Open builds infra and container in one go for command-line tools.
// The returned close func releases both.
func Open(ctx context.Context, cfg *appcfg.Config, log *zap.Logger) (*Container, func() error, error) {
	inf, err := shared.NewInfra(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	c, err := Build(ctx, inf)
	if err != nil {
		_ = inf.Close()
		return nil, nil, err
	}
	return c, func() error {
		return errors.Join(c.Close(), inf.Close())
	}, nil
}
