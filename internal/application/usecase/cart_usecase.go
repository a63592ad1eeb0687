// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
	sessiondom "storefront/internal/domain/session"
)

var (
	// ErrSignInRequired means the caller must authenticate first (redirect to login).
	ErrSignInRequired      = errors.New("cart_usecase: sign-in required")
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
)

// CartUsecase is the stateless cart engine: pure item operations plus load/persist.
type CartUsecase struct {
	repo  cartdom.Repository
	clock Clock
	log   *zap.Logger
}

func NewCartUsecase(repo cartdom.Repository, log *zap.Logger) *CartUsecase {
	return NewCartUsecaseWithClock(repo, systemClock{}, log)
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(repo cartdom.Repository, clock Clock, log *zap.Logger) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{repo: repo, clock: clock, log: log.Named("cart")}
}

// AddItem increments productID. An anonymous caller gets ErrSignInRequired.
func (uc *CartUsecase) AddItem(items cartdom.Items, identity *sessiondom.Identity, productID string) (cartdom.Items, error) {
	if !identity.Valid() {
		return items.Clone(), ErrSignInRequired
	}
	out, err := cartdom.AddItem(items, productID)
	if err != nil {
		return out, ErrCartInvalidArgument
	}
	return out, nil
}

func (uc *CartUsecase) DecrementItem(items cartdom.Items, productID string) cartdom.Items {
	return cartdom.DecrementItem(items, productID)
}

func (uc *CartUsecase) RemoveItem(items cartdom.Items, productID string) cartdom.Items {
	return cartdom.RemoveItem(items, productID)
}

func (uc *CartUsecase) ComputeSubtotal(items cartdom.Items, catalog productdom.Catalog) cartdom.Totals {
	return cartdom.ComputeSubtotal(items, catalog)
}

// Persist overwrites carts/{uid} with items. No retry.
func (uc *CartUsecase) Persist(ctx context.Context, items cartdom.Items, identity *sessiondom.Identity) error {
	if !identity.Valid() {
		return ErrSignInRequired
	}
	c, err := cartdom.New(identity.UID, items, uc.clock.Now())
	if err != nil {
		return err
	}
	if err := uc.repo.Replace(ctx, c); err != nil {
		uc.log.Warn("persist failed", zap.String("uid", c.ID), zap.Error(err))
		return fmt.Errorf("cart persist uid=%s: %w", c.ID, err)
	}
	return nil
}

// Load reads the persisted cart; an absent document is an empty cart.
func (uc *CartUsecase) Load(ctx context.Context, identity *sessiondom.Identity) (cartdom.Items, error) {
	if !identity.Valid() {
		return cartdom.Items{}, ErrSignInRequired
	}
	uid := strings.TrimSpace(identity.UID)
	c, err := uc.repo.GetByUID(ctx, uid)
	if err != nil {
		return cartdom.Items{}, fmt.Errorf("cart load uid=%s: %w", uid, err)
	}
	if c == nil {
		return cartdom.Items{}, nil
	}
	return cartdom.Normalize(c.Items), nil
}
