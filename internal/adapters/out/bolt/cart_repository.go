package bolt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	cartdom "storefront/internal/domain/cart"
)

type cartRecord struct {
	Items     map[string]int `json:"items"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// CartRepository implements cart.Repository on a Store.
type CartRepository struct {
	store *Store
}

func NewCartRepository(s *Store) *CartRepository {
	return &CartRepository{store: s}
}

func (r *CartRepository) GetByUID(ctx context.Context, uid string) (*cartdom.Cart, error) {
	if err := r.store.ready(ctx); err != nil {
		return nil, err
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, fmt.Errorf("cart uid is required")
	}

	var rec cartRecord
	var found bool
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = get(tx, cartsBucket, uid, &rec)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &cartdom.Cart{ID: uid, Items: cartdom.Normalize(rec.Items), UpdatedAt: rec.UpdatedAt}, nil
}

func (r *CartRepository) Replace(ctx context.Context, c *cartdom.Cart) error {
	if err := r.store.ready(ctx); err != nil {
		return err
	}
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("cart uid is required")
	}
	rec := cartRecord{Items: cartdom.Normalize(c.Items), UpdatedAt: c.UpdatedAt.UTC()}
	return r.store.db.Update(func(tx *bbolt.Tx) error {
		return put(tx, cartsBucket, strings.TrimSpace(c.ID), rec)
	})
}
