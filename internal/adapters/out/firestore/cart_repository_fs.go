// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "storefront/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: uid (docId is the source of truth)
// - fields: items(map productId -> qty), updatedAt
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// GetByUID returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) GetByUID(ctx context.Context, uid string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	id := strings.TrimSpace(uid)
	if id == "" {
		return nil, errors.New("cart_repository_fs: uid is empty")
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	c := cartFromData(snap.Data())
	c.ID = id
	return c, nil
}

// Replace overwrites the whole document; items not in c disappear.
func (r *CartRepositoryFS) Replace(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return errors.New("cart_repository_fs: Replace requires cart.ID (= uid) as docId")
	}

	items := map[string]int{}
	for k, v := range cartdom.Normalize(c.Items) {
		items[k] = v
	}
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.col().Doc(strings.TrimSpace(c.ID)).Set(ctx, map[string]any{
		"items":     items,
		"updatedAt": updatedAt,
	})
	return err
}

// cartFromData decodes snap.Data() without DataTo so that legacy quantity
// types (string / float) do not turn into a decode error.
func cartFromData(raw map[string]any) *cartdom.Cart {
	c := &cartdom.Cart{Items: cartdom.Items{}}
	if raw == nil {
		return c
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		c.UpdatedAt = t
	}

	m, _ := raw["items"].(map[string]any)
	for k, v := range m {
		pid := strings.TrimSpace(k)
		if pid == "" {
			continue
		}
		qty, ok := asQty(v)
		if !ok {
			continue
		}
		c.Items[pid] += qty
	}
	return c
}
