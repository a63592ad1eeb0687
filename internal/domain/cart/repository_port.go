// internal/domain/cart/repository_port.go
package cart

import "context"

// Repository is a persistence port for Cart.
//
// Storage (Firestore):
// - collection: carts
// - docId: uid
// - fields: items(map productId -> qty), updatedAt
type Repository interface {
	// GetByUID returns (nil, nil) when no cart document exists.
	GetByUID(ctx context.Context, uid string) (*Cart, error)

	// Replace overwrites the whole cart document (no per-item merge).
	Replace(ctx context.Context, c *Cart) error
}
