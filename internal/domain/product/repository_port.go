// internal/domain/product/repository_port.go
package product

import "context"

// Repository is a persistence port for the products collection.
//
// Storage (Firestore):
// - collection: products
// - docId: store generated (Add)
// - fields: name, description, price(number), imageUrl, originCountry, vendor, createdAt
type Repository interface {
	// GetByID returns ErrNotFound when the document does not exist.
	GetByID(ctx context.Context, id string) (Product, error)

	// Add inserts p under a store-generated id and returns the stored product.
	Add(ctx context.Context, p Product) (Product, error)

	// ListAll is a full collection scan.
	ListAll(ctx context.Context) ([]Product, error)

	// SetVendor merge-updates the vendor field only.
	SetVendor(ctx context.Context, id, vendor string) error
}
