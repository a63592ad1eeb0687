// internal/domain/product/entity.go
package product

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// PlaceholderImageURL is shown when a product has no image reference.
const PlaceholderImageURL = "https://placehold.co/600x600?text=No+Image"

// DefaultVendor is assigned by the vendor backfill when no better name is known.
const DefaultVendor = "Unknown Vendor"

var (
	ErrNotFound           = errors.New("product: not found")
	ErrInvalidName        = errors.New("product: invalid name")
	ErrInvalidDescription = errors.New("product: invalid description")
	ErrInvalidPrice       = errors.New("product: invalid price")
	ErrMissingFields      = errors.New("product: missing required fields: name, description, price")
)

// Product is a catalog entry.
// ID is assigned by the store on insert and never changes afterwards.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	ImageURL      string
	OriginCountry string
	Vendor        string
	CreatedAt     time.Time
}

// DisplayImageURL resolves the placeholder for products without an image.
func (p Product) DisplayImageURL() string {
	if u := strings.TrimSpace(p.ImageURL); u != "" {
		return u
	}
	return PlaceholderImageURL
}

// Draft is the input of admin add-product / CSV import.
type Draft struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	ImageURL      string
	OriginCountry string
	Vendor        string
}

// Validate checks the fields every stored product must have.
// Price must be non-negative; callers that need a strictly positive price
// (CSV import) check that themselves.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(d.Description) == "" {
		return ErrInvalidDescription
	}
	if d.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// ToProduct turns a validated draft into an unsaved Product (ID empty).
func (d Draft) ToProduct(now time.Time) Product {
	return Product{
		Name:          strings.TrimSpace(d.Name),
		Description:   strings.TrimSpace(d.Description),
		Price:         d.Price,
		ImageURL:      strings.TrimSpace(d.ImageURL),
		OriginCountry: strings.TrimSpace(d.OriginCountry),
		Vendor:        strings.TrimSpace(d.Vendor),
		CreatedAt:     now.UTC(),
	}
}

// ParsePrice coerces a loosely typed price (JSON number, numeric string) into a decimal.
func ParsePrice(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, ErrInvalidPrice
	case decimal.Decimal:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Zero, ErrInvalidPrice
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
		}
		return d, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	return decimal.NewFromFloat(f), nil
}

// Catalog is a read-only snapshot of products keyed by id.
type Catalog map[string]Product

// NewCatalog indexes a product list.
func NewCatalog(list []Product) Catalog {
	c := make(Catalog, len(list))
	for _, p := range list {
		c[p.ID] = p
	}
	return c
}

// Lookup returns the product for id.
func (c Catalog) Lookup(id string) (Product, bool) {
	p, ok := c[id]
	return p, ok
}
