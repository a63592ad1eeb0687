// internal/domain/cart/totals.go
package cart

import (
	"github.com/shopspring/decimal"

	productdom "storefront/internal/domain/product"
)

// Line is one resolvable cart entry priced against the catalog snapshot.
type Line struct {
	Product   productdom.Product
	Quantity  int
	LineTotal decimal.Decimal
}

// Totals is the derived view of a cart.
//   - Subtotal only covers entries found in the catalog
//   - CartCount covers every entry (badge count), resolvable or not
type Totals struct {
	Lines      []Line
	Subtotal   decimal.Decimal
	CartCount  int
	Unresolved []string
}

// ComputeSubtotal prices items against catalog.
// A product missing from the catalog (deleted / unavailable) is skipped rather than failing.
func ComputeSubtotal(items Items, catalog productdom.Catalog) Totals {
	t := Totals{
		Lines:     []Line{},
		Subtotal:  decimal.Zero,
		CartCount: items.Count(),
	}
	for _, id := range items.ProductIDs() {
		qty := items[id]
		p, ok := catalog.Lookup(id)
		if !ok {
			t.Unresolved = append(t.Unresolved, id)
			continue
		}
		lt := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		t.Lines = append(t.Lines, Line{Product: p, Quantity: qty, LineTotal: lt})
		t.Subtotal = t.Subtotal.Add(lt)
	}
	return t
}
