package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	productdom "storefront/internal/domain/product"
)

func TestComputeSubtotalSkipsUnresolved(t *testing.T) {
	catalog := productdom.NewCatalog([]productdom.Product{
		{ID: "p1", Name: "Laptop", Price: decimal.RequireFromString("10.50")},
		{ID: "p2", Name: "Mouse", Price: decimal.RequireFromString("2.25")},
	})
	items := Items{"p1": 2, "p2": 1, "gone": 4}

	got := ComputeSubtotal(items, catalog)

	if want := decimal.RequireFromString("23.25"); !got.Subtotal.Equal(want) {
		t.Fatalf("Subtotal = %s, want %s", got.Subtotal, want)
	}
	if got.CartCount != 7 {
		t.Fatalf("CartCount = %d, want 7", got.CartCount)
	}
	if len(got.Unresolved) != 1 || got.Unresolved[0] != "gone" {
		t.Fatalf("Unresolved = %v, want [gone]", got.Unresolved)
	}
	if len(got.Lines) != 2 {
		t.Fatalf("Lines = %d, want 2", len(got.Lines))
	}
}

func TestComputeSubtotalEmptyCart(t *testing.T) {
	got := ComputeSubtotal(nil, productdom.Catalog{})
	if !got.Subtotal.IsZero() || got.CartCount != 0 || len(got.Lines) != 0 {
		t.Fatalf("unexpected totals %+v", got)
	}
}
