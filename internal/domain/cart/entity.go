// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidCart      = errors.New("cart: invalid")
	ErrInvalidProductID = errors.New("cart: invalid productId")
)

// Items maps productId -> quantity.
// Every present entry has qty >= 1; a zero-quantity entry never exists.
//
// All mutators are value-style: they return a fresh map and never touch the receiver,
// so a caller can keep the previous snapshot around (persist / rollback / compare).
type Items map[string]int

// Cart represents "a cart document".
//   - docId = uid of the owning identity
//   - Items: productId -> qty
type Cart struct {
	// ID is the document id (= uid).
	ID        string    `json:"id" firestore:"-"`
	Items     Items     `json:"items" firestore:"items"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// New builds a cart for uid with normalized items.
func New(uid string, items Items, now time.Time) (*Cart, error) {
	c := &Cart{
		ID:        strings.TrimSpace(uid),
		Items:     Normalize(items),
		UpdatedAt: now.UTC(),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cart) validate() error {
	if c == nil || c.ID == "" {
		return ErrInvalidCart
	}
	for id, qty := range c.Items {
		if strings.TrimSpace(id) == "" || qty <= 0 {
			return ErrInvalidCart
		}
	}
	return nil
}

// AddItem increments qty for productID by one (inserts with 1 if absent).
func AddItem(items Items, productID string) (Items, error) {
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return items.Clone(), ErrInvalidProductID
	}
	out := items.Clone()
	out[pid]++
	return out, nil
}

// DecrementItem lowers qty by one; an entry at qty 1 is removed.
// Absent productID is a no-op.
func DecrementItem(items Items, productID string) Items {
	pid := strings.TrimSpace(productID)
	out := items.Clone()
	qty, ok := out[pid]
	if !ok {
		return out
	}
	if qty > 1 {
		out[pid] = qty - 1
	} else {
		delete(out, pid)
	}
	return out
}

// RemoveItem deletes productID regardless of its quantity.
func RemoveItem(items Items, productID string) Items {
	out := items.Clone()
	delete(out, strings.TrimSpace(productID))
	return out
}

// Clone returns a copy that is always non-nil.
func (it Items) Clone() Items {
	out := make(Items, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

// Count is the sum of all quantities (badge count).
func (it Items) Count() int {
	n := 0
	for _, q := range it {
		n += q
	}
	return n
}

// ProductIDs returns ids in a stable order.
func (it Items) ProductIDs() []string {
	ids := make([]string, 0, len(it))
	for k := range it {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

// Equal reports whether both mappings hold the same entries.
// nil and empty are equal.
func (it Items) Equal(other Items) bool {
	if len(it) != len(other) {
		return false
	}
	for k, v := range it {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Normalize trims ids and drops entries that would break the qty >= 1 invariant.
// Duplicate ids after trimming are summed.
func Normalize(src Items) Items {
	out := make(Items, len(src))
	for k, v := range src {
		id := strings.TrimSpace(k)
		if id == "" || v <= 0 {
			continue
		}
		out[id] += v
	}
	return out
}
