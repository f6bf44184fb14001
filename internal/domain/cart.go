package domain

import (
	"errors"
	"math"
	"slices"
	"time"
)

// ErrQuantityOverflow is returned when summing quantities would exceed the
// largest representable quantity.
var ErrQuantityOverflow = errors.New("quantity is too large")

// CartEntry is one line of a cart. Quantity is always at least 1; an entry
// whose quantity would drop below 1 is removed instead.
type CartEntry struct {
	Item     string   `json:"item" bson:"item"`
	ItemType ItemType `json:"itemType" bson:"item_type"`
	Quantity int      `json:"quantity" bson:"quantity"`
}

// Key returns the entry's identity within the cart.
func (e CartEntry) Key() ItemKey {
	return ItemKey{Item: e.Item, ItemType: e.ItemType}
}

// Cart holds the entries for one owner. Owner is empty for a browser-local cart.
type Cart struct {
	Owner     string      `json:"owner,omitempty" bson:"owner"`
	Entries   []CartEntry `json:"entries" bson:"entries"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updated_at"`
}

// NewCart returns an empty cart for owner.
func NewCart(owner string) *Cart {
	return &Cart{Owner: owner, Entries: []CartEntry{}}
}

func (c *Cart) index(key ItemKey) int {
	for i := range c.Entries {
		if c.Entries[i].Key() == key {
			return i
		}
	}
	return -1
}

// Find returns the entry for key.
func (c *Cart) Find(key ItemKey) (CartEntry, bool) {
	if i := c.index(key); i >= 0 {
		return c.Entries[i], true
	}
	return CartEntry{}, false
}

// Add increases the quantity of an existing entry or appends a new one.
// Callers validate qty >= 1. The cart is left untouched when the sum would
// overflow.
func (c *Cart) Add(key ItemKey, qty int) error {
	if i := c.index(key); i >= 0 {
		if qty > math.MaxInt-c.Entries[i].Quantity {
			return ErrQuantityOverflow
		}
		c.Entries[i].Quantity += qty
		return nil
	}
	c.Entries = append(c.Entries, CartEntry{Item: key.Item, ItemType: key.ItemType, Quantity: qty})
	return nil
}

// Remove deletes the entry for key and reports whether it was present.
func (c *Cart) Remove(key ItemKey) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	c.Entries = slices.Delete(c.Entries, i, i+1)
	return true
}

// SetQuantity sets an existing entry's quantity; qty < 1 removes it.
// It reports whether the entry was present.
func (c *Cart) SetQuantity(key ItemKey, qty int) bool {
	if qty < 1 {
		return c.Remove(key)
	}
	i := c.index(key)
	if i < 0 {
		return false
	}
	c.Entries[i].Quantity = qty
	return true
}

// Merge folds other into c by summing quantities per entry. Either every
// entry is merged or, on overflow, c is unchanged.
func (c *Cart) Merge(other *Cart) error {
	if other == nil {
		return nil
	}
	merged := c.Clone()
	for _, e := range other.Entries {
		if e.Quantity < 1 {
			continue
		}
		if err := merged.Add(e.Key(), e.Quantity); err != nil {
			return err
		}
	}
	c.Entries = merged.Entries
	return nil
}

// ItemCount is the sum of all quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, e := range c.Entries {
		if e.Quantity > math.MaxInt-n {
			return math.MaxInt
		}
		n += e.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no entries.
func (c *Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}

// Clone returns a deep copy.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Entries = slices.Clone(c.Entries)
	if cp.Entries == nil {
		cp.Entries = []CartEntry{}
	}
	return &cp
}
