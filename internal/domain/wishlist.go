package domain

import (
	"slices"
	"time"
)

// WishlistEntry marks an item as wished for.
type WishlistEntry struct {
	Item     string   `json:"item" bson:"item"`
	ItemType ItemType `json:"itemType" bson:"item_type"`
}

// Key returns the entry's identity within the wishlist.
func (e WishlistEntry) Key() ItemKey {
	return ItemKey{Item: e.Item, ItemType: e.ItemType}
}

// Wishlist is a set of entries for one owner.
type Wishlist struct {
	Owner     string          `json:"owner,omitempty" bson:"owner"`
	Entries   []WishlistEntry `json:"entries" bson:"entries"`
	UpdatedAt time.Time       `json:"updatedAt" bson:"updated_at"`
}

// NewWishlist returns an empty wishlist for owner.
func NewWishlist(owner string) *Wishlist {
	return &Wishlist{Owner: owner, Entries: []WishlistEntry{}}
}

func (w *Wishlist) index(key ItemKey) int {
	return slices.IndexFunc(w.Entries, func(e WishlistEntry) bool { return e.Key() == key })
}

// Contains reports membership of key.
func (w *Wishlist) Contains(key ItemKey) bool {
	return w.index(key) >= 0
}

// Add inserts key unless already present and reports whether it changed
// the wishlist.
func (w *Wishlist) Add(key ItemKey) bool {
	if w.Contains(key) {
		return false
	}
	w.Entries = append(w.Entries, WishlistEntry{Item: key.Item, ItemType: key.ItemType})
	return true
}

// Remove deletes key and reports whether it was present.
func (w *Wishlist) Remove(key ItemKey) bool {
	i := w.index(key)
	if i < 0 {
		return false
	}
	w.Entries = slices.Delete(w.Entries, i, i+1)
	return true
}

// Merge adds every entry of other not already present.
func (w *Wishlist) Merge(other *Wishlist) {
	if other == nil {
		return
	}
	for _, e := range other.Entries {
		w.Add(e.Key())
	}
}

// IsEmpty reports whether the wishlist has no entries.
func (w *Wishlist) IsEmpty() bool {
	return len(w.Entries) == 0
}

// Clone returns a deep copy.
func (w *Wishlist) Clone() *Wishlist {
	cp := *w
	cp.Entries = slices.Clone(w.Entries)
	if cp.Entries == nil {
		cp.Entries = []WishlistEntry{}
	}
	return &cp
}
