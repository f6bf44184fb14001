package domain

import (
	"errors"
	"strings"
)

// ItemType discriminates what a cart or wishlist entry points at.
type ItemType string

const (
	ItemTypeProduct    ItemType = "Product"
	ItemTypeCollection ItemType = "Collection"
)

// ErrInvalidItemType is returned by ParseItemType for unknown values.
var ErrInvalidItemType = errors.New("invalid item type")

// ParseItemType accepts the canonical names in any letter case.
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "product":
		return ItemTypeProduct, nil
	case "collection":
		return ItemTypeCollection, nil
	default:
		return "", ErrInvalidItemType
	}
}

// ItemKey identifies an entry within one cart or wishlist.
type ItemKey struct {
	Item     string
	ItemType ItemType
}
