package domain

import (
	"errors"
	"time"
)

// Catalog validation errors.
var (
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrInvalidDiscount = errors.New("discounted price must be lower than price when promo is on")
)

// Image references an externally hosted picture. PublicID is the storage
// provider's handle and is only carried through.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Pricing is shared by products and collections. Amounts are in minor units.
type Pricing struct {
	Price           int64 `json:"price"`
	IsPromo         bool  `json:"isPromo"`
	DiscountedPrice int64 `json:"discountedPrice"`
}

// Validate enforces non-negative amounts and, for promos, a discounted price
// strictly below the regular price.
func (p Pricing) Validate() error {
	if p.Price < 0 || p.DiscountedPrice < 0 {
		return ErrNegativePrice
	}
	if p.IsPromo && p.DiscountedPrice >= p.Price {
		return ErrInvalidDiscount
	}
	return nil
}

// EffectivePrice is what a buyer pays per unit.
func (p Pricing) EffectivePrice() int64 {
	if p.IsPromo {
		return p.DiscountedPrice
	}
	return p.Price
}

// Product is a single piece of furniture.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Pricing
	Images       []Image   `json:"images"`
	Category     string    `json:"category"`
	Style        string    `json:"style"`
	IsBestseller bool      `json:"isBestseller"`
	IsForeign    bool      `json:"isForeign"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Collection is a set of products sold together.
type Collection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Pricing
	Images    []Image   `json:"images"`
	Category  string    `json:"category"`
	Style     string    `json:"style"`
	Products  []string  `json:"products"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Project is a portfolio entry. Description holds sanitized-by-admin HTML.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Images      []Image   `json:"images"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
