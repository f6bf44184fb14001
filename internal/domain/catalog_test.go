package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricing_Validate(t *testing.T) {
	tests := []struct {
		name    string
		pricing Pricing
		wantErr error
	}{
		{"regular", Pricing{Price: 100}, nil},
		{"promo below price", Pricing{Price: 100, IsPromo: true, DiscountedPrice: 80}, nil},
		{"promo above price", Pricing{Price: 100, IsPromo: true, DiscountedPrice: 150}, ErrInvalidDiscount},
		{"promo equal price", Pricing{Price: 100, IsPromo: true, DiscountedPrice: 100}, ErrInvalidDiscount},
		{"stale discount without promo", Pricing{Price: 100, DiscountedPrice: 150}, nil},
		{"negative price", Pricing{Price: -1}, ErrNegativePrice},
		{"negative discount", Pricing{Price: 10, DiscountedPrice: -1}, ErrNegativePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pricing.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPricing_EffectivePrice(t *testing.T) {
	assert.Equal(t, int64(100), Pricing{Price: 100, DiscountedPrice: 70}.EffectivePrice())
	assert.Equal(t, int64(70), Pricing{Price: 100, IsPromo: true, DiscountedPrice: 70}.EffectivePrice())
}

func TestProduct_JSONFlattensPricing(t *testing.T) {
	p := Product{ID: "1", Name: "Chair", Pricing: Pricing{Price: 1000, IsPromo: true, DiscountedPrice: 800}}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, float64(1000), m["price"])
	assert.Equal(t, true, m["isPromo"])
	assert.Equal(t, float64(800), m["discountedPrice"])
	assert.NotContains(t, m, "Pricing")
}
