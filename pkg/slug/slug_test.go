package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Oak Dining Table", "oak-dining-table"},
		{"  Velvet   Sofa!! ", "velvet-sofa"},
		{"Fotel Bujany Łódź", "fotel-bujany-lodz"},
		{"Crème Brûlée Armchair", "creme-brulee-armchair"},
		{"Kadın Çocuk Ürünleri", "kadin-cocuk-urunleri"},
		{"Straße Bench", "strasse-bench"},
		{"Tables & Chairs", "tables-and-chairs"},
		{"--Nordic--Loft--", "nordic-loft"},
		{"Model 2024/B", "model-2024-b"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}
