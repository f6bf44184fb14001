package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/event"
	"github.com/utafrali/FurnitureStore/internal/repository"
	pkgkafka "github.com/utafrali/FurnitureStore/pkg/kafka"
	"github.com/utafrali/FurnitureStore/pkg/slug"
)

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name            string         `json:"name" validate:"notblank,max=200"`
	Description     string         `json:"description" validate:"max=10000"`
	Price           int64          `json:"price" validate:"gte=0"`
	IsPromo         bool           `json:"isPromo"`
	DiscountedPrice int64          `json:"discountedPrice" validate:"gte=0"`
	Images          []domain.Image `json:"images"`
	Category        string         `json:"category" validate:"notblank,max=100"`
	Style           string         `json:"style" validate:"max=100"`
	IsBestseller    bool           `json:"isBestseller"`
	IsForeign       bool           `json:"isForeign"`
}

// UpdateProductInput holds a partial product update. Nil fields are left unchanged.
type UpdateProductInput struct {
	Name            *string         `json:"name" validate:"omitempty,notblank,max=200"`
	Description     *string         `json:"description" validate:"omitempty,max=10000"`
	Price           *int64          `json:"price" validate:"omitempty,gte=0"`
	IsPromo         *bool           `json:"isPromo"`
	DiscountedPrice *int64          `json:"discountedPrice" validate:"omitempty,gte=0"`
	Images          *[]domain.Image `json:"images"`
	Category        *string         `json:"category" validate:"omitempty,notblank,max=100"`
	Style           *string         `json:"style" validate:"omitempty,max=100"`
	IsBestseller    *bool           `json:"isBestseller"`
	IsForeign       *bool           `json:"isForeign"`
}

// ProductService implements the business logic for product operations.
type ProductService struct {
	*catalog[domain.Product]
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{&catalog[domain.Product]{
		entity:   pkgkafka.AggregateProduct,
		repo:     repo,
		producer: producer,
		logger:   logger,
		idOf:     func(p *domain.Product) string { return p.ID },
		now:      time.Now,
	}}
}

// Create validates the input and stores a new product.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	name, err := requireText("name", input.Name)
	if err != nil {
		return nil, err
	}
	category, err := requireText("category", input.Category)
	if err != nil {
		return nil, err
	}
	pricing := domain.Pricing{Price: input.Price, IsPromo: input.IsPromo, DiscountedPrice: input.DiscountedPrice}
	if err := checkPricing(pricing); err != nil {
		return nil, err
	}
	images, err := checkImages(input.Images)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product := &domain.Product{
		ID:           newID(),
		Name:         name,
		Slug:         slug.Generate(name),
		Description:  input.Description,
		Pricing:      pricing,
		Images:       images,
		Category:     category,
		Style:        input.Style,
		IsBestseller: input.IsBestseller,
		IsForeign:    input.IsForeign,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update applies a partial update and validates the merged product, so a
// promo flag sent alone is checked against the stored prices.
func (s *ProductService) Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := requireText("name", *input.Name)
		if err != nil {
			return nil, err
		}
		product.Name = name
		product.Slug = slug.Generate(name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		category, err := requireText("category", *input.Category)
		if err != nil {
			return nil, err
		}
		product.Category = category
	}
	if input.Style != nil {
		product.Style = *input.Style
	}
	if input.IsBestseller != nil {
		product.IsBestseller = *input.IsBestseller
	}
	if input.IsForeign != nil {
		product.IsForeign = *input.IsForeign
	}
	if input.Images != nil {
		images, err := checkImages(*input.Images)
		if err != nil {
			return nil, err
		}
		product.Images = images
	}
	product.Pricing = patchPricing(product.Pricing, input.Price, input.IsPromo, input.DiscountedPrice)
	if err := checkPricing(product.Pricing); err != nil {
		return nil, err
	}

	product.UpdatedAt = s.now().UTC()
	if err := s.update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func patchPricing(p domain.Pricing, price *int64, isPromo *bool, discounted *int64) domain.Pricing {
	if price != nil {
		p.Price = *price
	}
	if isPromo != nil {
		p.IsPromo = *isPromo
	}
	if discounted != nil {
		p.DiscountedPrice = *discounted
	}
	return p
}
