package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/event"
	"github.com/utafrali/FurnitureStore/internal/repository"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	pkgkafka "github.com/utafrali/FurnitureStore/pkg/kafka"
	"github.com/utafrali/FurnitureStore/pkg/slug"
)

// CreateCollectionInput holds the parameters for creating a collection.
type CreateCollectionInput struct {
	Name            string         `json:"name" validate:"notblank,max=200"`
	Description     string         `json:"description" validate:"max=10000"`
	Price           int64          `json:"price" validate:"gte=0"`
	IsPromo         bool           `json:"isPromo"`
	DiscountedPrice int64          `json:"discountedPrice" validate:"gte=0"`
	Images          []domain.Image `json:"images"`
	Category        string         `json:"category" validate:"notblank,max=100"`
	Style           string         `json:"style" validate:"max=100"`
	Products        []string       `json:"products" validate:"max=100"`
}

// UpdateCollectionInput holds a partial collection update.
type UpdateCollectionInput struct {
	Name            *string         `json:"name" validate:"omitempty,notblank,max=200"`
	Description     *string         `json:"description" validate:"omitempty,max=10000"`
	Price           *int64          `json:"price" validate:"omitempty,gte=0"`
	IsPromo         *bool           `json:"isPromo"`
	DiscountedPrice *int64          `json:"discountedPrice" validate:"omitempty,gte=0"`
	Images          *[]domain.Image `json:"images"`
	Category        *string         `json:"category" validate:"omitempty,notblank,max=100"`
	Style           *string         `json:"style" validate:"omitempty,max=100"`
	Products        *[]string       `json:"products" validate:"omitempty,max=100"`
}

// CollectionService implements the business logic for collection operations.
type CollectionService struct {
	*catalog[domain.Collection]
}

// NewCollectionService creates a new collection service.
func NewCollectionService(repo repository.CollectionRepository, producer *event.Producer, logger *slog.Logger) *CollectionService {
	return &CollectionService{&catalog[domain.Collection]{
		entity:   pkgkafka.AggregateCollection,
		repo:     repo,
		producer: producer,
		logger:   logger,
		idOf:     func(c *domain.Collection) string { return c.ID },
		now:      time.Now,
	}}
}

func (s *CollectionService) Create(ctx context.Context, input CreateCollectionInput) (*domain.Collection, error) {
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
	products, err := normalizeProductIDs(input.Products)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	collection := &domain.Collection{
		ID:          newID(),
		Name:        name,
		Slug:        slug.Generate(name),
		Description: input.Description,
		Pricing:     pricing,
		Images:      images,
		Category:    category,
		Style:       input.Style,
		Products:    products,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.create(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) Update(ctx context.Context, id string, input UpdateCollectionInput) (*domain.Collection, error) {
	collection, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := requireText("name", *input.Name)
		if err != nil {
			return nil, err
		}
		collection.Name = name
		collection.Slug = slug.Generate(name)
	}
	if input.Description != nil {
		collection.Description = *input.Description
	}
	if input.Category != nil {
		category, err := requireText("category", *input.Category)
		if err != nil {
			return nil, err
		}
		collection.Category = category
	}
	if input.Style != nil {
		collection.Style = *input.Style
	}
	if input.Images != nil {
		images, err := checkImages(*input.Images)
		if err != nil {
			return nil, err
		}
		collection.Images = images
	}
	if input.Products != nil {
		products, err := normalizeProductIDs(*input.Products)
		if err != nil {
			return nil, err
		}
		collection.Products = products
	}
	collection.Pricing = patchPricing(collection.Pricing, input.Price, input.IsPromo, input.DiscountedPrice)
	if err := checkPricing(collection.Pricing); err != nil {
		return nil, err
	}

	collection.UpdatedAt = s.now().UTC()
	if err := s.update(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// normalizeProductIDs checks every id is a UUID and drops repeats, keeping order.
func normalizeProductIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for i, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("products[%d] must be a valid UUID", i))
		}
		if s := parsed.String(); !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}
