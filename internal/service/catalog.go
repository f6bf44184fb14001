package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/event"
	"github.com/utafrali/FurnitureStore/internal/repository"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	pkgkafka "github.com/utafrali/FurnitureStore/pkg/kafka"
)

// catalog holds the operations products, collections and projects share.
type catalog[T any] struct {
	entity   pkgkafka.Aggregate
	repo     repository.CatalogRepository[T]
	producer *event.Producer
	logger   *slog.Logger
	idOf     func(*T) string
	now      func() time.Time
}

// Get returns one entity by id.
func (c *catalog[T]) Get(ctx context.Context, id string) (*T, error) {
	e, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.entity, err)
	}
	return e, nil
}

// List returns one page of entities matching the filter and the total match count.
func (c *catalog[T]) List(ctx context.Context, filter repository.CatalogFilter) ([]T, int, error) {
	if err := checkPriceRange(filter); err != nil {
		return nil, 0, err
	}
	items, total, err := c.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list %ss: %w", c.entity, err)
	}
	return items, total, nil
}

// Count returns the number of entities matching the filter.
func (c *catalog[T]) Count(ctx context.Context, filter repository.CatalogFilter) (int, error) {
	if err := checkPriceRange(filter); err != nil {
		return 0, err
	}
	n, err := c.repo.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %ss: %w", c.entity, err)
	}
	return n, nil
}

// Delete removes an entity by id.
func (c *catalog[T]) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", c.entity, err)
	}
	c.written(ctx, pkgkafka.ActionDeleted, id, event.CatalogDeletedData{ID: id})
	return nil
}

func (c *catalog[T]) create(ctx context.Context, e *T) error {
	if err := c.repo.Create(ctx, e); err != nil {
		return fmt.Errorf("create %s: %w", c.entity, err)
	}
	c.written(ctx, pkgkafka.ActionCreated, c.idOf(e), e)
	return nil
}

func (c *catalog[T]) update(ctx context.Context, e *T) error {
	if err := c.repo.Update(ctx, e); err != nil {
		return fmt.Errorf("update %s: %w", c.entity, err)
	}
	c.written(ctx, pkgkafka.ActionUpdated, c.idOf(e), e)
	return nil
}

func (c *catalog[T]) written(ctx context.Context, action, id string, data any) {
	catalogWrites.WithLabelValues(string(c.entity), action).Inc()

	if err := c.producer.PublishCatalog(ctx, c.entity, action, id, data); err != nil {
		eventPublishFailures.WithLabelValues(string(c.entity)).Inc()
		c.logger.ErrorContext(ctx, "failed to publish catalog event",
			slog.String("entity", string(c.entity)),
			slog.String("action", action),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}

	c.logger.InfoContext(ctx, string(c.entity)+" "+action, slog.String("id", id))
}

func checkPriceRange(f repository.CatalogFilter) error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return apperrors.InvalidInput("min_price must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return apperrors.InvalidInput("min_price must not exceed max_price")
	}
	return nil
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", apperrors.InvalidInput(field + " is required")
	}
	return v, nil
}

func checkPricing(p domain.Pricing) error {
	if err := p.Validate(); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	return nil
}

func checkImages(images []domain.Image) ([]domain.Image, error) {
	for i, img := range images {
		u, err := url.Parse(img.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("images[%d].url must be an absolute http(s) URL", i))
		}
	}
	if images == nil {
		return []domain.Image{}, nil
	}
	return images, nil
}

func newID() string {
	return uuid.New().String()
}
