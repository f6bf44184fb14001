package postgres

import (
	"context"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/repository"
	"github.com/utafrali/FurnitureStore/pkg/database"
)

var collectionTable = &table[domain.Collection]{
	name:     "collections",
	resource: "collection",
	columns: []string{
		"id", "name", "slug", "description", "price", "is_promo", "discounted_price",
		"images", "category", "style", "product_ids", "created_at", "updated_at",
	},
	textColumn: "name",
	priceExpr:  effectivePrice,
	hasStyle:   true,
	hasPromo:   true,
	id:         func(c *domain.Collection) string { return c.ID },
	values: func(c *domain.Collection) ([]any, error) {
		images, err := marshalImages(c.Images)
		if err != nil {
			return nil, err
		}
		products := c.Products
		if products == nil {
			products = []string{}
		}
		return []any{
			c.ID, c.Name, c.Slug, c.Description, c.Price, c.IsPromo, c.DiscountedPrice,
			images, c.Category, c.Style, products, c.CreatedAt, c.UpdatedAt,
		}, nil
	},
	scan: func(s rowScanner, extra ...any) (*domain.Collection, error) {
		var (
			c      domain.Collection
			images []byte
		)
		dest := append([]any{
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.Price, &c.IsPromo, &c.DiscountedPrice,
			&images, &c.Category, &c.Style, &c.Products, &c.CreatedAt, &c.UpdatedAt,
		}, extra...)
		if err := s.Scan(dest...); err != nil {
			return nil, err
		}
		var err error
		if c.Images, err = unmarshalImages(images); err != nil {
			return nil, err
		}
		if c.Products == nil {
			c.Products = []string{}
		}
		return &c, nil
	},
}

// CollectionRepository implements repository.CollectionRepository using PostgreSQL.
type CollectionRepository struct {
	db database.DBTX
}

var _ repository.CollectionRepository = (*CollectionRepository)(nil)

// NewCollectionRepository creates a new PostgreSQL-backed collection repository.
func NewCollectionRepository(db database.DBTX) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Create(ctx context.Context, c *domain.Collection) error {
	return collectionTable.create(ctx, r.db, c)
}

func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*domain.Collection, error) {
	return collectionTable.getByID(ctx, r.db, id)
}

func (r *CollectionRepository) List(ctx context.Context, filter repository.CatalogFilter) ([]domain.Collection, int, error) {
	return collectionTable.list(ctx, r.db, filter)
}

func (r *CollectionRepository) Count(ctx context.Context, filter repository.CatalogFilter) (int, error) {
	return collectionTable.count(ctx, r.db, filter)
}

func (r *CollectionRepository) Update(ctx context.Context, c *domain.Collection) error {
	return collectionTable.update(ctx, r.db, c)
}

func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	return collectionTable.delete(ctx, r.db, id)
}
