package postgres

import (
	"context"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/repository"
	"github.com/utafrali/FurnitureStore/pkg/database"
)

const effectivePrice = "CASE WHEN is_promo THEN discounted_price ELSE price END"

var productTable = &table[domain.Product]{
	name:     "products",
	resource: "product",
	columns: []string{
		"id", "name", "slug", "description", "price", "is_promo", "discounted_price",
		"images", "category", "style", "is_bestseller", "is_foreign", "created_at", "updated_at",
	},
	textColumn: "name",
	priceExpr:  effectivePrice,
	hasStyle:   true,
	hasPromo:   true,
	hasFlags:   true,
	id:         func(p *domain.Product) string { return p.ID },
	values: func(p *domain.Product) ([]any, error) {
		images, err := marshalImages(p.Images)
		if err != nil {
			return nil, err
		}
		return []any{
			p.ID, p.Name, p.Slug, p.Description, p.Price, p.IsPromo, p.DiscountedPrice,
			images, p.Category, p.Style, p.IsBestseller, p.IsForeign, p.CreatedAt, p.UpdatedAt,
		}, nil
	},
	scan: func(s rowScanner, extra ...any) (*domain.Product, error) {
		var (
			p      domain.Product
			images []byte
		)
		dest := append([]any{
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.IsPromo, &p.DiscountedPrice,
			&images, &p.Category, &p.Style, &p.IsBestseller, &p.IsForeign, &p.CreatedAt, &p.UpdatedAt,
		}, extra...)
		if err := s.Scan(dest...); err != nil {
			return nil, err
		}
		var err error
		if p.Images, err = unmarshalImages(images); err != nil {
			return nil, err
		}
		return &p, nil
	},
}

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return productTable.create(ctx, r.db, p)
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return productTable.getByID(ctx, r.db, id)
}

// List returns one page of products, newest first, with the total match count.
func (r *ProductRepository) List(ctx context.Context, filter repository.CatalogFilter) ([]domain.Product, int, error) {
	return productTable.list(ctx, r.db, filter)
}

// Count returns the number of products matching filter.
func (r *ProductRepository) Count(ctx context.Context, filter repository.CatalogFilter) (int, error) {
	return productTable.count(ctx, r.db, filter)
}

// Update overwrites an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	return productTable.update(ctx, r.db, p)
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return productTable.delete(ctx, r.db, id)
}
