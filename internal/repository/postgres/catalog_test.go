package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/repository"
	"github.com/utafrali/FurnitureStore/pkg/database"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func int64Ptr(n int64) *int64 { return &n }

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var productColumns = []string{
	"id", "name", "slug", "description", "price", "is_promo", "discounted_price",
	"images", "category", "style", "is_bestseller", "is_foreign", "created_at", "updated_at",
}

func sampleProduct() domain.Product {
	return domain.Product{
		ID:           "6a0c8f2e-3b7d-4c1a-9e55-2f8d7b6c1a01",
		Name:         "Oak Dining Table",
		Slug:         "oak-dining-table",
		Description:  "Solid oak, seats six",
		Pricing:      domain.Pricing{Price: 189900, IsPromo: true, DiscountedPrice: 159900},
		Images:       []domain.Image{{URL: "https://cdn.example.com/oak.jpg", PublicID: "oak"}},
		Category:     "tables",
		Style:        "scandinavian",
		IsBestseller: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func productRow(p domain.Product) []any {
	images, _ := json.Marshal(p.Images)
	return []any{
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.IsPromo, p.DiscountedPrice,
		images, p.Category, p.Style, p.IsBestseller, p.IsForeign, p.CreatedAt, p.UpdatedAt,
	}
}

func TestProductRepository_Create(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectExec("INSERT INTO products").
		WithArgs(productRow(p)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create_Duplicate(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectExec("INSERT INTO products").
		WithArgs(productRow(p)...).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &p)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestProductRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectQuery("SELECT .+ FROM products WHERE id = \\$1").
		WithArgs(p.ID).
		WillReturnRows(pgxmock.NewRows(productColumns).AddRow(productRow(p)...))

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductRepository_GetByID_MalformedID(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products WHERE id").
		WithArgs("p1").
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "p1"`})

	_, err := repo.GetByID(context.Background(), "p1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Delete_MalformedID(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectExec("DELETE FROM products WHERE id").
		WithArgs("p1").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	err := repo.Delete(context.Background(), "p1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_WithFilters(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	filter := repository.CatalogFilter{
		Category:     strPtr("tables"),
		Search:       strPtr("oak"),
		MinPrice:     int64Ptr(1000),
		IsBestseller: boolPtr(true),
		Page:         2,
		Limit:        5,
	}

	mock.ExpectQuery(`SELECT .+ count\(\*\) OVER\(\) AS total_count FROM products WHERE category = \$1 AND \(name ILIKE \$2 OR description ILIKE \$2\) AND CASE WHEN is_promo THEN discounted_price ELSE price END >= \$3 AND is_bestseller = \$4 ORDER BY created_at DESC, id LIMIT \$5 OFFSET \$6`).
		WithArgs("tables", "%oak%", int64(1000), true, 5, 5).
		WillReturnRows(pgxmock.NewRows(append(productColumns, "total_count")).
			AddRow(append(productRow(p), 6)...))

	items, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_PastLastPageCountsSeparately(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products ORDER BY created_at DESC, id LIMIT").
		WithArgs(10, 90).
		WillReturnRows(pgxmock.NewRows(append(productColumns, "total_count")))
	mock.ExpectQuery(`SELECT count\(\*\) FROM products`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))

	items, total, err := repo.List(context.Background(), repository.CatalogFilter{Page: 10, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.Equal(t, 12, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_EmptyFirstPage(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows(append(productColumns, "total_count")))

	items, total, err := repo.List(context.Background(), repository.CatalogFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_HugeLimitDoesNotPreallocate(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs(1<<50, 0).
		WillReturnRows(pgxmock.NewRows(append(productColumns, "total_count")).
			AddRow(append(productRow(sampleProduct()), 1)...))

	var (
		items []domain.Product
		err   error
	)
	assert.NotPanics(t, func() {
		items, _, err = repo.List(context.Background(), repository.CatalogFilter{Page: 1, Limit: 1 << 50})
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Count(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`SELECT count\(\*\) FROM products WHERE is_promo = \$1`).
		WithArgs(true).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(context.Background(), repository.CatalogFilter{IsPromo: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestProductRepository_Update(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	row := productRow(p)
	// id first, then every column but id and created_at.
	args := append([]any{p.ID}, row[1:12]...)
	args = append(args, p.UpdatedAt)

	mock.ExpectExec(`UPDATE products SET name = \$2, slug = \$3, .+ updated_at = \$13 WHERE id = \$1`).
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectExec("UPDATE products").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &p)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductRepository_Delete(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectExec("DELETE FROM products WHERE id = \\$1").
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM products WHERE id = \\$1").
		WithArgs("p2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "p2"), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCollectionRepository(mock)

	images, _ := json.Marshal([]domain.Image{{URL: "u", PublicID: "p"}})
	mock.ExpectQuery("SELECT .+ FROM collections WHERE id").
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "slug", "description", "price", "is_promo", "discounted_price",
			"images", "category", "style", "product_ids", "created_at", "updated_at",
		}).AddRow("c1", "Living Room Set", "living-room-set", "", int64(500000), false, int64(0),
			images, "sets", "modern", []string{"p1", "p2"}, now, now))

	c, err := repo.GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, c.Products)
	assert.Equal(t, "u", c.Images[0].URL)
}

func TestTableWhere_SkipsUnsupportedFilters(t *testing.T) {
	f := repository.CatalogFilter{
		Style:     strPtr("loft"),
		IsForeign: boolPtr(true),
		IsPromo:   boolPtr(true),
		Search:    strPtr("villa"),
		MaxPrice:  int64Ptr(10),
	}

	where, args := collectionTable.where(f)
	assert.Equal(t, "WHERE style = $1 AND (name ILIKE $2 OR description ILIKE $2) AND "+effectivePrice+" <= $3 AND is_promo = $4", where)
	assert.Equal(t, []any{"loft", "%villa%", int64(10), true}, args)

	where, args = projectTable.where(f)
	assert.Equal(t, "WHERE (title ILIKE $1 OR description ILIKE $1) AND price <= $2", where)
	assert.Equal(t, []any{"%villa%", int64(10)}, args)

	where, args = projectTable.where(repository.CatalogFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(Migrations(), ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "000001_create_catalog.up.sql", entries[0].Name())
}
