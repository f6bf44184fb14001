package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/repository"
	"github.com/utafrali/FurnitureStore/pkg/database"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	"github.com/utafrali/FurnitureStore/pkg/pagination"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// table describes one catalog table so the listing, counting and CRUD
// statements can be shared across entities.
type table[T any] struct {
	name     string
	resource string
	columns  []string
	// textColumn is matched by the search filter together with description.
	textColumn string
	priceExpr  string
	hasStyle   bool
	hasPromo   bool
	hasFlags   bool
	values     func(*T) ([]any, error)
	scan       func(s rowScanner, extra ...any) (*T, error)
	id         func(*T) string
}

func (t *table[T]) selectList() string {
	return strings.Join(t.columns, ", ")
}

// where renders filter as a WHERE clause. Filters the table has no column
// for are skipped.
func (t *table[T]) where(f repository.CatalogFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != nil {
		add("category = $%d", *f.Category)
	}
	if f.Style != nil && t.hasStyle {
		add("style = $%d", *f.Style)
	}
	if f.Search != nil {
		add("("+t.textColumn+" ILIKE $%[1]d OR description ILIKE $%[1]d)", "%"+*f.Search+"%")
	}
	if f.MinPrice != nil {
		add(t.priceExpr+" >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add(t.priceExpr+" <= $%d", *f.MaxPrice)
	}
	if f.IsPromo != nil && t.hasPromo {
		add("is_promo = $%d", *f.IsPromo)
	}
	if f.IsBestseller != nil && t.hasFlags {
		add("is_bestseller = $%d", *f.IsBestseller)
	}
	if f.IsForeign != nil && t.hasFlags {
		add("is_foreign = $%d", *f.IsForeign)
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (t *table[T]) create(ctx context.Context, db database.DBTX, entity *T) (err error) {
	values, err := t.values(entity)
	if err != nil {
		return err
	}
	placeholders := make([]string, len(t.columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, t.selectList(), strings.Join(placeholders, ", "))

	ctx, end := database.TraceQuery(ctx, "INSERT", query)
	defer func() { end(err) }()

	if _, err = db.Exec(ctx, query, values...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists(t.resource, "id", t.id(entity))
		}
		return fmt.Errorf("insert %s: %w", t.resource, err)
	}
	return nil
}

func (t *table[T]) getByID(ctx context.Context, db database.DBTX, id string) (_ *T, err error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", t.selectList(), t.name)

	ctx, end := database.TraceQuery(ctx, "SELECT", query)
	defer func() { end(err) }()

	entity, err := t.scan(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, apperrors.NotFound(t.resource, id)
		}
		return nil, fmt.Errorf("get %s: %w", t.resource, err)
	}
	return entity, nil
}

func (t *table[T]) list(ctx context.Context, db database.DBTX, f repository.CatalogFilter) (_ []T, _ int, err error) {
	where, args := t.where(f)
	limit, offset := f.Limit, (f.Page-1)*f.Limit
	query := fmt.Sprintf(`SELECT %s, count(*) OVER() AS total_count FROM %s %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		t.selectList(), t.name, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	ctx, end := database.TraceQuery(ctx, "SELECT", query)
	defer func() { end(err) }()

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()

	var (
		items = make([]T, 0, min(limit, pagination.MaxLimit))
		total int
	)
	for rows.Next() {
		entity, err := t.scan(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s row: %w", t.resource, err)
		}
		items = append(items, *entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate %s rows: %w", t.resource, err)
	}

	// The window count is only available when the page has rows.
	if len(items) == 0 && offset > 0 {
		total, err = t.count(ctx, db, f)
		if err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (t *table[T]) count(ctx context.Context, db database.DBTX, f repository.CatalogFilter) (_ int, err error) {
	where, args := t.where(f)
	query := fmt.Sprintf("SELECT count(*) FROM %s %s", t.name, where)

	ctx, end := database.TraceQuery(ctx, "SELECT", query)
	defer func() { end(err) }()

	var n int
	if err = db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

// update rewrites every column except id and created_at.
func (t *table[T]) update(ctx context.Context, db database.DBTX, entity *T) (err error) {
	values, err := t.values(entity)
	if err != nil {
		return err
	}

	var (
		sets []string
		args = []any{t.id(entity)}
	)
	for i, col := range t.columns {
		if col == "id" || col == "created_at" {
			continue
		}
		args = append(args, values[i])
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", t.name, strings.Join(sets, ", "))

	ctx, end := database.TraceQuery(ctx, "UPDATE", query)
	defer func() { end(err) }()

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.resource, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(t.resource, t.id(entity))
	}
	return nil
}

func (t *table[T]) delete(ctx context.Context, db database.DBTX, id string) (err error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name)

	ctx, end := database.TraceQuery(ctx, "DELETE", query)
	defer func() { end(err) }()

	tag, err := db.Exec(ctx, query, id)
	if isInvalidTextRepresentation(err) {
		return apperrors.NotFound(t.resource, id)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.resource, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(t.resource, id)
	}
	return nil
}

func marshalImages(images []domain.Image) ([]byte, error) {
	if images == nil {
		images = []domain.Image{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}
	return b, nil
}

func unmarshalImages(raw []byte) ([]domain.Image, error) {
	images := []domain.Image{}
	if len(raw) == 0 {
		return images, nil
	}
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	return images, nil
}

// isUniqueViolation checks for PostgreSQL unique_violation (23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isInvalidTextRepresentation checks for PostgreSQL invalid_text_representation
// (22P02), raised when an id is not a well-formed UUID.
func isInvalidTextRepresentation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
