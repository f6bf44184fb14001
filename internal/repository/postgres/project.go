package postgres

import (
	"context"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/repository"
	"github.com/utafrali/FurnitureStore/pkg/database"
)

var projectTable = &table[domain.Project]{
	name:     "projects",
	resource: "project",
	columns: []string{
		"id", "title", "slug", "description", "images", "category", "location", "price",
		"created_at", "updated_at",
	},
	textColumn: "title",
	priceExpr:  "price",
	id:         func(p *domain.Project) string { return p.ID },
	values: func(p *domain.Project) ([]any, error) {
		images, err := marshalImages(p.Images)
		if err != nil {
			return nil, err
		}
		return []any{
			p.ID, p.Title, p.Slug, p.Description, images, p.Category, p.Location, p.Price,
			p.CreatedAt, p.UpdatedAt,
		}, nil
	},
	scan: func(s rowScanner, extra ...any) (*domain.Project, error) {
		var (
			p      domain.Project
			images []byte
		)
		dest := append([]any{
			&p.ID, &p.Title, &p.Slug, &p.Description, &images, &p.Category, &p.Location, &p.Price,
			&p.CreatedAt, &p.UpdatedAt,
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

// ProjectRepository implements repository.ProjectRepository using PostgreSQL.
type ProjectRepository struct {
	db database.DBTX
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new PostgreSQL-backed project repository.
func NewProjectRepository(db database.DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	return projectTable.create(ctx, r.db, p)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return projectTable.getByID(ctx, r.db, id)
}

func (r *ProjectRepository) List(ctx context.Context, filter repository.CatalogFilter) ([]domain.Project, int, error) {
	return projectTable.list(ctx, r.db, filter)
}

func (r *ProjectRepository) Count(ctx context.Context, filter repository.CatalogFilter) (int, error) {
	return projectTable.count(ctx, r.db, filter)
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	return projectTable.update(ctx, r.db, p)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return projectTable.delete(ctx, r.db, id)
}
