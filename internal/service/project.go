package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/event"
	"github.com/utafrali/FurnitureStore/internal/repository"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	pkgkafka "github.com/utafrali/FurnitureStore/pkg/kafka"
	"github.com/utafrali/FurnitureStore/pkg/slug"
)

// CreateProjectInput holds the parameters for creating a project.
type CreateProjectInput struct {
	Title       string         `json:"title" validate:"notblank,max=200"`
	Description string         `json:"description" validate:"max=50000"`
	Images      []domain.Image `json:"images"`
	Category    string         `json:"category" validate:"notblank,max=100"`
	Location    string         `json:"location" validate:"max=200"`
	Price       int64          `json:"price" validate:"gte=0"`
}

// UpdateProjectInput holds a partial project update.
type UpdateProjectInput struct {
	Title       *string         `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=50000"`
	Images      *[]domain.Image `json:"images"`
	Category    *string         `json:"category" validate:"omitempty,notblank,max=100"`
	Location    *string         `json:"location" validate:"omitempty,max=200"`
	Price       *int64          `json:"price" validate:"omitempty,gte=0"`
}

// ProjectService implements the business logic for portfolio projects.
type ProjectService struct {
	*catalog[domain.Project]
}

// NewProjectService creates a new project service.
func NewProjectService(repo repository.ProjectRepository, producer *event.Producer, logger *slog.Logger) *ProjectService {
	return &ProjectService{&catalog[domain.Project]{
		entity:   pkgkafka.AggregateProject,
		repo:     repo,
		producer: producer,
		logger:   logger,
		idOf:     func(p *domain.Project) string { return p.ID },
		now:      time.Now,
	}}
}

func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*domain.Project, error) {
	title, err := requireText("title", input.Title)
	if err != nil {
		return nil, err
	}
	category, err := requireText("category", input.Category)
	if err != nil {
		return nil, err
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput(domain.ErrNegativePrice.Error())
	}
	images, err := checkImages(input.Images)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	project := &domain.Project{
		ID:          newID(),
		Title:       title,
		Slug:        slug.Generate(title),
		Description: input.Description,
		Images:      images,
		Category:    category,
		Location:    input.Location,
		Price:       input.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, id string, input UpdateProjectInput) (*domain.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := requireText("title", *input.Title)
		if err != nil {
			return nil, err
		}
		project.Title = title
		project.Slug = slug.Generate(title)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Category != nil {
		category, err := requireText("category", *input.Category)
		if err != nil {
			return nil, err
		}
		project.Category = category
	}
	if input.Location != nil {
		project.Location = *input.Location
	}
	if input.Images != nil {
		images, err := checkImages(*input.Images)
		if err != nil {
			return nil, err
		}
		project.Images = images
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput(domain.ErrNegativePrice.Error())
		}
		project.Price = *input.Price
	}

	project.UpdatedAt = s.now().UTC()
	if err := s.update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}
