package repositories

import (
	"context"
	"errors"

	"marmomart/internal/models"
)

// ErrNotFound is wrapped by every repository lookup miss.
var ErrNotFound = errors.New("not found")

// ErrInUse is returned when a record cannot be removed while others refer to it.
var ErrInUse = errors.New("still in use")

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	CategorySlug    string
	FeaturedOnly    bool
	IncludeInactive bool
}

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	// DeleteCategory fails with ErrInUse while any product belongs to it.
	DeleteCategory(ctx context.Context, id string) error
}
