package repositories

import (
	"context"
	"errors"

	"productsapi/internal/models"
)

// ErrProductNotFound is returned when no product matches the requested ID.
var ErrProductNotFound = errors.New("product not found")

// ListOptions shapes a FindAll query.
type ListOptions struct {
	OrderBy string   // column name; empty means by id
	Desc    bool     // descending order
	Limit   int      // 0 means no limit
	Omit    []string // columns left out of the returned records
}

// ProductRepository defines the interface for product data access.
// Implementations return plain records; callers never hold live rows.
type ProductRepository interface {
	FindAll(ctx context.Context, opts ListOptions) ([]models.Product, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update applies the column→value updates and returns the stored record.
	Update(ctx context.Context, id uint, updates map[string]any) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
}
