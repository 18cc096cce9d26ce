package repositories

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"productsapi/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// IDs grow monotonically and are never reused after a delete.
type MemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
	}
}

// FindAll returns products ordered by ID.
func (r *MemoryProductRepository) FindAll(ctx context.Context, opts ListOptions) ([]models.Product, error) {
	if opts.OrderBy != "" && opts.OrderBy != models.ColumnID {
		return nil, fmt.Errorf("unsupported order column %q", opts.OrderBy)
	}

	r.mu.RLock()
	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	r.mu.RUnlock()

	slices.SortFunc(productList, func(a, b models.Product) int {
		if opts.Desc {
			return cmp.Compare(b.ID, a.ID)
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if opts.Limit > 0 && len(productList) > opts.Limit {
		productList = productList[:opts.Limit]
	}
	for i := range productList {
		omitColumns(&productList[i], opts.Omit)
	}
	return productList, nil
}

// FindByID returns a product by its ID.
func (r *MemoryProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Create adds a new product and assigns it the next ID.
func (r *MemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now()
	product.ID = r.nextID
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(ctx context.Context, id uint, updates map[string]any) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	for column, value := range updates {
		var ok bool
		switch column {
		case models.ColumnName:
			product.Name, ok = value.(string)
		case models.ColumnPrice:
			product.Price, ok = value.(float64)
		case models.ColumnAvailability:
			product.Availability, ok = value.(bool)
		}
		if !ok {
			return nil, fmt.Errorf("invalid update for column %q: %v", column, value)
		}
	}
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func omitColumns(p *models.Product, columns []string) {
	for _, column := range columns {
		switch column {
		case models.ColumnCreatedAt:
			p.CreatedAt = time.Time{}
		case models.ColumnUpdatedAt:
			p.UpdatedAt = time.Time{}
		}
	}
}
