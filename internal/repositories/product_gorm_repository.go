package repositories

import (
	"context"
	"errors"
	"fmt"

	"productsapi/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// FindAll retrieves products ordered, limited and trimmed according to opts.
func (r *GORMProductRepository) FindAll(ctx context.Context, opts ListOptions) ([]models.Product, error) {
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = models.ColumnID
	}

	query := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: orderBy}, Desc: opts.Desc})
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if len(opts.Omit) > 0 {
		query = query.Omit(opts.Omit...)
	}

	products := make([]models.Product, 0)
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product; the database assigns its ID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the given columns and re-reads the row in the same transaction.
func (r *GORMProductRepository) Update(ctx context.Context, id uint, updates map[string]any) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A map rather than a struct so that false and zero values are written.
		res := tx.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return tx.First(&product, id).Error
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return &product, nil
}

// Delete permanently removes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
