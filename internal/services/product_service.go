package services

import (
	"context"
	"log/slog"
	"time"

	"productsapi/internal/models"
	"productsapi/internal/repositories"
)

// ListLimit caps the number of products returned by ListProducts.
const ListLimit = 3

// EventPublisher delivers product lifecycle events to a broker.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher // optional
	timeout   time.Duration
	log       *slog.Logger
}

// Option configures a ProductService.
type Option func(*ProductService)

// WithPublisher makes the service publish an event after every write.
func WithPublisher(p EventPublisher) Option {
	return func(s *ProductService) { s.publisher = p }
}

// WithTimeout bounds every repository call.
func WithTimeout(d time.Duration) Option {
	return func(s *ProductService) { s.timeout = d }
}

// WithLogger sets the logger used for publish failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *ProductService) { s.log = l }
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts ...Option) *ProductService {
	s := &ProductService{
		repo: repo,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProductInput carries the mutable fields of a product.
type ProductInput struct {
	Name         string
	Price        float64
	Availability *bool // nil means "not supplied"
}

// ListProducts returns the newest products, without timestamps.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.FindAll(ctx, repositories.ListOptions{
		OrderBy: models.ColumnID,
		Desc:    true,
		Limit:   ListLimit,
		Omit:    []string{models.ColumnCreatedAt, models.ColumnUpdatedAt},
	})
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.FindByID(ctx, id)
}

// CreateProduct stores a new product. Availability defaults to true.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	product := &models.Product{
		Name:         in.Name,
		Price:        in.Price,
		Availability: true,
	}
	if in.Availability != nil {
		product.Availability = *in.Availability
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publish(models.ProductCreated, product.ID, product)
	return product, nil
}

// ReplaceProduct overwrites name, price and availability of an existing product.
func (s *ProductService) ReplaceProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{
		models.ColumnName:  in.Name,
		models.ColumnPrice: in.Price,
	}
	if in.Availability != nil {
		updates[models.ColumnAvailability] = *in.Availability
	}
	product, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.publish(models.ProductUpdated, id, product)
	return product, nil
}

// ToggleAvailability flips the availability of an existing product.
func (s *ProductService) ToggleAvailability(ctx context.Context, id uint) (*models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.Update(ctx, id, map[string]any{
		models.ColumnAvailability: !current.Availability,
	})
	if err != nil {
		return nil, err
	}
	s.publish(models.ProductAvailabilityChanged, id, product)
	return product, nil
}

// DeleteProduct permanently removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(models.ProductDeleted, id, nil)
	return nil
}

func (s *ProductService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// publish never fails the caller: the write has already happened.
func (s *ProductService) publish(typ models.ProductEventType, id uint, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		Type:       typ,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishProductEvent(event); err != nil {
		s.log.Warn("failed to publish product event", "type", typ, "product_id", id, "error", err)
	}
}
