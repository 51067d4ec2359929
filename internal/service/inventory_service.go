package service

import (
	"fmt"
	"sort"

	"shopkeeper/internal/domain"
	"shopkeeper/internal/repository"

	"go.uber.org/zap"
)

// InventoryService owns the authoritative product mapping and keeps the
// backing file in sync by persisting the full mapping on every mutation.
type InventoryService interface {
	Add(product *domain.Product) error
	Get(id string) (*domain.Product, error)
	List() []*domain.Product
	AdjustStock(id string, delta int) error
	Reload() error
}

type inventoryService struct {
	repo     repository.InventoryRepository
	logger   *zap.Logger
	products map[string]*domain.Product
}

// NewInventoryService creates an InventoryService, loading existing products
// from the repository. Load failures leave the service usable with whatever
// parsed; the error is logged and an empty mapping is the fallback.
func NewInventoryService(repo repository.InventoryRepository, logger *zap.Logger) InventoryService {
	s := &inventoryService{
		repo:     repo,
		logger:   logger,
		products: make(map[string]*domain.Product),
	}

	if err := s.Reload(); err != nil {
		logger.Error("Failed to load inventory", zap.Error(err))
	}

	return s
}

// Reload re-reads the backing file into the in-memory mapping.
func (s *inventoryService) Reload() error {
	products, err := s.repo.Load()
	if err != nil {
		return fmt.Errorf("failed to reload inventory: %w", err)
	}
	s.products = products
	return nil
}

// Add inserts a new product and persists the mapping. The existing record is
// left untouched when the ID is already taken.
func (s *inventoryService) Add(product *domain.Product) error {
	if _, exists := s.products[product.ID]; exists {
		s.logger.Warn("Product already exists", zap.String("id", product.ID))
		return repository.ErrProductExists
	}

	s.products[product.ID] = product
	if err := s.repo.Save(s.products); err != nil {
		s.logger.Error("Failed to save inventory", zap.Error(err))
		return err
	}

	s.logger.Info("Product added",
		zap.String("id", product.ID),
		zap.String("name", product.Name),
	)
	return nil
}

// Get retrieves a product by ID.
func (s *inventoryService) Get(id string) (*domain.Product, error) {
	product, exists := s.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

// List returns all products sorted by ID.
func (s *inventoryService) List() []*domain.Product {
	products := make([]*domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
	return products
}

// AdjustStock changes a product's stock by delta (negative to decrement) and
// persists. Unknown IDs and adjustments that would drive stock negative fail
// loudly instead of no-opping.
func (s *inventoryService) AdjustStock(id string, delta int) error {
	product, exists := s.products[id]
	if !exists {
		s.logger.Warn("Stock update for unknown product", zap.String("id", id))
		return repository.ErrProductNotFound
	}

	if product.Stock+delta < 0 {
		s.logger.Warn("Stock update would go negative",
			zap.String("id", id),
			zap.Int("stock", product.Stock),
			zap.Int("delta", delta),
		)
		return repository.ErrInsufficientStock
	}

	product.Stock += delta
	if err := s.repo.Save(s.products); err != nil {
		s.logger.Error("Failed to save inventory", zap.Error(err))
		return err
	}

	s.logger.Info("Stock updated",
		zap.String("id", id),
		zap.Int("remaining", product.Stock),
	)
	return nil
}
