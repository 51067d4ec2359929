package service

import (
	"errors"
	"fmt"

	"shopkeeper/internal/domain"
	"shopkeeper/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrEmptySale = errors.New("sale has no items")

// SalesService records sales against the inventory and reads back the ledger.
type SalesService interface {
	Record(sale *domain.Sale) error
	Total(sale *domain.Sale) (decimal.Decimal, error)
	List() ([]*domain.Sale, error)
}

type salesService struct {
	repo      repository.SalesRepository
	inventory InventoryService
	logger    *zap.Logger
	sales     []*domain.Sale
}

// NewSalesService creates a new instance of SalesService
func NewSalesService(repo repository.SalesRepository, inventory InventoryService, logger *zap.Logger) SalesService {
	return &salesService{
		repo:      repo,
		inventory: inventory,
		logger:    logger,
		sales:     []*domain.Sale{},
	}
}

// Record validates and records a sale as one unit: every item must reference
// an existing product with enough stock for the sale's total quantity of it.
// Stock is decremented and persisted first; if the ledger append then fails,
// the decrements are rolled back so no half-applied sale survives.
func (s *salesService) Record(sale *domain.Sale) error {
	if len(sale.Items) == 0 {
		return ErrEmptySale
	}

	for _, item := range sale.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("invalid quantity %d for product %s", item.Quantity, item.ProductID)
		}
		product, err := s.inventory.Get(item.ProductID)
		if err != nil {
			s.logger.Warn("Sale references unknown product",
				zap.String("sale_id", sale.ID),
				zap.String("product_id", item.ProductID),
			)
			return fmt.Errorf("product %s: %w", item.ProductID, err)
		}
		if sale.Quantity(item.ProductID) > product.Stock {
			s.logger.Warn("Sale exceeds available stock",
				zap.String("sale_id", sale.ID),
				zap.String("product_id", item.ProductID),
				zap.Int("stock", product.Stock),
			)
			return fmt.Errorf("product %s: %w", item.ProductID, repository.ErrInsufficientStock)
		}
	}

	applied := 0
	for _, item := range sale.Items {
		if err := s.inventory.AdjustStock(item.ProductID, -item.Quantity); err != nil {
			s.rollback(sale, applied)
			return fmt.Errorf("failed to decrement stock for %s: %w", item.ProductID, err)
		}
		applied++
	}

	if err := s.repo.Append(sale); err != nil {
		s.rollback(sale, applied)
		s.logger.Error("Failed to append sale to ledger",
			zap.String("sale_id", sale.ID),
			zap.Error(err),
		)
		return err
	}

	s.sales = append(s.sales, sale)
	s.logger.Info("Sale recorded",
		zap.String("sale_id", sale.ID),
		zap.Int("items", len(sale.Items)),
	)
	return nil
}

// rollback restores stock for the first n items of a sale whose recording
// did not complete.
func (s *salesService) rollback(sale *domain.Sale, n int) {
	for i := 0; i < n; i++ {
		item := sale.Items[i]
		if err := s.inventory.AdjustStock(item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Failed to roll back stock decrement",
				zap.String("sale_id", sale.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}

// Total computes the sale's monetary total from current inventory prices.
func (s *salesService) Total(sale *domain.Sale) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range sale.Items {
		product, err := s.inventory.Get(item.ProductID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("product %s: %w", item.ProductID, err)
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

// List returns every sale recorded in the ledger file, in append order.
func (s *salesService) List() ([]*domain.Sale, error) {
	sales, err := s.repo.List()
	if err != nil {
		s.logger.Error("Failed to read sales ledger", zap.Error(err))
		return nil, err
	}
	return sales, nil
}
