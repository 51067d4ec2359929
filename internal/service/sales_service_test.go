package service

import (
	"errors"
	"testing"

	"shopkeeper/internal/domain"
	"shopkeeper/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

type mockSalesRepository struct {
	appended   []*domain.Sale
	failAppend error
}

func newMockSalesRepository() *mockSalesRepository {
	return &mockSalesRepository{appended: []*domain.Sale{}}
}

func (m *mockSalesRepository) Append(sale *domain.Sale) error {
	if m.failAppend != nil {
		return m.failAppend
	}
	m.appended = append(m.appended, sale)
	return nil
}

func (m *mockSalesRepository) List() ([]*domain.Sale, error) {
	return m.appended, nil
}

func newSalesFixture(t *testing.T, products ...*domain.Product) (SalesService, InventoryService, *mockSalesRepository) {
	t.Helper()
	inventoryRepo := newMockInventoryRepository()
	inventory := NewInventoryService(inventoryRepo, zap.NewNop())
	for _, p := range products {
		if err := inventory.Add(p); err != nil {
			t.Fatalf("Add %s failed: %v", p.ID, err)
		}
	}
	salesRepo := newMockSalesRepository()
	return NewSalesService(salesRepo, inventory, zap.NewNop()), inventory, salesRepo
}

// Property: recording a sale whose items are all valid and within stock
// decrements each referenced product's stock by exactly the sold quantity.
func TestProperty_ValidSaleDecrementsStockExactly(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stock drops by exactly the sold quantity", prop.ForAll(
		func(stock int, sold int) bool {
			if sold > stock {
				sold = stock
			}

			sales, inventory, repo := newSalesFixture(t,
				&domain.Product{ID: "P1", Name: "Widget", Price: price("9.99"), Stock: stock},
			)

			sale := &domain.Sale{ID: "S1", Items: []domain.SaleItem{{ProductID: "P1", Quantity: sold}}}
			if err := sales.Record(sale); err != nil {
				t.Logf("FAIL: Record returned error: %v", err)
				return false
			}

			got, err := inventory.Get("P1")
			if err != nil {
				t.Logf("FAIL: Get failed: %v", err)
				return false
			}
			if got.Stock != stock-sold {
				t.Logf("FAIL: Expected stock %d, got %d", stock-sold, got.Stock)
				return false
			}
			if len(repo.appended) != 1 || repo.appended[0].ID != "S1" {
				t.Logf("FAIL: Sale was not appended to the ledger")
				return false
			}
			return true
		},
		gen.IntRange(1, 10000),
		gen.IntRange(1, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// A sale with an item quantity exceeding current stock is rejected and never
// appears in the ledger.
func TestOverStockSaleIsRejected(t *testing.T) {
	sales, inventory, repo := newSalesFixture(t,
		&domain.Product{ID: "P1", Name: "Widget", Price: price("9.99"), Stock: 2},
	)

	sale := &domain.Sale{ID: "S1", Items: []domain.SaleItem{{ProductID: "P1", Quantity: 3}}}
	err := sales.Record(sale)
	if !errors.Is(err, repository.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got: %v", err)
	}

	if len(repo.appended) != 0 {
		t.Error("Rejected sale must not reach the ledger")
	}
	got, _ := inventory.Get("P1")
	if got.Stock != 2 {
		t.Errorf("Stock must be unchanged after rejected sale, got %d", got.Stock)
	}
}

// Duplicate items for the same product are summed when validating stock.
func TestSplitItemsExceedingStockAreRejected(t *testing.T) {
	sales, inventory, repo := newSalesFixture(t,
		&domain.Product{ID: "P1", Name: "Widget", Price: price("9.99"), Stock: 5},
	)

	sale := &domain.Sale{ID: "S1", Items: []domain.SaleItem{
		{ProductID: "P1", Quantity: 3},
		{ProductID: "P1", Quantity: 3},
	}}
	err := sales.Record(sale)
	if !errors.Is(err, repository.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got: %v", err)
	}

	if len(repo.appended) != 0 {
		t.Error("Rejected sale must not reach the ledger")
	}
	got, _ := inventory.Get("P1")
	if got.Stock != 5 {
		t.Errorf("Stock must be unchanged, got %d", got.Stock)
	}
}

func TestSaleWithUnknownProductIsRejected(t *testing.T) {
	sales, _, repo := newSalesFixture(t,
		&domain.Product{ID: "P1", Name: "Widget", Price: price("9.99"), Stock: 5},
	)

	sale := &domain.Sale{ID: "S1", Items: []domain.SaleItem{{ProductID: "P2", Quantity: 1}}}
	err := sales.Record(sale)
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("Expected ErrProductNotFound, got: %v", err)
	}
	if len(repo.appended) != 0 {
		t.Error("Rejected sale must not reach the ledger")
	}
}

func TestEmptySaleIsRejected(t *testing.T) {
	sales, _, _ := newSalesFixture(t)

	err := sales.Record(&domain.Sale{ID: "S1"})
	if !errors.Is(err, ErrEmptySale) {
		t.Fatalf("Expected ErrEmptySale, got: %v", err)
	}
}

// When the ledger append fails, stock decrements are rolled back so no
// half-applied sale survives.
func TestLedgerFailureRollsBackStock(t *testing.T) {
	sales, inventory, repo := newSalesFixture(t,
		&domain.Product{ID: "P1", Name: "Widget", Price: price("9.99"), Stock: 10},
		&domain.Product{ID: "P2", Name: "Gadget", Price: price("4.50"), Stock: 4},
	)
	repo.failAppend = errors.New("disk full")

	sale := &domain.Sale{ID: "S1", Items: []domain.SaleItem{
		{ProductID: "P1", Quantity: 3},
		{ProductID: "P2", Quantity: 2},
	}}
	if err := sales.Record(sale); err == nil {
		t.Fatal("Expected Record to fail when the ledger append fails")
	}

	p1, _ := inventory.Get("P1")
	p2, _ := inventory.Get("P2")
	if p1.Stock != 10 || p2.Stock != 4 {
		t.Errorf("Stock not rolled back: P1=%d P2=%d", p1.Stock, p2.Stock)
	}
}

func TestTotalComputesFromCurrentPrices(t *testing.T) {
	sales, _, _ := newSalesFixture(t,
		&domain.Product{ID: "P1", Name: "Widget", Price: price("9.99"), Stock: 10},
		&domain.Product{ID: "P2", Name: "Gadget", Price: price("4.50"), Stock: 4},
	)

	sale := &domain.Sale{ID: "S1", Items: []domain.SaleItem{
		{ProductID: "P1", Quantity: 3},
		{ProductID: "P2", Quantity: 2},
	}}
	total, err := sales.Total(sale)
	if err != nil {
		t.Fatalf("Total failed: %v", err)
	}
	if !total.Equal(price("38.97")) {
		t.Errorf("Expected total 38.97, got %s", total)
	}
}

func TestListReturnsLedgerInOrder(t *testing.T) {
	sales, _, _ := newSalesFixture(t,
		&domain.Product{ID: "P1", Name: "Widget", Price: price("9.99"), Stock: 10},
	)

	for _, id := range []string{"S1", "S2"} {
		sale := &domain.Sale{ID: id, Items: []domain.SaleItem{{ProductID: "P1", Quantity: 1}}}
		if err := sales.Record(sale); err != nil {
			t.Fatalf("Record %s failed: %v", id, err)
		}
	}

	got, err := sales.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "S1" || got[1].ID != "S2" {
		t.Errorf("Unexpected ledger contents: %+v", got)
	}
}
