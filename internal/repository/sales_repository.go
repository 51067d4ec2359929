package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"shopkeeper/internal/domain"

	"go.uber.org/zap"
)

var salesHeader = []string{"SaleID", "Items"}

// SalesRepository defines the interface for the append-only sales ledger
type SalesRepository interface {
	Append(sale *domain.Sale) error
	List() ([]*domain.Sale, error)
}

type csvSalesRepository struct {
	path   string
	logger *zap.Logger
}

// NewSalesRepository creates a SalesRepository backed by a CSV ledger file
func NewSalesRepository(path string, logger *zap.Logger) SalesRepository {
	return &csvSalesRepository{path: path, logger: logger}
}

// Append writes one sale row to the ledger, creating the file with a header
// row if it does not yet exist. The ledger is never rewritten.
func (r *csvSalesRepository) Append(sale *domain.Sale) error {
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &WriteError{Path: r.path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &WriteError{Path: r.path, Err: err}
	}

	writer := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := writer.Write(salesHeader); err != nil {
			return &WriteError{Path: r.path, Err: err}
		}
	}

	if err := writer.Write([]string{sale.ID, encodeItems(sale.Items)}); err != nil {
		return &WriteError{Path: r.path, Err: err}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &WriteError{Path: r.path, Err: err}
	}

	return nil
}

// List reads every recorded sale from the ledger in append order. A missing
// file means no sales have been recorded yet.
func (r *csvSalesRepository) List() ([]*domain.Sale, error) {
	sales := []*domain.Sale{}

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sales, nil
		}
		return sales, &ParseError{Path: r.path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return sales, &ParseError{Path: r.path, Err: err}
	}

	for i, record := range records {
		if i == 0 {
			continue
		}
		sale, err := parseSaleRecord(record)
		if err != nil {
			r.logger.Warn("Skipping malformed sales row",
				zap.String("path", r.path),
				zap.Int("line", i+1),
				zap.Error(err),
			)
			continue
		}
		sales = append(sales, sale)
	}

	return sales, nil
}

// encodeItems renders sale items as "pid:qty" pairs joined by ";",
// preserving entry order.
func encodeItems(items []domain.SaleItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s:%d", item.ProductID, item.Quantity))
	}
	return strings.Join(parts, ";")
}

func parseSaleRecord(record []string) (*domain.Sale, error) {
	if len(record) != len(salesHeader) {
		return nil, errors.New("wrong number of fields")
	}
	if record[0] == "" {
		return nil, errors.New("empty sale ID")
	}

	items, err := decodeItems(record[1])
	if err != nil {
		return nil, err
	}

	return &domain.Sale{ID: record[0], Items: items}, nil
}

func decodeItems(encoded string) ([]domain.SaleItem, error) {
	items := []domain.SaleItem{}
	if encoded == "" {
		return items, nil
	}

	for _, part := range strings.Split(encoded, ";") {
		productID, qty, ok := strings.Cut(part, ":")
		if !ok || productID == "" {
			return nil, fmt.Errorf("malformed item %q", part)
		}
		quantity, err := strconv.Atoi(qty)
		if err != nil {
			return nil, fmt.Errorf("malformed quantity in item %q: %w", part, err)
		}
		items = append(items, domain.SaleItem{ProductID: productID, Quantity: quantity})
	}

	return items, nil
}
