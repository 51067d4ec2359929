package repository

import (
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"shopkeeper/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// inventoryHeader is the column layout of the inventory file.
var inventoryHeader = []string{"ID", "Name", "Price", "Stock"}

// InventoryRepository defines the interface for inventory persistence
type InventoryRepository interface {
	Load() (map[string]*domain.Product, error)
	Save(products map[string]*domain.Product) error
}

type csvInventoryRepository struct {
	path   string
	logger *zap.Logger
}

// NewInventoryRepository creates an InventoryRepository backed by a CSV file
func NewInventoryRepository(path string, logger *zap.Logger) InventoryRepository {
	return &csvInventoryRepository{path: path, logger: logger}
}

// Load reads the backing file into a product map. A missing file is the
// empty state, not an error. Malformed rows are skipped with a warning so a
// partially damaged file still yields every readable product.
func (r *csvInventoryRepository) Load() (map[string]*domain.Product, error) {
	products := make(map[string]*domain.Product)

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("Inventory file not found, starting empty",
				zap.String("path", r.path))
			return products, nil
		}
		return products, &ParseError{Path: r.path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return products, &ParseError{Path: r.path, Err: err}
	}

	for i, record := range records {
		if i == 0 {
			// header row
			continue
		}
		product, err := parseProductRecord(record)
		if err != nil {
			r.logger.Warn("Skipping malformed inventory row",
				zap.String("path", r.path),
				zap.Int("line", i+1),
				zap.Error(err),
			)
			continue
		}
		products[product.ID] = product
	}

	return products, nil
}

// Save serializes the full mapping, overwriting the backing file. Rows are
// written in sorted ID order so the file is deterministic.
func (r *csvInventoryRepository) Save(products map[string]*domain.Product) error {
	f, err := os.Create(r.path)
	if err != nil {
		return &WriteError{Path: r.path, Err: err}
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(inventoryHeader); err != nil {
		return &WriteError{Path: r.path, Err: err}
	}

	ids := make([]string, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := products[id]
		record := []string{p.ID, p.Name, p.Price.String(), strconv.Itoa(p.Stock)}
		if err := writer.Write(record); err != nil {
			return &WriteError{Path: r.path, Err: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &WriteError{Path: r.path, Err: err}
	}

	return nil
}

func parseProductRecord(record []string) (*domain.Product, error) {
	if len(record) != len(inventoryHeader) {
		return nil, errors.New("wrong number of fields")
	}
	if record[0] == "" {
		return nil, errors.New("empty product ID")
	}

	price, err := decimal.NewFromString(record[2])
	if err != nil {
		return nil, err
	}

	stock, err := strconv.Atoi(record[3])
	if err != nil {
		return nil, err
	}

	return &domain.Product{
		ID:    record[0],
		Name:  record[1],
		Price: price,
		Stock: stock,
	}, nil
}
