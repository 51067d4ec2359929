package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shopkeeper/internal/domain"
	"shopkeeper/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// state identifies where the menu loop is. Every state except stateExit
// returns to stateMenu when its flow completes.
type state int

const (
	stateMenu state = iota
	stateViewInventory
	stateAddProduct
	stateProcessSale
	stateViewSales
	stateExit
)

// doneSentinel ends the item-entry loop when processing a sale.
const doneSentinel = "done"

// Shell drives the interactive text menu. Input and output are injected so
// tests can script a full session.
type Shell struct {
	inventory service.InventoryService
	sales     service.SalesService
	logger    *zap.Logger
	in        *bufio.Scanner
	out       io.Writer
}

// New creates a Shell reading menu input from in and printing to out
func New(inventory service.InventoryService, sales service.SalesService, logger *zap.Logger, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		inventory: inventory,
		sales:     sales,
		logger:    logger,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// Run executes the menu loop until the user exits or input ends.
func (s *Shell) Run() {
	current := stateMenu
	for current != stateExit {
		switch current {
		case stateMenu:
			current = s.menu()
		case stateViewInventory:
			s.viewInventory()
			current = stateMenu
		case stateAddProduct:
			s.addProduct()
			current = stateMenu
		case stateProcessSale:
			s.processSale()
			current = stateMenu
		case stateViewSales:
			s.viewSales()
			current = stateMenu
		}
	}

	fmt.Fprintln(s.out, "Exiting... Thank you!")
	s.logger.Info("Shop system closed")
}

func (s *Shell) menu() state {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "--- Small Shop Management System ---")
	fmt.Fprintln(s.out, "1. View Inventory")
	fmt.Fprintln(s.out, "2. Add Product to Inventory")
	fmt.Fprintln(s.out, "3. Process a Sale")
	fmt.Fprintln(s.out, "4. View Sales Report")
	fmt.Fprintln(s.out, "5. Exit")

	choice, ok := s.prompt("Enter your choice: ")
	if !ok {
		// Input ended, treat as exit.
		return stateExit
	}

	switch choice {
	case "1":
		return stateViewInventory
	case "2":
		return stateAddProduct
	case "3":
		return stateProcessSale
	case "4":
		return stateViewSales
	case "5":
		return stateExit
	default:
		fmt.Fprintln(s.out, "Invalid choice, please try again.")
		return stateMenu
	}
}

func (s *Shell) viewInventory() {
	products := s.inventory.List()
	if len(products) == 0 {
		fmt.Fprintln(s.out, "Inventory is empty!")
		s.logger.Info("User viewed an empty inventory")
		return
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "--- Inventory ---")
	for _, p := range products {
		fmt.Fprintf(s.out, "ID: %s | %s | Price: $%s | Stock: %d\n", p.ID, p.Name, p.Price, p.Stock)
	}
}

func (s *Shell) addProduct() {
	id, ok := s.prompt("Enter Product ID: ")
	if !ok {
		return
	}
	name, ok := s.prompt("Enter Product Name: ")
	if !ok {
		return
	}

	priceInput, ok := s.prompt("Enter Product Price: ")
	if !ok {
		return
	}
	price, err := decimal.NewFromString(priceInput)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid price, product not added.")
		s.logger.Warn("Invalid price input", zap.String("input", priceInput))
		return
	}

	stockInput, ok := s.prompt("Enter Stock Quantity: ")
	if !ok {
		return
	}
	stock, err := strconv.Atoi(stockInput)
	if err != nil || stock < 0 {
		fmt.Fprintln(s.out, "Invalid stock quantity, product not added.")
		s.logger.Warn("Invalid stock input", zap.String("input", stockInput))
		return
	}

	product := &domain.Product{ID: id, Name: name, Price: price, Stock: stock}
	if err := s.inventory.Add(product); err != nil {
		fmt.Fprintln(s.out, "Product already exists!")
		return
	}
	fmt.Fprintf(s.out, "Product '%s' added successfully!\n", name)
}

func (s *Shell) processSale() {
	saleID, ok := s.prompt("Enter Sale ID (blank to auto-generate): ")
	if !ok {
		return
	}
	if saleID == "" {
		saleID = uuid.New().String()
		fmt.Fprintf(s.out, "Generated Sale ID: %s\n", saleID)
	}

	sale := &domain.Sale{ID: saleID}
	for {
		productID, ok := s.prompt("Enter Product ID to sell (or 'done' to finish): ")
		if !ok {
			break
		}
		if strings.EqualFold(productID, doneSentinel) {
			break
		}

		product, err := s.inventory.Get(productID)
		if err != nil {
			fmt.Fprintln(s.out, "Invalid Product ID. Try again.")
			s.logger.Warn("User entered invalid product ID", zap.String("id", productID))
			continue
		}

		quantityInput, ok := s.prompt(fmt.Sprintf("Enter quantity for %s: ", product.Name))
		if !ok {
			break
		}
		quantity, err := strconv.Atoi(quantityInput)
		if err != nil || quantity <= 0 {
			fmt.Fprintln(s.out, "Invalid quantity. Try again.")
			s.logger.Warn("Invalid quantity input", zap.String("input", quantityInput))
			continue
		}

		// Count what is already in this sale so the basket as a whole
		// stays within stock.
		if sale.Quantity(productID)+quantity > product.Stock {
			fmt.Fprintln(s.out, "Not enough stock available!")
			s.logger.Warn("User tried to sell more than available stock",
				zap.String("id", productID))
			continue
		}

		sale.Items = append(sale.Items, domain.SaleItem{ProductID: productID, Quantity: quantity})
	}

	if len(sale.Items) == 0 {
		fmt.Fprintln(s.out, "No items selected for sale.")
		return
	}

	if err := s.sales.Record(sale); err != nil {
		fmt.Fprintf(s.out, "Could not record sale %s: %v\n", sale.ID, err)
		return
	}

	if total, err := s.sales.Total(sale); err == nil {
		fmt.Fprintf(s.out, "Sale %s recorded successfully. Total: $%s\n", sale.ID, total)
	} else {
		fmt.Fprintf(s.out, "Sale %s recorded successfully.\n", sale.ID)
	}
}

func (s *Shell) viewSales() {
	sales, err := s.sales.List()
	if err != nil {
		fmt.Fprintln(s.out, "Could not read sales report.")
		return
	}
	if len(sales) == 0 {
		fmt.Fprintln(s.out, "No sales recorded yet.")
		s.logger.Info("User viewed an empty sales record")
		return
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "--- Sales Report ---")
	for _, sale := range sales {
		fmt.Fprintf(s.out, "Sale ID: %s | Items: %s\n", sale.ID, formatItems(sale.Items))
	}
}

// prompt prints a prompt and reads one trimmed line. ok is false once input
// is exhausted.
func (s *Shell) prompt(text string) (string, bool) {
	fmt.Fprint(s.out, text)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func formatItems(items []domain.SaleItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.ProductID, item.Quantity))
	}
	return strings.Join(parts, ", ")
}
