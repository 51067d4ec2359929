package domain

// SaleItem is one line of a sale: a product and the quantity sold.
type SaleItem struct {
	ProductID string
	Quantity  int
}

// Sale represents a single recorded transaction. Items keep the order in
// which they were entered; a sale is immutable once recorded.
type Sale struct {
	ID    string
	Items []SaleItem
}

// Quantity returns the quantity sold for the given product ID, summed over
// all matching items, or zero if the sale does not reference it.
func (s *Sale) Quantity(productID string) int {
	total := 0
	for _, item := range s.Items {
		if item.ProductID == productID {
			total += item.Quantity
		}
	}
	return total
}
