package domain

import (
	"github.com/shopspring/decimal"
)

// Product represents a sellable item in the shop's inventory
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}
