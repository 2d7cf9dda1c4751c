package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Persisted and exported prices are JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultCategory is assigned to products and list items created without one.
const DefaultCategory = "General"

// PriceEntry is a single observed price for a product.
type PriceEntry struct {
	Price decimal.Decimal `json:"price" validate:"gte=0"`
	Date  time.Time       `json:"date"`
	Store string          `json:"store"`
}

// Product is a catalogued item whose price is tracked over time.
// PriceHistory is append-only and never empty once the product exists.
type Product struct {
	ID           string          `json:"id" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Category     string          `json:"category"`
	LastPrice    decimal.Decimal `json:"lastPrice" validate:"gte=0"`
	PriceHistory []PriceEntry    `json:"priceHistory" validate:"min=1,dive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ListStatus is the lifecycle state of a shopping list.
type ListStatus string

const (
	ListActive    ListStatus = "active"
	ListCompleted ListStatus = "completed"
	ListArchived  ListStatus = "archived"
)

// Valid reports whether s is a recognized status.
func (s ListStatus) Valid() bool {
	switch s {
	case ListActive, ListCompleted, ListArchived:
		return true
	}
	return false
}

// ListItem is an entry on a shopping list. Name, price and category are
// copied at add time; ProductID is a weak reference that may dangle.
type ListItem struct {
	ID        string          `json:"id" validate:"required"`
	ProductID *string         `json:"productId"`
	Name      string          `json:"name" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Category  string          `json:"category"`
	Checked   bool            `json:"checked"`
	AddedAt   time.Time       `json:"addedAt"`
}

// ShoppingList holds ordered items. Total is a cache of the sum of
// price × quantity over Items and is never set independently.
type ShoppingList struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name"`
	Items     []ListItem      `json:"items" validate:"dive"`
	Total     decimal.Decimal `json:"total"`
	Status    ListStatus      `json:"status" validate:"oneof=active completed archived"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Purchase is an immutable record of the checked items of a list at the
// moment it was saved.
type Purchase struct {
	ID           string          `json:"id" validate:"required"`
	ListID       string          `json:"listId"`
	ListName     string          `json:"listName"`
	Items        []ListItem      `json:"items" validate:"dive"`
	Total        decimal.Decimal `json:"total"`
	Store        string          `json:"store"`
	PurchaseDate time.Time       `json:"purchaseDate"`
}

// Snapshot is the canonical backup format. On import a nil field means the
// collection was absent from the payload and is left untouched.
type Snapshot struct {
	Products        *[]Product      `json:"products,omitempty"`
	ShoppingLists   *[]ShoppingList `json:"shoppingLists,omitempty"`
	PurchaseHistory *[]Purchase     `json:"purchaseHistory,omitempty"`
	Settings        Settings        `json:"settings,omitempty"`
	ExportDate      time.Time       `json:"exportDate"`
}
