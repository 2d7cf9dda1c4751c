package shop

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

// ProductInput describes a product to register along with its first
// observed price.
type ProductInput struct {
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Store    string          `json:"store"`
}

// ProductPatch holds the fields of a product that may be edited directly.
// Prices only change through purchases, so they are not patchable.
type ProductPatch struct {
	Name     *string
	Category *string
}

// GetProducts returns every catalogued product.
func (s *Store) GetProducts() ([]model.Product, error) {
	products, _, err := loadCollection[model.Product](s, KeyProducts)
	return products, err
}

// GetProduct returns the product with the given id, or nil if there is none.
func (s *Store) GetProduct(id string) (*model.Product, error) {
	products, err := s.GetProducts()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, nil
}

// AddProduct registers a product and seeds its price history with one entry.
func (s *Store) AddProduct(in ProductInput) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Store = strings.TrimSpace(in.Store)
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = model.DefaultCategory
	}

	products, version, err := loadCollection[model.Product](s, KeyProducts)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	product := model.Product{
		ID:        s.idgen.New(),
		Name:      in.Name,
		Category:  in.Category,
		LastPrice: in.Price,
		PriceHistory: []model.PriceEntry{
			{Price: in.Price, Date: now, Store: in.Store},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	products = append(products, product)

	if err := s.save(KeyProducts, products, version); err != nil {
		return nil, fmt.Errorf("adding product: %w", err)
	}

	s.logger.Info("product added", "id", product.ID, "name", product.Name, "price", product.LastPrice.String())
	return &product, nil
}

// UpdateProduct applies patch to the product with the given id and stamps
// UpdatedAt. It returns nil if no such product exists.
func (s *Store) UpdateProduct(id string, patch ProductPatch) (*model.Product, error) {
	products, version, err := loadCollection[model.Product](s, KeyProducts)
	if err != nil {
		return nil, err
	}

	idx := indexOfProduct(products, id)
	if idx == -1 {
		return nil, nil
	}

	p := &products[idx]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		p.Name = name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
		if p.Category == "" {
			p.Category = model.DefaultCategory
		}
	}
	p.UpdatedAt = s.clock.Now()

	if err := s.save(KeyProducts, products, version); err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}

	s.logger.Info("product updated", "id", id)
	updated := *p
	return &updated, nil
}

// DeleteProduct removes the product with the given id if present. List items
// and purchases that refer to it keep their own copies and are untouched.
func (s *Store) DeleteProduct(id string) error {
	products, version, err := loadCollection[model.Product](s, KeyProducts)
	if err != nil {
		return err
	}

	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == len(products) {
		return nil
	}

	if err := s.save(KeyProducts, filtered, version); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	s.logger.Info("product deleted", "id", id)
	return nil
}

// SearchProducts returns products whose name or category contains query,
// ignoring case. An empty query matches everything.
func (s *Store) SearchProducts(query string) ([]model.Product, error) {
	products, err := s.GetProducts()
	if err != nil {
		return nil, err
	}
	return FilterProducts(products, query), nil
}

// FilterProducts is the pure form of SearchProducts.
func FilterProducts(products []model.Product, query string) []model.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []model.Product{}
	for _, p := range products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct product categories in first-seen order.
func Categories(products []model.Product) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// AverageLastPrice is the mean of LastPrice across products, or zero when
// there are none.
func AverageLastPrice(products []model.Product) decimal.Decimal {
	if len(products) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, p := range products {
		sum = sum.Add(p.LastPrice)
	}
	return sum.Div(decimal.NewFromInt(int64(len(products)))).Round(2)
}

func indexOfProduct(products []model.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
