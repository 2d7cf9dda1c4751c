package shop

import (
	"fmt"
	"strings"
	"time"

	"shoplist/internal/model"
)

// GetPurchaseHistory returns all saved purchases, most recent first.
func (s *Store) GetPurchaseHistory() ([]model.Purchase, error) {
	history, _, err := loadCollection[model.Purchase](s, KeyPurchaseHistory)
	return history, err
}

// SavePurchase records the checked items of list as a purchase made at store
// and prepends it to the history. The purchase holds its own copy of the
// items, so later edits to the list do not reach it.
//
// Every snapshotted item linked to a catalogued product then appends its
// price to that product's history. A failure there is logged; the purchase
// itself is already committed and is still returned.
func (s *Store) SavePurchase(list model.ShoppingList, store string) (*model.Purchase, error) {
	items := checkedItems(list.Items)
	if len(items) == 0 {
		return nil, ErrNothingToPurchase
	}

	history, version, err := loadCollection[model.Purchase](s, KeyPurchaseHistory)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	purchase := model.Purchase{
		ID:           s.idgen.New(),
		ListID:       list.ID,
		ListName:     list.Name,
		Items:        items,
		Total:        Total(items),
		Store:        strings.TrimSpace(store),
		PurchaseDate: now,
	}
	history = append([]model.Purchase{purchase}, history...)

	if err := s.save(KeyPurchaseHistory, history, version); err != nil {
		return nil, fmt.Errorf("saving purchase: %w", err)
	}
	s.logger.Info("purchase saved", "id", purchase.ID, "list", list.ID, "items", len(items), "total", purchase.Total.String())

	if err := s.recordPurchasePrices(items, purchase.Store, now); err != nil {
		s.logger.Error("updating price history", "purchase", purchase.ID, "error", err)
	}

	return &purchase, nil
}

// recordPurchasePrices appends one price observation per purchased item to
// the product it is linked to and moves that product's LastPrice. Items with
// no product link, or a link to a deleted product, are skipped.
func (s *Store) recordPurchasePrices(items []model.ListItem, store string, at time.Time) error {
	products, version, err := loadCollection[model.Product](s, KeyProducts)
	if err != nil {
		return err
	}

	changed := 0
	for _, it := range items {
		if it.ProductID == nil {
			continue
		}
		idx := indexOfProduct(products, *it.ProductID)
		if idx == -1 {
			s.logger.Debug("purchased item refers to unknown product", "product", *it.ProductID, "item", it.ID)
			continue
		}
		p := &products[idx]
		p.PriceHistory = append(p.PriceHistory, model.PriceEntry{
			Price: it.Price,
			Date:  at,
			Store: store,
		})
		p.LastPrice = it.Price
		p.UpdatedAt = at
		changed++
	}
	if changed == 0 {
		return nil
	}

	if err := s.save(KeyProducts, products, version); err != nil {
		return fmt.Errorf("recording purchase prices: %w", err)
	}
	s.logger.Debug("price history updated", "products", changed)
	return nil
}

// checkedItems returns deep copies of the checked items.
func checkedItems(items []model.ListItem) []model.ListItem {
	out := []model.ListItem{}
	for _, it := range items {
		if !it.Checked {
			continue
		}
		it.ProductID = copyString(it.ProductID)
		out = append(out, it)
	}
	return out
}
