package shop

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

// ItemInput describes an item to append to a shopping list. A zero Quantity
// defaults to 1.
type ItemInput struct {
	ProductID *string         `json:"productId"`
	Name      string          `json:"name" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Category  string          `json:"category"`
}

// ItemPatch holds the list item fields to change; nil fields are kept.
type ItemPatch struct {
	Name     *string
	Quantity *int
	Price    *decimal.Decimal
	Category *string
	Checked  *bool
}

// ListPatch holds the list fields to change; nil fields are kept.
// Items and Total are managed through the item operations only.
type ListPatch struct {
	Name   *string
	Status *model.ListStatus
}

// GetShoppingLists returns every shopping list.
func (s *Store) GetShoppingLists() ([]model.ShoppingList, error) {
	lists, _, err := loadCollection[model.ShoppingList](s, KeyShoppingLists)
	return lists, err
}

// GetShoppingList returns the list with the given id, or nil if there is none.
func (s *Store) GetShoppingList(id string) (*model.ShoppingList, error) {
	lists, err := s.GetShoppingLists()
	if err != nil {
		return nil, err
	}
	if idx := indexOfList(lists, id); idx != -1 {
		return &lists[idx], nil
	}
	return nil, nil
}

// ActiveList returns the first active list, falling back to the first list
// of any status. It returns nil when there are no lists.
func (s *Store) ActiveList() (*model.ShoppingList, error) {
	lists, err := s.GetShoppingLists()
	if err != nil {
		return nil, err
	}
	for i := range lists {
		if lists[i].Status == model.ListActive {
			return &lists[i], nil
		}
	}
	if len(lists) > 0 {
		return &lists[0], nil
	}
	return nil, nil
}

// CreateShoppingList creates an empty active list. A blank name becomes
// "List N" where N is one more than the number of existing lists.
func (s *Store) CreateShoppingList(name string) (*model.ShoppingList, error) {
	lists, version, err := loadCollection[model.ShoppingList](s, KeyShoppingLists)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("List %d", len(lists)+1)
	}

	now := s.clock.Now()
	list := model.ShoppingList{
		ID:        s.idgen.New(),
		Name:      name,
		Items:     []model.ListItem{},
		Total:     decimal.Zero,
		Status:    model.ListActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	lists = append(lists, list)

	if err := s.save(KeyShoppingLists, lists, version); err != nil {
		return nil, fmt.Errorf("creating shopping list: %w", err)
	}

	s.logger.Info("shopping list created", "id", list.ID, "name", list.Name)
	return &list, nil
}

// UpdateShoppingList applies patch and stamps UpdatedAt. It returns nil if
// the list does not exist.
func (s *Store) UpdateShoppingList(id string, patch ListPatch) (*model.ShoppingList, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: status must be one of [active completed archived]", ErrInvalidInput)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	var updated *model.ShoppingList
	found, err := s.mutateList(id, func(list *model.ShoppingList) error {
		if patch.Name != nil {
			list.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Status != nil {
			list.Status = *patch.Status
		}
		updated = list
		return nil
	})
	if err != nil || !found {
		return nil, err
	}

	s.logger.Info("shopping list updated", "id", id)
	out := *updated
	return &out, nil
}

// DeleteShoppingList removes a list if present. Purchases saved from it keep
// their denormalized copy of its name and items.
func (s *Store) DeleteShoppingList(id string) error {
	lists, version, err := loadCollection[model.ShoppingList](s, KeyShoppingLists)
	if err != nil {
		return err
	}
	idx := indexOfList(lists, id)
	if idx == -1 {
		return nil
	}
	lists = append(lists[:idx], lists[idx+1:]...)
	if err := s.save(KeyShoppingLists, lists, version); err != nil {
		return fmt.Errorf("deleting shopping list: %w", err)
	}
	s.logger.Info("shopping list deleted", "id", id)
	return nil
}

// AddItemToList appends an unchecked item to the list and refreshes its
// total. It returns nil if the list does not exist.
func (s *Store) AddItemToList(listID string, in ItemInput) (*model.ListItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Category == "" {
		in.Category = model.DefaultCategory
	}
	if in.ProductID != nil && *in.ProductID == "" {
		in.ProductID = nil
	}

	var item model.ListItem
	found, err := s.mutateList(listID, func(list *model.ShoppingList) error {
		item = model.ListItem{
			ID:        s.idgen.New(),
			ProductID: copyString(in.ProductID),
			Name:      in.Name,
			Quantity:  in.Quantity,
			Price:     in.Price,
			Category:  in.Category,
			Checked:   false,
			AddedAt:   s.clock.Now(),
		}
		list.Items = append(list.Items, item)
		return nil
	})
	if err != nil || !found {
		return nil, err
	}

	s.logger.Info("item added to list", "list", listID, "item", item.ID, "name", item.Name)
	return &item, nil
}

// UpdateListItem applies patch to one item and refreshes the list total.
// It returns nil if either the list or the item does not exist.
func (s *Store) UpdateListItem(listID, itemID string, patch ItemPatch) (*model.ListItem, error) {
	if err := checkItemPatch(patch); err != nil {
		return nil, err
	}

	var updated *model.ListItem
	found, err := s.mutateList(listID, func(list *model.ShoppingList) error {
		idx := indexOfItem(list.Items, itemID)
		if idx == -1 {
			return errItemMissing
		}
		it := &list.Items[idx]
		if patch.Name != nil {
			it.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Quantity != nil {
			it.Quantity = *patch.Quantity
		}
		if patch.Price != nil {
			it.Price = *patch.Price
		}
		if patch.Category != nil {
			it.Category = strings.TrimSpace(*patch.Category)
			if it.Category == "" {
				it.Category = model.DefaultCategory
			}
		}
		if patch.Checked != nil {
			it.Checked = *patch.Checked
		}
		updated = it
		return nil
	})
	if errors.Is(err, errItemMissing) {
		return nil, nil
	}
	if err != nil || !found {
		return nil, err
	}

	s.logger.Info("list item updated", "list", listID, "item", itemID)
	out := *updated
	return &out, nil
}

// ToggleItemCheck flips the checked state of an item. It returns nil if the
// list or the item does not exist.
func (s *Store) ToggleItemCheck(listID, itemID string) (*model.ListItem, error) {
	list, err := s.GetShoppingList(listID)
	if err != nil || list == nil {
		return nil, err
	}
	idx := indexOfItem(list.Items, itemID)
	if idx == -1 {
		return nil, nil
	}
	checked := !list.Items[idx].Checked
	return s.UpdateListItem(listID, itemID, ItemPatch{Checked: &checked})
}

// RemoveItemFromList drops an item and refreshes the list total. It reports
// false only when the list does not exist; a missing item is a no-op.
func (s *Store) RemoveItemFromList(listID, itemID string) (bool, error) {
	found, err := s.mutateList(listID, func(list *model.ShoppingList) error {
		kept := make([]model.ListItem, 0, len(list.Items))
		for _, it := range list.Items {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		list.Items = kept
		return nil
	})
	if err != nil || !found {
		return false, err
	}

	s.logger.Info("item removed from list", "list", listID, "item", itemID)
	return true, nil
}

var errItemMissing = errors.New("item not found")

// mutateList loads the lists, runs fn on the one with the given id, then
// recomputes its total, stamps UpdatedAt and writes the collection back.
// It reports false without writing if the list does not exist.
func (s *Store) mutateList(id string, fn func(*model.ShoppingList) error) (bool, error) {
	lists, version, err := loadCollection[model.ShoppingList](s, KeyShoppingLists)
	if err != nil {
		return false, err
	}
	idx := indexOfList(lists, id)
	if idx == -1 {
		return false, nil
	}

	list := &lists[idx]
	if err := fn(list); err != nil {
		return true, err
	}
	if list.Items == nil {
		list.Items = []model.ListItem{}
	}
	list.Total = Total(list.Items)
	list.UpdatedAt = s.clock.Now()

	if err := s.save(KeyShoppingLists, lists, version); err != nil {
		return true, fmt.Errorf("updating shopping list: %w", err)
	}
	return true, nil
}

func checkItemPatch(p ItemPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.Quantity != nil && *p.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if p.Price != nil && p.Price.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	}
	return nil
}

func indexOfList(lists []model.ShoppingList, id string) int {
	for i := range lists {
		if lists[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfItem(items []model.ListItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
