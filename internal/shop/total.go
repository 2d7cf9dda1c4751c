package shop

import (
	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

// Total is the value of a list: the sum of price × quantity over every item,
// checked or not. ShoppingList.Total caches this and must be refreshed after
// any change to the items.
func Total(items []model.ListItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(lineTotal(it))
	}
	return sum
}

// CheckedTotal sums price × quantity over checked items only.
func CheckedTotal(items []model.ListItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.Checked {
			sum = sum.Add(lineTotal(it))
		}
	}
	return sum
}

// Summarize breaks a list's items down into total, checked and remaining.
func Summarize(items []model.ListItem) model.ListSummary {
	total := Total(items)
	checked := CheckedTotal(items)
	count := 0
	for _, it := range items {
		if it.Checked {
			count++
		}
	}
	return model.ListSummary{
		Total:        total,
		Checked:      checked,
		Remaining:    total.Sub(checked),
		ItemCount:    len(items),
		CheckedCount: count,
	}
}

func lineTotal(it model.ListItem) decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
