package shop

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ComparePrices compares the two most recent entries in a product's price
// history. It returns nil when there are fewer than two entries.
//
// Entries are ordered newest first by date; among entries with the same
// date, the one appended later is treated as newer. A zero previous price
// yields a stable trend and a 0% change.
func ComparePrices(p model.Product) *model.PriceComparison {
	if len(p.PriceHistory) < 2 {
		return nil
	}

	history := make([]model.PriceEntry, len(p.PriceHistory))
	for i, e := range p.PriceHistory {
		history[len(history)-1-i] = e
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})

	current := history[0].Price
	previous := history[1].Price
	diff := current.Sub(previous)

	c := &model.PriceComparison{
		Product:          p,
		CurrentPrice:     current,
		PreviousPrice:    previous,
		Difference:       diff,
		PercentageChange: decimal.Zero,
		Trend:            model.TrendStable,
	}
	if previous.IsZero() {
		return c
	}

	c.PercentageChange = diff.Mul(hundred).Div(previous).Round(2)
	switch diff.Sign() {
	case 1:
		c.Trend = model.TrendIncrease
	case -1:
		c.Trend = model.TrendDecrease
	}
	return c
}

// CompareAll evaluates every product and drops those without a comparison.
func CompareAll(products []model.Product) []model.PriceComparison {
	out := []model.PriceComparison{}
	for _, p := range products {
		if c := ComparePrices(p); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// FilterByTrend keeps the comparisons with the given trend.
func FilterByTrend(comps []model.PriceComparison, trend model.Trend) []model.PriceComparison {
	out := []model.PriceComparison{}
	for _, c := range comps {
		if c.Trend == trend {
			out = append(out, c)
		}
	}
	return out
}

// AverageChange is the arithmetic mean of PercentageChange, or zero for an
// empty set.
func AverageChange(comps []model.PriceComparison) decimal.Decimal {
	if len(comps) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, c := range comps {
		sum = sum.Add(c.PercentageChange)
	}
	return sum.Div(decimal.NewFromInt(int64(len(comps)))).Round(2)
}

// SummarizeComparisons counts comparisons per trend and averages the
// increases and decreases. The average decrease is a magnitude.
func SummarizeComparisons(comps []model.PriceComparison) model.ComparisonSummary {
	inc := FilterByTrend(comps, model.TrendIncrease)
	dec := FilterByTrend(comps, model.TrendDecrease)
	return model.ComparisonSummary{
		Increases:       len(inc),
		Decreases:       len(dec),
		Stable:          len(comps) - len(inc) - len(dec),
		AverageIncrease: AverageChange(inc),
		AverageDecrease: AverageChange(dec).Abs(),
	}
}

// ComparisonFilter narrows a comparison list. Zero fields match everything.
type ComparisonFilter struct {
	Query    string
	Trend    model.Trend
	Category string
}

// FilterComparisons applies f: Query matches product names ignoring case,
// Trend and Category must match exactly.
func FilterComparisons(comps []model.PriceComparison, f ComparisonFilter) []model.PriceComparison {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []model.PriceComparison{}
	for _, c := range comps {
		if q != "" && !strings.Contains(strings.ToLower(c.Product.Name), q) {
			continue
		}
		if f.Trend != "" && c.Trend != f.Trend {
			continue
		}
		if f.Category != "" && c.Product.Category != f.Category {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Comparison sort orders.
const (
	SortByPercentage = "percentage"
	SortByDifference = "difference"
	SortByName       = "name"
	SortByPrice      = "price"
)

// SortComparisons returns a sorted copy of comps. Percentage and difference
// sort by magnitude, largest first; price sorts by current price, highest
// first; name sorts alphabetically. Unknown orders keep the input order.
func SortComparisons(comps []model.PriceComparison, by string) []model.PriceComparison {
	out := make([]model.PriceComparison, len(comps))
	copy(out, comps)

	var less func(a, b model.PriceComparison) bool
	switch by {
	case SortByPercentage:
		less = func(a, b model.PriceComparison) bool {
			return a.PercentageChange.Abs().GreaterThan(b.PercentageChange.Abs())
		}
	case SortByDifference:
		less = func(a, b model.PriceComparison) bool {
			return a.Difference.Abs().GreaterThan(b.Difference.Abs())
		}
	case SortByName:
		less = func(a, b model.PriceComparison) bool {
			return strings.ToLower(a.Product.Name) < strings.ToLower(b.Product.Name)
		}
	case SortByPrice:
		less = func(a, b model.PriceComparison) bool {
			return a.CurrentPrice.GreaterThan(b.CurrentPrice)
		}
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// GetProductPriceComparison loads a product and compares its latest prices.
// It returns nil when the product is missing or has too little history.
func (s *Store) GetProductPriceComparison(productID string) (*model.PriceComparison, error) {
	p, err := s.GetProduct(productID)
	if err != nil || p == nil {
		return nil, err
	}
	return ComparePrices(*p), nil
}

// AllComparisons compares every product that has at least two prices.
func (s *Store) AllComparisons() ([]model.PriceComparison, error) {
	products, err := s.GetProducts()
	if err != nil {
		return nil, err
	}
	return CompareAll(products), nil
}

// PriceIncreases returns comparisons whose latest change was upward.
func (s *Store) PriceIncreases() ([]model.PriceComparison, error) {
	comps, err := s.AllComparisons()
	if err != nil {
		return nil, err
	}
	return FilterByTrend(comps, model.TrendIncrease), nil
}

// PriceDecreases returns comparisons whose latest change was downward.
func (s *Store) PriceDecreases() ([]model.PriceComparison, error) {
	comps, err := s.AllComparisons()
	if err != nil {
		return nil, err
	}
	return FilterByTrend(comps, model.TrendDecrease), nil
}
