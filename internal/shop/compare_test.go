package shop_test

import (
	"testing"
	"time"

	"shoplist/internal/model"
	"shoplist/internal/shop"
	"shoplist/internal/testutil"
)

var day0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func history(prices ...string) []model.PriceEntry {
	out := make([]model.PriceEntry, len(prices))
	for i, p := range prices {
		out[i] = model.PriceEntry{Price: dec(p), Date: day0.AddDate(0, 0, i)}
	}
	return out
}

func TestComparePrices(t *testing.T) {
	tests := []struct {
		name        string
		history     []model.PriceEntry
		wantNil     bool
		wantCurrent string
		wantPrev    string
		wantDiff    string
		wantPct     string
		wantTrend   model.Trend
	}{
		{name: "no history", history: nil, wantNil: true},
		{name: "single entry", history: history("10"), wantNil: true},
		{name: "increase", history: history("8", "10"), wantCurrent: "10", wantPrev: "8", wantDiff: "2", wantPct: "25", wantTrend: model.TrendIncrease},
		{name: "decrease", history: history("10", "8"), wantCurrent: "8", wantPrev: "10", wantDiff: "-2", wantPct: "-20", wantTrend: model.TrendDecrease},
		{name: "unchanged", history: history("5", "5"), wantCurrent: "5", wantPrev: "5", wantDiff: "0", wantPct: "0", wantTrend: model.TrendStable},
		{name: "only latest two count", history: history("100", "3", "4"), wantCurrent: "4", wantPrev: "3", wantDiff: "1", wantPct: "33.33", wantTrend: model.TrendIncrease},
		{name: "zero previous price", history: history("0", "7"), wantCurrent: "7", wantPrev: "0", wantDiff: "7", wantPct: "0", wantTrend: model.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shop.ComparePrices(model.Product{Name: "Rice", PriceHistory: tt.history})
			if tt.wantNil {
				if got != nil {
					t.Errorf("ComparePrices() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("ComparePrices() = nil")
			}
			if !got.CurrentPrice.Equal(dec(tt.wantCurrent)) || !got.PreviousPrice.Equal(dec(tt.wantPrev)) {
				t.Errorf("current/previous = %s/%s, want %s/%s", got.CurrentPrice, got.PreviousPrice, tt.wantCurrent, tt.wantPrev)
			}
			if !got.Difference.Equal(dec(tt.wantDiff)) {
				t.Errorf("Difference = %s, want %s", got.Difference, tt.wantDiff)
			}
			if !got.PercentageChange.Equal(dec(tt.wantPct)) {
				t.Errorf("PercentageChange = %s, want %s", got.PercentageChange, tt.wantPct)
			}
			if got.Trend != tt.wantTrend {
				t.Errorf("Trend = %s, want %s", got.Trend, tt.wantTrend)
			}
			if got.Product.Name != "Rice" {
				t.Errorf("Product not carried: %+v", got.Product)
			}
		})
	}
}

func TestComparePrices_OrdersByDate(t *testing.T) {
	t.Run("out of order entries", func(t *testing.T) {
		h := []model.PriceEntry{
			{Price: dec("9"), Date: day0.AddDate(0, 0, 5)},
			{Price: dec("6"), Date: day0},
			{Price: dec("10"), Date: day0.AddDate(0, 0, 2)},
		}
		got := shop.ComparePrices(model.Product{PriceHistory: h})
		if !got.CurrentPrice.Equal(dec("9")) || !got.PreviousPrice.Equal(dec("10")) {
			t.Errorf("current/previous = %s/%s, want 9/10", got.CurrentPrice, got.PreviousPrice)
		}
		if got.Trend != model.TrendDecrease {
			t.Errorf("Trend = %s, want decrease", got.Trend)
		}
	})

	t.Run("equal dates favor the later entry", func(t *testing.T) {
		h := []model.PriceEntry{
			{Price: dec("10"), Date: day0},
			{Price: dec("12"), Date: day0},
		}
		got := shop.ComparePrices(model.Product{PriceHistory: h})
		if !got.CurrentPrice.Equal(dec("12")) || !got.PreviousPrice.Equal(dec("10")) {
			t.Errorf("current/previous = %s/%s, want 12/10", got.CurrentPrice, got.PreviousPrice)
		}
	})

	t.Run("input is not reordered", func(t *testing.T) {
		h := []model.PriceEntry{
			{Price: dec("1"), Date: day0.AddDate(0, 0, 3)},
			{Price: dec("2"), Date: day0},
		}
		shop.ComparePrices(model.Product{PriceHistory: h})
		if !h[0].Price.Equal(dec("1")) {
			t.Error("ComparePrices reordered the caller's history")
		}
	})
}

func TestStore_PriceComparison_AfterPurchase(t *testing.T) {
	s, clock := testutil.NewTestStore(t, nil)
	p, _ := s.AddProduct(shop.ProductInput{Name: "Coffee", Price: dec("10"), Store: "A"})

	if c, err := s.GetProductPriceComparison(p.ID); err != nil || c != nil {
		t.Fatalf("comparison with one price = (%v, %v), want (nil, nil)", c, err)
	}

	list, _ := newListWithItems(t, s, shop.ItemInput{ProductID: &p.ID, Name: p.Name, Price: dec("8")})
	fresh := checkAll(t, s, list.ID)
	clock.Advance(24 * time.Hour)
	if _, err := s.SavePurchase(fresh, "B"); err != nil {
		t.Fatal(err)
	}

	c, err := s.GetProductPriceComparison(p.ID)
	if err != nil || c == nil {
		t.Fatalf("GetProductPriceComparison() = (%v, %v)", c, err)
	}
	if c.Trend != model.TrendDecrease || !c.PercentageChange.Equal(dec("-20")) {
		t.Errorf("comparison = %s %s%%, want decrease -20%%", c.Trend, c.PercentageChange)
	}

	decreases, _ := s.PriceDecreases()
	increases, _ := s.PriceIncreases()
	if len(decreases) != 1 || len(increases) != 0 {
		t.Errorf("decreases/increases = %d/%d, want 1/0", len(decreases), len(increases))
	}

	if c, err := s.GetProductPriceComparison("nope"); err != nil || c != nil {
		t.Errorf("comparison of missing product = (%v, %v), want (nil, nil)", c, err)
	}
}

func comparisons() []model.PriceComparison {
	products := []model.Product{
		{Name: "Milk", Category: "Dairy", PriceHistory: history("4", "5")},
		{Name: "bread", Category: "Bakery", PriceHistory: history("10", "8")},
		{Name: "Apples", Category: "Fruit", PriceHistory: history("6", "6")},
		{Name: "Cheese", Category: "Dairy", PriceHistory: history("20", "30")},
		{Name: "Solo", Category: "Fruit", PriceHistory: history("1")},
	}
	return shop.CompareAll(products)
}

func TestCompareAll_SkipsShortHistory(t *testing.T) {
	if got := len(comparisons()); got != 4 {
		t.Errorf("CompareAll() = %d comparisons, want 4", got)
	}
}

func TestSummarizeComparisons(t *testing.T) {
	sum := shop.SummarizeComparisons(comparisons())
	if sum.Increases != 2 || sum.Decreases != 1 || sum.Stable != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", sum.Increases, sum.Decreases, sum.Stable)
	}
	// Milk +25%, Cheese +50%.
	if !sum.AverageIncrease.Equal(dec("37.5")) {
		t.Errorf("AverageIncrease = %s, want 37.5", sum.AverageIncrease)
	}
	if !sum.AverageDecrease.Equal(dec("20")) {
		t.Errorf("AverageDecrease = %s, want 20", sum.AverageDecrease)
	}

	empty := shop.SummarizeComparisons(nil)
	if empty.Increases != 0 || !empty.AverageIncrease.IsZero() || !empty.AverageDecrease.IsZero() {
		t.Errorf("SummarizeComparisons(nil) = %+v", empty)
	}
}

func TestAverageChange(t *testing.T) {
	if got := shop.AverageChange(nil); !got.IsZero() {
		t.Errorf("AverageChange(nil) = %s, want 0", got)
	}
	// (25 - 20 + 0 + 50) / 4
	if got := shop.AverageChange(comparisons()); !got.Equal(dec("13.75")) {
		t.Errorf("AverageChange() = %s, want 13.75", got)
	}
}

func TestFilterComparisons(t *testing.T) {
	tests := []struct {
		name   string
		filter shop.ComparisonFilter
		want   []string
	}{
		{name: "everything", filter: shop.ComparisonFilter{}, want: []string{"Milk", "bread", "Apples", "Cheese"}},
		{name: "query ignores case", filter: shop.ComparisonFilter{Query: "BREAD"}, want: []string{"bread"}},
		{name: "trend", filter: shop.ComparisonFilter{Trend: model.TrendIncrease}, want: []string{"Milk", "Cheese"}},
		{name: "category", filter: shop.ComparisonFilter{Category: "Dairy"}, want: []string{"Milk", "Cheese"}},
		{name: "combined", filter: shop.ComparisonFilter{Category: "Dairy", Query: "che"}, want: []string{"Cheese"}},
		{name: "no match", filter: shop.ComparisonFilter{Trend: model.TrendDecrease, Category: "Dairy"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNames(t, shop.FilterComparisons(comparisons(), tt.filter), tt.want)
		})
	}
}

func TestSortComparisons(t *testing.T) {
	tests := []struct {
		by   string
		want []string
	}{
		// |25|, |-20|, 0, |50|
		{by: shop.SortByPercentage, want: []string{"Cheese", "Milk", "bread", "Apples"}},
		// |1|, |-2|, 0, |10|
		{by: shop.SortByDifference, want: []string{"Cheese", "bread", "Milk", "Apples"}},
		{by: shop.SortByName, want: []string{"Apples", "bread", "Cheese", "Milk"}},
		// 5, 8, 6, 30
		{by: shop.SortByPrice, want: []string{"Cheese", "bread", "Apples", "Milk"}},
		{by: "unknown", want: []string{"Milk", "bread", "Apples", "Cheese"}},
	}
	for _, tt := range tests {
		t.Run(tt.by, func(t *testing.T) {
			in := comparisons()
			assertNames(t, shop.SortComparisons(in, tt.by), tt.want)
			assertNames(t, in, []string{"Milk", "bread", "Apples", "Cheese"})
		})
	}
}

func assertNames(t *testing.T, comps []model.PriceComparison, want []string) {
	t.Helper()

	if len(comps) != len(want) {
		t.Fatalf("got %d comparisons, want %d (%v)", len(comps), len(want), want)
	}
	for i, c := range comps {
		if c.Product.Name != want[i] {
			t.Errorf("[%d] = %s, want %s", i, c.Product.Name, want[i])
		}
	}
}
