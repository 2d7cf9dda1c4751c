package shop

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

// AllMonths is the month wildcard for MonthlySpending and FilterHistory.
const AllMonths = 0

// UnspecifiedStore groups purchases recorded without a store name.
const UnspecifiedStore = "Unspecified"

// MonthlySpending sums the totals of purchases made in year and month
// (1-12, or AllMonths for the whole year). Dates are compared in loc; a nil
// loc means local time.
func MonthlySpending(history []model.Purchase, year, month int, loc *time.Location) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range history {
		if inPeriod(p.PurchaseDate, year, month, loc) {
			sum = sum.Add(p.Total)
		}
	}
	return sum
}

// SpendingByStore maps each store name to the cumulative total spent there.
func SpendingByStore(history []model.Purchase) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, p := range history {
		store := p.Store
		if store == "" {
			store = UnspecifiedStore
		}
		out[store] = out[store].Add(p.Total)
	}
	return out
}

// TopProducts groups every purchased line by item name and ranks the groups
// by purchased quantity, largest first. Ties are ordered by name. n <= 0
// returns every group.
func TopProducts(history []model.Purchase, n int) []model.ProductStat {
	byName := make(map[string]*model.ProductStat)
	for _, p := range history {
		for _, it := range p.Items {
			st, ok := byName[it.Name]
			if !ok {
				st = &model.ProductStat{Name: it.Name, Category: it.Category, TotalSpent: decimal.Zero}
				byName[it.Name] = st
			}
			st.Count += it.Quantity
			st.TotalSpent = st.TotalSpent.Add(lineTotal(it))
		}
	}

	stats := make([]model.ProductStat, 0, len(byName))
	for _, st := range byName {
		if st.Count > 0 {
			st.AveragePrice = st.TotalSpent.Div(decimal.NewFromInt(int64(st.Count))).Round(2)
		}
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})

	if n > 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// HistoryFilter narrows the purchase history. Zero fields match everything;
// Year 0 means any year.
type HistoryFilter struct {
	Query string
	Year  int
	Month int
	Store string
}

// FilterHistory keeps purchases matching f. Query matches the list name,
// the store or any item name, ignoring case.
func FilterHistory(history []model.Purchase, f HistoryFilter, loc *time.Location) []model.Purchase {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []model.Purchase{}
	for _, p := range history {
		if q != "" && !purchaseMatches(p, q) {
			continue
		}
		if f.Year != 0 && !inPeriod(p.PurchaseDate, f.Year, f.Month, loc) {
			continue
		}
		if f.Year == 0 && f.Month != AllMonths && int(p.PurchaseDate.In(location(loc)).Month()) != f.Month {
			continue
		}
		if f.Store != "" && p.Store != f.Store {
			continue
		}
		out = append(out, p)
	}
	return out
}

// TotalSpent sums every purchase total.
func TotalSpent(history []model.Purchase) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range history {
		sum = sum.Add(p.Total)
	}
	return sum
}

// AveragePurchase is the mean purchase total, or zero with no purchases.
func AveragePurchase(history []model.Purchase) decimal.Decimal {
	if len(history) == 0 {
		return decimal.Zero
	}
	return TotalSpent(history).Div(decimal.NewFromInt(int64(len(history)))).Round(2)
}

// Stores lists the distinct non-empty store names in first-seen order.
func Stores(history []model.Purchase) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range history {
		if p.Store == "" || seen[p.Store] {
			continue
		}
		seen[p.Store] = true
		out = append(out, p.Store)
	}
	return out
}

func purchaseMatches(p model.Purchase, q string) bool {
	if strings.Contains(strings.ToLower(p.ListName), q) || strings.Contains(strings.ToLower(p.Store), q) {
		return true
	}
	for _, it := range p.Items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			return true
		}
	}
	return false
}

func inPeriod(t time.Time, year, month int, loc *time.Location) bool {
	t = t.In(location(loc))
	if t.Year() != year {
		return false
	}
	return month == AllMonths || int(t.Month()) == month
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
