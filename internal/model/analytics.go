package model

import "github.com/shopspring/decimal"

// Trend classifies the direction of the latest price change.
type Trend string

const (
	TrendIncrease Trend = "increase"
	TrendDecrease Trend = "decrease"
	TrendStable   Trend = "stable"
)

// PriceComparison is derived on demand from a product's price history and
// is never stored.
type PriceComparison struct {
	Product          Product         `json:"product"`
	CurrentPrice     decimal.Decimal `json:"currentPrice"`
	PreviousPrice    decimal.Decimal `json:"previousPrice"`
	Difference       decimal.Decimal `json:"difference"`
	PercentageChange decimal.Decimal `json:"percentageChange"`
	Trend            Trend           `json:"trend"`
}

// ComparisonSummary rolls a set of comparisons up by trend.
// AverageDecrease is reported as a non-negative magnitude.
type ComparisonSummary struct {
	Increases       int             `json:"increases"`
	Decreases       int             `json:"decreases"`
	Stable          int             `json:"stable"`
	AverageIncrease decimal.Decimal `json:"averageIncrease"`
	AverageDecrease decimal.Decimal `json:"averageDecrease"`
}

// ListSummary breaks a shopping list's value down by checked state.
type ListSummary struct {
	Total        decimal.Decimal `json:"total"`
	Checked      decimal.Decimal `json:"checked"`
	Remaining    decimal.Decimal `json:"remaining"`
	ItemCount    int             `json:"itemCount"`
	CheckedCount int             `json:"checkedCount"`
}

// ProductStat aggregates how often and for how much a product was bought.
type ProductStat struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Count        int             `json:"count"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
}
