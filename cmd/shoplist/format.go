package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
	"shoplist/internal/shop"
)

const dateFormat = "2006-01-02 15:04"

// money formats amounts with the configured currency symbol.
type money string

func currency(s *shop.Store) money {
	settings, err := s.GetSettings()
	if err != nil {
		return money(model.DefaultSettings().Currency())
	}
	return money(settings.Currency())
}

func (m money) format(d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", m, d.StringFixed(2))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func trendArrow(t model.Trend) string {
	switch t {
	case model.TrendIncrease:
		return "↑"
	case model.TrendDecrease:
		return "↓"
	}
	return "="
}
