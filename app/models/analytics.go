package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyFigures is one bar of the sales-vs-purchases chart.
type MonthlyFigures struct {
	Month        string          `json:"month"` // "Jan 2006"
	SalesRevenue decimal.Decimal `json:"SalesRevenue"`
	PurchaseCost decimal.Decimal `json:"PurchaseCost"`
}

// NamedValue is one slice of the top-products chart.
type NamedValue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Analytics is GET /reports/analytics.
type Analytics struct {
	MonthlySalesVsPurchases []MonthlyFigures           `json:"monthlySalesVsPurchases"`
	TopProductsByRevenue    []NamedValue               `json:"topProductsByRevenue"`
	SupplierPurchaseCosts   map[string]decimal.Decimal `json:"supplierPurchaseCosts"`
}

// Empty reports whether there is nothing to chart.
func (a Analytics) Empty() bool {
	return len(a.MonthlySalesVsPurchases) == 0 && len(a.TopProductsByRevenue) == 0
}

const monthLayout = "Jan 2006"

// SortMonths orders the monthly series chronologically. Labels that do not
// parse go last, in string order.
func SortMonths(series []MonthlyFigures) {
	sort.SliceStable(series, func(i, j int) bool {
		ti, ei := time.Parse(monthLayout, series[i].Month)
		tj, ej := time.Parse(monthLayout, series[j].Month)
		switch {
		case ei == nil && ej == nil:
			return ti.Before(tj)
		case ei == nil:
			return true
		case ej == nil:
			return false
		default:
			return series[i].Month < series[j].Month
		}
	})
}

// SupplierCost pairs a supplier name with its received-order spend.
type SupplierCost struct {
	Supplier string          `json:"supplier"`
	Cost     decimal.Decimal `json:"cost"`
}

// SupplierCosts returns the cost map as a list, highest spend first.
func (a Analytics) SupplierCosts() []SupplierCost {
	out := make([]SupplierCost, 0, len(a.SupplierPurchaseCosts))
	for name, cost := range a.SupplierPurchaseCosts {
		out = append(out, SupplierCost{Supplier: name, Cost: cost})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Cost.Cmp(out[j].Cost); c != 0 {
			return c > 0
		}
		return out[i].Supplier < out[j].Supplier
	})
	return out
}
