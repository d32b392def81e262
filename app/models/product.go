package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend reads prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Stock thresholds. A quantity below CriticalStockThreshold is critical,
// below LowStockThreshold is low, anything else is normal.
const (
	CriticalStockThreshold = 5
	LowStockThreshold      = 20
)

// StockLevel is the dashboard classification of an on-hand quantity.
type StockLevel string

const (
	StockCritical StockLevel = "critical"
	StockLow      StockLevel = "low"
	StockNormal   StockLevel = "normal"
)

// Classify returns the stock level for quantity q.
func Classify(q int) StockLevel {
	switch {
	case q < CriticalStockThreshold:
		return StockCritical
	case q < LowStockThreshold:
		return StockLow
	default:
		return StockNormal
	}
}

// Product is a catalogue item as the backend returns it.
type Product struct {
	ID       int64           `json:"id,omitempty"`
	Name     string          `json:"productName"  validate:"required"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"     validate:"gte=0"`
	Price    decimal.Decimal `json:"price"        validate:"gte=0"`
	Supplier string          `json:"supplier"`
	ImageURL string          `json:"imageUrl"`
}

// Level classifies the product's quantity.
func (p Product) Level() StockLevel { return Classify(p.Quantity) }

// Value is price × quantity.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// ProductFilter narrows GET /products. Zero fields are not sent.
type ProductFilter struct {
	Category string `json:"category"`
	Supplier string `json:"supplier"`
	MaxStock string `json:"maxStock" validate:"nullable,integer"`
}

// StockSummary is the derived dashboard header.
type StockSummary struct {
	TotalProducts  int             `json:"totalProducts"`
	LowStockItems  int             `json:"lowStockItems"`
	CriticalStock  int             `json:"criticalStock"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
	FormattedValue string          `json:"inventoryValueFormatted"`
	Critical       []Product       `json:"-"`
}

// Summarize partitions products by stock level and totals their value.
func Summarize(products []Product) StockSummary {
	s := StockSummary{TotalProducts: len(products), InventoryValue: decimal.Zero}
	for _, p := range products {
		switch p.Level() {
		case StockCritical:
			s.CriticalStock++
			s.Critical = append(s.Critical, p)
		case StockLow:
			s.LowStockItems++
		}
		s.InventoryValue = s.InventoryValue.Add(p.Value())
	}
	s.FormattedValue = FormatCurrency(s.InventoryValue)
	return s
}

// FormatCurrency renders d in en-US dollars: $1,234.50, -$3.00.
func FormatCurrency(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	out := "$" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
