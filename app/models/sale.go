package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnitPrice is a sale's price at the time of sale. Only JSON numbers are
// accepted; strings, null or a missing field decode to zero.
type UnitPrice struct {
	decimal.Decimal
}

func (p *UnitPrice) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || (b[0] != '-' && (b[0] < '0' || b[0] > '9')) {
		p.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		p.Decimal = decimal.Zero
		return nil
	}
	p.Decimal = d
	return nil
}

func (p UnitPrice) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// Sale is one row of GET /sales/report.
type Sale struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"productId"`
	ProductName  string    `json:"productName"`
	QuantitySold int       `json:"quantitySold"`
	Price        UnitPrice `json:"price"`
	SaleDate     string    `json:"saleDate"`
}

// Revenue is quantitySold × price.
func (s Sale) Revenue() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(s.QuantitySold)))
}

var saleDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time parses SaleDate. Instants carry their own zone; zone-less values
// are read in loc.
func (s Sale) Time(loc *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(s.SaleDate)
	for _, layout := range saleDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// NewSale is the body of POST /sales.
type NewSale struct {
	ProductID    int64 `json:"productId"    validate:"required"`
	QuantitySold int   `json:"quantitySold" validate:"required,gt=0"`
}

// DailyRevenue is one point of the sales time series.
type DailyRevenue struct {
	Date    string          `json:"date"` // YYYY-MM-DD or UndatedBucket
	Revenue decimal.Decimal `json:"totalRevenue"`
}

// UndatedBucket collects sales whose date cannot be read.
const UndatedBucket = "Invalid Date"

// RevenueByDate groups sales by calendar date in loc, sums revenue per day
// and returns the days in ascending order, followed by UndatedBucket when
// any sale has an unreadable date. The series always sums to TotalRevenue.
func RevenueByDate(sales []Sale, loc *time.Location) []DailyRevenue {
	byDay := map[string]decimal.Decimal{}
	for _, s := range sales {
		day := UndatedBucket
		if t, ok := s.Time(loc); ok {
			day = t.Format("2006-01-02")
		}
		byDay[day] = byDay[day].Add(s.Revenue())
	}

	out := make([]DailyRevenue, 0, len(byDay))
	for day, rev := range byDay {
		out = append(out, DailyRevenue{Date: day, Revenue: rev})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if (a == UndatedBucket) != (b == UndatedBucket) {
			return b == UndatedBucket
		}
		return a < b
	})
	return out
}

// TotalRevenue sums revenue over every sale.
func TotalRevenue(sales []Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Revenue())
	}
	return total
}

// ExportHeaders are the spreadsheet columns, in order.
var ExportHeaders = []string{"Product Name", "Quantity Sold", "Sale Date", "Unit Price", "Total Revenue"}

// ExportRow is one spreadsheet line.
type ExportRow struct {
	ProductName  string
	QuantitySold int
	SaleDate     string // M/D/YYYY
	UnitPrice    string // $0.00
	TotalRevenue string // $0.00
}

// Cells returns the row in ExportHeaders order.
func (r ExportRow) Cells() []interface{} {
	return []interface{}{r.ProductName, r.QuantitySold, r.SaleDate, r.UnitPrice, r.TotalRevenue}
}

// ExportRows flattens sales into spreadsheet rows, one per sale.
func ExportRows(sales []Sale, loc *time.Location) []ExportRow {
	rows := make([]ExportRow, 0, len(sales))
	for _, s := range sales {
		date := ""
		if t, ok := s.Time(loc); ok {
			date = t.Format("1/2/2006")
		}
		rows = append(rows, ExportRow{
			ProductName:  s.ProductName,
			QuantitySold: s.QuantitySold,
			SaleDate:     date,
			UnitPrice:    "$" + s.Price.StringFixed(2),
			TotalRevenue: "$" + s.Revenue().StringFixed(2),
		})
	}
	return rows
}

// ExportFileName is Sales_Report_M-D-YYYY.xlsx for the given day.
func ExportFileName(now time.Time) string {
	return "Sales_Report_" + now.Format("1-2-2006") + ".xlsx"
}

var _ json.Unmarshaler = (*UnitPrice)(nil)
