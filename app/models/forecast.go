package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ForecastStatus is the backend's verdict for one product.
type ForecastStatus string

const (
	ForecastRestock   ForecastStatus = "RESTOCK NEEDED"
	ForecastOverstock ForecastStatus = "OVERSTOCKED"
	ForecastOK        ForecastStatus = "OK"
)

// MinimumOrderAmount is the smallest suggested restock quantity.
const MinimumOrderAmount = 10

const suggestionFactor = 3

// ParseForecastStatus maps unknown or empty values to OK.
func ParseForecastStatus(s string) ForecastStatus {
	switch ForecastStatus(s) {
	case ForecastRestock, ForecastOverstock:
		return ForecastStatus(s)
	}
	return ForecastOK
}

// LookupForecastStatus is the strict form of ParseForecastStatus: it
// reports false for anything but the three status names.
func LookupForecastStatus(s string) (ForecastStatus, bool) {
	switch st := ForecastStatus(s); st {
	case ForecastRestock, ForecastOverstock, ForecastOK:
		return st, true
	}
	return "", false
}

func (s *ForecastStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = ForecastOK
		return nil
	}
	*s = ParseForecastStatus(raw)
	return nil
}

// ForecastEntry is one row of GET /forecast.
type ForecastEntry struct {
	ProductID       int64          `json:"productId"`
	ProductName     string         `json:"productName"`
	CurrentStock    int            `json:"currentStock"`
	PredictedDemand float64        `json:"predictedDemand"`
	Status          ForecastStatus `json:"status"`
}

// State is Status with the implied OK default applied.
func (f ForecastEntry) State() ForecastStatus {
	return ParseForecastStatus(string(f.Status))
}

// Suggestion returns the suggested order quantity and whether the entry
// carries one. Only RESTOCK NEEDED entries do.
func (f ForecastEntry) Suggestion() (int, bool) {
	if f.State() != ForecastRestock {
		return 0, false
	}
	return SuggestedQuantity(f.PredictedDemand), true
}

// SuggestedQuantity is max(10, ceil(3 × predictedDemand)).
func SuggestedQuantity(predictedDemand float64) int {
	if math.IsNaN(predictedDemand) || predictedDemand <= 0 {
		return MinimumOrderAmount
	}
	q := math.Ceil(predictedDemand * suggestionFactor)
	if q > math.MaxInt32 {
		return math.MaxInt32
	}
	if int(q) < MinimumOrderAmount {
		return MinimumOrderAmount
	}
	return int(q)
}

// InvalidQuantityMessage is shown when an order quantity is rejected.
const InvalidQuantityMessage = "Please enter a valid quantity greater than zero."

// ParseOrderQuantity accepts a positive base-10 integer, ignoring
// surrounding whitespace.
func ParseOrderQuantity(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, "+") {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int(n), true
}
