package services

import (
	"context"
	"strconv"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/repositories"
	"github.com/smartshelf/shelfweb/pkg/collection"
	"github.com/smartshelf/shelfweb/pkg/validate"
)

// RestockRequestsPath is where a placed order sends the user.
const RestockRequestsPath = "/restock-requests"

// ForecastView is a forecast row with its order suggestion.
type ForecastView struct {
	models.ForecastEntry
	Suggested  int  `json:"suggestedQuantity,omitempty"`
	Actionable bool `json:"actionable"`
}

// ForecastService shows demand forecasts and turns them into orders.
type ForecastService struct {
	base
	forecast *repositories.ForecastRepository
	orders   *repositories.OrderRepository
}

// List returns every forecast row. A non-empty status keeps only rows in
// that state; an unknown status is refused before any request.
func (s *ForecastService) List(ctx context.Context, status string) ([]ForecastView, error) {
	var want models.ForecastStatus
	if status != "" {
		st, ok := models.LookupForecastStatus(status)
		if !ok {
			return nil, validate.Field("status", "The selected status is invalid.")
		}
		want = st
	}

	entries, err := fetch(ctx, s.base, repositories.EndpointForecast, nil, s.forecast.List)
	if err != nil {
		return nil, err
	}

	entries = collection.Filter(entries, func(e models.ForecastEntry) bool {
		return want == "" || e.State() == want
	})
	return collection.Map(entries, func(e models.ForecastEntry) ForecastView {
		e.Status = e.State()
		q, ok := e.Suggestion()
		return ForecastView{ForecastEntry: e, Suggested: q, Actionable: ok}
	}), nil
}

// Order places a purchase order for productID. rawQuantity is what the user
// typed; anything but a positive integer is refused before any request.
// It returns the page to continue on.
func (s *ForecastService) Order(ctx context.Context, productID int64, rawQuantity string) (string, error) {
	qty, ok := models.ParseOrderQuantity(rawQuantity)
	if !ok {
		return "", validate.Field("quantity", models.InvalidQuantityMessage)
	}
	if productID <= 0 {
		return "", validate.Field("productId", "The productId field is required.")
	}

	po := models.NewPurchaseOrder{ProductID: productID, Quantity: qty}
	if err := s.orders.Create(ctx, po); err != nil {
		return "", err
	}
	s.invalidate(ctx, repositories.EndpointOrders)
	return RestockRequestsPath, nil
}

// OrderSuggested orders the suggested quantity for a RESTOCK NEEDED row.
func (s *ForecastService) OrderSuggested(ctx context.Context, e models.ForecastEntry) (string, error) {
	q, ok := e.Suggestion()
	if !ok {
		return "", validate.Field("status", "Only products that need restocking can be ordered.")
	}
	return s.Order(ctx, e.ProductID, strconv.Itoa(q))
}
