package services

import (
	"context"
	"fmt"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/repositories"
	"github.com/smartshelf/shelfweb/pkg/logger"
	"github.com/smartshelf/shelfweb/pkg/validate"
)

// ActionView is a button on a purchase order row.
type ActionView struct {
	Action models.Action `json:"action"`
	Label  string        `json:"label"`
}

// OrderView is a purchase order with the actions its status permits.
type OrderView struct {
	models.PurchaseOrder
	Actions []ActionView `json:"actions"`
}

// RestockPage lists purchase orders with per-status counts.
type RestockPage struct {
	Orders []OrderView                `json:"orders"`
	Counts map[models.OrderStatus]int `json:"counts"`
}

// RestockService drives the purchase order workflow.
type RestockService struct {
	base
	orders *repositories.OrderRepository
}

func (s *RestockService) list(ctx context.Context) ([]models.PurchaseOrder, error) {
	return fetch(ctx, s.base, repositories.EndpointOrders, nil, s.orders.List)
}

// Page lists purchase orders. A non-empty status keeps only that status.
func (s *RestockService) Page(ctx context.Context, status string) (RestockPage, error) {
	var want models.OrderStatus
	if status != "" {
		st, err := models.ParseOrderStatus(status)
		if err != nil {
			return RestockPage{}, validate.Field("status", "The selected status is invalid.")
		}
		want = st
	}

	orders, err := s.list(ctx)
	if err != nil {
		return RestockPage{}, err
	}

	page := RestockPage{Orders: []OrderView{}, Counts: make(map[models.OrderStatus]int, len(models.OrderStatuses))}
	for _, st := range models.OrderStatuses {
		page.Counts[st] = 0
	}
	for _, po := range orders {
		page.Counts[po.Status]++
		if want != "" && po.Status != want {
			continue
		}
		page.Orders = append(page.Orders, view(po))
	}
	return page, nil
}

func view(po models.PurchaseOrder) OrderView {
	acts := models.Actions(po.Status)
	v := OrderView{PurchaseOrder: po, Actions: make([]ActionView, len(acts))}
	for i, a := range acts {
		v.Actions[i] = ActionView{Action: a, Label: a.Label()}
	}
	return v
}

// Apply moves order id through action. The order is read fresh from the
// backend; an action its current status does not permit is refused without
// calling the backend. It returns the status the order moved to.
func (s *RestockService) Apply(ctx context.Context, id int64, action models.Action) (models.OrderStatus, error) {
	po, ok, err := s.orders.Find(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}

	to, err := models.Transition(po.Status, action)
	if err != nil {
		return "", err
	}

	if err := s.orders.Apply(ctx, id, action); err != nil {
		return "", err
	}

	logger.WithCtx(ctx).Info("restock: order moved", "id", id, "from", po.Status, "to", to)

	switch action {
	case models.ActionReceive:
		s.invalidate(ctx,
			repositories.EndpointOrders,
			repositories.EndpointProducts,
			repositories.EndpointForecast,
			repositories.EndpointAnalytics,
		)
	default:
		s.invalidate(ctx, repositories.EndpointOrders, repositories.EndpointAnalytics)
	}
	return to, nil
}
