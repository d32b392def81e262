package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of a purchase order.
type OrderStatus string

const (
	StatusPending  OrderStatus = "PENDING"
	StatusApproved OrderStatus = "APPROVED"
	StatusOrdered  OrderStatus = "ORDERED"
	StatusReceived OrderStatus = "RECEIVED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusApproved, StatusOrdered, StatusReceived}

// ParseOrderStatus accepts exactly one of the four status names.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("models: unknown order status %q", s)
}

func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("models: order status: %w", err)
	}
	st, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// InTransit reports whether the order has been approved or placed with the
// supplier but not yet received.
func (s OrderStatus) InTransit() bool {
	return s == StatusApproved || s == StatusOrdered
}

// Terminal reports whether no further action exists.
func (s OrderStatus) Terminal() bool { return len(Actions(s)) == 0 }

// Action is a user-triggered PO transition.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReceive Action = "receive"
)

// ParseAction accepts "approve" or "receive".
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionApprove, ActionReceive:
		return Action(s), nil
	}
	return "", fmt.Errorf("models: unknown order action %q", s)
}

// Label is the button text for a.
func (a Action) Label() string {
	switch a {
	case ActionApprove:
		return "Approve & Order"
	case ActionReceive:
		return "Mark as Received"
	}
	return string(a)
}

// ErrInvalidTransition is returned when an action is not permitted from the
// order's current status.
var ErrInvalidTransition = errors.New("invalid purchase order transition")

// transitions is the whole lifecycle. APPROVED and ORDERED are distinct
// states that both accept receive; nothing leaves RECEIVED.
var transitions = map[OrderStatus]map[Action]OrderStatus{
	StatusPending:  {ActionApprove: StatusApproved},
	StatusApproved: {ActionReceive: StatusReceived},
	StatusOrdered:  {ActionReceive: StatusReceived},
	StatusReceived: {},
}

// Actions lists the actions permitted from s.
func Actions(s OrderStatus) []Action {
	var out []Action
	for _, a := range []Action{ActionApprove, ActionReceive} {
		if _, ok := transitions[s][a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Transition returns the status reached by applying a to from.
func Transition(from OrderStatus, a Action) (OrderStatus, error) {
	to, ok := transitions[from][a]
	if !ok {
		return from, fmt.Errorf("%w: cannot %s an order that is %s", ErrInvalidTransition, a, from)
	}
	return to, nil
}

// PurchaseOrder is a restock request as the backend returns it.
type PurchaseOrder struct {
	ID        int64       `json:"id"`
	Product   Product     `json:"product"`
	Quantity  int         `json:"quantity"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Actions lists what may be done to po now.
func (po PurchaseOrder) Actions() []Action { return Actions(po.Status) }

// NewPurchaseOrder is the body of POST /pos.
type NewPurchaseOrder struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity"  validate:"gt=0"`
}
