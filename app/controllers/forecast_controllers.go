package controllers

import (
	"encoding/json"
	"strings"

	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/ctx"
)

type ForecastController struct{ base }

func NewForecastController(deps services.Deps) *ForecastController {
	return &ForecastController{base{deps: deps}}
}

func (h *ForecastController) Index(c *ctx.Context) {
	rows, err := h.services(c).Forecast.List(c.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(rows)
}

// OrderRequest carries the quantity exactly as typed, string or number.
type OrderRequest struct {
	ProductID int64           `json:"productId"`
	Quantity  json.RawMessage `json:"quantity"`
}

// RawQuantity returns the typed quantity without JSON quoting.
func (o OrderRequest) RawQuantity() string {
	var s string
	if err := json.Unmarshal(o.Quantity, &s); err == nil {
		return s
	}
	raw := strings.TrimSpace(string(o.Quantity))
	if raw == "null" {
		return ""
	}
	return raw
}

// Order places a purchase order and sends the caller to the restock page.
func (h *ForecastController) Order(c *ctx.Context) {
	var in OrderRequest
	if err := c.Decode(&in); err != nil {
		respondError(c, err)
		return
	}
	next, err := h.services(c).Forecast.Order(c.Context(), in.ProductID, in.RawQuantity())
	if err != nil {
		respondError(c, err)
		return
	}
	c.SeeOther(next, "Purchase order created.")
}
