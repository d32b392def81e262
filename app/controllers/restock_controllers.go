package controllers

import (
	"net/http"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/ctx"
)

type RestockController struct{ base }

func NewRestockController(deps services.Deps) *RestockController {
	return &RestockController{base{deps: deps}}
}

func (h *RestockController) Index(c *ctx.Context) {
	page, err := h.services(c).Restock.Page(c.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(page)
}

// TransitionResult is the order's status after an action.
type TransitionResult struct {
	ID     int64              `json:"id"`
	Status models.OrderStatus `json:"status"`
}

// Apply runs approve or receive on one order.
func (h *RestockController) Apply(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	action, err := models.ParseAction(c.Param("action"))
	if err != nil {
		c.Error(http.StatusNotFound, "Not found")
		return
	}

	status, err := h.services(c).Restock.Apply(c.Context(), id, action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(TransitionResult{ID: id, Status: status})
}
