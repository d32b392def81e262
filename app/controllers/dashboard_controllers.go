package controllers

import (
	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/ctx"
)

type DashboardController struct{ base }

func NewDashboardController(deps services.Deps) *DashboardController {
	return &DashboardController{base{deps: deps}}
}

// Index lists products under the category, supplier and maxStock filters.
func (h *DashboardController) Index(c *ctx.Context) {
	f := models.ProductFilter{
		Category: c.Query("category"),
		Supplier: c.Query("supplier"),
		MaxStock: c.Query("maxStock"),
	}
	page, err := h.services(c).Inventory.Dashboard(c.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(page)
}

// Alerts lists the critical items.
func (h *DashboardController) Alerts(c *ctx.Context) {
	items, err := h.services(c).Inventory.Alerts(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(items)
}

func (h *DashboardController) CreateProduct(c *ctx.Context) {
	var in models.Product
	if err := c.Bind(&in); err != nil {
		respondError(c, err)
		return
	}
	if err := h.services(c).Inventory.CreateProduct(c.Context(), in); err != nil {
		respondError(c, err)
		return
	}
	c.Created(Message{Message: "Product added."})
}

func (h *DashboardController) UpdateProduct(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	var in models.Product
	if err := c.Bind(&in); err != nil {
		respondError(c, err)
		return
	}
	if err := h.services(c).Inventory.UpdateProduct(c.Context(), id, in); err != nil {
		respondError(c, err)
		return
	}
	c.Success(Message{Message: "Product updated."})
}

// DeleteProduct needs ?confirm=true.
func (h *DashboardController) DeleteProduct(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	if err := h.services(c).Inventory.DeleteProduct(c.Context(), id, c.QueryBool("confirm")); err != nil {
		respondError(c, err)
		return
	}
	c.Success(Message{Message: "Product deleted."})
}

func (h *DashboardController) RecordSale(c *ctx.Context) {
	var in models.NewSale
	if err := c.Bind(&in); err != nil {
		respondError(c, err)
		return
	}
	if err := h.services(c).Inventory.RecordSale(c.Context(), in); err != nil {
		respondError(c, err)
		return
	}
	c.Created(Message{Message: "Sale recorded."})
}

// Catalogue is the read-only product list of the USER landing page.
func (h *DashboardController) Catalogue(c *ctx.Context) {
	items, err := h.services(c).Catalogue.List(c.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(items)
}
