package controllers

import (
	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/ctx"
)

type SupplierController struct{ base }

func NewSupplierController(deps services.Deps) *SupplierController {
	return &SupplierController{base{deps: deps}}
}

func (h *SupplierController) Index(c *ctx.Context) {
	page, err := h.services(c).Suppliers.Page(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(page)
}

func (h *SupplierController) Store(c *ctx.Context) {
	var in models.Supplier
	if err := c.Bind(&in); err != nil {
		respondError(c, err)
		return
	}
	if err := h.services(c).Suppliers.Create(c.Context(), in); err != nil {
		respondError(c, err)
		return
	}
	c.Created(Message{Message: "Supplier added."})
}

func (h *SupplierController) Update(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	var in models.Supplier
	if err := c.Bind(&in); err != nil {
		respondError(c, err)
		return
	}
	if err := h.services(c).Suppliers.Update(c.Context(), id, in); err != nil {
		respondError(c, err)
		return
	}
	c.Success(Message{Message: "Supplier updated."})
}

func (h *SupplierController) Destroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	if err := h.services(c).Suppliers.Delete(c.Context(), id, c.QueryBool("confirm")); err != nil {
		respondError(c, err)
		return
	}
	c.Success(Message{Message: "Supplier deleted."})
}
