package controllers

import (
	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/ctx"
)

type AdminController struct{ base }

func NewAdminController(deps services.Deps) *AdminController {
	return &AdminController{base{deps: deps}}
}

func (h *AdminController) Overview(c *ctx.Context) {
	o, err := h.services(c).Overview.Admin(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(o)
}

// UsersPage describes the user-creation form.
type UsersPage struct {
	Roles []models.Role `json:"roles"`
}

func (h *AdminController) Users(c *ctx.Context) {
	c.Success(UsersPage{Roles: h.services(c).Auth.AssignableRoles()})
}

// CreateUser registers an account on an admin's behalf. The admin's own
// session is left alone.
func (h *AdminController) CreateUser(c *ctx.Context) {
	var in models.Registration
	if err := c.Decode(&in); err != nil {
		respondError(c, err)
		return
	}
	msg, err := h.services(c).Auth.Register(c.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Created(Message{Message: msg})
}
