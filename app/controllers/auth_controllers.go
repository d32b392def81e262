package controllers

import (
	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/policy"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/ctx"
)

// AuthPage is the model of the login, register and reset pages.
type AuthPage struct {
	Page          string        `json:"page"`
	Authenticated bool          `json:"authenticated"`
	Roles         []models.Role `json:"roles,omitempty"`
}

type AuthController struct{ base }

func NewAuthController(deps services.Deps) *AuthController {
	return &AuthController{base{deps: deps}}
}

// LoginPage sends a signed-in user to their landing page.
func (h *AuthController) LoginPage(c *ctx.Context) {
	s := c.Session()
	if s.Authenticated() {
		c.SeeOther(models.ParseRole(s.Role()).Home(), "")
		return
	}
	c.Success(AuthPage{Page: "login"})
}

func (h *AuthController) Login(c *ctx.Context) {
	var in models.Credentials
	if err := c.Decode(&in); err != nil {
		respondError(c, err)
		return
	}

	next, err := h.services(c).Auth.Login(c.Context(), c.Session(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.SeeOther(next, "Login successful")
}

func (h *AuthController) Logout(c *ctx.Context) {
	if err := h.services(c).Auth.Logout(c.Context(), c.Session()); err != nil {
		respondError(c, err)
		return
	}
	c.SeeOther(policy.LoginPath, "Logged out")
}

func (h *AuthController) RegisterPage(c *ctx.Context) {
	c.Success(AuthPage{
		Page:          "register",
		Authenticated: c.Session().Authenticated(),
		Roles:         h.services(c).Auth.AssignableRoles(),
	})
}

func (h *AuthController) Register(c *ctx.Context) {
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
	c.SeeOther(policy.LoginPath, msg)
}

func (h *AuthController) ResetPage(c *ctx.Context) {
	c.Success(AuthPage{Page: "forgot-password", Authenticated: c.Session().Authenticated()})
}

func (h *AuthController) ResetPassword(c *ctx.Context) {
	var in models.PasswordReset
	if err := c.Decode(&in); err != nil {
		respondError(c, err)
		return
	}

	msg, err := h.services(c).Auth.ResetPassword(c.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.SeeOther(policy.LoginPath, msg)
}
