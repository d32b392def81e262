// Package controllers turns HTTP requests into page-service calls and
// page models into JSON envelopes.
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/policy"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/backend"
	"github.com/smartshelf/shelfweb/pkg/bind"
	"github.com/smartshelf/shelfweb/pkg/ctx"
	"github.com/smartshelf/shelfweb/pkg/logger"
	"github.com/smartshelf/shelfweb/pkg/validate"
)

// SessionExpiredMessage accompanies the redirect after a revocation.
const SessionExpiredMessage = "Your session has expired. Please log in again."

// base gives every controller per-request services.
type base struct {
	deps services.Deps
}

func (b base) services(c *ctx.Context) *services.Services {
	return services.New(b.deps, c.Session())
}

// Message is the data of a response that only confirms an action.
type Message struct {
	Message string `json:"message"`
}

// respondError writes the one response err maps to.
func respondError(c *ctx.Context, err error) {
	log := logger.WithCtx(c.Context())

	var verr *validate.Error
	if errors.As(err, &verr) {
		c.ValidationError(verr.Fields)
		return
	}

	if rej, ok := backend.IsRejected(err); ok {
		status := rej.Status
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		c.Error(status, rej.Message)
		return
	}

	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		c.SeeOther(policy.LoginPath, SessionExpiredMessage)
	case errors.Is(err, backend.ErrUnavailable):
		c.Error(http.StatusServiceUnavailable, backend.UnavailableMessage)
	case errors.Is(err, bind.ErrBadRequest):
		c.Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		log.Warn("controllers: refused transition", "error", err)
		c.Error(http.StatusConflict, "This purchase order cannot take that action in its current status.")
	case errors.Is(err, services.ErrOrderNotFound):
		c.Error(http.StatusNotFound, "Purchase order not found.")
	case errors.Is(err, services.ErrConfirmationRequired):
		c.Error(http.StatusPreconditionRequired, "Confirm the delete by repeating the request with confirm=true.")
	case errors.Is(err, services.ErrNothingToExport):
		c.Error(http.StatusConflict, "There is no sales data to export for this range.")
	case errors.Is(err, context.Canceled):
		log.Info("controllers: request cancelled", "path", c.Path())
	default:
		log.Error("controllers: unhandled error", "path", c.Path(), "error", err)
		c.Error(http.StatusInternalServerError, "Something went wrong.")
	}
}
