// Package routes mounts every SmartShelf page behind the access guard.
package routes

import (
	"net/http"
	"time"

	"github.com/smartshelf/shelfweb/app/controllers"
	"github.com/smartshelf/shelfweb/app/policy"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/ctx"
	"github.com/smartshelf/shelfweb/pkg/metrics"
	"github.com/smartshelf/shelfweb/pkg/middleware"
	"github.com/smartshelf/shelfweb/pkg/response"
	"github.com/smartshelf/shelfweb/pkg/router"
)

// Login attempts allowed per client per minute.
const loginAttempts = 10

// RegisterWeb mounts the pages. Every route sits in one guarded group, so
// a route missing from the policy table is unreachable.
func RegisterWeb(r *router.Router, deps services.Deps) error {
	auth := controllers.NewAuthController(deps)
	dashboard := controllers.NewDashboardController(deps)
	admin := controllers.NewAdminController(deps)
	forecast := controllers.NewForecastController(deps)
	restock := controllers.NewRestockController(deps)
	suppliers := controllers.NewSupplierController(deps)
	reports := controllers.NewReportController(deps)
	widgets, err := controllers.NewWidgets(deps)
	if err != nil {
		return err
	}

	web := r.Group("/", policy.New().Guard(policy.RoleOf, policy.LoginPath))

	web.Get("/healthz", "healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	}))
	web.Get("/metrics", "metrics", metrics.Handler())

	web.Get("/login", "auth.login.form", ctx.Wrap(auth.LoginPage))
	web.Post("/login", "auth.login", ctx.Wrap(auth.Login), middleware.RateLimit(loginAttempts, time.Minute))
	web.Post("/logout", "auth.logout", ctx.Wrap(auth.Logout))
	web.Get("/register", "auth.register.form", ctx.Wrap(auth.RegisterPage))
	web.Post("/register", "auth.register", ctx.Wrap(auth.Register))
	web.Get("/forgot-password", "auth.reset.form", ctx.Wrap(auth.ResetPage))
	web.Post("/forgot-password", "auth.reset", ctx.Wrap(auth.ResetPassword))

	web.Get("/dashboard", "dashboard", ctx.Wrap(dashboard.Index))
	web.Get("/dashboard/alerts", "dashboard.alerts", ctx.Wrap(dashboard.Alerts))
	web.Post("/dashboard/products", "products.store", ctx.Wrap(dashboard.CreateProduct))
	web.Put("/dashboard/products/{id}", "products.update", ctx.Wrap(dashboard.UpdateProduct))
	web.Delete("/dashboard/products/{id}", "products.destroy", ctx.Wrap(dashboard.DeleteProduct))
	web.Post("/dashboard/sales", "sales.store", ctx.Wrap(dashboard.RecordSale))
	web.Post("/graphql", "widgets", widgets.Handler())
	web.Get("/user-dashboard", "catalogue", ctx.Wrap(dashboard.Catalogue))

	web.Get("/admin-dashboard", "admin.overview", ctx.Wrap(admin.Overview))
	web.Get("/admin-users", "admin.users", ctx.Wrap(admin.Users))
	web.Post("/admin-users", "admin.users.store", ctx.Wrap(admin.CreateUser))

	web.Get("/forecast", "forecast", ctx.Wrap(forecast.Index))
	web.Post("/forecast/orders", "forecast.order", ctx.Wrap(forecast.Order))

	web.Get("/restock-requests", "restock", ctx.Wrap(restock.Index))
	web.Post("/restock-requests/{id}/{action}", "restock.apply", ctx.Wrap(restock.Apply))

	web.Get("/suppliers", "suppliers", ctx.Wrap(suppliers.Index))
	web.Post("/suppliers", "suppliers.store", ctx.Wrap(suppliers.Store))
	web.Put("/suppliers/{id}", "suppliers.update", ctx.Wrap(suppliers.Update))
	web.Delete("/suppliers/{id}", "suppliers.destroy", ctx.Wrap(suppliers.Destroy))

	web.Get("/sales-report", "reports.sales", ctx.Wrap(reports.Sales))
	web.Get("/sales-report/export", "reports.export", ctx.Wrap(reports.Export))
	web.Get("/analytics", "reports.analytics", ctx.Wrap(reports.Analytics))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, policy.LoginPath, http.StatusSeeOther)
	})
	return nil
}
