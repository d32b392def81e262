// Package policy is SmartShelf's authorization table: what each role may
// do, and what each page requires.
package policy

import (
	"net/http"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/pkg/rbac"
	"github.com/smartshelf/shelfweb/pkg/session"
)

// LoginPath is where denied and anonymous requests are sent.
const LoginPath = "/login"

const (
	InventoryView   rbac.Capability = "inventory:view"
	InventoryManage rbac.Capability = "inventory:manage"
	AdminView       rbac.Capability = "admin:view"
	UsersManage     rbac.Capability = "users:manage"
	ForecastView    rbac.Capability = "forecast:view"
	OrdersManage    rbac.Capability = "orders:manage"
	ReportsView     rbac.Capability = "reports:view"
	SuppliersManage rbac.Capability = "suppliers:manage"
	CatalogueView   rbac.Capability = "catalogue:view"
)

var operational = []rbac.Capability{
	InventoryView, InventoryManage, ForecastView, OrdersManage,
	ReportsView, SuppliersManage, CatalogueView,
}

// Grants maps each role to its capabilities.
var Grants = map[string][]rbac.Capability{
	string(models.RoleAdmin):        append([]rbac.Capability{AdminView, UsersManage}, operational...),
	string(models.RoleStoreManager): operational,
	string(models.RoleUser):         {CatalogueView},
}

var public = []rbac.Capability{rbac.Public}

// Routes maps chi route patterns to required capabilities.
var Routes = map[string][]rbac.Capability{
	"/login":           public,
	"/logout":          public,
	"/register":        public,
	"/forgot-password": public,
	"/healthz":         public,
	"/metrics":         public,

	"/dashboard":               {InventoryView},
	"/dashboard/alerts":        {InventoryView},
	"/dashboard/products":      {InventoryManage},
	"/dashboard/products/{id}": {InventoryManage},
	"/dashboard/sales":         {InventoryManage},
	"/graphql":                 {InventoryView},

	"/admin-dashboard": {AdminView},
	"/admin-users":     {UsersManage},

	"/forecast":        {ForecastView},
	"/forecast/orders": {ForecastView, OrdersManage},

	"/restock-requests":               {OrdersManage},
	"/restock-requests/{id}/{action}": {OrdersManage},

	"/analytics":           {ReportsView},
	"/sales-report":        {ReportsView},
	"/sales-report/export": {ReportsView},

	"/suppliers":      {SuppliersManage},
	"/suppliers/{id}": {SuppliersManage},

	"/user-dashboard": {CatalogueView},
}

// New builds the SmartShelf policy.
func New() *rbac.Policy {
	return rbac.NewPolicy(Grants, Routes)
}

// RoleOf reads the caller's role from the request's session.
func RoleOf(r *http.Request) (string, bool) {
	s := session.FromCtx(r.Context())
	return s.Role(), s.Authenticated()
}
