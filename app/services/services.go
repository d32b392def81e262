// Package services holds SmartShelf's page logic. A Services value is built
// per request around the caller's session: reads go through the query
// cache scoped to that session, mutations invalidate the endpoints they
// change.
package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/smartshelf/shelfweb/app/repositories"
	"github.com/smartshelf/shelfweb/pkg/backend"
	"github.com/smartshelf/shelfweb/pkg/logger"
	"github.com/smartshelf/shelfweb/pkg/query"
	"github.com/smartshelf/shelfweb/pkg/session"
	"github.com/smartshelf/shelfweb/pkg/workerpool"
)

var (
	// ErrConfirmationRequired is returned by deletes that were not confirmed.
	ErrConfirmationRequired = errors.New("services: delete must be confirmed")

	// ErrNothingToExport is returned when an export would be empty.
	ErrNothingToExport = errors.New("services: no sales data to export")

	// ErrOrderNotFound is returned when a purchase order id is unknown.
	ErrOrderNotFound = errors.New("services: purchase order not found")
)

// Deps are the process-wide collaborators shared by every request.
type Deps struct {
	Backend  backend.Config
	Queries  *query.Cache
	Sessions *session.Manager
	Pool     *workerpool.Pool // nil renders exports inline

	// Location is used to bucket sale timestamps into calendar days.
	Location *time.Location
	Now      func() time.Time
}

// Services groups the page services for one caller.
type Services struct {
	Auth      *AuthService
	Inventory *InventoryService
	Forecast  *ForecastService
	Restock   *RestockService
	Suppliers *SupplierService
	Reports   *ReportService
	Analytics *AnalyticsService
	Overview  *OverviewService
	Catalogue *CatalogueService
}

// New builds the services for sess.
func New(d Deps, sess *session.Session) *Services {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	api := backend.New(d.Backend, sess)
	b := base{queries: d.Queries, sess: sess}

	products := repositories.NewProductRepository(api)
	orders := repositories.NewOrderRepository(api)
	forecast := repositories.NewForecastRepository(api)
	reports := repositories.NewReportRepository(api)

	s := &Services{
		Auth: &AuthService{
			repo:     repositories.NewAuthRepository(backend.New(d.Backend, nil)),
			sessions: d.Sessions,
		},
		Inventory: &InventoryService{base: b, products: products, sales: repositories.NewSaleRepository(api)},
		Forecast:  &ForecastService{base: b, forecast: forecast, orders: orders},
		Restock:   &RestockService{base: b, orders: orders},
		Suppliers: &SupplierService{base: b, suppliers: repositories.NewSupplierRepository(api), reports: reports},
		Reports: &ReportService{
			base:  b,
			sales: repositories.NewSaleRepository(api),
			pool:  d.Pool,
			loc:   d.Location,
			now:   d.Now,
		},
		Analytics: &AnalyticsService{base: b, reports: reports},
		Catalogue: &CatalogueService{base: b, products: products},
	}
	s.Overview = &OverviewService{inventory: s.Inventory, restock: s.Restock, forecast: s.Forecast}
	return s
}

// base carries what every cached service needs.
type base struct {
	queries *query.Cache
	sess    *session.Session
}

func fetch[T any](ctx context.Context, b base, endpoint string, params url.Values, load func(context.Context) (T, error)) (T, error) {
	return query.Fetch(ctx, b.queries, b.sess.ID(), query.Key{Endpoint: endpoint, Params: params}, load)
}

// invalidate never fails a mutation that already succeeded.
func (b base) invalidate(ctx context.Context, endpoints ...string) {
	if err := b.queries.Invalidate(ctx, endpoints...); err != nil {
		logger.WithCtx(ctx).Warn("services: invalidation failed", "endpoints", endpoints, "error", err)
	}
}
