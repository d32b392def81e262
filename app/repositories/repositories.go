// Package repositories maps SmartShelf resources onto backend REST calls.
// Every method is one request; caching and invalidation live in services.
package repositories

import (
	"context"
	"fmt"
	"net/url"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/pkg/backend"
)

// Backend endpoints. They double as query-cache keys.
const (
	EndpointProducts  = "/products"
	EndpointSales     = "/sales"
	EndpointReport    = "/sales/report"
	EndpointForecast  = "/forecast"
	EndpointAnalytics = "/reports/analytics"
	EndpointOrders    = "/pos"
	EndpointSuppliers = "/suppliers"
)

// API is the subset of *backend.Client repositories use.
type API interface {
	Get(ctx context.Context, path string, params url.Values, dest interface{}) error
	Post(ctx context.Context, path string, body, dest interface{}) error
	Put(ctx context.Context, path string, body, dest interface{}) error
	Delete(ctx context.Context, path string, dest interface{}) error
}

var _ API = (*backend.Client)(nil)

func itemPath(endpoint string, id int64) string {
	return fmt.Sprintf("%s/%d", endpoint, id)
}

// ─── Products ────────────────────────────────────────────────────────────────

// ProductRepository handles /products.
type ProductRepository struct{ api API }

func NewProductRepository(api API) *ProductRepository {
	return &ProductRepository{api: api}
}

// ProductParams encodes a filter for GET /products. Empty fields are omitted.
func ProductParams(f models.ProductFilter) url.Values {
	v := url.Values{}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.Supplier != "" {
		v.Set("supplier", f.Supplier)
	}
	if f.MaxStock != "" {
		v.Set("maxStock", f.MaxStock)
	}
	return v
}

// List returns the products matching f. Filtering happens on the server.
func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	var out []models.Product
	err := r.api.Get(ctx, EndpointProducts, ProductParams(f), &out)
	return out, err
}

func (r *ProductRepository) Create(ctx context.Context, p models.Product) error {
	p.ID = 0
	return r.api.Post(ctx, EndpointProducts, p, nil)
}

func (r *ProductRepository) Update(ctx context.Context, id int64, p models.Product) error {
	p.ID = id
	return r.api.Put(ctx, itemPath(EndpointProducts, id), p, nil)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, itemPath(EndpointProducts, id), nil)
}

// ─── Sales ───────────────────────────────────────────────────────────────────

// SaleRepository handles /sales.
type SaleRepository struct{ api API }

func NewSaleRepository(api API) *SaleRepository {
	return &SaleRepository{api: api}
}

// Record posts a sale. The backend refuses oversells with a message.
func (r *SaleRepository) Record(ctx context.Context, s models.NewSale) error {
	return r.api.Post(ctx, EndpointSales, s, nil)
}

// ReportParams encodes an inclusive YYYY-MM-DD range.
func ReportParams(start, end string) url.Values {
	return url.Values{"startDate": {start}, "endDate": {end}}
}

// Report returns the raw sales between start and end inclusive.
func (r *SaleRepository) Report(ctx context.Context, start, end string) ([]models.Sale, error) {
	var out []models.Sale
	err := r.api.Get(ctx, EndpointReport, ReportParams(start, end), &out)
	return out, err
}

// ─── Forecast ────────────────────────────────────────────────────────────────

// ForecastRepository handles /forecast.
type ForecastRepository struct{ api API }

func NewForecastRepository(api API) *ForecastRepository {
	return &ForecastRepository{api: api}
}

func (r *ForecastRepository) List(ctx context.Context) ([]models.ForecastEntry, error) {
	var out []models.ForecastEntry
	err := r.api.Get(ctx, EndpointForecast, nil, &out)
	return out, err
}

// ─── Purchase orders ─────────────────────────────────────────────────────────

// OrderRepository handles /pos.
type OrderRepository struct{ api API }

func NewOrderRepository(api API) *OrderRepository {
	return &OrderRepository{api: api}
}

func (r *OrderRepository) List(ctx context.Context) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	err := r.api.Get(ctx, EndpointOrders, nil, &out)
	return out, err
}

// Find returns the order with id from a fresh list.
func (r *OrderRepository) Find(ctx context.Context, id int64) (models.PurchaseOrder, bool, error) {
	orders, err := r.List(ctx)
	if err != nil {
		return models.PurchaseOrder{}, false, err
	}
	for _, po := range orders {
		if po.ID == id {
			return po, true, nil
		}
	}
	return models.PurchaseOrder{}, false, nil
}

func (r *OrderRepository) Create(ctx context.Context, po models.NewPurchaseOrder) error {
	return r.api.Post(ctx, EndpointOrders, po, nil)
}

// Apply issues PUT /pos/{id}/{action}.
func (r *OrderRepository) Apply(ctx context.Context, id int64, a models.Action) error {
	return r.api.Put(ctx, fmt.Sprintf("%s/%d/%s", EndpointOrders, id, a), nil, nil)
}

// ─── Suppliers ───────────────────────────────────────────────────────────────

// SupplierRepository handles /suppliers.
type SupplierRepository struct{ api API }

func NewSupplierRepository(api API) *SupplierRepository {
	return &SupplierRepository{api: api}
}

func (r *SupplierRepository) List(ctx context.Context) ([]models.Supplier, error) {
	var out []models.Supplier
	err := r.api.Get(ctx, EndpointSuppliers, nil, &out)
	return out, err
}

func (r *SupplierRepository) Create(ctx context.Context, s models.Supplier) error {
	s.ID = 0
	return r.api.Post(ctx, EndpointSuppliers, s, nil)
}

func (r *SupplierRepository) Update(ctx context.Context, id int64, s models.Supplier) error {
	s.ID = id
	return r.api.Put(ctx, itemPath(EndpointSuppliers, id), s, nil)
}

func (r *SupplierRepository) Delete(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, itemPath(EndpointSuppliers, id), nil)
}

// ─── Reports ─────────────────────────────────────────────────────────────────

// ReportRepository handles /reports.
type ReportRepository struct{ api API }

func NewReportRepository(api API) *ReportRepository {
	return &ReportRepository{api: api}
}

func (r *ReportRepository) Analytics(ctx context.Context) (models.Analytics, error) {
	var out models.Analytics
	err := r.api.Get(ctx, EndpointAnalytics, nil, &out)
	return out, err
}

// ─── Auth ────────────────────────────────────────────────────────────────────

// AuthRepository handles the public /auth endpoints. It must be built on
// an anonymous client so a 401 is a rejection, not a revocation.
type AuthRepository struct{ api API }

func NewAuthRepository(api API) *AuthRepository {
	return &AuthRepository{api: api}
}

func (r *AuthRepository) Login(ctx context.Context, c models.Credentials) (models.LoginResult, error) {
	var out models.LoginResult
	err := r.api.Post(ctx, "/auth/login", c, &out)
	return out, err
}

// Register returns the backend's confirmation text.
func (r *AuthRepository) Register(ctx context.Context, reg models.Registration) (string, error) {
	var msg string
	err := r.api.Post(ctx, "/auth/register", reg, &msg)
	return msg, err
}

// ResetPassword returns the backend's confirmation text.
func (r *AuthRepository) ResetPassword(ctx context.Context, p models.PasswordReset) (string, error) {
	var msg string
	err := r.api.Post(ctx, "/auth/reset-password-direct", p, &msg)
	return msg, err
}
