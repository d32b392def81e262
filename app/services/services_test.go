package services_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/backend"
	"github.com/smartshelf/shelfweb/pkg/cache"
	"github.com/smartshelf/shelfweb/pkg/crypt"
	"github.com/smartshelf/shelfweb/pkg/event"
	"github.com/smartshelf/shelfweb/pkg/query"
	"github.com/smartshelf/shelfweb/pkg/session"
	"github.com/smartshelf/shelfweb/pkg/testkit"
	"github.com/smartshelf/shelfweb/pkg/validate"
	"github.com/smartshelf/shelfweb/pkg/workerpool"
)

var today = time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)

type fixture struct {
	mt   *testkit.MockTransport
	mgr  *session.Manager
	sess *session.Session
	deps services.Deps
	svc  *services.Services
}

func setup(t *testing.T, role string) *fixture {
	t.Helper()
	ctx := context.Background()

	mt := testkit.Install(t)
	bus := event.New()
	store := cache.NewMemory()
	cipher, err := crypt.New("test-app-key")
	require.NoError(t, err)

	mgr := session.NewManager(session.NewCacheStore(store, cipher), bus, session.Options{
		CookieName:    "sid",
		TTL:           time.Hour,
		RotateOnLogin: true,
	})
	sess, err := mgr.Load(ctx, "")
	require.NoError(t, err)
	if role != "" {
		require.NoError(t, mgr.Login(ctx, sess, "tok-123", role))
	}

	pool := workerpool.New(2)
	t.Cleanup(pool.Shutdown)

	deps := services.Deps{
		Backend:  backend.Config{BaseURL: "http://backend.test/api", Timeout: time.Second, Bus: bus},
		Queries:  query.New(store, time.Minute, bus),
		Sessions: mgr,
		Pool:     pool,
		Location: time.UTC,
		Now:      func() time.Time { return today },
	}
	return &fixture{mt: mt, mgr: mgr, sess: sess, deps: deps, svc: services.New(deps, sess)}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *validate.Error
	require.True(t, errors.As(err, &verr), "expected *validate.Error, got %v", err)
	return verr.Fields
}

// ─── Inventory ───────────────────────────────────────────────────────────────

var stock = []map[string]interface{}{
	{"id": 1, "productName": "Milk", "category": "Dairy", "quantity": 3, "price": 2.5, "supplier": "FarmCo"},
	{"id": 2, "productName": "Bread", "category": "Bakery", "quantity": 10, "price": 1.25, "supplier": "Bakers"},
	{"id": 3, "productName": "Rice", "category": "Dry", "quantity": 100, "price": 12, "supplier": "Grains"},
}

func TestDashboardSummarisesAndCaches(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	ctx := context.Background()
	f.mt.Stub("GET", "/api/products", 200, stock)

	page, err := f.svc.Inventory.Dashboard(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Summary.TotalProducts)
	assert.Equal(t, 1, page.Summary.CriticalStock)
	assert.Equal(t, 1, page.Summary.LowStockItems)
	assert.Equal(t, "$1,220.00", page.Summary.FormattedValue)
	require.Len(t, page.Products, 3)
	assert.Equal(t, models.StockCritical, page.Products[0].Level)

	_, err = f.svc.Inventory.Dashboard(ctx, models.ProductFilter{})
	require.NoError(t, err)
	f.mt.AssertCalled(t, "GET", "/api/products", 1)

	last, ok := f.mt.Last("GET", "/api/products")
	require.True(t, ok)
	assert.Equal(t, "Bearer tok-123", last.Header.Get("Authorization"))
}

func TestDashboardPassesFiltersToServer(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.Stub("GET", "/api/products", 200, stock[:1])

	_, err := f.svc.Inventory.Dashboard(context.Background(), models.ProductFilter{Category: "Dairy", MaxStock: "5"})
	require.NoError(t, err)

	last, _ := f.mt.Last("GET", "/api/products")
	assert.Equal(t, "Dairy", last.Query.Get("category"))
	assert.Equal(t, "5", last.Query.Get("maxStock"))
	assert.Empty(t, last.Query.Get("supplier"))
}

func TestDashboardRejectsBadMaxStock(t *testing.T) {
	f := setup(t, "STORE_MANAGER")

	_, err := f.svc.Inventory.Dashboard(context.Background(), models.ProductFilter{MaxStock: "lots"})
	assert.Contains(t, fieldErrors(t, err), "maxStock")
	f.mt.AssertNoCalls(t)
}

func TestMutationInvalidatesProducts(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	ctx := context.Background()
	f.mt.Stub("GET", "/api/products", 200, stock)
	f.mt.Stub("POST", "/api/products", 201, nil)

	_, err := f.svc.Inventory.Dashboard(ctx, models.ProductFilter{})
	require.NoError(t, err)

	p := models.Product{Name: "Tea", Category: "Drinks", Quantity: 4}
	require.NoError(t, f.svc.Inventory.CreateProduct(ctx, p))

	_, err = f.svc.Inventory.Dashboard(ctx, models.ProductFilter{})
	require.NoError(t, err)
	f.mt.AssertCalled(t, "GET", "/api/products", 2)
}

func TestProductEditRefreshesReportAndAnalytics(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	ctx := context.Background()
	priced := func(price float64) []map[string]interface{} {
		return []map[string]interface{}{
			{"id": 1, "productName": "Milk", "quantitySold": 2, "price": price, "saleDate": "2024-03-01T09:00:00Z"},
		}
	}
	f.mt.Stub("GET", "/api/sales/report", 200, priced(10))
	f.mt.Stub("GET", "/api/reports/analytics", 200, map[string]interface{}{})
	f.mt.Stub("PUT", "/api/products/1", 200, nil)
	f.mt.Stub("DELETE", "/api/products/1", 200, nil)

	page, err := f.svc.Reports.Sales(ctx, "2024-03-01", "2024-03-07")
	require.NoError(t, err)
	assert.Equal(t, "$20.00", page.FormattedTotal)
	_, err = f.svc.Analytics.Page(ctx)
	require.NoError(t, err)

	p := models.Product{Name: "Milk", Category: "Dairy", Quantity: 3, Price: decimal.NewFromInt(20)}
	require.NoError(t, f.svc.Inventory.UpdateProduct(ctx, 1, p))
	f.mt.Stub("GET", "/api/sales/report", 200, priced(20))

	page, err = f.svc.Reports.Sales(ctx, "2024-03-01", "2024-03-07")
	require.NoError(t, err)
	assert.Equal(t, "$40.00", page.FormattedTotal)
	_, err = f.svc.Analytics.Page(ctx)
	require.NoError(t, err)
	f.mt.AssertCalled(t, "GET", "/api/sales/report", 2)
	f.mt.AssertCalled(t, "GET", "/api/reports/analytics", 2)

	require.NoError(t, f.svc.Inventory.DeleteProduct(ctx, 1, true))
	_, err = f.svc.Reports.Sales(ctx, "2024-03-01", "2024-03-07")
	require.NoError(t, err)
	f.mt.AssertCalled(t, "GET", "/api/sales/report", 3)
}

func TestCreateProductValidatesFirst(t *testing.T) {
	f := setup(t, "STORE_MANAGER")

	err := f.svc.Inventory.CreateProduct(context.Background(), models.Product{Quantity: -1})
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "productName")
	assert.Contains(t, fields, "quantity")
	f.mt.AssertNoCalls(t)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Inventory.DeleteProduct(ctx, 1, false), services.ErrConfirmationRequired)
	assert.ErrorIs(t, f.svc.Suppliers.Delete(ctx, 1, false), services.ErrConfirmationRequired)
	f.mt.AssertNoCalls(t)

	f.mt.Stub("DELETE", "/api/products/1", 204, nil)
	require.NoError(t, f.svc.Inventory.DeleteProduct(ctx, 1, true))
	f.mt.AssertCalled(t, "DELETE", "/api/products/1", 1)
}

func TestRecordSaleSurfacesBackendMessage(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.Stub("POST", "/api/sales", 400, map[string]string{"message": "Insufficient stock"})

	err := f.svc.Inventory.RecordSale(context.Background(), models.NewSale{ProductID: 1, QuantitySold: 50})
	rej, ok := backend.IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, "Insufficient stock", rej.Message)
}

func TestUnauthorizedRevokesSession(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.Stub("GET", "/api/products", 401, nil)

	_, err := f.svc.Inventory.Dashboard(context.Background(), models.ProductFilter{})
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	assert.False(t, f.sess.Authenticated())

	reloaded, err := f.mgr.Load(context.Background(), f.sess.ID())
	require.NoError(t, err)
	assert.False(t, reloaded.Authenticated())
}

func TestUnavailableBackend(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.StubError("GET", "/api/products", errors.New("connection refused"))

	_, err := f.svc.Inventory.Alerts(context.Background())
	assert.ErrorIs(t, err, backend.ErrUnavailable)
	assert.True(t, f.sess.Authenticated())
}

// ─── Forecast ────────────────────────────────────────────────────────────────

func TestForecastSuggestions(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.Stub("GET", "/api/forecast", 200, []map[string]interface{}{
		{"productId": 1, "productName": "Milk", "currentStock": 3, "predictedDemand": 4, "status": "RESTOCK NEEDED"},
		{"productId": 2, "productName": "Rice", "currentStock": 100, "predictedDemand": 2, "status": "OVERSTOCKED"},
		{"productId": 3, "productName": "Salt", "currentStock": 30, "predictedDemand": 1},
	})

	rows, err := f.svc.Forecast.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Actionable)
	assert.Equal(t, 12, rows[0].Suggested)
	assert.False(t, rows[1].Actionable)
	assert.Equal(t, models.ForecastOK, rows[2].Status)

	restock, err := f.svc.Forecast.List(context.Background(), "RESTOCK NEEDED")
	require.NoError(t, err)
	assert.Len(t, restock, 1)
}

func TestForecastRejectsUnknownStatus(t *testing.T) {
	f := setup(t, "STORE_MANAGER")

	_, err := f.svc.Forecast.List(context.Background(), "garbage")
	assert.Contains(t, fieldErrors(t, err), "status")
	f.mt.AssertNoCalls(t)

	f.mt.Stub("GET", "/api/forecast", 200, []map[string]interface{}{
		{"productId": 3, "productName": "Salt", "currentStock": 30, "predictedDemand": 1},
	})
	rows, err := f.svc.Forecast.List(context.Background(), "OK")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestForecastOrderRejectsBadQuantityWithoutCalling(t *testing.T) {
	f := setup(t, "STORE_MANAGER")

	for _, raw := range []string{"", "0", "-2", "1.5", "ten"} {
		_, err := f.svc.Forecast.Order(context.Background(), 1, raw)
		assert.Equal(t, models.InvalidQuantityMessage, fieldErrors(t, err)["quantity"], raw)
	}
	f.mt.AssertNoCalls(t)
}

func TestForecastOrderPostsPurchaseOrder(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	ctx := context.Background()
	f.mt.Stub("GET", "/api/pos", 200, []interface{}{})
	f.mt.Stub("POST", "/api/pos", 201, nil)

	_, err := f.svc.Restock.Page(ctx, "")
	require.NoError(t, err)

	next, err := f.svc.Forecast.Order(ctx, 7, " 15 ")
	require.NoError(t, err)
	assert.Equal(t, services.RestockRequestsPath, next)

	call, ok := f.mt.Last("POST", "/api/pos")
	require.True(t, ok)
	var body models.NewPurchaseOrder
	require.NoError(t, call.JSON(&body))
	assert.Equal(t, models.NewPurchaseOrder{ProductID: 7, Quantity: 15}, body)

	_, err = f.svc.Restock.Page(ctx, "")
	require.NoError(t, err)
	f.mt.AssertCalled(t, "GET", "/api/pos", 2)
}

// ─── Restock ─────────────────────────────────────────────────────────────────

func orders(status models.OrderStatus) []map[string]interface{} {
	return []map[string]interface{}{{
		"id": 1, "quantity": 12, "status": status, "createdAt": "2024-03-01T10:00:00Z",
		"product": map[string]interface{}{"id": 9, "productName": "Milk"},
	}}
}

func TestRestockPageCountsAndActions(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.Stub("GET", "/api/pos", 200, orders(models.StatusOrdered))

	page, err := f.svc.Restock.Page(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, 1, page.Counts[models.StatusOrdered])
	assert.Equal(t, 0, page.Counts[models.StatusPending])
	assert.Equal(t, []services.ActionView{{Action: models.ActionReceive, Label: "Mark as Received"}}, page.Orders[0].Actions)

	_, err = f.svc.Restock.Page(context.Background(), "SHIPPED")
	assert.Contains(t, fieldErrors(t, err), "status")
}

func TestApproveMovesPendingAndInvalidates(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	ctx := context.Background()
	f.mt.Stub("GET", "/api/pos", 200, orders(models.StatusPending))
	f.mt.Stub("PUT", "/api/pos/1/approve", 200, nil)

	_, err := f.svc.Restock.Page(ctx, "")
	require.NoError(t, err)

	to, err := f.svc.Restock.Apply(ctx, 1, models.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, to)
	f.mt.AssertCalled(t, "PUT", "/api/pos/1/approve", 1)

	f.mt.Stub("GET", "/api/pos", 200, orders(models.StatusApproved))
	page, err := f.svc.Restock.Page(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, page.Orders[0].Status)
	f.mt.AssertCalled(t, "GET", "/api/pos", 3)
}

func TestInvalidTransitionNeverReachesBackend(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.Stub("GET", "/api/pos", 200, orders(models.StatusPending))

	_, err := f.svc.Restock.Apply(context.Background(), 1, models.ActionReceive)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Empty(t, f.mt.CallsTo("PUT", "/api/pos/1/receive"))

	_, err = f.svc.Restock.Apply(context.Background(), 42, models.ActionApprove)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestApprovedAndOrderedAreBothReceivable(t *testing.T) {
	for _, st := range []models.OrderStatus{models.StatusApproved, models.StatusOrdered} {
		f := setup(t, "STORE_MANAGER")
		f.mt.Stub("GET", "/api/pos", 200, orders(st))
		f.mt.Stub("PUT", "/api/pos/1/receive", 200, nil)

		to, err := f.svc.Restock.Apply(context.Background(), 1, models.ActionReceive)
		require.NoError(t, err, st)
		assert.Equal(t, models.StatusReceived, to)

		_, err = f.svc.Restock.Apply(context.Background(), 1, models.ActionApprove)
		assert.ErrorIs(t, err, models.ErrInvalidTransition, st)
	}
}

func TestFailedApplyKeepsCache(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	ctx := context.Background()
	f.mt.Stub("GET", "/api/pos", 200, orders(models.StatusPending))
	f.mt.Stub("PUT", "/api/pos/1/approve", 409, "Purchase order already processed")

	_, err := f.svc.Restock.Page(ctx, "")
	require.NoError(t, err)

	_, err = f.svc.Restock.Apply(ctx, 1, models.ActionApprove)
	rej, ok := backend.IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, "Purchase order already processed", rej.Message)

	_, err = f.svc.Restock.Page(ctx, "")
	require.NoError(t, err)
	// One cached page read plus the fresh read inside Apply.
	f.mt.AssertCalled(t, "GET", "/api/pos", 2)
}

// ─── Sales report ────────────────────────────────────────────────────────────

func TestReportDefaultsToLastThirtyDays(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.Stub("GET", "/api/sales/report", 200, []interface{}{})

	page, err := f.svc.Reports.Sales(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-06", page.Start)
	assert.Equal(t, "2024-03-07", page.End)
	assert.False(t, page.ExportEnabled)
	assert.Empty(t, page.Daily)

	last, _ := f.mt.Last("GET", "/api/sales/report")
	assert.Equal(t, "2024-02-06", last.Query.Get("startDate"))
	assert.Equal(t, "2024-03-07", last.Query.Get("endDate"))

	_, err = f.svc.Reports.Export(context.Background(), "", "")
	assert.ErrorIs(t, err, services.ErrNothingToExport)
}

func TestReportRejectsInvertedRange(t *testing.T) {
	f := setup(t, "STORE_MANAGER")

	_, err := f.svc.Reports.Sales(context.Background(), "2024-03-10", "2024-03-01")
	assert.Contains(t, fieldErrors(t, err), "startDate")

	_, err = f.svc.Reports.Sales(context.Background(), "03/01/2024", "")
	assert.Contains(t, fieldErrors(t, err), "startDate")
	f.mt.AssertNoCalls(t)
}

var sales = []map[string]interface{}{
	{"id": 1, "productName": "Milk", "quantitySold": 2, "price": 2.5, "saleDate": "2024-03-01T09:00:00Z"},
	{"id": 2, "productName": "Milk", "quantitySold": 1, "price": 2.5, "saleDate": "2024-03-01T17:00:00Z"},
	{"id": 3, "productName": "Rice", "quantitySold": 1, "price": "12", "saleDate": "2024-03-02T09:00:00Z"},
}

func TestReportAggregatesByDay(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.Stub("GET", "/api/sales/report", 200, sales)

	page, err := f.svc.Reports.Sales(context.Background(), "2024-03-01", "2024-03-07")
	require.NoError(t, err)
	assert.True(t, page.ExportEnabled)
	assert.Equal(t, 3, page.Records)
	require.Len(t, page.Daily, 2)
	assert.Equal(t, "2024-03-01", page.Daily[0].Date)
	assert.Equal(t, "7.5", page.Daily[0].Revenue.String())
	assert.Equal(t, "0", page.Daily[1].Revenue.String())
	assert.Equal(t, "$7.50", page.FormattedTotal)
}

func TestExportWorkbook(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.Stub("GET", "/api/sales/report", 200, sales)

	out, err := f.svc.Reports.Export(context.Background(), "2024-03-01", "2024-03-07")
	require.NoError(t, err)
	assert.Equal(t, "Sales_Report_3-7-2024.xlsx", out.FileName)

	wb, err := excelize.OpenReader(bytes.NewReader(out.Data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(services.ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, models.ExportHeaders, rows[0])
	assert.Equal(t, []string{"Milk", "2", "3/1/2024", "$2.50", "$5.00"}, rows[1])
}

// ─── Suppliers & analytics ───────────────────────────────────────────────────

func TestSupplierPageSurvivesAnalyticsFailure(t *testing.T) {
	f := setup(t, "STORE_MANAGER")
	f.mt.Stub("GET", "/api/suppliers", 200, []map[string]interface{}{{"id": 1, "name": "Acme", "leadTimeDays": "7"}})
	f.mt.Stub("GET", "/api/reports/analytics", 500, nil)

	page, err := f.svc.Suppliers.Page(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Suppliers, 1)
	assert.Equal(t, models.LeadTime(7), page.Suppliers[0].LeadTimeDays)
	assert.Empty(t, page.PurchaseCosts)
}

func TestSupplierCreateValidates(t *testing.T) {
	f := setup(t, "STORE_MANAGER")

	err := f.svc.Suppliers.Create(context.Background(), models.Supplier{Name: "Acme", Email: "nope"})
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "contactPerson")
	assert.Contains(t, fields, "email")
	f.mt.AssertNoCalls(t)
}

func TestAnalyticsSortsMonths(t *testing.T) {
	f := setup(t, "ADMIN")
	f.mt.Stub("GET", "/api/reports/analytics", 200, map[string]interface{}{
		"monthlySalesVsPurchases": []map[string]interface{}{
			{"month": "Mar 2024", "SalesRevenue": 10, "PurchaseCost": 5},
			{"month": "Jan 2024", "SalesRevenue": 3, "PurchaseCost": 1},
		},
		"topProductsByRevenue":  []map[string]interface{}{{"name": "Milk", "value": 10}},
		"supplierPurchaseCosts": map[string]interface{}{"Acme": 5, "Beta": 9},
	})

	page, err := f.svc.Analytics.Page(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jan 2024", page.MonthlySalesVsPurchases[0].Month)
	assert.Equal(t, "Beta", page.SupplierCosts[0].Supplier)
	assert.False(t, page.Empty)
}

// ─── Admin overview & catalogue ──────────────────────────────────────────────

func TestAdminOverview(t *testing.T) {
	f := setup(t, "ADMIN")
	f.mt.Stub("GET", "/api/products", 200, stock)
	f.mt.Stub("GET", "/api/pos", 200, []map[string]interface{}{
		{"id": 1, "status": "PENDING"},
		{"id": 2, "status": "APPROVED"},
		{"id": 3, "status": "ORDERED"},
		{"id": 4, "status": "RECEIVED"},
	})
	f.mt.Stub("GET", "/api/forecast", 200, []map[string]interface{}{
		{"productId": 1, "status": "RESTOCK NEEDED"},
		{"productId": 2, "status": "OK"},
	})

	o, err := f.svc.Overview.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, o.Stock.TotalProducts)
	assert.Equal(t, 1, o.PendingOrders)
	assert.Equal(t, 2, o.InTransitOrders)
	assert.Equal(t, 1, o.RestockNeeded)
	require.Len(t, o.CriticalItems, 1)
}

func TestCatalogue(t *testing.T) {
	f := setup(t, "USER")
	f.mt.Stub("GET", "/api/products", 200, stock)

	items, err := f.svc.Catalogue.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, services.CatalogueItem{Name: "Milk", Category: "Dairy", Price: "$2.50", Level: models.StockCritical}, items[0])
}

// ─── Auth ────────────────────────────────────────────────────────────────────

func TestLoginStoresRoleAndRedirects(t *testing.T) {
	f := setup(t, "")
	f.mt.Stub("POST", "/api/auth/login", 200, map[string]string{"token": "jwt-ish", "role": "ADMIN"})

	next, err := f.svc.Auth.Login(context.Background(), f.sess, models.Credentials{Email: "a@b.co", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "/admin-dashboard", next)
	assert.Equal(t, "ADMIN", f.sess.Role())
	assert.Equal(t, "jwt-ish", f.sess.Token())

	call, _ := f.mt.Last("POST", "/api/auth/login")
	assert.Empty(t, call.Header.Get("Authorization"))
}

func TestLoginUnknownRoleIsUser(t *testing.T) {
	f := setup(t, "")
	f.mt.Stub("POST", "/api/auth/login", 200, map[string]string{"token": "t", "role": "AUDITOR"})

	next, err := f.svc.Auth.Login(context.Background(), f.sess, models.Credentials{Email: "a@b.co", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "/user-dashboard", next)
	assert.Equal(t, "USER", f.sess.Role())
}

func TestLoginRejected(t *testing.T) {
	f := setup(t, "")
	f.mt.Stub("POST", "/api/auth/login", 401, nil)

	_, err := f.svc.Auth.Login(context.Background(), f.sess, models.Credentials{Email: "a@b.co", Password: "bad"})
	rej, ok := backend.IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid credentials", rej.Message)
	assert.False(t, f.sess.Authenticated())
}

func TestResetPasswordChecksLengthFirst(t *testing.T) {
	f := setup(t, "")

	_, err := f.svc.Auth.ResetPassword(context.Background(), models.PasswordReset{
		Email: "a@b.co", OldPassword: "old", NewPassword: "12345",
	})
	assert.Contains(t, fieldErrors(t, err), "newPassword")
	f.mt.AssertNoCalls(t)

	f.mt.Stub("POST", "/api/auth/reset-password-direct", 200, "Password updated successfully")
	msg, err := f.svc.Auth.ResetPassword(context.Background(), models.PasswordReset{
		Email: "a@b.co", OldPassword: "old", NewPassword: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "Password updated successfully", msg)
}

func TestLogoutEndsSession(t *testing.T) {
	f := setup(t, "STORE_MANAGER")

	require.NoError(t, f.svc.Auth.Logout(context.Background(), f.sess))
	assert.False(t, f.sess.Authenticated())
	require.NoError(t, f.svc.Auth.Logout(context.Background(), f.sess))
}
