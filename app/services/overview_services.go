package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/repositories"
	"github.com/smartshelf/shelfweb/pkg/collection"
)

// AdminOverview is the administrator's landing page.
type AdminOverview struct {
	Stock           models.StockSummary `json:"stock"`
	CriticalItems   []models.Product    `json:"criticalItems"`
	PendingOrders   int                 `json:"pendingOrders"`
	InTransitOrders int                 `json:"inTransitOrders"`
	RestockNeeded   int                 `json:"restockNeeded"`
}

// OverviewService assembles the admin dashboard from three backend reads.
type OverviewService struct {
	inventory *InventoryService
	restock   *RestockService
	forecast  *ForecastService
}

// Admin loads stock, purchase orders and forecasts concurrently. The first
// failure cancels the others and is returned.
func (s *OverviewService) Admin(ctx context.Context) (AdminOverview, error) {
	var (
		out      AdminOverview
		orders   []models.PurchaseOrder
		forecast []ForecastView
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.inventory.Summary(gctx)
		out.Stock = sum
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.restock.list(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = s.forecast.List(gctx, string(models.ForecastRestock))
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminOverview{}, err
	}

	out.CriticalItems = out.Stock.Critical
	if out.CriticalItems == nil {
		out.CriticalItems = []models.Product{}
	}
	out.PendingOrders = collection.Count(orders, func(po models.PurchaseOrder) bool {
		return po.Status == models.StatusPending
	})
	out.InTransitOrders = collection.Count(orders, func(po models.PurchaseOrder) bool {
		return po.Status.InTransit()
	})
	out.RestockNeeded = len(forecast)
	return out, nil
}

// CatalogueItem is what a plain user sees of a product.
type CatalogueItem struct {
	Name     string            `json:"productName"`
	Category string            `json:"category"`
	Price    string            `json:"price"`
	Level    models.StockLevel `json:"stockLevel"`
}

// CatalogueService is the read-only product list for plain users.
type CatalogueService struct {
	base
	products *repositories.ProductRepository
}

// List returns every product, optionally narrowed to one category.
func (s *CatalogueService) List(ctx context.Context, category string) ([]CatalogueItem, error) {
	f := models.ProductFilter{Category: category}
	products, err := fetch(ctx, s.base, repositories.EndpointProducts, repositories.ProductParams(f),
		func(ctx context.Context) ([]models.Product, error) { return s.products.List(ctx, f) })
	if err != nil {
		return nil, err
	}

	return collection.Map(products, func(p models.Product) CatalogueItem {
		return CatalogueItem{
			Name:     p.Name,
			Category: p.Category,
			Price:    models.FormatCurrency(p.Price),
			Level:    p.Level(),
		}
	}), nil
}
