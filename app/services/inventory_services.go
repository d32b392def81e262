package services

import (
	"context"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/repositories"
	"github.com/smartshelf/shelfweb/pkg/validate"
)

// ProductView is a product with its stock level resolved.
type ProductView struct {
	models.Product
	Level models.StockLevel `json:"stockLevel"`
}

// DashboardPage is the store manager's inventory page.
type DashboardPage struct {
	Filter   models.ProductFilter `json:"filter"`
	Products []ProductView        `json:"products"`
	Summary  models.StockSummary  `json:"summary"`
}

// InventoryService covers products and sales recording.
type InventoryService struct {
	base
	products *repositories.ProductRepository
	sales    *repositories.SaleRepository
}

func (s *InventoryService) list(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	return fetch(ctx, s.base, repositories.EndpointProducts, repositories.ProductParams(f),
		func(ctx context.Context) ([]models.Product, error) { return s.products.List(ctx, f) })
}

// Dashboard lists products matching f with the stock summary of that list.
func (s *InventoryService) Dashboard(ctx context.Context, f models.ProductFilter) (DashboardPage, error) {
	if err := validate.Check(f); err != nil {
		return DashboardPage{}, err
	}

	products, err := s.list(ctx, f)
	if err != nil {
		return DashboardPage{}, err
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{Product: p, Level: p.Level()}
	}
	return DashboardPage{Filter: f, Products: views, Summary: models.Summarize(products)}, nil
}

// Summary is the stock summary over every product.
func (s *InventoryService) Summary(ctx context.Context) (models.StockSummary, error) {
	products, err := s.list(ctx, models.ProductFilter{})
	if err != nil {
		return models.StockSummary{}, err
	}
	return models.Summarize(products), nil
}

// Alerts returns the products at critical stock.
func (s *InventoryService) Alerts(ctx context.Context) ([]models.Product, error) {
	sum, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	if sum.Critical == nil {
		return []models.Product{}, nil
	}
	return sum.Critical, nil
}

func (s *InventoryService) CreateProduct(ctx context.Context, p models.Product) error {
	if err := validate.Check(p); err != nil {
		return err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, repositories.EndpointProducts, repositories.EndpointForecast)
	return nil
}

func (s *InventoryService) UpdateProduct(ctx context.Context, id int64, p models.Product) error {
	if err := validate.Check(p); err != nil {
		return err
	}
	if err := s.products.Update(ctx, id, p); err != nil {
		return err
	}
	s.invalidate(ctx,
		repositories.EndpointProducts,
		repositories.EndpointForecast,
		repositories.EndpointOrders,
		repositories.EndpointReport,
		repositories.EndpointAnalytics,
	)
	return nil
}

// DeleteProduct removes a product once the caller has confirmed.
func (s *InventoryService) DeleteProduct(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx,
		repositories.EndpointProducts,
		repositories.EndpointForecast,
		repositories.EndpointOrders,
		repositories.EndpointReport,
		repositories.EndpointAnalytics,
	)
	return nil
}

// RecordSale posts a sale. Stock, reports and forecasts all move with it.
func (s *InventoryService) RecordSale(ctx context.Context, sale models.NewSale) error {
	if err := validate.Check(sale); err != nil {
		return err
	}
	if err := s.sales.Record(ctx, sale); err != nil {
		return err
	}
	s.invalidate(ctx,
		repositories.EndpointProducts,
		repositories.EndpointReport,
		repositories.EndpointForecast,
		repositories.EndpointAnalytics,
	)
	return nil
}
