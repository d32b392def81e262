package services

import (
	"context"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/repositories"
)

// AnalyticsPage is the charts page.
type AnalyticsPage struct {
	models.Analytics
	SupplierCosts []models.SupplierCost `json:"supplierCosts"`
	Empty         bool                  `json:"empty"`
}

// AnalyticsService reads the backend's aggregate reports.
type AnalyticsService struct {
	base
	reports *repositories.ReportRepository
}

// Page returns the analytics with the monthly series in calendar order.
func (s *AnalyticsService) Page(ctx context.Context) (AnalyticsPage, error) {
	a, err := fetch(ctx, s.base, repositories.EndpointAnalytics, nil, s.reports.Analytics)
	if err != nil {
		return AnalyticsPage{}, err
	}

	monthly := append([]models.MonthlyFigures(nil), a.MonthlySalesVsPurchases...)
	models.SortMonths(monthly)
	a.MonthlySalesVsPurchases = monthly

	return AnalyticsPage{Analytics: a, SupplierCosts: a.SupplierCosts(), Empty: a.Empty()}, nil
}
