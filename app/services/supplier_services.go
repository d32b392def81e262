package services

import (
	"context"
	"errors"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/repositories"
	"github.com/smartshelf/shelfweb/pkg/backend"
	"github.com/smartshelf/shelfweb/pkg/logger"
	"github.com/smartshelf/shelfweb/pkg/validate"
)

// SuppliersPage lists suppliers beside what has been spent with each.
type SuppliersPage struct {
	Suppliers     []models.Supplier     `json:"suppliers"`
	PurchaseCosts []models.SupplierCost `json:"supplierPurchaseCosts"`
}

// SupplierService covers supplier CRUD.
type SupplierService struct {
	base
	suppliers *repositories.SupplierRepository
	reports   *repositories.ReportRepository
}

func (s *SupplierService) List(ctx context.Context) ([]models.Supplier, error) {
	return fetch(ctx, s.base, repositories.EndpointSuppliers, nil, s.suppliers.List)
}

// Page lists suppliers. Purchase costs come from analytics; if only that
// read fails the list is still shown.
func (s *SupplierService) Page(ctx context.Context) (SuppliersPage, error) {
	list, err := s.List(ctx)
	if err != nil {
		return SuppliersPage{}, err
	}
	page := SuppliersPage{Suppliers: list, PurchaseCosts: []models.SupplierCost{}}

	a, err := fetch(ctx, s.base, repositories.EndpointAnalytics, nil, s.reports.Analytics)
	switch {
	case err == nil:
		page.PurchaseCosts = a.SupplierCosts()
	case errors.Is(err, backend.ErrUnauthorized):
		return SuppliersPage{}, err
	default:
		logger.WithCtx(ctx).Warn("suppliers: purchase costs unavailable", "error", err)
	}
	return page, nil
}

func (s *SupplierService) Create(ctx context.Context, sup models.Supplier) error {
	if err := validate.Check(sup); err != nil {
		return err
	}
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return err
	}
	s.invalidate(ctx, repositories.EndpointSuppliers)
	return nil
}

func (s *SupplierService) Update(ctx context.Context, id int64, sup models.Supplier) error {
	if err := validate.Check(sup); err != nil {
		return err
	}
	if err := s.suppliers.Update(ctx, id, sup); err != nil {
		return err
	}
	s.invalidate(ctx, repositories.EndpointSuppliers, repositories.EndpointAnalytics)
	return nil
}

// Delete removes a supplier once the caller has confirmed.
func (s *SupplierService) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.suppliers.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, repositories.EndpointSuppliers, repositories.EndpointAnalytics)
	return nil
}
