package services

import (
	"context"
	"fmt"

	"marmomart/internal/models"
	"marmomart/internal/repositories"
)

// DashboardStats are the back office headline counts.
type DashboardStats struct {
	Products      int64 `json:"products"`
	Orders        int64 `json:"orders"`
	PendingOrders int64 `json:"pending_orders"`
	Accounts      int64 `json:"accounts"`
}

// AdminService aggregates data for the back office.
type AdminService struct {
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	accounts repositories.AccountRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(products repositories.ProductRepository, orders repositories.OrderRepository, accounts repositories.AccountRepository) *AdminService {
	return &AdminService{products: products, orders: orders, accounts: accounts}
}

// Stats counts products, orders, pending orders and accounts.
func (s *AdminService) Stats(ctx context.Context) (*DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)
	if stats.Products, err = s.products.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	if stats.Orders, err = s.orders.Count(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	if stats.PendingOrders, err = s.orders.Count(ctx, models.OrderPending); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	if stats.Accounts, err = s.accounts.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &stats, nil
}
