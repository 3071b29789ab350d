package services

import (
	"context"
	"errors"
	"fmt"

	"marmomart/internal/models"
	"marmomart/internal/pricing"
	"marmomart/internal/repositories"

	"github.com/shopspring/decimal"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts lists catalog products.
func (s *ProductService) GetAllProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	return s.repo.GetAll(ctx, filter)
}

// GetProductByID retrieves a single product with its variants.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListCategories lists active categories.
func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategory creates a catalog category.
func (s *ProductService) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.repo.CreateCategory(ctx, category)
}

// UpdateCategory updates a catalog category.
func (s *ProductService) UpdateCategory(ctx context.Context, category *models.Category) error {
	return s.repo.UpdateCategory(ctx, category)
}

// DeleteCategory deletes a category that no product belongs to.
func (s *ProductService) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if len(product.Variants) == 0 {
		return invalid("variants", "at least one variant is required")
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct updates an existing product and replaces its variants.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if len(product.Variants) == 0 {
		return invalid("variants", "at least one variant is required")
	}
	return s.repo.Update(ctx, product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// QuoteRequest asks for a live estimate for one variant.
type QuoteRequest struct {
	VariantID string
	AreaSqft  decimal.Decimal
	Quantity  int
}

// Quote is the estimate for a QuoteRequest. Total is nil when the variant is
// price on request.
type Quote struct {
	ProductID string           `json:"product_id"`
	VariantID string           `json:"variant_id"`
	Mode      pricing.Mode     `json:"mode"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Total     *decimal.Decimal `json:"total,omitempty"`
}

// EstimateQuote prices a prospective cart line without storing anything.
func (s *ProductService) EstimateQuote(ctx context.Context, productID string, req QuoteRequest) (*Quote, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	variant, ok := product.Variant(req.VariantID)
	if !ok {
		return nil, invalid("variant_id", "variant %s does not belong to product %s", req.VariantID, productID)
	}

	p := variant.Pricing()
	quote := &Quote{ProductID: product.ID, VariantID: variant.ID, Mode: p.Mode()}
	if p.Mode() == pricing.ModePriceOnRequest {
		return quote, nil
	}
	if err := checkAmount(p, req.AreaSqft, req.Quantity, "area_sqft", "quantity"); err != nil {
		return nil, err
	}

	unit, _ := pricing.UnitPrice(p)
	total := lineTotal(p, pricing.Request{Area: req.AreaSqft, Quantity: req.Quantity})
	quote.UnitPrice = &unit
	quote.Total = &total
	return quote, nil
}

// amountPlaces is the scale of stored money and area columns.
const amountPlaces = 2

// lineTotal prices one line at the scale it is stored with, so order totals
// add up from the stored items.
func lineTotal(p pricing.Pricing, req pricing.Request) decimal.Decimal {
	total, _ := pricing.LineTotal(p, req)
	return total.Round(amountPlaces)
}

// checkAmount rejects a non-positive input for the variant's pricing mode and
// areas finer than the stored scale.
func checkAmount(p pricing.Pricing, area decimal.Decimal, quantity int, areaField, quantityField string) error {
	switch p.Mode() {
	case pricing.ModeArea:
		if !area.IsPositive() {
			return invalid(areaField, "area must be greater than zero")
		}
		if !area.Equal(area.Round(amountPlaces)) {
			return invalid(areaField, "area can have at most %d decimal places", amountPlaces)
		}
	case pricing.ModeUnit:
		if quantity <= 0 {
			return invalid(quantityField, "quantity must be greater than zero")
		}
	}
	return nil
}

// IsNotFound reports whether err is a repository lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}

func describe(p *models.Product) string {
	return fmt.Sprintf("%s (%s)", p.Name, p.SKU)
}
