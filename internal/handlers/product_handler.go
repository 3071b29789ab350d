package handlers

import (
	"fmt"
	"log"

	"marmomart/internal/models"
	"marmomart/internal/repositories"
	"marmomart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleGetCategories)
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/:id/quote", h.HandleQuote)
}

// RegisterAdminRoutes registers catalog management routes.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Post("/", h.HandleCreateCategory)
	categoryRoutes.Put("/:id", h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", h.HandleDeleteCategory)
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetCategories lists active categories.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

// HandleGetProducts lists active products, optionally by category slug or featured only.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	filter := repositories.ProductFilter{
		CategorySlug: c.Query("category"),
		FeaturedOnly: c.QueryBool("featured", false),
	}
	products, err := h.service.GetAllProducts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product with its variants.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		log.Printf("Error getting product by ID %s: %v", id, err)
		return respondError(c, fmt.Sprintf("Product with ID %s not found", id), err)
	}
	return c.JSON(product)
}

// QuoteRequest represents the request body for a live estimate.
type QuoteRequest struct {
	VariantID string          `json:"variant_id" validate:"required"`
	AreaSqft  decimal.Decimal `json:"area_sqft"`
	Quantity  int             `json:"quantity" validate:"gte=0"`
}

// HandleQuote estimates the price of a variant for an area or piece count.
func (h *ProductHandler) HandleQuote(c *fiber.Ctx) error {
	var req QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	quote, err := h.service.EstimateQuote(c.UserContext(), c.Params("id"), services.QuoteRequest{
		VariantID: req.VariantID,
		AreaSqft:  req.AreaSqft,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return respondError(c, "Could not estimate price", err)
	}
	return c.JSON(quote)
}

// HandleCreateCategory creates a catalog category.
func (h *ProductHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, category); !ok {
		return err
	}
	if err := h.service.CreateCategory(c.UserContext(), &category); err != nil {
		return respondError(c, "Could not create category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateCategory updates a catalog category.
func (h *ProductHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return badBody(c, err)
	}
	category.ID = c.Params("id")
	if ok, err := validateBody(c, h.validate, category); !ok {
		return err
	}
	if err := h.service.UpdateCategory(c.UserContext(), &category); err != nil {
		return respondError(c, "Could not update category", err)
	}
	return c.JSON(category)
}

// HandleDeleteCategory deletes a category that has no products.
func (h *ProductHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return respondError(c, "Could not delete category", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Category with ID %s deleted successfully", id),
	})
}

// HandleCreateProduct creates a new product with its variants.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, product); !ok {
		return err
	}

	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		log.Printf("Error creating product: %v", err)
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product and its variant set.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}
	product.ID = id // Ensure the ID from the URL is used
	if ok, err := validateBody(c, h.validate, product); !ok {
		return err
	}

	if err := h.service.UpdateProduct(c.UserContext(), &product); err != nil {
		log.Printf("Error updating product %s: %v", id, err)
		return respondError(c, "Could not update product", err)
	}

	updated, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		log.Printf("Error deleting product %s: %v", id, err)
		return respondError(c, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product with ID %s deleted successfully", id),
	})
}
