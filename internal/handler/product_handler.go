package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront-service/internal/model"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	SKU         string                 `json:"sku"`
	Price       float64                `json:"price"`
	Stock       int                    `json:"stock"`
	CategoryID  uint                   `json:"category_id"`
	ImageURLs   []string               `json:"image_urls"`
	HasVariants bool                   `json:"has_variants"`
	Variants    []model.ProductVariant `json:"variants"`
	IsActive    *bool                  `json:"is_active"`
}

// ListProducts retrieves the store's products.
func ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Products(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind product schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	query := db.Order("created_at DESC")
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if c.QueryParam("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var products []model.Product
	if result := query.Find(&products); result.Error != nil {
		log.Error("Failed to retrieve products",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, products)
}

// GetProduct retrieves a single product by ID.
func GetProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Products(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind product schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve product"})
	}

	var product model.Product
	if result := db.Where("id = ?", c.Param("id")).First(&product); result.Error != nil {
		log.Warn("Product not found",
			zap.String("product_id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct adds a product to the store's catalog.
func CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("insert")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid product request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db, err := scope.Products(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind product schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product creation failed"})
	}

	product := model.Product{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURLs:   req.ImageURLs,
		HasVariants: req.HasVariants,
		Variants:    req.Variants,
		IsActive:    true,
	}

	if result := db.Create(&product); result.Error != nil {
		log.Error("Failed to create product",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product creation failed"})
	}

	log.Info("Product created",
		zap.Uint("id", product.ID),
		zap.String("name", product.Name))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct modifies an existing product.
func UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("update")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Products(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind product schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product update failed"})
	}

	var product model.Product
	if result := db.Where("id = ?", c.Param("id")).First(&product); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid product request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	product.Description = req.Description
	if req.SKU != "" {
		product.SKU = req.SKU
	}
	product.Price = req.Price
	product.Stock = req.Stock
	product.CategoryID = req.CategoryID
	if req.ImageURLs != nil {
		product.ImageURLs = req.ImageURLs
	}
	product.HasVariants = req.HasVariants
	product.Variants = req.Variants
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if result := db.Save(&product); result.Error != nil {
		log.Error("Failed to update product",
			zap.Uint("id", product.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product update failed"})
	}

	return c.JSON(http.StatusOK, product)
}

// DeleteProduct soft-deletes a product.
func DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("delete")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Products(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind product schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product deletion failed"})
	}

	result := db.Where("id = ?", c.Param("id")).Delete(&model.Product{})
	if result.Error != nil {
		log.Error("Failed to delete product", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "product deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	log.Info("Product deleted",
		zap.String("product_id", c.Param("id")))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
