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

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

// ListCategories retrieves the store's categories.
func ListCategories(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Categories(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind category schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
	}

	var categories []model.Category
	if result := db.Order("name ASC").Find(&categories); result.Error != nil {
		log.Error("Failed to retrieve categories",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// GetCategory retrieves a specific category by ID.
func GetCategory(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Categories(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind category schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve category"})
	}

	var category model.Category
	if result := db.Where("id = ?", c.Param("id")).First(&category); result.Error != nil {
		log.Warn("Category not found",
			zap.String("category_id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	return c.JSON(http.StatusOK, category)
}

// CreateCategory adds a new product category.
func CreateCategory(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("insert")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid category request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db, err := scope.Categories(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind category schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "category creation failed"})
	}

	// Check if a category with the same name already exists for this store
	var existing model.Category
	if result := db.Where("name = ?", req.Name).First(&existing); result.Error == nil {
		log.Warn("Category already exists",
			zap.String("name", req.Name))
		return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
	}

	category := model.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}

	if result := db.Create(&category); result.Error != nil {
		log.Error("Failed to create category",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "category creation failed"})
	}

	log.Info("Category created",
		zap.Uint("id", category.ID),
		zap.String("name", category.Name))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory modifies an existing category.
func UpdateCategory(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("update")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Categories(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind category schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "category update failed"})
	}

	var category model.Category
	if result := db.Where("id = ?", c.Param("id")).First(&category); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid category request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	category.Description = req.Description
	if req.ImageURL != "" {
		category.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if result := db.Save(&category); result.Error != nil {
		log.Error("Failed to update category",
			zap.Uint("id", category.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "category update failed"})
	}

	return c.JSON(http.StatusOK, category)
}

// DeleteCategory soft-deletes a category.
func DeleteCategory(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("delete")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Categories(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind category schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "category deletion failed"})
	}

	result := db.Where("id = ?", c.Param("id")).Delete(&model.Category{})
	if result.Error != nil {
		log.Error("Failed to delete category", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "category deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}
