package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/cache"
	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

type CategoryController struct {
	DB    *gorm.DB
	Cache *cache.Service
}

func NewCategoryController(db *gorm.DB, cacheSvc *cache.Service) *CategoryController {
	return &CategoryController{DB: db, Cache: cacheSvc}
}

// GetAllCategories -> cache-first, categories change rarely
func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	ctx := c.Request.Context()

	var categories []models.DishCategory
	hit, err := cc.Cache.Store().Get(ctx, cache.KeyCategories, &categories)
	if err != nil {
		utils.ErrorLogger.Printf("Cache read failed for %s: %v", cache.KeyCategories, err)
	}
	if !hit {
		if err := cc.DB.Order("name asc").Find(&categories).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if err := cc.Cache.Store().Set(ctx, cache.KeyCategories, categories, cache.CategoriesTTL); err != nil {
			utils.ErrorLogger.Printf("Cache write failed for %s: %v", cache.KeyCategories, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

// CreateCategory -> admin only
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var count int64
	cc.DB.Model(&models.DishCategory{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("category name already exists"))
		return
	}

	category := models.DishCategory{Name: req.Name}
	if err := cc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	cc.invalidate(c)
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// UpdateCategory -> admin only
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("category_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category id"))
		return
	}

	var category models.DishCategory
	if err := cc.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		Name *string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}

	if err := cc.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	cc.invalidate(c)
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory -> refuses when dishes still reference it
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("category_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category id"))
		return
	}

	var dishCount int64
	cc.DB.Model(&models.Dish{}).Where("category_id = ? AND is_deleted = ?", id, false).Count(&dishCount)
	if dishCount > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("category still has dishes"))
		return
	}

	result := cc.DB.Delete(&models.DishCategory{}, id)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	cc.invalidate(c)
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": id})
}

func (cc *CategoryController) invalidate(c *gin.Context) {
	ctx := c.Request.Context()
	if err := cc.Cache.InvalidateCategories(ctx); err != nil {
		utils.ErrorLogger.Printf("Cache invalidation failed for categories: %v", err)
	}
	if err := cc.Cache.InvalidateMenu(ctx); err != nil {
		utils.ErrorLogger.Printf("Cache invalidation failed for menu: %v", err)
	}
}
