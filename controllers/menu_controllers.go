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

type MenuController struct {
	DB    *gorm.DB
	Cache *cache.Service
}

func NewMenuController(db *gorm.DB, cacheSvc *cache.Service) *MenuController {
	return &MenuController{DB: db, Cache: cacheSvc}
}

// GetMenu -> available dishes with categories. The unfiltered listing is
// cache-first; filtered queries go straight to the database.
func (mc *MenuController) GetMenu(c *gin.Context) {
	ctx := c.Request.Context()

	categoryID := c.Query("category_id")
	maxPrice := c.Query("max_price")
	filtered := categoryID != "" || maxPrice != ""

	var dishes []models.Dish
	if !filtered {
		hit, err := mc.Cache.Store().Get(ctx, cache.KeyMenu, &dishes)
		if err != nil {
			utils.ErrorLogger.Printf("Cache read failed for %s: %v", cache.KeyMenu, err)
		}
		if hit {
			utils.RespondJSON(c, http.StatusOK, "Menu", dishes)
			return
		}
	}

	query := mc.DB.Preload("Category").
		Where("is_available = ? AND is_deleted = ?", true, false).
		Order("category_id asc, name asc")
	if categoryID != "" {
		id, err := strconv.Atoi(categoryID)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category_id parameter"))
			return
		}
		query = query.Where("category_id = ?", id)
	}
	if maxPrice != "" {
		price, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid max_price parameter"))
			return
		}
		query = query.Where("price <= ?", price)
	}

	if err := query.Find(&dishes).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if !filtered {
		if err := mc.Cache.Store().Set(ctx, cache.KeyMenu, dishes, cache.MenuTTL); err != nil {
			utils.ErrorLogger.Printf("Cache write failed for %s: %v", cache.KeyMenu, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Menu", dishes)
}

// GetDish -> single dish, also serves soft-deleted ones for admin history
func (mc *MenuController) GetDish(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("dish_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid dish id"))
		return
	}

	ctx := c.Request.Context()
	key := cache.DishKey(uint(id))

	var dish models.Dish
	hit, err := mc.Cache.Store().Get(ctx, key, &dish)
	if err != nil {
		utils.ErrorLogger.Printf("Cache read failed for %s: %v", key, err)
	}
	if !hit {
		if err := mc.DB.Preload("Category").First(&dish, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(c, http.StatusNotFound, errors.New("dish not found"))
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if err := mc.Cache.Store().Set(ctx, key, dish, cache.MenuTTL); err != nil {
			utils.ErrorLogger.Printf("Cache write failed for %s: %v", key, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Dish detail", dish)
}

// CreateDish -> admin only
func (mc *MenuController) CreateDish(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		CategoryID  uint    `json:"category_id" binding:"required"`
		Composition string  `json:"composition"`
		Weight      string  `json:"weight"`
		Price       float64 `json:"price" binding:"required"`
		CookingTime int     `json:"cooking_time"`
		ImageUrl    *string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Price <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price must be positive"))
		return
	}

	var category models.DishCategory
	if err := mc.DB.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("category not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	dish := models.Dish{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Composition: req.Composition,
		Weight:      req.Weight,
		Price:       req.Price,
		CookingTime: req.CookingTime,
		ImageUrl:    req.ImageUrl,
		IsAvailable: true,
	}
	if err := mc.DB.Create(&dish).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.invalidateMenu(c, dish.ID)
	utils.RespondJSON(c, http.StatusCreated, "Dish created", dish)
}

// UpdateDish -> admin only, partial update
func (mc *MenuController) UpdateDish(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("dish_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid dish id"))
		return
	}

	var dish models.Dish
	if err := mc.DB.First(&dish, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("dish not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		CategoryID  *uint    `json:"category_id"`
		Composition *string  `json:"composition"`
		Weight      *string  `json:"weight"`
		Price       *float64 `json:"price"`
		CookingTime *int     `json:"cooking_time"`
		ImageUrl    *string  `json:"image_url"`
		IsAvailable *bool    `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		dish.Name = *req.Name
	}
	if req.CategoryID != nil {
		var category models.DishCategory
		if err := mc.DB.First(&category, *req.CategoryID).Error; err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("category not found"))
			return
		}
		dish.CategoryID = *req.CategoryID
	}
	if req.Composition != nil {
		dish.Composition = *req.Composition
	}
	if req.Weight != nil {
		dish.Weight = *req.Weight
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price must be positive"))
			return
		}
		dish.Price = *req.Price
	}
	if req.CookingTime != nil {
		dish.CookingTime = *req.CookingTime
	}
	if req.ImageUrl != nil {
		dish.ImageUrl = req.ImageUrl
	}
	if req.IsAvailable != nil {
		dish.IsAvailable = *req.IsAvailable
	}

	if err := mc.DB.Save(&dish).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.invalidateMenu(c, dish.ID)
	utils.RespondJSON(c, http.StatusOK, "Dish updated", dish)
}

// DeleteDish -> soft delete, order history keeps the snapshot prices
func (mc *MenuController) DeleteDish(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("dish_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid dish id"))
		return
	}

	result := mc.DB.Model(&models.Dish{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true, "is_available": false})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("dish not found"))
		return
	}

	mc.invalidateMenu(c, uint(id))
	utils.RespondJSON(c, http.StatusOK, "Dish deleted", gin.H{"dish_id": id})
}

func (mc *MenuController) invalidateMenu(c *gin.Context, dishID uint) {
	ctx := c.Request.Context()
	if err := mc.Cache.InvalidateMenu(ctx); err != nil {
		utils.ErrorLogger.Printf("Cache invalidation failed for menu: %v", err)
	}
	if err := mc.Cache.InvalidateDish(ctx, dishID); err != nil {
		utils.ErrorLogger.Printf("Cache invalidation failed for dish %d: %v", dishID, err)
	}
}
