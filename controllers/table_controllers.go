package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/cache"
	"github.com/restokorp/restaurant-app/hub"
	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

type TableController struct {
	DB    *gorm.DB
	Cache *cache.Service
}

func NewTableController(db *gorm.DB, cacheSvc *cache.Service) *TableController {
	return &TableController{DB: db, Cache: cacheSvc}
}

// GetAllTables -> active tables, cached for the booking form
func (tc *TableController) GetAllTables(c *gin.Context) {
	ctx := c.Request.Context()

	var tables []models.Table
	hit, err := tc.Cache.Store().Get(ctx, cache.KeyTablesActive, &tables)
	if err != nil {
		utils.ErrorLogger.Printf("Cache read failed for %s: %v", cache.KeyTablesActive, err)
	}
	if !hit {
		if err := tc.DB.Where("is_active = ?", true).Order("id asc").Find(&tables).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if err := tc.Cache.Store().Set(ctx, cache.KeyTablesActive, tables, cache.TablesTTL); err != nil {
			utils.ErrorLogger.Printf("Cache write failed for %s: %v", cache.KeyTablesActive, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTable -> single table by id, includes inactive ones
func (tc *TableController) GetTable(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// CreateTable -> admin only
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Location string `json:"location" binding:"required"`
		Seats    int    `json:"seats" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Seats < 1 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("seats must be at least 1"))
		return
	}

	table := models.Table{
		Location: req.Location,
		Seats:    req.Seats,
		IsActive: true,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.invalidate(c)
	hub.BroadcastMessage(hub.Message{Event: hub.EventTableUpdate, Data: table})
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

// UpdateTable -> admin only, partial update
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		Location *string `json:"location"`
		Seats    *int    `json:"seats"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Seats != nil {
		if *req.Seats < 1 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("seats must be at least 1"))
			return
		}
		table.Seats = *req.Seats
	}
	if req.Location != nil {
		table.Location = *req.Location
	}
	if req.IsActive != nil {
		table.IsActive = *req.IsActive
	}

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.invalidate(c)
	hub.BroadcastMessage(hub.Message{Event: hub.EventTableUpdate, Data: table})
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeactivateTable -> hides the table from new bookings, keeps history
func (tc *TableController) DeactivateTable(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	result := tc.DB.Model(&models.Table{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}

	tc.invalidate(c)
	utils.RespondJSON(c, http.StatusOK, "Table deactivated", gin.H{"table_id": id})
}

func (tc *TableController) invalidate(c *gin.Context) {
	if err := tc.Cache.InvalidateTables(c.Request.Context()); err != nil {
		utils.ErrorLogger.Printf("Cache invalidation failed for tables: %v", err)
	}
}
