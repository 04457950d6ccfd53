package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/services"
	"github.com/restokorp/restaurant-app/utils"
)

type AdminController struct {
	DB      *gorm.DB
	Reports *services.ReportService
}

func NewAdminController(db *gorm.DB, reports *services.ReportService) *AdminController {
	return &AdminController{DB: db, Reports: reports}
}

// GetDashboardStats -> today's numbers for the admin panel
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Reports.DashboardStats()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

// GetDailyReport -> yesterday's summary, same numbers the nightly job logs
func (ac *AdminController) GetDailyReport(c *gin.Context) {
	report, err := ac.Reports.DailyReport()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily report", report)
}

// ExportOrders -> XLSX download for a date range
func (ac *AdminController) ExportOrders(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid from parameter, expected YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid to parameter, expected YYYY-MM-DD"))
		return
	}
	if to.Before(from) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("to must not be before from"))
		return
	}
	// the range is inclusive of the whole "to" day
	to = to.Add(24 * time.Hour)

	data, err := ac.Reports.ExportOrdersXLSX(from, to)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("orders_%s_%s.xlsx", c.Query("from"), c.Query("to"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
