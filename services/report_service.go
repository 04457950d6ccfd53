package services

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

// ReportService computes admin metrics and exports them as spreadsheets.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

type DailyReport struct {
	Date          string  `json:"date"`
	TotalOrders   int64   `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalBookings int64   `json:"total_bookings"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// DailyReport aggregates yesterday's orders, revenue and bookings.
func (s *ReportService) DailyReport() (*DailyReport, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	report := &DailyReport{Date: yesterday.Format("2006-01-02")}

	if err := s.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", yesterday, today).
		Count(&report.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var revenue *float64
	if err := s.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ? AND status = ?", yesterday, today, models.OrderStatusClosed).
		Select("SUM(total_price)").Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if revenue != nil {
		report.TotalRevenue = *revenue
	}

	if err := s.db.Model(&models.Booking{}).
		Where("created_at >= ? AND created_at < ?", yesterday, today).
		Count(&report.TotalBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	if report.TotalOrders > 0 {
		report.AvgOrderValue = report.TotalRevenue / float64(report.TotalOrders)
	}
	return report, nil
}

// LogDailyReport is the job entry point: compute and log the metrics.
func (s *ReportService) LogDailyReport() error {
	report, err := s.DailyReport()
	if err != nil {
		return err
	}
	utils.InfoLogger.Printf("Daily report for %s: orders=%d revenue=%.2f bookings=%d avg=%.2f",
		report.Date, report.TotalOrders, report.TotalRevenue, report.TotalBookings, report.AvgOrderValue)
	return nil
}

type DashboardStats struct {
	TotalOrders    int64            `json:"total_orders"`
	TodayOrders    int64            `json:"today_orders"`
	TotalRevenue   float64          `json:"total_revenue"`
	TodayRevenue   float64          `json:"today_revenue"`
	ActiveBookings int64            `json:"active_bookings"`
	TodayBookings  int64            `json:"today_bookings"`
	PopularDishes  []PopularDish    `json:"popular_dishes"`
	WaiterLoad     []WaiterLoadItem `json:"waiter_load"`
}

type PopularDish struct {
	DishID   uint   `json:"dish_id"`
	DishName string `json:"dish_name"`
	Ordered  int64  `json:"ordered"`
}

type WaiterLoadItem struct {
	WaiterID   uint   `json:"waiter_id"`
	WaiterName string `json:"waiter_name"`
	Orders     int64  `json:"orders"`
}

// DashboardStats collects the admin dashboard numbers in one round.
func (s *ReportService) DashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	todayStart := time.Now().Truncate(24 * time.Hour)

	if err := s.db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := s.db.Model(&models.Order{}).
		Where("created_at >= ?", todayStart).
		Count(&stats.TodayOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count today orders: %w", err)
	}

	var total, today *float64
	if err := s.db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusClosed).
		Select("SUM(total_price)").Scan(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if err := s.db.Model(&models.Order{}).
		Where("status = ? AND created_at >= ?", models.OrderStatusClosed, todayStart).
		Select("SUM(total_price)").Scan(&today).Error; err != nil {
		return nil, fmt.Errorf("failed to sum today revenue: %w", err)
	}
	if total != nil {
		stats.TotalRevenue = *total
	}
	if today != nil {
		stats.TodayRevenue = *today
	}

	if err := s.db.Model(&models.Booking{}).
		Where("status = ?", models.BookingStatusActive).
		Count(&stats.ActiveBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count active bookings: %w", err)
	}
	if err := s.db.Model(&models.Booking{}).
		Where("created_at >= ?", todayStart).
		Count(&stats.TodayBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count today bookings: %w", err)
	}

	if err := s.db.Model(&models.OrderItem{}).
		Select("order_items.dish_id, dishes.name AS dish_name, SUM(order_items.quantity) AS ordered").
		Joins("JOIN dishes ON dishes.id = order_items.dish_id").
		Group("order_items.dish_id, dishes.name").
		Order("ordered DESC").
		Limit(5).
		Scan(&stats.PopularDishes).Error; err != nil {
		return nil, fmt.Errorf("failed to rank dishes: %w", err)
	}

	if err := s.db.Model(&models.Order{}).
		Select("orders.waiter_id, users.name AS waiter_name, COUNT(*) AS orders").
		Joins("JOIN users ON users.id = orders.waiter_id").
		Where("orders.waiter_id IS NOT NULL").
		Group("orders.waiter_id, users.name").
		Order("orders DESC").
		Scan(&stats.WaiterLoad).Error; err != nil {
		return nil, fmt.Errorf("failed to rank waiters: %w", err)
	}

	return stats, nil
}

// ExportOrdersXLSX writes closed orders in a date range to a spreadsheet
// and returns the serialized file.
func (s *ReportService) ExportOrdersXLSX(from, to time.Time) ([]byte, error) {
	var orders []models.Order
	if err := s.db.Preload("Table").Preload("OrderItems").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders for export: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Orders"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	headers := []string{"ID", "Date", "Table", "Status", "Items", "Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, order := range orders {
		values := []interface{}{
			order.ID,
			order.CreatedAt.Format("2006-01-02 15:04"),
			order.Table.Location,
			order.Status,
			len(order.OrderItems),
			order.TotalPrice,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	return buf.Bytes(), nil
}
