package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/restokorp/restaurant-app/models"
)

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	_, borscht, _ := seedMenu(t, db)

	waiter := models.User{Name: "Oleg", Email: "oleg@test", Password: "x", Role: models.RoleWaiter, IsActive: true}
	require.NoError(t, db.Create(&waiter).Error)

	closed := models.Order{
		TableID: table.ID, WaiterID: &waiter.ID, Status: models.OrderStatusClosed,
		TotalPrice: 900, ShiftDate: time.Now().Truncate(24 * time.Hour),
	}
	open := models.Order{
		TableID: table.ID, WaiterID: &waiter.ID, Status: models.OrderStatusOpen,
		TotalPrice: 450, ShiftDate: time.Now().Truncate(24 * time.Hour),
	}
	require.NoError(t, db.Create(&closed).Error)
	require.NoError(t, db.Create(&open).Error)
	require.NoError(t, db.Create(&models.OrderItem{
		OrderID: closed.ID, DishID: borscht.ID, Quantity: 2, Price: 450, Status: "ordered",
	}).Error)

	svc := NewReportService(db)
	stats, err := svc.DashboardStats()
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalOrders)
	assert.InDelta(t, 900, stats.TotalRevenue, 0.001, "only closed orders count as revenue")
	require.Len(t, stats.PopularDishes, 1)
	assert.Equal(t, "Borscht", stats.PopularDishes[0].DishName)
	assert.EqualValues(t, 2, stats.PopularDishes[0].Ordered)
	require.Len(t, stats.WaiterLoad, 1)
	assert.Equal(t, "Oleg", stats.WaiterLoad[0].WaiterName)
	assert.EqualValues(t, 2, stats.WaiterLoad[0].Orders)
}

func TestExportOrdersXLSX(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)

	order := models.Order{
		TableID: table.ID, Status: models.OrderStatusClosed,
		TotalPrice: 1200, ShiftDate: time.Now().Truncate(24 * time.Hour),
	}
	require.NoError(t, db.Create(&order).Error)

	svc := NewReportService(db)
	data, err := svc.ExportOrdersXLSX(time.Now().Add(-24*time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one order")
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "main hall", rows[1][2])
}
