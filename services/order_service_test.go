package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/models"
)

func seedMenu(t *testing.T, db *gorm.DB) (models.DishCategory, models.Dish, models.Dish) {
	t.Helper()

	category := models.DishCategory{Name: "Hot dishes"}
	require.NoError(t, db.Create(&category).Error)

	borscht := models.Dish{Name: "Borscht", CategoryID: category.ID, Price: 450, IsAvailable: true}
	steak := models.Dish{Name: "Steak", CategoryID: category.ID, Price: 1200, IsAvailable: true}
	require.NoError(t, db.Create(&borscht).Error)
	require.NoError(t, db.Create(&steak).Error)
	return category, borscht, steak
}

func TestCreateWalkInOrder(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	_, borscht, steak := seedMenu(t, db)

	svc := NewOrderService(db, NewBookingService(db))

	order, err := svc.CreateOrder(CreateOrderInput{
		TableID: table.ID,
		Items: []OrderItemInput{
			{DishID: borscht.ID, Quantity: 2},
			{DishID: steak.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.True(t, order.IsWalkIn)
	assert.Equal(t, models.OrderStatusOpen, order.Status)
	assert.InDelta(t, 2*450+1200, order.TotalPrice, 0.001)
}

func TestCreateOrderConvertsBooking(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	_, borscht, _ := seedMenu(t, db)

	bookings := NewBookingService(db)
	svc := NewOrderService(db, bookings)

	start := time.Now().Add(-2 * time.Minute)
	booking, err := bookings.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)

	order, err := svc.CreateOrder(CreateOrderInput{
		TableID:   table.ID,
		BookingID: &booking.ID,
		Items:     []OrderItemInput{{DishID: borscht.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.False(t, order.IsWalkIn)

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, booking.ID).Error)
	assert.Equal(t, models.BookingStatusConverted, reloaded.Status)
}

func TestCreateOrderBookingTableMismatch(t *testing.T) {
	db := newTestDB(t)
	table1 := seedTable(t, db)
	table2 := seedTable(t, db)
	_, borscht, _ := seedMenu(t, db)

	bookings := NewBookingService(db)
	svc := NewOrderService(db, bookings)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	booking, err := bookings.CreateBooking(validInput(table1.ID, start, 2*time.Hour))
	require.NoError(t, err)

	_, err = svc.CreateOrder(CreateOrderInput{
		TableID:   table2.ID,
		BookingID: &booking.ID,
		Items:     []OrderItemInput{{DishID: borscht.ID, Quantity: 1}},
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "booking_id", validationErr.Field)

	// the failed transaction must not convert the booking
	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, booking.ID).Error)
	assert.Equal(t, models.BookingStatusActive, reloaded.Status)
}

func TestCreateOrderRejectsUnavailableDish(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	_, borscht, _ := seedMenu(t, db)
	require.NoError(t, db.Model(&borscht).Update("is_available", false).Error)

	svc := NewOrderService(db, NewBookingService(db))

	_, err := svc.CreateOrder(CreateOrderInput{
		TableID: table.ID,
		Items:   []OrderItemInput{{DishID: borscht.ID, Quantity: 1}},
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestAddItems(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	_, borscht, steak := seedMenu(t, db)

	svc := NewOrderService(db, NewBookingService(db))

	order, err := svc.CreateOrder(CreateOrderInput{
		TableID: table.ID,
		Items:   []OrderItemInput{{DishID: borscht.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := svc.AddItems(order.ID, []OrderItemInput{{DishID: steak.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.InDelta(t, 450+1200, updated.TotalPrice, 0.001)
}

func TestOrderStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	_, borscht, _ := seedMenu(t, db)

	svc := NewOrderService(db, NewBookingService(db))

	order, err := svc.CreateOrder(CreateOrderInput{
		TableID: table.ID,
		Items:   []OrderItemInput{{DishID: borscht.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	order, err = svc.UpdateStatus(order.ID, models.OrderStatusCooking)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCooking, order.Status)

	// cooking cannot jump back to open
	_, err = svc.UpdateStatus(order.ID, models.OrderStatusOpen)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	order, err = svc.UpdateStatus(order.ID, models.OrderStatusReady)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReady, order.Status)
}

func TestCloseOrderGeneratesReceipt(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	_, borscht, steak := seedMenu(t, db)

	svc := NewOrderService(db, NewBookingService(db))

	order, err := svc.CreateOrder(CreateOrderInput{
		TableID: table.ID,
		Items: []OrderItemInput{
			{DishID: borscht.ID, Quantity: 2},
			{DishID: steak.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	receipt, err := svc.CloseOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, receipt.OrderID)
	assert.NotEmpty(t, receipt.ReceiptNumber)
	assert.InDelta(t, order.TotalPrice, receipt.Total, 0.001)
	require.Len(t, receipt.ReceiptItems, 2)

	// the receipt keeps the price the guest actually paid
	require.NoError(t, db.Model(&borscht).Update("price", 9999).Error)
	var item models.ReceiptItem
	require.NoError(t, db.Where("receipt_id = ? AND dish_id = ?", receipt.ID, borscht.ID).First(&item).Error)
	assert.InDelta(t, 450, item.UnitPrice, 0.001)

	var closed models.Order
	require.NoError(t, db.First(&closed, order.ID).Error)
	assert.Equal(t, models.OrderStatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	// closing twice is rejected
	_, err = svc.CloseOrder(order.ID)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}
