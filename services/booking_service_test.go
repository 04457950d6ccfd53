package services

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Booking{},
		&models.DishCategory{},
		&models.Dish{},
		&models.Order{},
		&models.OrderItem{},
		&models.Receipt{},
		&models.ReceiptItem{},
	))
	return db
}

func seedTable(t *testing.T, db *gorm.DB) models.Table {
	t.Helper()
	table := models.Table{Location: "main hall", Seats: 4, IsActive: true}
	require.NoError(t, db.Create(&table).Error)
	return table
}

func validInput(tableID uint, start time.Time, d time.Duration) CreateBookingInput {
	return CreateBookingInput{
		TableID:     tableID,
		ClientName:  "Ivan Petrov",
		ClientPhone: "+7 (999) 123-45-67",
		StartTime:   start,
		EndTime:     start.Add(d),
	}
}

func TestCreateBooking(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	booking, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusActive, booking.Status)
	assert.Equal(t, "+79991234567", booking.ClientPhone)
	assert.Equal(t, table.ID, booking.TableID)
}

func TestCreateBookingConflict(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	first, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)

	// overlapping window an hour into the first booking
	_, err = svc.CreateBooking(validInput(table.ID, start.Add(time.Hour), 2*time.Hour))
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, table.ID, conflictErr.TableID)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, first.ID, conflictErr.Conflicts[0].BookingID)
}

func TestCreateBookingAdjacentWindowsDoNotConflict(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	_, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)

	// back-to-back booking starting exactly when the first ends
	_, err = svc.CreateBooking(validInput(table.ID, start.Add(2*time.Hour), 2*time.Hour))
	require.NoError(t, err)
}

func TestCreateBookingOnOtherTableDoesNotConflict(t *testing.T) {
	db := newTestDB(t)
	table1 := seedTable(t, db)
	table2 := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	_, err := svc.CreateBooking(validInput(table1.ID, start, 2*time.Hour))
	require.NoError(t, err)

	_, err = svc.CreateBooking(validInput(table2.ID, start, 2*time.Hour))
	require.NoError(t, err)
}

func TestCreateBookingValidation(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	tests := []struct {
		name   string
		mutate func(*CreateBookingInput)
		field  string
	}{
		{"name too short", func(in *CreateBookingInput) { in.ClientName = "I" }, "client_name"},
		{"one cyrillic letter", func(in *CreateBookingInput) { in.ClientName = "Я" }, "client_name"},
		{"bad phone", func(in *CreateBookingInput) { in.ClientPhone = "12345" }, "client_phone"},
		{"end before start", func(in *CreateBookingInput) { in.EndTime = in.StartTime.Add(-time.Hour) }, "end_time"},
		{"zero length", func(in *CreateBookingInput) { in.EndTime = in.StartTime }, "end_time"},
		{"off-grid duration", func(in *CreateBookingInput) { in.EndTime = in.StartTime.Add(100 * time.Minute) }, "end_time"},
		{"start in the past", func(in *CreateBookingInput) { in.StartTime = time.Now().Add(-time.Hour); in.EndTime = in.StartTime.Add(2 * time.Hour) }, "start_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(table.ID, start, 2*time.Hour)
			tt.mutate(&in)
			_, err := svc.CreateBooking(in)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestCreateBookingNameLengthCountsCharacters(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	// 60 cyrillic characters encode to 120 bytes; still within the limit
	in := validInput(table.ID, start, 2*time.Hour)
	in.ClientName = strings.Repeat("А", 60)
	_, err := svc.CreateBooking(in)
	require.NoError(t, err)
}

func TestCreateBookingStartToleranceAllowsRecentPast(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	// two minutes in the past is within tolerance
	start := time.Now().Add(-2 * time.Minute)
	_, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)
}

func TestCreateBookingUnknownTable(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	_, err := svc.CreateBooking(validInput(999, start, 2*time.Hour))
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestCreateBookingInactiveTable(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	require.NoError(t, db.Model(&table).Update("is_active", false).Error)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	_, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestCreateBookingConcurrent(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var conflictErr *ConflictError
		assert.ErrorAs(t, err, &conflictErr)
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent request should win the slot")

	var count int64
	db.Model(&models.Booking{}).Where("table_id = ?", table.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestIsTableAvailable(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	_, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)

	busy, err := svc.IsTableAvailable(table.ID, Interval{Start: start.Add(time.Hour), End: start.Add(3 * time.Hour)})
	require.NoError(t, err)
	assert.False(t, busy)

	free, err := svc.IsTableAvailable(table.ID, Interval{Start: start.Add(2 * time.Hour), End: start.Add(4 * time.Hour)})
	require.NoError(t, err)
	assert.True(t, free)

	_, err = svc.IsTableAvailable(999, Interval{Start: start, End: start.Add(time.Hour)})
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestIsTableAvailableIgnoresCancelled(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	booking, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)

	_, err = svc.CancelBooking(booking.ID)
	require.NoError(t, err)

	free, err := svc.IsTableAvailable(table.ID, Interval{Start: start, End: start.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.True(t, free, "cancelled bookings must not block the slot")
}

func TestUpdateBooking(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	booking, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)
	blocker, err := svc.CreateBooking(validInput(table.ID, start.Add(3*time.Hour), 2*time.Hour))
	require.NoError(t, err)

	// comment-only update keeps the window
	comment := "birthday"
	updated, err := svc.UpdateBooking(booking.ID, UpdateBookingInput{Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, "birthday", updated.Comment)
	assert.True(t, updated.StartTime.Equal(start))

	// re-slot into a free window
	newStart := start.Add(6 * time.Hour)
	newEnd := newStart.Add(2 * time.Hour)
	updated, err = svc.UpdateBooking(booking.ID, UpdateBookingInput{StartTime: &newStart, EndTime: &newEnd})
	require.NoError(t, err)
	assert.True(t, updated.StartTime.Equal(newStart))

	// re-slot onto another booking conflicts
	clashStart := start.Add(3 * time.Hour)
	clashEnd := clashStart.Add(2 * time.Hour)
	_, err = svc.UpdateBooking(booking.ID, UpdateBookingInput{StartTime: &clashStart, EndTime: &clashEnd})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, blocker.ID, conflictErr.Conflicts[0].BookingID)

	// shrinking onto its own window is fine, the booking ignores itself
	sameStart := newStart
	sameEnd := newStart.Add(90 * time.Minute)
	_, err = svc.UpdateBooking(booking.ID, UpdateBookingInput{StartTime: &sameStart, EndTime: &sameEnd})
	require.NoError(t, err)

	// cancelled bookings cannot be updated
	_, err = svc.CancelBooking(booking.ID)
	require.NoError(t, err)
	_, err = svc.UpdateBooking(booking.ID, UpdateBookingInput{Comment: &comment})
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestCancelBooking(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	booking, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	// cancelling twice is an invalid transition
	_, err = svc.CancelBooking(booking.ID)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.BookingStatusCancelled, transitionErr.From)
}

func TestCancelBookingAfterStartRejected(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	// started two minutes ago, still within the creation tolerance
	start := time.Now().Add(-2 * time.Minute)
	booking, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)

	_, err = svc.CancelBooking(booking.ID)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "start time already passed", transitionErr.Reason)
}

func TestCancelBookingNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)

	_, err := svc.CancelBooking(42)
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestConvertBooking(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	booking, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)

	require.NoError(t, svc.ConvertBooking(db, booking.ID))

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, booking.ID).Error)
	assert.Equal(t, models.BookingStatusConverted, reloaded.Status)

	// converted bookings cannot be cancelled
	_, err = svc.CancelBooking(booking.ID)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestSweepExpiredBookings(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	now := time.Now()

	// ended 3 hours ago, past the grace period
	expired := models.Booking{
		TableID: table.ID, ClientName: "Old Guest", ClientPhone: "+79991112233",
		StartTime: now.Add(-5 * time.Hour), EndTime: now.Add(-3 * time.Hour),
		Status: models.BookingStatusActive,
	}
	// ended 1 hour ago, still inside the grace period
	recent := models.Booking{
		TableID: table.ID, ClientName: "Late Guest", ClientPhone: "+79991112244",
		StartTime: now.Add(-3 * time.Hour), EndTime: now.Add(-time.Hour),
		Status: models.BookingStatusActive,
	}
	// already cancelled, must stay cancelled
	cancelled := models.Booking{
		TableID: table.ID, ClientName: "Gone Guest", ClientPhone: "+79991112255",
		StartTime: now.Add(-6 * time.Hour), EndTime: now.Add(-5 * time.Hour),
		Status: models.BookingStatusCancelled,
	}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&recent).Error)
	require.NoError(t, db.Create(&cancelled).Error)

	n, err := svc.SweepExpiredBookings()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var b models.Booking
	require.NoError(t, db.First(&b, expired.ID).Error)
	assert.Equal(t, models.BookingStatusCompleted, b.Status)

	b = models.Booking{}
	require.NoError(t, db.First(&b, recent.ID).Error)
	assert.Equal(t, models.BookingStatusActive, b.Status)

	b = models.Booking{}
	require.NoError(t, db.First(&b, cancelled.ID).Error)
	assert.Equal(t, models.BookingStatusCancelled, b.Status)

	// second run is a no-op
	n, err = svc.SweepExpiredBookings()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSearchBookings(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	_, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)

	byName, err := svc.SearchBookings("Petrov", "")
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	byPhone, err := svc.SearchBookings("", "4567")
	require.NoError(t, err)
	assert.Len(t, byPhone, 1)

	none, err := svc.SearchBookings("Sidorov", "")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.SearchBookings("", "")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.SearchBookings("", "45")
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "phone", validationErr.Field)
}

func TestListBookings(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db)
	svc := NewBookingService(db)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	booking, err := svc.CreateBooking(validInput(table.ID, start, 2*time.Hour))
	require.NoError(t, err)
	_, err = svc.CancelBooking(booking.ID)
	require.NoError(t, err)

	second, err := svc.CreateBooking(validInput(table.ID, start.Add(3*time.Hour), 2*time.Hour))
	require.NoError(t, err)

	active, err := svc.ListBookings(models.BookingStatusActive, nil, nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	all, err := svc.ListBookings("", nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	from := start.Add(time.Hour)
	later, err := svc.ListBookings("", &from, nil)
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, second.ID, later[0].ID)

	// a booking ending exactly at `to` lies inside the half-open window
	to := second.EndTime
	within, err := svc.ListBookings("", nil, &to)
	require.NoError(t, err)
	assert.Len(t, within, 2)

	justBefore := second.EndTime.Add(-time.Minute)
	clipped, err := svc.ListBookings("", nil, &justBefore)
	require.NoError(t, err)
	require.Len(t, clipped, 1)
	assert.Equal(t, booking.ID, clipped[0].ID)
}
