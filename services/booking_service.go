package services

import (
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

const (
	// CompletionGrace is how long past its end time an active booking is
	// tolerated before the sweep marks it Completed. Guests staying past
	// the reservation do not immediately free the table in the data model.
	CompletionGrace = 2 * time.Hour

	// StartTolerance allows bookings starting slightly in the past to
	// absorb client/server clock skew.
	StartTolerance = 5 * time.Minute

	// SlotGranularity: booking duration must be a multiple of this.
	SlotGranularity = 30 * time.Minute

	minNameLen = 2
	maxNameLen = 100
)

// BookingService owns the booking lifecycle and the availability check.
// Creation takes a per-table lock so that two concurrent requests for
// overlapping windows cannot both pass the availability check.
type BookingService struct {
	db         *gorm.DB
	tableLocks sync.Map // table ID -> *sync.Mutex
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

func (s *BookingService) lockForTable(tableID uint) *sync.Mutex {
	mu, _ := s.tableLocks.LoadOrStore(tableID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// IsTableAvailable reports whether the candidate window is free on the
// given table. Inactive tables are never available. Read-only.
func (s *BookingService) IsTableAvailable(tableID uint, iv Interval) (bool, error) {
	if err := iv.Validate(); err != nil {
		return false, err
	}

	var table models.Table
	if err := s.db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, &NotFoundError{Resource: "table", ID: tableID}
		}
		return false, fmt.Errorf("failed to load table %d: %w", tableID, err)
	}
	if !table.IsActive {
		return false, nil
	}

	conflicts, err := s.findConflicts(s.db, tableID, iv)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// findConflicts returns the active bookings on tableID that overlap iv.
// The WHERE clause narrows to rows that can possibly overlap; the interval
// predicate itself stays in one place (Interval.Overlaps).
func (s *BookingService) findConflicts(tx *gorm.DB, tableID uint, iv Interval) ([]ConflictRange, error) {
	var bookings []models.Booking
	err := tx.
		Where("table_id = ? AND status = ?", tableID, models.BookingStatusActive).
		Where("start_time < ? AND end_time > ?", iv.End, iv.Start).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active bookings for table %d: %w", tableID, err)
	}

	var conflicts []ConflictRange
	for _, b := range bookings {
		if iv.Overlaps(Interval{Start: b.StartTime, End: b.EndTime}) {
			conflicts = append(conflicts, ConflictRange{
				BookingID:  b.ID,
				ClientName: b.ClientName,
				StartTime:  b.StartTime,
				EndTime:    b.EndTime,
			})
		}
	}
	return conflicts, nil
}

type CreateBookingInput struct {
	TableID     uint
	ClientName  string
	ClientPhone string
	StartTime   time.Time
	EndTime     time.Time
	Comment     string
}

func (in *CreateBookingInput) validate() error {
	// rune count, not bytes: most client names are Cyrillic
	if n := utf8.RuneCountInString(in.ClientName); n < minNameLen || n > maxNameLen {
		return &ValidationError{Field: "client_name", Reason: fmt.Sprintf("length must be between %d and %d characters", minNameLen, maxNameLen)}
	}
	if !utils.IsValidPhone(in.ClientPhone) {
		return &ValidationError{Field: "client_phone", Reason: "must normalize to at least 10 digits"}
	}

	iv := Interval{Start: in.StartTime, End: in.EndTime}
	if err := iv.Validate(); err != nil {
		return &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	if in.StartTime.Before(time.Now().Add(-StartTolerance)) {
		return &ValidationError{Field: "start_time", Reason: "must be in the future"}
	}

	d := iv.Duration()
	if d < SlotGranularity || d%SlotGranularity != 0 {
		return &ValidationError{Field: "end_time", Reason: "duration must be a multiple of 30 minutes"}
	}
	return nil
}

// CreateBooking validates the request and persists a new Active booking.
// The availability check runs again inside the per-table critical section,
// in the same transaction as the insert; a stale pre-check from the caller
// cannot produce a double booking.
func (s *BookingService) CreateBooking(in CreateBookingInput) (*models.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	iv := Interval{Start: in.StartTime, End: in.EndTime}

	mu := s.lockForTable(in.TableID)
	mu.Lock()
	defer mu.Unlock()

	var booking *models.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, in.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "table", ID: in.TableID}
			}
			return fmt.Errorf("failed to load table %d: %w", in.TableID, err)
		}
		if !table.IsActive {
			return &ConflictError{TableID: in.TableID}
		}

		conflicts, err := s.findConflicts(tx, in.TableID, iv)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{TableID: in.TableID, Conflicts: conflicts}
		}

		now := time.Now()
		booking = &models.Booking{
			TableID:     in.TableID,
			ClientName:  in.ClientName,
			ClientPhone: utils.NormalizePhoneE164(in.ClientPhone),
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			Comment:     in.Comment,
			Status:      models.BookingStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		booking.Table = table
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Booking %d created: table=%d client=%s %s - %s",
		booking.ID, booking.TableID, booking.ClientName,
		booking.StartTime.Format(time.RFC3339), booking.EndTime.Format(time.RFC3339))
	return booking, nil
}

type UpdateBookingInput struct {
	StartTime *time.Time
	EndTime   *time.Time
	Comment   *string
}

// UpdateBooking re-slots or annotates an Active booking. A changed window
// goes through the same lock and conflict check as creation, with the
// booking itself excluded from the conflict set.
func (s *BookingService) UpdateBooking(id uint, in UpdateBookingInput) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: id}
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", id, err)
	}
	if booking.Status != models.BookingStatusActive {
		return nil, &InvalidTransitionError{BookingID: id, From: booking.Status, To: booking.Status, Reason: "only active bookings can be updated"}
	}

	start, end := booking.StartTime, booking.EndTime
	if in.StartTime != nil {
		start = *in.StartTime
	}
	if in.EndTime != nil {
		end = *in.EndTime
	}
	windowChanged := !start.Equal(booking.StartTime) || !end.Equal(booking.EndTime)

	if windowChanged {
		iv := Interval{Start: start, End: end}
		if err := iv.Validate(); err != nil {
			return nil, &ValidationError{Field: "end_time", Reason: "must be after start_time"}
		}
		if start.Before(time.Now().Add(-StartTolerance)) {
			return nil, &ValidationError{Field: "start_time", Reason: "must be in the future"}
		}
		if d := iv.Duration(); d < SlotGranularity || d%SlotGranularity != 0 {
			return nil, &ValidationError{Field: "end_time", Reason: "duration must be a multiple of 30 minutes"}
		}

		mu := s.lockForTable(booking.TableID)
		mu.Lock()
		defer mu.Unlock()

		err := s.db.Transaction(func(tx *gorm.DB) error {
			conflicts, err := s.findConflicts(tx, booking.TableID, iv)
			if err != nil {
				return err
			}
			filtered := conflicts[:0]
			for _, c := range conflicts {
				if c.BookingID != booking.ID {
					filtered = append(filtered, c)
				}
			}
			if len(filtered) > 0 {
				return &ConflictError{TableID: booking.TableID, Conflicts: filtered}
			}

			updates := map[string]interface{}{
				"start_time": start,
				"end_time":   end,
				"updated_at": time.Now(),
			}
			if in.Comment != nil {
				updates["comment"] = *in.Comment
			}
			res := tx.Model(&models.Booking{}).
				Where("id = ? AND status = ?", id, models.BookingStatusActive).
				Updates(updates)
			if res.Error != nil {
				return fmt.Errorf("failed to update booking %d: %w", id, res.Error)
			}
			if res.RowsAffected == 0 {
				return &InvalidTransitionError{BookingID: id, From: booking.Status, To: booking.Status, Reason: "state changed concurrently"}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		booking.StartTime = start
		booking.EndTime = end
		if in.Comment != nil {
			booking.Comment = *in.Comment
		}
		utils.InfoLogger.Printf("Booking %d re-slotted to %s - %s",
			id, start.Format(time.RFC3339), end.Format(time.RFC3339))
		return &booking, nil
	}

	if in.Comment != nil {
		if err := s.db.Model(&models.Booking{}).Where("id = ?", id).
			Updates(map[string]interface{}{"comment": *in.Comment, "updated_at": time.Now()}).Error; err != nil {
			return nil, fmt.Errorf("failed to update booking %d: %w", id, err)
		}
		booking.Comment = *in.Comment
	}
	return &booking, nil
}

// CancelBooking moves an Active booking to Cancelled. Only allowed before
// the booking's start time; anything else is an invalid transition.
func (s *BookingService) CancelBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: id}
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", id, err)
	}

	if booking.Status != models.BookingStatusActive {
		return nil, &InvalidTransitionError{BookingID: id, From: booking.Status, To: models.BookingStatusCancelled}
	}
	if !booking.StartTime.After(time.Now()) {
		return nil, &InvalidTransitionError{
			BookingID: id,
			From:      booking.Status,
			To:        models.BookingStatusCancelled,
			Reason:    "start time already passed",
		}
	}

	// Guarded update: if the sweep or a concurrent cancel got there first,
	// zero rows change and the transition is rejected.
	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, models.BookingStatusActive).
		Updates(map[string]interface{}{
			"status":     models.BookingStatusCancelled,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to cancel booking %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &InvalidTransitionError{BookingID: id, From: booking.Status, To: models.BookingStatusCancelled, Reason: "state changed concurrently"}
	}

	booking.Status = models.BookingStatusCancelled
	utils.InfoLogger.Printf("Booking %d cancelled", id)
	return &booking, nil
}

// ConvertBooking moves an Active booking to Converted when staff opens an
// order against it. Runs inside the caller's transaction.
func (s *BookingService) ConvertBooking(tx *gorm.DB, id uint) error {
	var booking models.Booking
	if err := tx.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "booking", ID: id}
		}
		return fmt.Errorf("failed to load booking %d: %w", id, err)
	}
	if booking.Status != models.BookingStatusActive {
		return &InvalidTransitionError{BookingID: id, From: booking.Status, To: models.BookingStatusConverted}
	}

	res := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, models.BookingStatusActive).
		Updates(map[string]interface{}{
			"status":     models.BookingStatusConverted,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to convert booking %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &InvalidTransitionError{BookingID: id, From: booking.Status, To: models.BookingStatusConverted, Reason: "state changed concurrently"}
	}
	return nil
}

// SweepExpiredBookings completes active bookings whose end time passed more
/// than CompletionGrace ago. Idempotent: already-completed bookings are not
// matched, so a second run is a no-op. Returns how many rows changed.
func (s *BookingService) SweepExpiredBookings() (int, error) {
	cutoff := time.Now().Add(-CompletionGrace)

	res := s.db.Model(&models.Booking{}).
		Where("status = ? AND end_time < ?", models.BookingStatusActive, cutoff).
		Updates(map[string]interface{}{
			"status":     models.BookingStatusCompleted,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to sweep expired bookings: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		utils.InfoLogger.Printf("Swept %d expired bookings", res.RowsAffected)
	}
	return int(res.RowsAffected), nil
}

// SearchBookings finds bookings by client name fragment and/or trailing
// phone digits. At least 4 digits are required for a phone search so the
// endpoint stays usable without exposing full numbers.
func (s *BookingService) SearchBookings(name, phone string) ([]models.Booking, error) {
	if name == "" && phone == "" {
		return nil, &ValidationError{Field: "query", Reason: "name or phone is required"}
	}

	q := s.db.Preload("Table").Order("start_time DESC")
	if name != "" {
		q = q.Where("client_name LIKE ?", "%"+name+"%")
	}
	if phone != "" {
		digits := utils.NormalizePhone(phone)
		if len(digits) < 4 {
			return nil, &ValidationError{Field: "phone", Reason: "at least 4 digits required"}
		}
		q = q.Where("client_phone LIKE ?", "%"+digits)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("booking search failed: %w", err)
	}
	return bookings, nil
}

// ListBookings returns bookings filtered by status and/or a date range.
func (s *BookingService) ListBookings(status string, from, to *time.Time) ([]models.Booking, error) {
	q := s.db.Preload("Table").Order("start_time ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if from != nil {
		q = q.Where("start_time >= ?", *from)
	}
	if to != nil {
		q = q.Where("end_time <= ?", *to)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetBooking loads one booking with its table.
func (s *BookingService) GetBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Preload("Table").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: id}
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", id, err)
	}
	return &booking, nil
}
