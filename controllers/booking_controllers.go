package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/hub"
	"github.com/restokorp/restaurant-app/metrics"
	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/services"
	"github.com/restokorp/restaurant-app/utils"
)

type BookingController struct {
	DB       *gorm.DB
	Bookings *services.BookingService
}

func NewBookingController(db *gorm.DB, bookings *services.BookingService) *BookingController {
	return &BookingController{DB: db, Bookings: bookings}
}

// bookingResponse hides the full phone number from non-admin callers.
type bookingResponse struct {
	ID            uint          `json:"id"`
	TableID       uint          `json:"table_id"`
	Table         *models.Table `json:"table,omitempty"`
	ClientName    string        `json:"client_name"`
	ClientPhone   string        `json:"client_phone,omitempty"`
	PhoneLastFour string        `json:"phone_last_four"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	Comment       string        `json:"comment,omitempty"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

func toBookingResponse(b *models.Booking, includePhone bool) bookingResponse {
	resp := bookingResponse{
		ID:            b.ID,
		TableID:       b.TableID,
		ClientName:    b.ClientName,
		PhoneLastFour: utils.PhoneLastDigits(b.ClientPhone, 4),
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Comment:       b.Comment,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	}
	if includePhone {
		resp.ClientPhone = b.ClientPhone
	}
	if b.Table.ID != 0 {
		table := b.Table
		resp.Table = &table
	}
	return resp
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == "admin"
}

// CreateBooking -> reserve a table for a time window
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req struct {
		TableID     uint      `json:"table_id" binding:"required"`
		ClientName  string    `json:"client_name" binding:"required"`
		ClientPhone string    `json:"client_phone" binding:"required"`
		StartTime   time.Time `json:"start_time" binding:"required"`
		EndTime     time.Time `json:"end_time" binding:"required"`
		Comment     string    `json:"comment"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	booking, err := bc.Bookings.CreateBooking(services.CreateBookingInput{
		TableID:     req.TableID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Comment:     req.Comment,
	})
	if err != nil {
		var conflictErr *services.ConflictError
		if errors.As(err, &conflictErr) {
			metrics.IncBookingConflict()
		}
		respondServiceError(c, err)
		return
	}

	metrics.IncBookingCreated()
	// broadcast reaches every connected client, so never the full phone
	hub.BroadcastMessage(hub.Message{
		Event: hub.EventBookingCreate,
		Data:  toBookingResponse(booking, false),
	})

	utils.RespondJSON(c, http.StatusCreated, "Booking created", toBookingResponse(booking, isAdmin(c)))
}

// CheckAvailability -> is the table free for a candidate window
func (bc *BookingController) CheckAvailability(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid start parameter, expected RFC3339"))
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid end parameter, expected RFC3339"))
		return
	}

	available, err := bc.Bookings.IsTableAvailable(uint(tableID), services.Interval{Start: start, End: end})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Availability checked", gin.H{
		"table_id":  tableID,
		"available": available,
	})
}

// GetBooking -> booking detail
func (bc *BookingController) GetBooking(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("booking_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid booking id"))
		return
	}

	booking, err := bc.Bookings.GetBooking(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking detail", toBookingResponse(booking, isAdmin(c)))
}

// ListBookings -> bookings filtered by status and date range
func (bc *BookingController) ListBookings(c *gin.Context) {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid from parameter, expected RFC3339"))
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid to parameter, expected RFC3339"))
			return
		}
		to = &t
	}

	bookings, err := bc.Bookings.ListBookings(c.Query("status"), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	admin := isAdmin(c)
	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i], admin))
	}
	utils.RespondJSON(c, http.StatusOK, "List of bookings", resp)
}

// SearchBookings -> lookup by client name and/or trailing phone digits
func (bc *BookingController) SearchBookings(c *gin.Context) {
	bookings, err := bc.Bookings.SearchBookings(c.Query("name"), c.Query("phone"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	admin := isAdmin(c)
	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i], admin))
	}
	utils.RespondJSON(c, http.StatusOK, "Search results", resp)
}

// UpdateBooking -> re-slot an active booking or change its comment
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("booking_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid booking id"))
		return
	}

	var req struct {
		StartTime *time.Time `json:"start_time"`
		EndTime   *time.Time `json:"end_time"`
		Comment   *string    `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	booking, err := bc.Bookings.UpdateBooking(uint(id), services.UpdateBookingInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Comment:   req.Comment,
	})
	if err != nil {
		var conflictErr *services.ConflictError
		if errors.As(err, &conflictErr) {
			metrics.IncBookingConflict()
		}
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Booking updated", toBookingResponse(booking, isAdmin(c)))
}

// CancelBooking -> soft cancel, only before the start time
func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("booking_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid booking id"))
		return
	}

	booking, err := bc.Bookings.CancelBooking(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hub.BroadcastMessage(hub.Message{
		Event: hub.EventBookingCancel,
		Data:  toBookingResponse(booking, false),
	})

	utils.RespondJSON(c, http.StatusOK, "Booking cancelled", toBookingResponse(booking, isAdmin(c)))
}
