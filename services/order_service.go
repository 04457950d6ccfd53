package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

// OrderService handles order creation (walk-in or from a booking), item
// management and closing with receipt generation.
type OrderService struct {
	db       *gorm.DB
	bookings *BookingService
}

func NewOrderService(db *gorm.DB, bookings *BookingService) *OrderService {
	return &OrderService{db: db, bookings: bookings}
}

type OrderItemInput struct {
	DishID   uint   `json:"dish_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

type CreateOrderInput struct {
	TableID   uint             `json:"table_id"`
	WaiterID  *uint            `json:"waiter_id,omitempty"`
	BookingID *uint            `json:"booking_id,omitempty"`
	Comment   string           `json:"comment"`
	Items     []OrderItemInput `json:"items"`
}

// CreateOrder opens an order on a table. When a booking is referenced the
// booking is converted in the same transaction, so an order can never
// point at a booking that something else already cancelled or completed.
func (s *OrderService) CreateOrder(in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "at least one item is required"}
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, in.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "table", ID: in.TableID}
			}
			return fmt.Errorf("failed to load table %d: %w", in.TableID, err)
		}

		if in.BookingID != nil {
			var booking models.Booking
			if err := tx.First(&booking, *in.BookingID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Resource: "booking", ID: *in.BookingID}
				}
				return fmt.Errorf("failed to load booking %d: %w", *in.BookingID, err)
			}
			if booking.TableID != in.TableID {
				return &ValidationError{Field: "booking_id", Reason: "booking belongs to another table"}
			}
			if err := s.bookings.ConvertBooking(tx, *in.BookingID); err != nil {
				return err
			}
		}

		now := time.Now()
		order = &models.Order{
			TableID:   in.TableID,
			WaiterID:  in.WaiterID,
			BookingID: in.BookingID,
			Status:    models.OrderStatusOpen,
			IsWalkIn:  in.BookingID == nil,
			Comment:   in.Comment,
			ShiftDate: now.Truncate(24 * time.Hour),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		total, err := s.appendItems(tx, order.ID, in.Items)
		if err != nil {
			return err
		}

		order.TotalPrice = total
		if err := tx.Model(order).Update("total_price", total).Error; err != nil {
			return fmt.Errorf("failed to update order total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order %d created: table=%d items=%d total=%.2f",
		order.ID, order.TableID, len(in.Items), order.TotalPrice)
	return order, nil
}

// appendItems inserts items at current dish prices and returns their sum.
func (s *OrderService) appendItems(tx *gorm.DB, orderID uint, items []OrderItemInput) (float64, error) {
	var total float64
	for _, item := range items {
		if item.Quantity <= 0 {
			return 0, &ValidationError{Field: "items", Reason: "quantity must be positive"}
		}

		var dish models.Dish
		if err := tx.First(&dish, item.DishID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, &NotFoundError{Resource: "dish", ID: item.DishID}
			}
			return 0, fmt.Errorf("failed to load dish %d: %w", item.DishID, err)
		}
		if dish.IsDeleted || !dish.IsAvailable {
			return 0, &ValidationError{Field: "items", Reason: fmt.Sprintf("dish %q is not available", dish.Name)}
		}

		now := time.Now()
		orderItem := models.OrderItem{
			OrderID:   orderID,
			DishID:    dish.ID,
			Quantity:  item.Quantity,
			Price:     dish.Price,
			Notes:     item.Notes,
			Status:    "ordered",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&orderItem).Error; err != nil {
			return 0, fmt.Errorf("failed to insert order item: %w", err)
		}
		total += orderItem.Subtotal()
	}
	return total, nil
}

// AddItems appends dishes to an open order and bumps the total.
func (s *OrderService) AddItems(orderID uint, items []OrderItemInput) (*models.Order, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "at least one item is required"}
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", ID: orderID}
			}
			return fmt.Errorf("failed to load order %d: %w", orderID, err)
		}
		if order.Status == models.OrderStatusClosed || order.Status == models.OrderStatusCancelled {
			return &ValidationError{Field: "order_id", Reason: "order is already closed"}
		}

		added, err := s.appendItems(tx, order.ID, items)
		if err != nil {
			return err
		}

		order.TotalPrice += added
		order.UpdatedAt = time.Now()
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"total_price": order.TotalPrice,
			"updated_at":  order.UpdatedAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to update order total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// orderTransitions lists the allowed status moves for an order.
var orderTransitions = map[string][]string{
	models.OrderStatusOpen:    {models.OrderStatusCooking, models.OrderStatusCancelled, models.OrderStatusClosed},
	models.OrderStatusCooking: {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:   {models.OrderStatusClosed},
}

// UpdateStatus moves an order along the kitchen flow.
func (s *OrderService) UpdateStatus(orderID uint, status string) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: orderID}
		}
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}

	allowed := false
	for _, next := range orderTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("cannot move order from %s to %s", order.Status, status)}
	}

	order.Status = status
	order.UpdatedAt = time.Now()
	if err := s.db.Model(&order).Updates(map[string]interface{}{
		"status":     order.Status,
		"updated_at": order.UpdatedAt,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", orderID, err)
	}
	return &order, nil
}

// CloseOrder finalizes an order and snapshots it into a printable receipt.
// The receipt copies dish names and prices so later menu edits cannot
// change what was printed.
func (s *OrderService) CloseOrder(orderID uint) (*models.Receipt, error) {
	var receipt *models.Receipt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("OrderItems.Dish").Preload("Table").Preload("Waiter").
			First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", ID: orderID}
			}
			return fmt.Errorf("failed to load order %d: %w", orderID, err)
		}

		if order.Status == models.OrderStatusClosed || order.Status == models.OrderStatusCancelled {
			return &ValidationError{Field: "order_id", Reason: "order is already closed"}
		}

		now := time.Now()
		receipt = &models.Receipt{
			OrderID:       order.ID,
			ReceiptNumber: fmt.Sprintf("R-%s-%06d", now.Format("20060102"), order.ID),
			Total:         order.TotalPrice,
			TableLocation: order.Table.Location,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if order.Waiter != nil {
			receipt.WaiterName = order.Waiter.Name
		}
		if err := tx.Create(receipt).Error; err != nil {
			return fmt.Errorf("failed to insert receipt: %w", err)
		}

		for _, item := range order.OrderItems {
			receiptItem := models.ReceiptItem{
				ReceiptID: receipt.ID,
				DishID:    item.DishID,
				DishName:  item.Dish.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.Price,
				Subtotal:  item.Subtotal(),
				Notes:     item.Notes,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&receiptItem).Error; err != nil {
				return fmt.Errorf("failed to insert receipt item: %w", err)
			}
			receipt.ReceiptItems = append(receipt.ReceiptItems, receiptItem)
		}

		if err := tx.Model(&order).Updates(map[string]interface{}{
			"status":     models.OrderStatusClosed,
			"closed_at":  now,
			"updated_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to close order %d: %w", orderID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order %d closed, receipt %s total=%.2f", orderID, receipt.ReceiptNumber, receipt.Total)
	return receipt, nil
}
