package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus constants.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusAssigned  = "ASSIGNED"
	OrderStatusCancelled = "CANCELLED"
)

// Order is a freight request awaiting assignment to a carrier.
type Order struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNo       string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_no"`
	CustomerName  string     `gorm:"type:varchar(255)" json:"customer_name"`
	FromLocation  string     `gorm:"type:varchar(255);not null" json:"from_location"`
	ToLocation    string     `gorm:"type:varchar(255);not null" json:"to_location"`
	Material      string     `gorm:"type:varchar(255)" json:"material"`
	Weight        float64    `json:"weight"`
	TruckSize     string     `gorm:"type:varchar(64)" json:"truck_size"`
	Rate          int64      `gorm:"not null;default:0" json:"rate"`
	Status        string     `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	AcceptedBidID *uuid.UUID `gorm:"type:uuid" json:"accepted_bid_id,omitempty"`
	CreatedByID   string     `gorm:"type:varchar(128)" json:"created_by_id"`
	OfficeName    string     `gorm:"type:varchar(128)" json:"office_name"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsOpen reports whether the order can still receive bids.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusPending
}

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	CustomerName string  `json:"customer_name"`
	FromLocation string  `json:"from_location" binding:"required" validate:"required"`
	ToLocation   string  `json:"to_location" binding:"required" validate:"required"`
	Material     string  `json:"material"`
	Weight       float64 `json:"weight" validate:"gte=0"`
	TruckSize    string  `json:"truck_size"`
	Rate         int64   `json:"rate" validate:"gte=0"`
}

// UpdateOrderRequest carries the descriptive fields staff may edit.
// Nil fields are left untouched.
type UpdateOrderRequest struct {
	CustomerName *string  `json:"customer_name"`
	FromLocation *string  `json:"from_location"`
	ToLocation   *string  `json:"to_location"`
	Material     *string  `json:"material"`
	Weight       *float64 `json:"weight" validate:"omitempty,gte=0"`
	TruckSize    *string  `json:"truck_size"`
	Rate         *int64   `json:"rate" validate:"omitempty,gte=0"`
}

// OrderFilter narrows ListOrders.
type OrderFilter struct {
	Status string
	Page   int
	Limit  int
}

// OrderListResponse is a page of orders.
type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}
