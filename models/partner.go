package models

import (
	"time"

	"github.com/google/uuid"
)

// Verification status constants shared by owners and trucks.
const (
	VerificationNew      = "NEW"
	VerificationPending  = "PENDING"
	VerificationApproved = "APPROVED"
	VerificationRejected = "REJECTED"
)

// Verification decisions accepted by the verify endpoints.
const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

// TruckOwner is a carrier partner that bids on loads.
type TruckOwner struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Phone     string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"phone"`
	Status    string    `gorm:"type:varchar(16);not null;default:'PENDING'" json:"status"`
	Trucks    []Truck   `gorm:"foreignKey:OwnerID" json:"trucks,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CanBid reports whether the owner passed verification.
func (o *TruckOwner) CanBid() bool {
	return o.Status == VerificationApproved
}

// Truck is a vehicle registered by a truck owner.
type Truck struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Number    string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"number"`
	Capacity  float64   `json:"capacity"`
	Status    string    `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// RegisterOwnerRequest is the mobile registration payload.
type RegisterOwnerRequest struct {
	Phone string `json:"phone" binding:"required" validate:"required"`
	Name  string `json:"name" binding:"required" validate:"required"`
}

// AddTruckRequest registers a truck for the calling owner.
type AddTruckRequest struct {
	Phone    string  `json:"phone" binding:"required" validate:"required"`
	Number   string  `json:"number" binding:"required" validate:"required"`
	Capacity float64 `json:"capacity" validate:"gte=0"`
}

// VerifyRequest carries a verification decision.
type VerifyRequest struct {
	Decision string `json:"decision" binding:"required" validate:"required,oneof=APPROVE REJECT"`
}

// PendingTruck is a truck awaiting verification with its owner.
type PendingTruck struct {
	Truck Truck      `json:"truck"`
	Owner TruckOwner `json:"owner"`
}

// SendOTPRequest starts a mobile login.
type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required" validate:"required,min=10,max=15"`
}

// VerifyOTPRequest completes a mobile login.
type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required" validate:"required"`
	OTP   string `json:"otp" binding:"required" validate:"required,len=4,numeric"`
}

// LoginResponse is returned by a successful OTP verification.
type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	Owner     TruckOwner `json:"owner"`
}
