package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus constants.
const (
	SessionStatusLive  = "LIVE"
	SessionStatusEnded = "ENDED"
)

// BidStatus constants.
const (
	BidStatusOpen     = "OPEN"
	BidStatusAccepted = "ACCEPTED"
)

// BiddingSession is a time-boxed auction bound to exactly one order.
type BiddingSession struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	BasePrice int64     `gorm:"not null;default:0" json:"base_price"`
	Status    string    `gorm:"type:varchar(16);not null;default:'LIVE';index" json:"status"`
	Round     int       `gorm:"not null;default:1" json:"round"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsExpired reports whether the session window has closed at now.
// Expiry is informational unless the service is configured to enforce it.
func (s *BiddingSession) IsExpired(now time.Time) bool {
	return now.After(s.EndTime)
}

// IsLive reports whether the session accepts bids.
func (s *BiddingSession) IsLive() bool {
	return s.Status == SessionStatusLive
}

// Bid is one price offer from a truck owner. Rows are never deleted.
type Bid struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Status    string    `gorm:"type:varchar(16);not null;default:'OPEN'" json:"status"`
	Round     int       `gorm:"not null;default:1" json:"round"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// LaunchAuctionRequest is the payload for LAUNCH_AUCTION.
type LaunchAuctionRequest struct {
	OrderID         string `json:"order_id" binding:"required" validate:"required,uuid"`
	DurationMinutes int    `json:"duration_minutes" binding:"required" validate:"required,gt=0,max=525600"`
	BasePrice       int64  `json:"base_price" validate:"gte=0"`
}

// PlaceBidRequest is the payload for PLACE_BID.
type PlaceBidRequest struct {
	Phone     string `json:"phone" binding:"required" validate:"required"`
	LoadID    string `json:"load_id" binding:"required" validate:"required,uuid"`
	BidAmount int64  `json:"bid_amount" validate:"gt=0"`
}

// AcceptBidRequest is the payload for ACCEPT_BID.
type AcceptBidRequest struct {
	OrderID string `json:"order_id" binding:"required" validate:"required,uuid"`
	BidID   string `json:"bid_id" binding:"required" validate:"required,uuid"`
}

// BidFilter narrows ListBids. Zero values mean no filter.
type BidFilter struct {
	SessionID uuid.UUID
	OrderID   uuid.UUID
}

// BidView is a bid joined with its owner and order for staff screens.
type BidView struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	OrderID      uuid.UUID `json:"order_id"`
	OrderNo      string    `json:"order_no"`
	FromLocation string    `json:"from_location"`
	ToLocation   string    `json:"to_location"`
	OwnerID      uuid.UUID `json:"owner_id"`
	OwnerName    string    `json:"owner_name"`
	OwnerPhone   string    `json:"owner_phone"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
	Round        int       `json:"round"`
	History      bool      `json:"history"`
	CreatedAt    time.Time `json:"created_at"`
}

// LowestBidResponse is the current best price of a session.
type LowestBidResponse struct {
	SessionID uuid.UUID  `json:"session_id"`
	Amount    int64      `json:"amount"`
	BidID     *uuid.UUID `json:"bid_id,omitempty"`
	FromBids  bool       `json:"from_bids"`
}

// Load is one entry of the open-loads feed.
type Load struct {
	ID            uuid.UUID  `json:"id"`
	OrderNo       string     `json:"order_no"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	Price         string     `json:"price"`
	Amount        int64      `json:"amount"`
	Weight        float64    `json:"weight"`
	Type          string     `json:"type"`
	TruckSize     string     `json:"truck_size"`
	SessionID     *uuid.UUID `json:"session_id,omitempty"`
	SessionStatus string     `json:"session_status,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	OpenBidCount  int64      `json:"open_bid_count"`
	Expired       bool       `json:"expired"`
}

// AuctionSummary is a session row on the staff auction board.
type AuctionSummary struct {
	Session      BiddingSession `json:"session"`
	Order        Order          `json:"order"`
	OpenBidCount int64          `json:"open_bid_count"`
	Lowest       int64          `json:"lowest"`
	Expired      bool           `json:"expired"`
}

// AuctionBoard groups orders and sessions for the staff console.
type AuctionBoard struct {
	Available []Order          `json:"available"`
	Live      []AuctionSummary `json:"live"`
	Ended     []AuctionSummary `json:"ended"`
}

// LowestBidRow is one row of the per-session lowest-bid aggregate.
type LowestBidRow struct {
	SessionID    uuid.UUID
	BidID        uuid.UUID
	Amount       int64
	OpenBidCount int64
}
