package models

import "time"

// Event type constants published to SNS.
const (
	EventAuctionLaunched = "auction_launched"
	EventAuctionStopped  = "auction_stopped"
	EventAuctionReposted = "auction_reposted"
	EventBidPlaced       = "bid_placed"
	EventBidAccepted     = "bid_accepted"
	EventOrderCancelled  = "order_cancelled"
	EventOrderReposted   = "order_reposted"
)

// BiddingEvent is the envelope published for every bidding state change.
type BiddingEvent struct {
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	BidID     string    `json:"bid_id,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
