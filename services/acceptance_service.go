package services

import (
	"context"
	"time"

	"bidding-service/models"
	awspkg "bidding-service/pkg/aws"
	"bidding-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcceptanceService finalizes an auction.
type AcceptanceService interface {
	AcceptBid(ctx context.Context, req *models.AcceptBidRequest) (*models.Order, error)
}

type acceptanceServiceImpl struct {
	store   repository.Store
	events  *EventPublisher
	metrics awspkg.MetricsRecorder
	logger  *zap.Logger
}

// NewAcceptanceService creates a new AcceptanceService.
func NewAcceptanceService(
	store repository.Store,
	events *EventPublisher,
	metrics awspkg.MetricsRecorder,
	logger *zap.Logger,
) AcceptanceService {
	return &acceptanceServiceImpl{store: store, events: events, metrics: metrics, logger: logger}
}

// AcceptBid assigns the order to the bid and marks the bid ACCEPTED in one
// transaction. The session stays as it is and other bids remain OPEN.
// Accepting the bid an order is already assigned to is a no-op.
func (s *acceptanceServiceImpl) AcceptBid(ctx context.Context, req *models.AcceptBidRequest) (*models.Order, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, NewValidationError("invalid order_id")
	}
	bidID, err := uuid.Parse(req.BidID)
	if err != nil {
		return nil, NewValidationError("invalid bid_id")
	}

	var (
		order   *models.Order
		bid     *models.Bid
		changed bool
	)
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return lookupError(err, "order not found")
		}
		b, err := tx.Bids().FindByID(ctx, bidID)
		if err != nil {
			return lookupError(err, "bid not found")
		}
		session, err := tx.Sessions().FindByID(ctx, b.SessionID)
		if err != nil {
			return lookupError(err, "bidding session not found")
		}
		if session.OrderID != o.ID {
			return NewValidationError("bid does not belong to this order")
		}

		order, bid = o, b
		switch o.Status {
		case models.OrderStatusAssigned:
			if o.AcceptedBidID != nil && *o.AcceptedBidID == b.ID {
				return nil
			}
			return NewConflictError("order is already assigned")
		case models.OrderStatusCancelled:
			return NewConflictError("order is cancelled")
		}

		o.Status = models.OrderStatusAssigned
		o.AcceptedBidID = &b.ID
		if err := tx.Orders().Update(ctx, o); err != nil {
			return NewStoreError("assign order", err)
		}
		b.Status = models.BidStatusAccepted
		if err := tx.Bids().Update(ctx, b); err != nil {
			return NewStoreError("accept bid", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "accept bid", err)
	}
	if !changed {
		return order, nil
	}

	s.logger.Info("Bid accepted",
		zap.String("order_id", order.ID.String()),
		zap.String("bid_id", bid.ID.String()),
		zap.Int64("amount", bid.Amount),
	)
	recordCount(ctx, s.metrics, s.logger, awspkg.MetricBidsAccepted)
	s.events.Publish(ctx, models.BiddingEvent{
		EventType: models.EventBidAccepted,
		OrderID:   order.ID.String(),
		SessionID: bid.SessionID.String(),
		BidID:     bid.ID.String(),
		OwnerID:   bid.OwnerID.String(),
		Amount:    bid.Amount,
		Status:    order.Status,
		Timestamp: time.Now().UTC(),
	})
	return order, nil
}
