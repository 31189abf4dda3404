package services

import (
	"context"
	"errors"
	"time"

	"bidding-service/models"
	awspkg "bidding-service/pkg/aws"
	"bidding-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BidService records truck owner offers and answers best-price queries.
type BidService interface {
	PlaceBid(ctx context.Context, req *models.PlaceBidRequest) (*models.Bid, error)
	ListBids(ctx context.Context, filter models.BidFilter) ([]models.BidView, error)
	LowestBid(ctx context.Context, sessionID uuid.UUID) (*models.LowestBidResponse, error)
	LowestBidForOrder(ctx context.Context, orderID uuid.UUID) (*models.LowestBidResponse, error)
}

type bidServiceImpl struct {
	store    repository.Store
	events   *EventPublisher
	metrics  awspkg.MetricsRecorder
	settings Settings
	logger   *zap.Logger
}

// NewBidService creates a new BidService.
func NewBidService(
	store repository.Store,
	events *EventPublisher,
	metrics awspkg.MetricsRecorder,
	settings Settings,
	logger *zap.Logger,
) BidService {
	return &bidServiceImpl{
		store:    store,
		events:   events,
		metrics:  metrics,
		settings: settings,
		logger:   logger,
	}
}

// PlaceBid appends an OPEN bid to the order's session, opening the session
// first when the order has none. Nothing is written unless every step
// succeeds.
func (s *bidServiceImpl) PlaceBid(ctx context.Context, req *models.PlaceBidRequest) (*models.Bid, error) {
	if req.BidAmount <= 0 {
		return nil, NewValidationError("bid amount must be a positive integer")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	orderID, err := uuid.Parse(req.LoadID)
	if err != nil {
		return nil, NewValidationError("invalid load_id")
	}

	owner, err := s.store.Partners().FindOwnerByPhone(ctx, req.Phone)
	if err != nil {
		return nil, finish(s.logger, "place bid", lookupError(err, "truck owner not found"))
	}
	if !owner.CanBid() {
		return nil, NewForbiddenError("truck owner is not verified for bidding")
	}

	now := s.settings.now()
	var bid *models.Bid
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return lookupError(err, "load not found")
		}
		if !order.IsOpen() {
			return NewConflictError("load is no longer open for bidding")
		}

		session, err := ensureSession(ctx, tx, order, req.BidAmount, now, s.settings.ImplicitSessionWindow)
		if err != nil {
			return NewStoreError("ensure session", err)
		}
		if !session.IsLive() {
			return NewConflictError("bidding has ended for this load")
		}
		if s.settings.EnforceExpiry && session.IsExpired(now) {
			return NewConflictError("bidding window has expired for this load")
		}

		candidate := &models.Bid{
			SessionID: session.ID,
			OwnerID:   owner.ID,
			Amount:    req.BidAmount,
			Status:    models.BidStatusOpen,
			Round:     session.Round,
		}
		if err := tx.Bids().Create(ctx, candidate); err != nil {
			return NewStoreError("insert bid", err)
		}
		bid = candidate
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "place bid", err)
	}

	s.logger.Info("Bid placed",
		zap.String("order_id", orderID.String()),
		zap.String("session_id", bid.SessionID.String()),
		zap.String("owner_id", owner.ID.String()),
		zap.Int64("amount", bid.Amount),
	)
	recordCount(ctx, s.metrics, s.logger, awspkg.MetricBidsPlaced)
	s.events.Publish(ctx, models.BiddingEvent{
		EventType: models.EventBidPlaced,
		OrderID:   orderID.String(),
		SessionID: bid.SessionID.String(),
		BidID:     bid.ID.String(),
		OwnerID:   owner.ID.String(),
		Amount:    bid.Amount,
		Status:    bid.Status,
		Timestamp: time.Now().UTC(),
	})
	return bid, nil
}

// ListBids returns bids joined with owner and order, cheapest first.
func (s *bidServiceImpl) ListBids(ctx context.Context, filter models.BidFilter) ([]models.BidView, error) {
	views, err := s.store.Bids().List(ctx, filter)
	if err != nil {
		return nil, finish(s.logger, "list bids", err)
	}
	if views == nil {
		views = []models.BidView{}
	}
	if !s.settings.RepostClearsBids {
		for i := range views {
			views[i].History = false
		}
	}
	return views, nil
}

func (s *bidServiceImpl) LowestBid(ctx context.Context, sessionID uuid.UUID) (*models.LowestBidResponse, error) {
	session, err := s.store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return nil, finish(s.logger, "lowest bid", lookupError(err, "bidding session not found"))
	}
	resp, err := s.lowestForSession(ctx, session)
	return resp, finish(s.logger, "lowest bid", err)
}

// LowestBidForOrder falls back to the order rate when no session exists.
func (s *bidServiceImpl) LowestBidForOrder(ctx context.Context, orderID uuid.UUID) (*models.LowestBidResponse, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, finish(s.logger, "lowest bid", lookupError(err, "order not found"))
	}
	session, err := s.store.Sessions().FindByOrderID(ctx, order.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.LowestBidResponse{Amount: order.Rate}, nil
	}
	if err != nil {
		return nil, finish(s.logger, "lowest bid", err)
	}
	resp, err := s.lowestForSession(ctx, session)
	return resp, finish(s.logger, "lowest bid", err)
}

func (s *bidServiceImpl) lowestForSession(ctx context.Context, session *models.BiddingSession) (*models.LowestBidResponse, error) {
	round := 0
	if s.settings.RepostClearsBids {
		round = session.Round
	}
	bid, err := s.store.Bids().LowestOpen(ctx, session.ID, round)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.LowestBidResponse{SessionID: session.ID, Amount: session.BasePrice}, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.LowestBidResponse{
		SessionID: session.ID,
		Amount:    bid.Amount,
		BidID:     &bid.ID,
		FromBids:  true,
	}, nil
}
