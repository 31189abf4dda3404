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

// SessionService manages the auction lifecycle of an order.
type SessionService interface {
	Launch(ctx context.Context, req *models.LaunchAuctionRequest) (*models.BiddingSession, error)
	Stop(ctx context.Context, sessionID uuid.UUID) (*models.BiddingSession, error)
	Repost(ctx context.Context, sessionID uuid.UUID) (*models.BiddingSession, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*models.BiddingSession, error)
}

type sessionServiceImpl struct {
	store    repository.Store
	events   *EventPublisher
	metrics  awspkg.MetricsRecorder
	settings Settings
	logger   *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	store repository.Store,
	events *EventPublisher,
	metrics awspkg.MetricsRecorder,
	settings Settings,
	logger *zap.Logger,
) SessionService {
	return &sessionServiceImpl{
		store:    store,
		events:   events,
		metrics:  metrics,
		settings: settings,
		logger:   logger,
	}
}

// Launch opens an auction for a PENDING order that has no session yet.
// A zero base price falls back to the order's rate.
func (s *sessionServiceImpl) Launch(ctx context.Context, req *models.LaunchAuctionRequest) (*models.BiddingSession, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, NewValidationError("invalid order_id")
	}

	now := s.settings.now()
	var session *models.BiddingSession
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return lookupError(err, "order not found")
		}
		if !order.IsOpen() {
			return NewConflictError("order is not open for bidding")
		}

		basePrice := req.BasePrice
		if basePrice == 0 {
			basePrice = order.Rate
		}
		end := now.Add(time.Duration(req.DurationMinutes) * time.Minute)
		if !end.After(now) {
			return NewValidationError("duration_minutes is out of range")
		}
		candidate := &models.BiddingSession{
			OrderID:   order.ID,
			StartTime: now,
			EndTime:   end,
			BasePrice: basePrice,
			Status:    models.SessionStatusLive,
			Round:     1,
		}
		created, err := tx.Sessions().CreateIfAbsent(ctx, candidate)
		if err != nil {
			return NewStoreError("create session", err)
		}
		if !created {
			return NewConflictError("a bidding session already exists for this order")
		}
		session = candidate
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "launch auction", err)
	}

	s.logger.Info("Auction launched",
		zap.String("order_id", session.OrderID.String()),
		zap.String("session_id", session.ID.String()),
		zap.Time("end_time", session.EndTime),
	)
	recordCount(ctx, s.metrics, s.logger, awspkg.MetricAuctionsLaunched)
	s.events.Publish(ctx, sessionEvent(models.EventAuctionLaunched, session))
	return session, nil
}

// Stop ends the session. Stopping an ENDED session re-applies the same state.
func (s *sessionServiceImpl) Stop(ctx context.Context, sessionID uuid.UUID) (*models.BiddingSession, error) {
	session, err := s.store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return nil, finish(s.logger, "stop auction", lookupError(err, "bidding session not found"))
	}

	session.Status = models.SessionStatusEnded
	if err := s.store.Sessions().Update(ctx, session); err != nil {
		return nil, finish(s.logger, "stop auction", err)
	}

	s.logger.Info("Auction stopped", zap.String("session_id", session.ID.String()))
	s.events.Publish(ctx, sessionEvent(models.EventAuctionStopped, session))
	return session, nil
}

// Repost puts the session back on the board for a fresh window and reopens
// its order. Earlier bids are kept.
func (s *sessionServiceImpl) Repost(ctx context.Context, sessionID uuid.UUID) (*models.BiddingSession, error) {
	now := s.settings.now()
	var session *models.BiddingSession
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		sess, err := tx.Sessions().FindByID(ctx, sessionID)
		if err != nil {
			return lookupError(err, "bidding session not found")
		}
		order, err := tx.Orders().FindByIDForUpdate(ctx, sess.OrderID)
		if err != nil {
			return lookupError(err, "order not found")
		}

		if err := reopenOrder(ctx, tx, order); err != nil {
			return err
		}
		repostSession(sess, now, s.settings.RepostWindow)
		if err := tx.Sessions().Update(ctx, sess); err != nil {
			return NewStoreError("repost session", err)
		}
		session = sess
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "repost auction", err)
	}

	s.logger.Info("Auction reposted",
		zap.String("session_id", session.ID.String()),
		zap.Int("round", session.Round),
	)
	s.events.Publish(ctx, sessionEvent(models.EventAuctionReposted, session))
	return session, nil
}

func (s *sessionServiceImpl) Get(ctx context.Context, sessionID uuid.UUID) (*models.BiddingSession, error) {
	session, err := s.store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return nil, finish(s.logger, "get auction", lookupError(err, "bidding session not found"))
	}
	return session, nil
}

// ensureSession returns the order's session, opening one with basePrice set
// to the first bid when none exists. It must run inside the caller's
// transaction; concurrent first bids converge on a single row.
func ensureSession(ctx context.Context, tx repository.Store, order *models.Order, initialAmount int64, now time.Time, window time.Duration) (*models.BiddingSession, error) {
	session, err := tx.Sessions().FindByOrderID(ctx, order.ID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session = &models.BiddingSession{
		OrderID:   order.ID,
		StartTime: now,
		EndTime:   now.Add(window),
		BasePrice: initialAmount,
		Status:    models.SessionStatusLive,
		Round:     1,
	}
	created, err := tx.Sessions().CreateIfAbsent(ctx, session)
	if err != nil {
		return nil, err
	}
	if !created {
		return tx.Sessions().FindByOrderID(ctx, order.ID)
	}
	return session, nil
}

func repostSession(session *models.BiddingSession, now time.Time, window time.Duration) {
	session.Status = models.SessionStatusLive
	session.StartTime = now
	session.EndTime = now.Add(window)
	session.Round++
}

// reopenOrder puts the order back to PENDING. A previously accepted bid
// returns to OPEN so it competes again and cannot sit next to a new winner.
func reopenOrder(ctx context.Context, tx repository.Store, order *models.Order) error {
	if order.AcceptedBidID != nil {
		bid, err := tx.Bids().FindByID(ctx, *order.AcceptedBidID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return NewStoreError("load accepted bid", err)
		case bid.Status == models.BidStatusAccepted:
			bid.Status = models.BidStatusOpen
			if err := tx.Bids().Update(ctx, bid); err != nil {
				return NewStoreError("release accepted bid", err)
			}
		}
	}
	order.Status = models.OrderStatusPending
	order.AcceptedBidID = nil
	if err := tx.Orders().Update(ctx, order); err != nil {
		return NewStoreError("reopen order", err)
	}
	return nil
}

func sessionEvent(eventType string, session *models.BiddingSession) models.BiddingEvent {
	return models.BiddingEvent{
		EventType: eventType,
		OrderID:   session.OrderID.String(),
		SessionID: session.ID.String(),
		Amount:    session.BasePrice,
		Status:    session.Status,
		Timestamp: time.Now().UTC(),
	}
}
