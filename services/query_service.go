package services

import (
	"context"

	"bidding-service/models"
	"bidding-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueryService builds the read models shown to truck owners and staff.
// Every call recomputes prices from the bid ledger.
type QueryService interface {
	GetOpenLoads(ctx context.Context) ([]models.Load, error)
	Board(ctx context.Context) (*models.AuctionBoard, error)
}

type queryServiceImpl struct {
	store    repository.Store
	settings Settings
	logger   *zap.Logger
}

// NewQueryService creates a new QueryService.
func NewQueryService(store repository.Store, settings Settings, logger *zap.Logger) QueryService {
	return &queryServiceImpl{store: store, settings: settings, logger: logger}
}

// GetOpenLoads lists every PENDING order priced at its lowest OPEN bid, the
// session base price when nobody has bid, or the order rate when no
// session exists.
func (s *queryServiceImpl) GetOpenLoads(ctx context.Context) ([]models.Load, error) {
	orders, err := s.store.Orders().FindByStatus(ctx, models.OrderStatusPending)
	if err != nil {
		return nil, finish(s.logger, "get loads", err)
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	sessions, err := s.store.Sessions().FindByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, finish(s.logger, "get loads", err)
	}
	sessionByOrder := make(map[uuid.UUID]models.BiddingSession, len(sessions))
	for _, sess := range sessions {
		sessionByOrder[sess.OrderID] = sess
	}

	lowest, err := s.lowestBySession(ctx, sessions)
	if err != nil {
		return nil, finish(s.logger, "get loads", err)
	}

	now := s.settings.now()
	loads := make([]models.Load, 0, len(orders))
	for _, o := range orders {
		load := models.Load{
			ID:        o.ID,
			OrderNo:   o.OrderNo,
			From:      o.FromLocation,
			To:        o.ToLocation,
			Amount:    o.Rate,
			Weight:    o.Weight,
			Type:      o.Material,
			TruckSize: o.TruckSize,
		}
		if sess, ok := sessionByOrder[o.ID]; ok {
			expired := sess.IsExpired(now)
			if expired && s.settings.EnforceExpiry {
				continue
			}
			sessionID := sess.ID
			endTime := sess.EndTime
			load.SessionID = &sessionID
			load.SessionStatus = sess.Status
			load.EndTime = &endTime
			load.Expired = expired
			load.Amount = sess.BasePrice
			if row, ok := lowest[sess.ID]; ok {
				load.Amount = row.Amount
				load.OpenBidCount = row.OpenBidCount
			}
		}
		load.Price = FormatPrice(load.Amount)
		loads = append(loads, load)
	}
	return loads, nil
}

// Board groups orders for the staff console: PENDING orders without an
// auction, LIVE sessions and ENDED sessions, most recently ending first.
func (s *queryServiceImpl) Board(ctx context.Context) (*models.AuctionBoard, error) {
	sessions, err := s.store.Sessions().FindAll(ctx)
	if err != nil {
		return nil, finish(s.logger, "auction board", err)
	}
	pending, err := s.store.Orders().FindByStatus(ctx, models.OrderStatusPending)
	if err != nil {
		return nil, finish(s.logger, "auction board", err)
	}

	orderIDs := make([]uuid.UUID, 0, len(sessions))
	withSession := make(map[uuid.UUID]bool, len(sessions))
	for _, sess := range sessions {
		orderIDs = append(orderIDs, sess.OrderID)
		withSession[sess.OrderID] = true
	}
	orders, err := s.store.Orders().FindByIDs(ctx, orderIDs)
	if err != nil {
		return nil, finish(s.logger, "auction board", err)
	}
	orderByID := make(map[uuid.UUID]models.Order, len(orders))
	for _, o := range orders {
		orderByID[o.ID] = o
	}

	lowest, err := s.lowestBySession(ctx, sessions)
	if err != nil {
		return nil, finish(s.logger, "auction board", err)
	}

	now := s.settings.now()
	board := &models.AuctionBoard{
		Available: []models.Order{},
		Live:      []models.AuctionSummary{},
		Ended:     []models.AuctionSummary{},
	}
	for _, o := range pending {
		if !withSession[o.ID] {
			board.Available = append(board.Available, o)
		}
	}
	for _, sess := range sessions {
		summary := models.AuctionSummary{
			Session: sess,
			Order:   orderByID[sess.OrderID],
			Lowest:  sess.BasePrice,
			Expired: sess.IsExpired(now),
		}
		if row, ok := lowest[sess.ID]; ok {
			summary.Lowest = row.Amount
			summary.OpenBidCount = row.OpenBidCount
		}
		if sess.IsLive() {
			board.Live = append(board.Live, summary)
		} else {
			board.Ended = append(board.Ended, summary)
		}
	}
	return board, nil
}

func (s *queryServiceImpl) lowestBySession(ctx context.Context, sessions []models.BiddingSession) (map[uuid.UUID]models.LowestBidRow, error) {
	ids := make([]uuid.UUID, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}
	rows, err := s.store.Bids().LowestBySessions(ctx, ids, s.settings.RepostClearsBids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.LowestBidRow, len(rows))
	for _, r := range rows {
		out[r.SessionID] = r
	}
	return out, nil
}
