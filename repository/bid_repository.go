package repository

import (
	"context"

	"bidding-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BidRepository defines data-access operations for bids.
type BidRepository interface {
	Create(ctx context.Context, bid *models.Bid) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	Update(ctx context.Context, bid *models.Bid) error
	// List returns bids joined with owner and order, cheapest first.
	List(ctx context.Context, filter models.BidFilter) ([]models.BidView, error)
	// LowestOpen returns the cheapest OPEN bid of a session, earliest first on
	// ties. A positive round restricts the search to that round.
	LowestOpen(ctx context.Context, sessionID uuid.UUID, round int) (*models.Bid, error)
	// LowestBySessions computes LowestOpen for many sessions in one query.
	// Sessions without OPEN bids are absent from the result.
	LowestBySessions(ctx context.Context, sessionIDs []uuid.UUID, currentRoundOnly bool) ([]models.LowestBidRow, error)
}

// GormBidRepository implements BidRepository using GORM.
type GormBidRepository struct {
	db *gorm.DB
}

// NewGormBidRepository creates a new GormBidRepository.
func NewGormBidRepository(db *gorm.DB) BidRepository {
	return &GormBidRepository{db: db}
}

func (r *GormBidRepository) Create(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

func (r *GormBidRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var b models.Bid
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBidRepository) Update(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Save(bid).Error
}

func (r *GormBidRepository) List(ctx context.Context, filter models.BidFilter) ([]models.BidView, error) {
	var views []models.BidView

	query := r.db.WithContext(ctx).
		Table("bids AS b").
		Select(`b.id, b.session_id, s.order_id, o.order_no, o.from_location, o.to_location,
			b.owner_id, t.name AS owner_name, t.phone AS owner_phone,
			b.amount, b.status, b.round, b.round < s.round AS history, b.created_at`).
		Joins("JOIN bidding_sessions s ON s.id = b.session_id").
		Joins("JOIN orders o ON o.id = s.order_id").
		Joins("JOIN truck_owners t ON t.id = b.owner_id")
	if filter.SessionID != uuid.Nil {
		query = query.Where("b.session_id = ?", filter.SessionID)
	}
	if filter.OrderID != uuid.Nil {
		query = query.Where("s.order_id = ?", filter.OrderID)
	}
	if err := query.
		Order("b.amount ASC").
		Order("b.created_at ASC").
		Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

func (r *GormBidRepository) LowestOpen(ctx context.Context, sessionID uuid.UUID, round int) (*models.Bid, error) {
	var b models.Bid
	query := r.db.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionID, models.BidStatusOpen)
	if round > 0 {
		query = query.Where("round = ?", round)
	}
	if err := query.
		Order("amount ASC").
		Order("created_at ASC").
		Take(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

const lowestBySessionsSQL = `
SELECT DISTINCT ON (b.session_id)
	b.session_id, b.id AS bid_id, b.amount,
	COUNT(*) OVER (PARTITION BY b.session_id) AS open_bid_count
FROM bids b
JOIN bidding_sessions s ON s.id = b.session_id
WHERE b.session_id IN ? AND b.status = ? AND (? = FALSE OR b.round = s.round)
ORDER BY b.session_id, b.amount ASC, b.created_at ASC`

func (r *GormBidRepository) LowestBySessions(ctx context.Context, sessionIDs []uuid.UUID, currentRoundOnly bool) ([]models.LowestBidRow, error) {
	var rows []models.LowestBidRow
	if len(sessionIDs) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).
		Raw(lowestBySessionsSQL, sessionIDs, models.BidStatusOpen, currentRoundOnly).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
