package repository

import (
	"context"

	"bidding-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository defines data-access operations for bidding sessions.
type SessionRepository interface {
	// CreateIfAbsent inserts session unless the order already has one.
	// It reports whether a row was written.
	CreateIfAbsent(ctx context.Context, session *models.BiddingSession) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.BiddingSession, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.BiddingSession, error)
	FindByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]models.BiddingSession, error)
	FindAll(ctx context.Context) ([]models.BiddingSession, error)
	Update(ctx context.Context, session *models.BiddingSession) error
}

// GormSessionRepository implements SessionRepository using GORM.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository.
func NewGormSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) CreateIfAbsent(ctx context.Context, session *models.BiddingSession) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(session)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.BiddingSession, error) {
	var s models.BiddingSession
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSessionRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.BiddingSession, error) {
	var s models.BiddingSession
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSessionRepository) FindByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]models.BiddingSession, error) {
	var sessions []models.BiddingSession
	if len(orderIDs) == 0 {
		return sessions, nil
	}
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormSessionRepository) FindAll(ctx context.Context) ([]models.BiddingSession, error) {
	var sessions []models.BiddingSession
	if err := r.db.WithContext(ctx).
		Order("end_time DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormSessionRepository) Update(ctx context.Context, session *models.BiddingSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}
