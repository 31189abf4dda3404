package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the bidding repositories behind one handle so that services
// can run several writes in a single transaction.
type Store interface {
	Orders() OrderRepository
	Sessions() SessionRepository
	Bids() BidRepository
	Partners() PartnerRepository
	// WithinTransaction runs fn against a Store bound to one database
	// transaction. Returning an error from fn rolls everything back.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore implements Store on top of a *gorm.DB.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB) Store {
	return &GormStore{db: db}
}

func (s *GormStore) Orders() OrderRepository     { return NewGormOrderRepository(s.db) }
func (s *GormStore) Sessions() SessionRepository { return NewGormSessionRepository(s.db) }
func (s *GormStore) Bids() BidRepository         { return NewGormBidRepository(s.db) }
func (s *GormStore) Partners() PartnerRepository { return NewGormPartnerRepository(s.db) }

func (s *GormStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
