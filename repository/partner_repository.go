package repository

import (
	"context"

	"bidding-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartnerRepository defines data-access operations for truck owners and
// their trucks.
type PartnerRepository interface {
	CreateOwner(ctx context.Context, owner *models.TruckOwner) error
	FindOwnerByID(ctx context.Context, id uuid.UUID) (*models.TruckOwner, error)
	FindOwnerByPhone(ctx context.Context, phone string) (*models.TruckOwner, error)
	FindOwnersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.TruckOwner, error)
	UpdateOwner(ctx context.Context, owner *models.TruckOwner) error
	// FindApprovedOwners returns APPROVED owners with only their APPROVED
	// trucks loaded.
	FindApprovedOwners(ctx context.Context) ([]models.TruckOwner, error)

	CreateTruck(ctx context.Context, truck *models.Truck) error
	FindTruckByID(ctx context.Context, id uuid.UUID) (*models.Truck, error)
	FindTrucksByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Truck, error)
	FindTrucksByStatus(ctx context.Context, status string) ([]models.Truck, error)
	UpdateTruck(ctx context.Context, truck *models.Truck) error
}

// GormPartnerRepository implements PartnerRepository using GORM.
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewGormPartnerRepository creates a new GormPartnerRepository.
func NewGormPartnerRepository(db *gorm.DB) PartnerRepository {
	return &GormPartnerRepository{db: db}
}

func (r *GormPartnerRepository) CreateOwner(ctx context.Context, owner *models.TruckOwner) error {
	return r.db.WithContext(ctx).Omit("Trucks").Create(owner).Error
}

func (r *GormPartnerRepository) FindOwnerByID(ctx context.Context, id uuid.UUID) (*models.TruckOwner, error) {
	var o models.TruckOwner
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormPartnerRepository) FindOwnerByPhone(ctx context.Context, phone string) (*models.TruckOwner, error) {
	var o models.TruckOwner
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormPartnerRepository) FindOwnersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.TruckOwner, error) {
	var owners []models.TruckOwner
	if len(ids) == 0 {
		return owners, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

func (r *GormPartnerRepository) UpdateOwner(ctx context.Context, owner *models.TruckOwner) error {
	return r.db.WithContext(ctx).Omit("Trucks").Save(owner).Error
}

func (r *GormPartnerRepository) FindApprovedOwners(ctx context.Context) ([]models.TruckOwner, error) {
	var owners []models.TruckOwner
	if err := r.db.WithContext(ctx).
		Preload("Trucks", "status = ?", models.VerificationApproved).
		Where("status = ?", models.VerificationApproved).
		Order("name ASC").
		Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

func (r *GormPartnerRepository) CreateTruck(ctx context.Context, truck *models.Truck) error {
	return r.db.WithContext(ctx).Create(truck).Error
}

func (r *GormPartnerRepository) FindTruckByID(ctx context.Context, id uuid.UUID) (*models.Truck, error) {
	var t models.Truck
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormPartnerRepository) FindTrucksByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Truck, error) {
	var trucks []models.Truck
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&trucks).Error; err != nil {
		return nil, err
	}
	return trucks, nil
}

func (r *GormPartnerRepository) FindTrucksByStatus(ctx context.Context, status string) ([]models.Truck, error) {
	var trucks []models.Truck
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&trucks).Error; err != nil {
		return nil, err
	}
	return trucks, nil
}

func (r *GormPartnerRepository) UpdateTruck(ctx context.Context, truck *models.Truck) error {
	return r.db.WithContext(ctx).Save(truck).Error
}
