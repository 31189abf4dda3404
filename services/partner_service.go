package services

import (
	"context"
	"errors"
	"strings"

	"bidding-service/models"
	"bidding-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PartnerService registers truck owners and their trucks and records
// verification decisions.
type PartnerService interface {
	RegisterOwner(ctx context.Context, req *models.RegisterOwnerRequest) (*models.TruckOwner, error)
	AddTruck(ctx context.Context, req *models.AddTruckRequest) (*models.Truck, error)
	PendingTrucks(ctx context.Context) ([]models.PendingTruck, error)
	VerifyOwner(ctx context.Context, id uuid.UUID, req *models.VerifyRequest) (*models.TruckOwner, error)
	VerifyTruck(ctx context.Context, id uuid.UUID, req *models.VerifyRequest) (*models.Truck, error)
	VerifiedSuppliers(ctx context.Context) ([]models.TruckOwner, error)
}

type partnerServiceImpl struct {
	store  repository.Store
	logger *zap.Logger
}

// NewPartnerService creates a new PartnerService.
func NewPartnerService(store repository.Store, logger *zap.Logger) PartnerService {
	return &partnerServiceImpl{store: store, logger: logger}
}

// RegisterOwner creates the owner in PENDING state, or moves an existing
// NEW or REJECTED owner back to PENDING. Approved owners keep their status.
func (s *partnerServiceImpl) RegisterOwner(ctx context.Context, req *models.RegisterOwnerRequest) (*models.TruckOwner, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)

	owner, err := s.store.Partners().FindOwnerByPhone(ctx, req.Phone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		owner = &models.TruckOwner{
			Name:   name,
			Phone:  req.Phone,
			Status: models.VerificationPending,
		}
		if err := s.store.Partners().CreateOwner(ctx, owner); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, NewConflictError("phone number is already registered")
			}
			return nil, finish(s.logger, "register owner", err)
		}
		s.logger.Info("Truck owner registered", zap.String("owner_id", owner.ID.String()))
		return owner, nil
	}
	if err != nil {
		return nil, finish(s.logger, "register owner", err)
	}

	if name != "" {
		owner.Name = name
	}
	if owner.Status == models.VerificationNew || owner.Status == models.VerificationRejected {
		owner.Status = models.VerificationPending
	}
	if err := s.store.Partners().UpdateOwner(ctx, owner); err != nil {
		return nil, finish(s.logger, "register owner", err)
	}
	return owner, nil
}

// AddTruck registers a PENDING truck for the owner behind req.Phone.
func (s *partnerServiceImpl) AddTruck(ctx context.Context, req *models.AddTruckRequest) (*models.Truck, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	owner, err := s.store.Partners().FindOwnerByPhone(ctx, req.Phone)
	if err != nil {
		return nil, finish(s.logger, "add truck", lookupError(err, "truck owner not registered"))
	}

	truck := &models.Truck{
		OwnerID:  owner.ID,
		Number:   strings.ToUpper(strings.TrimSpace(req.Number)),
		Capacity: req.Capacity,
		Status:   models.VerificationPending,
	}
	if err := s.store.Partners().CreateTruck(ctx, truck); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewConflictError("truck number is already registered")
		}
		return nil, finish(s.logger, "add truck", err)
	}
	s.logger.Info("Truck added",
		zap.String("owner_id", owner.ID.String()),
		zap.String("number", truck.Number),
	)
	return truck, nil
}

func (s *partnerServiceImpl) PendingTrucks(ctx context.Context) ([]models.PendingTruck, error) {
	trucks, err := s.store.Partners().FindTrucksByStatus(ctx, models.VerificationPending)
	if err != nil {
		return nil, finish(s.logger, "pending trucks", err)
	}

	ownerIDs := make([]uuid.UUID, 0, len(trucks))
	for _, t := range trucks {
		ownerIDs = append(ownerIDs, t.OwnerID)
	}
	owners, err := s.store.Partners().FindOwnersByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, finish(s.logger, "pending trucks", err)
	}
	ownerByID := make(map[uuid.UUID]models.TruckOwner, len(owners))
	for _, o := range owners {
		ownerByID[o.ID] = o
	}

	out := make([]models.PendingTruck, 0, len(trucks))
	for _, t := range trucks {
		out = append(out, models.PendingTruck{Truck: t, Owner: ownerByID[t.OwnerID]})
	}
	return out, nil
}

func (s *partnerServiceImpl) VerifyOwner(ctx context.Context, id uuid.UUID, req *models.VerifyRequest) (*models.TruckOwner, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	owner, err := s.store.Partners().FindOwnerByID(ctx, id)
	if err != nil {
		return nil, finish(s.logger, "verify owner", lookupError(err, "truck owner not found"))
	}
	owner.Status = decisionStatus(req.Decision)
	if err := s.store.Partners().UpdateOwner(ctx, owner); err != nil {
		return nil, finish(s.logger, "verify owner", err)
	}
	s.logger.Info("Truck owner verified",
		zap.String("owner_id", owner.ID.String()),
		zap.String("status", owner.Status),
	)
	return owner, nil
}

func (s *partnerServiceImpl) VerifyTruck(ctx context.Context, id uuid.UUID, req *models.VerifyRequest) (*models.Truck, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	truck, err := s.store.Partners().FindTruckByID(ctx, id)
	if err != nil {
		return nil, finish(s.logger, "verify truck", lookupError(err, "truck not found"))
	}
	truck.Status = decisionStatus(req.Decision)
	if err := s.store.Partners().UpdateTruck(ctx, truck); err != nil {
		return nil, finish(s.logger, "verify truck", err)
	}
	s.logger.Info("Truck verified",
		zap.String("truck_id", truck.ID.String()),
		zap.String("status", truck.Status),
	)
	return truck, nil
}

// VerifiedSuppliers lists APPROVED owners that have at least one APPROVED
// truck. Only approved trucks are included.
func (s *partnerServiceImpl) VerifiedSuppliers(ctx context.Context) ([]models.TruckOwner, error) {
	owners, err := s.store.Partners().FindApprovedOwners(ctx)
	if err != nil {
		return nil, finish(s.logger, "verified suppliers", err)
	}
	out := make([]models.TruckOwner, 0, len(owners))
	for _, o := range owners {
		if len(o.Trucks) > 0 {
			out = append(out, o)
		}
	}
	return out, nil
}

func decisionStatus(decision string) string {
	if decision == models.DecisionApprove {
		return models.VerificationApproved
	}
	return models.VerificationRejected
}
