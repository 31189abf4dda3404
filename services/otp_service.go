package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"bidding-service/auth"
	"bidding-service/models"
	awspkg "bidding-service/pkg/aws"
	"bidding-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OTPService implements the truck owner login flow.
type OTPService interface {
	SendOTP(ctx context.Context, req *models.SendOTPRequest) error
	VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) (*models.LoginResponse, error)
}

type otpServiceImpl struct {
	codes   repository.OTPStore
	store   repository.Store
	sms     awspkg.SMSSender
	tokens  *auth.TokenManager
	ttl     time.Duration
	metrics awspkg.MetricsRecorder
	logger  *zap.Logger
}

// NewOTPService creates a new OTPService. A nil sms sender logs the code
// instead of delivering it.
func NewOTPService(
	codes repository.OTPStore,
	store repository.Store,
	sms awspkg.SMSSender,
	tokens *auth.TokenManager,
	ttl time.Duration,
	metrics awspkg.MetricsRecorder,
	logger *zap.Logger,
) OTPService {
	return &otpServiceImpl{
		codes:   codes,
		store:   store,
		sms:     sms,
		tokens:  tokens,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *otpServiceImpl) SendOTP(ctx context.Context, req *models.SendOTPRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	code, err := generateCode()
	if err != nil {
		return finish(s.logger, "send otp", err)
	}
	// Only the hash is kept in Redis.
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return finish(s.logger, "send otp", err)
	}
	if err := s.codes.Save(ctx, req.Phone, string(hash), s.ttl); err != nil {
		return finish(s.logger, "send otp", err)
	}

	if s.sms == nil {
		s.logger.Info("SMS not configured, OTP generated", zap.String("phone", req.Phone), zap.String("otp", code))
	} else if err := s.sms.SendSMS(ctx, req.Phone, fmt.Sprintf("Your login code is %s", code)); err != nil {
		return finish(s.logger, "send otp", err)
	}
	recordCount(ctx, s.metrics, s.logger, awspkg.MetricOTPSent)
	return nil
}

// VerifyOTP consumes a valid code and returns the caller's profile with a
// session token. Unknown numbers get a NEW profile so the app can route
// them to registration.
func (s *otpServiceImpl) VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) (*models.LoginResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	stored, err := s.codes.Get(ctx, req.Phone)
	if errors.Is(err, repository.ErrOTPNotFound) {
		return nil, NewValidationError("invalid or expired OTP")
	}
	if err != nil {
		return nil, finish(s.logger, "verify otp", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(req.OTP)) != nil {
		return nil, NewValidationError("invalid or expired OTP")
	}
	if err := s.codes.Delete(ctx, req.Phone); err != nil {
		s.logger.Warn("Failed to delete used OTP", zap.Error(err))
	}

	profile := models.TruckOwner{Phone: req.Phone, Status: models.VerificationNew}
	owner, err := s.store.Partners().FindOwnerByPhone(ctx, req.Phone)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, finish(s.logger, "verify otp", err)
	default:
		trucks, err := s.store.Partners().FindTrucksByOwner(ctx, owner.ID)
		if err != nil {
			return nil, finish(s.logger, "verify otp", err)
		}
		profile = *owner
		profile.Trucks = trucks
	}

	ownerID := ""
	if profile.ID != uuid.Nil {
		ownerID = profile.ID.String()
	}
	token, expiresAt, err := s.tokens.Issue(req.Phone, ownerID)
	if err != nil {
		return nil, finish(s.logger, "verify otp", err)
	}
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, Owner: profile}, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
