package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"bidding-service/models"
	awspkg "bidding-service/pkg/aws"
	"bidding-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultOrderPrefix = "HQ"
	orderNoAttempts    = 3
	defaultOrderPage   = 1
	defaultOrderLimit  = 20
	maxOrderLimit      = 100
)

// OrderService manages freight orders and their order-level bidding actions.
type OrderService interface {
	CreateOrder(ctx context.Context, principal models.Principal, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) (*models.OrderListResponse, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, req *models.UpdateOrderRequest) (*models.Order, error)
	StopBidding(ctx context.Context, id uuid.UUID) (*models.Order, error)
	RepostOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	History(ctx context.Context) ([]models.Order, error)
}

type orderServiceImpl struct {
	store    repository.Store
	events   *EventPublisher
	metrics  awspkg.MetricsRecorder
	settings Settings
	logger   *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	store repository.Store,
	events *EventPublisher,
	metrics awspkg.MetricsRecorder,
	settings Settings,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		store:    store,
		events:   events,
		metrics:  metrics,
		settings: settings,
		logger:   logger,
	}
}

// CreateOrder stores a PENDING order numbered after the creator's office.
// Two staff members racing for the same number retry with the next one.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, principal models.Principal, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	prefix := OrderPrefix(principal.Office)
	var lastErr error
	for attempt := 0; attempt < orderNoAttempts; attempt++ {
		last, err := s.store.Orders().LastOrderNo(ctx, prefix)
		if err != nil {
			return nil, finish(s.logger, "create order", err)
		}

		order := &models.Order{
			OrderNo:      NextOrderNo(prefix, last),
			CustomerName: req.CustomerName,
			FromLocation: req.FromLocation,
			ToLocation:   req.ToLocation,
			Material:     req.Material,
			Weight:       req.Weight,
			TruckSize:    req.TruckSize,
			Rate:         req.Rate,
			Status:       models.OrderStatusPending,
			CreatedByID:  principal.UserID,
			OfficeName:   principal.Office,
		}
		err = s.store.Orders().Create(ctx, order)
		if err == nil {
			s.logger.Info("Order created",
				zap.String("order_id", order.ID.String()),
				zap.String("order_no", order.OrderNo),
			)
			recordCount(ctx, s.metrics, s.logger, awspkg.MetricOrdersCreated)
			return order, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, finish(s.logger, "create order", err)
		}
		s.logger.Warn("Order number taken, retrying",
			zap.String("order_no", order.OrderNo),
			zap.Int("attempt", attempt+1),
		)
		lastErr = err
	}
	return nil, finish(s.logger, "create order", lastErr)
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, finish(s.logger, "get order", lookupError(err, "order not found"))
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, filter models.OrderFilter) (*models.OrderListResponse, error) {
	switch filter.Status {
	case "", models.OrderStatusPending, models.OrderStatusAssigned, models.OrderStatusCancelled:
	default:
		return nil, NewValidationError("unknown order status " + filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = defaultOrderPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultOrderLimit
	}
	if filter.Limit > maxOrderLimit {
		filter.Limit = maxOrderLimit
	}

	orders, total, err := s.store.Orders().FindAll(ctx, filter)
	if err != nil {
		return nil, finish(s.logger, "list orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &models.OrderListResponse{Orders: orders, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// UpdateOrder edits descriptive fields. Assigned orders are frozen.
func (s *orderServiceImpl) UpdateOrder(ctx context.Context, id uuid.UUID, req *models.UpdateOrderRequest) (*models.Order, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "order not found")
		}
		if order.Status == models.OrderStatusAssigned {
			return NewConflictError("assigned orders cannot be edited")
		}
		applyOrderUpdate(order, req)
		if err := tx.Orders().Update(ctx, order); err != nil {
			return NewStoreError("update order", err)
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "update order", err)
	}
	return updated, nil
}

// StopBidding cancels the order and ends its LIVE session.
func (s *orderServiceImpl) StopBidding(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var (
		order   *models.Order
		session *models.BiddingSession
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "order not found")
		}
		if o.Status == models.OrderStatusAssigned {
			return NewConflictError("order is already assigned")
		}
		o.Status = models.OrderStatusCancelled
		if err := tx.Orders().Update(ctx, o); err != nil {
			return NewStoreError("cancel order", err)
		}

		sess, err := tx.Sessions().FindByOrderID(ctx, o.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return NewStoreError("find session", err)
		case sess.IsLive():
			sess.Status = models.SessionStatusEnded
			if err := tx.Sessions().Update(ctx, sess); err != nil {
				return NewStoreError("end session", err)
			}
			session = sess
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "stop bidding", err)
	}

	s.logger.Info("Bidding stopped", zap.String("order_id", order.ID.String()))
	event := models.BiddingEvent{
		EventType: models.EventOrderCancelled,
		OrderID:   order.ID.String(),
		Status:    order.Status,
		Timestamp: time.Now().UTC(),
	}
	if session != nil {
		event.SessionID = session.ID.String()
	}
	s.events.Publish(ctx, event)
	return order, nil
}

// RepostOrder reopens the order and, when it has a session, starts a new
// round on it.
func (s *orderServiceImpl) RepostOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	now := s.settings.now()
	var (
		order   *models.Order
		session *models.BiddingSession
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "order not found")
		}
		if err := reopenOrder(ctx, tx, o); err != nil {
			return err
		}

		sess, err := tx.Sessions().FindByOrderID(ctx, o.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return NewStoreError("find session", err)
		default:
			repostSession(sess, now, s.settings.RepostWindow)
			if err := tx.Sessions().Update(ctx, sess); err != nil {
				return NewStoreError("repost session", err)
			}
			session = sess
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "repost order", err)
	}

	s.logger.Info("Order reposted", zap.String("order_id", order.ID.String()))
	event := models.BiddingEvent{
		EventType: models.EventOrderReposted,
		OrderID:   order.ID.String(),
		Status:    order.Status,
		Timestamp: time.Now().UTC(),
	}
	if session != nil {
		event.SessionID = session.ID.String()
	}
	s.events.Publish(ctx, event)
	return order, nil
}

// History lists orders that left the PENDING state, newest change first.
func (s *orderServiceImpl) History(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.Orders().FindHistory(ctx)
	if err != nil {
		return nil, finish(s.logger, "order history", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func applyOrderUpdate(order *models.Order, req *models.UpdateOrderRequest) {
	if req.CustomerName != nil {
		order.CustomerName = *req.CustomerName
	}
	if req.FromLocation != nil {
		order.FromLocation = *req.FromLocation
	}
	if req.ToLocation != nil {
		order.ToLocation = *req.ToLocation
	}
	if req.Material != nil {
		order.Material = *req.Material
	}
	if req.Weight != nil {
		order.Weight = *req.Weight
	}
	if req.TruckSize != nil {
		order.TruckSize = *req.TruckSize
	}
	if req.Rate != nil {
		order.Rate = *req.Rate
	}
}

// OrderPrefix is the first three letters of the office name in upper case,
// or HQ when the office has no letters.
func OrderPrefix(office string) string {
	var b strings.Builder
	for _, r := range office {
		if b.Len() == 3 {
			break
		}
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	if b.Len() == 0 {
		return defaultOrderPrefix
	}
	return b.String()
}

// NextOrderNo returns the number following last, which may be empty.
func NextOrderNo(prefix, last string) string {
	seq := 0
	if i := strings.LastIndex(last, "-"); i >= 0 {
		if n, err := strconv.Atoi(last[i+1:]); err == nil {
			seq = n
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, seq+1)
}
