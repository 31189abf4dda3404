package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bidding-service/models"
	awspkg "bidding-service/pkg/aws"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Settings holds the tunable bidding rules.
type Settings struct {
	// RepostWindow is the length of a reposted auction.
	RepostWindow time.Duration
	// ImplicitSessionWindow is the length of a session opened by a first bid.
	ImplicitSessionWindow time.Duration
	// EnforceExpiry rejects bids on expired sessions and hides them from loads.
	EnforceExpiry bool
	// RepostClearsBids restricts lowest-bid computation to the current round.
	RepostClearsBids bool
	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// DefaultSettings mirrors the behaviour of the dashboard the service replaces.
func DefaultSettings() Settings {
	return Settings{
		RepostWindow:          30 * time.Minute,
		ImplicitSessionWindow: 24 * time.Hour,
	}
}

func (s Settings) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// EventPublisher publishes bidding events to SNS. Failures are logged and
// never reach the caller.
type EventPublisher struct {
	snsClient   awspkg.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

func NewEventPublisher(snsClient awspkg.SNSPublisher, snsTopicArn string, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{snsClient: snsClient, snsTopicArn: snsTopicArn, logger: logger}
}

func (p *EventPublisher) Publish(ctx context.Context, event models.BiddingEvent) {
	if p == nil {
		return
	}
	if p.snsClient == nil || p.snsTopicArn == "" {
		p.logger.Debug("SNS not configured, skipping event publish", zap.String("event", event.EventType))
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	b, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}
	if err := p.snsClient.Publish(ctx, p.snsTopicArn, b); err != nil {
		p.logger.Error("Failed to publish SNS event", zap.String("event", event.EventType), zap.Error(err))
		return
	}
	p.logger.Info("Published SNS event", zap.String("event", event.EventType))
}

func recordCount(ctx context.Context, metrics awspkg.MetricsRecorder, logger *zap.Logger, name string) {
	if metrics == nil || !metrics.IsEnabled() {
		return
	}
	if err := metrics.RecordCount(ctx, name, map[string]string{"Service": "bidding-service"}); err != nil {
		logger.Warn("Failed to record metric", zap.String("metric", name), zap.Error(err))
	}
}

var validate = validator.New()

// validateStruct runs struct tag validation and reports the first failing
// field as a ValidationError.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return NewValidationError(err.Error())
	}
	fe := verrs[0]
	return NewValidationError(fmt.Sprintf("%s failed on '%s'", toSnake(fe.Field()), fe.Tag()))
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (s[i-1] < 'A' || s[i-1] > 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatPrice renders an amount the way the mobile client displays it.
func FormatPrice(amount int64) string {
	return fmt.Sprintf("₹%d", amount)
}
