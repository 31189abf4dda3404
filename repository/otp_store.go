package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound is returned when no code is pending for a phone.
var ErrOTPNotFound = errors.New("otp not found")

const otpKeyPrefix = "otp:"

// OTPStore keeps one-time login codes until they expire or are used.
type OTPStore interface {
	Save(ctx context.Context, phone, code string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (string, error)
	Delete(ctx context.Context, phone string) error
}

// RedisOTPStore implements OTPStore with expiring Redis keys.
type RedisOTPStore struct {
	client *redis.Client
}

// NewRedisOTPStore creates a new RedisOTPStore.
func NewRedisOTPStore(client *redis.Client) OTPStore {
	return &RedisOTPStore{client: client}
}

func (s *RedisOTPStore) Save(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.client.Set(ctx, otpKeyPrefix+phone, code, ttl).Err()
}

func (s *RedisOTPStore) Get(ctx context.Context, phone string) (string, error) {
	code, err := s.client.Get(ctx, otpKeyPrefix+phone).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPNotFound
	}
	return code, err
}

func (s *RedisOTPStore) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, otpKeyPrefix+phone).Err()
}
