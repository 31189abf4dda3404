package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// DefaultSecretTTL bounds how long a fetched secret is served from memory,
// so a rotated DB password or JWT secret is picked up without a restart.
const DefaultSecretTTL = 15 * time.Minute

// SecretGetter reads a secret string by name.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// SecretValueAPI is the part of the Secrets Manager client the service uses.
type SecretValueAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type cachedSecret struct {
	value     string
	fetchedAt time.Time
}

// SecretsClient reads secrets through Secrets Manager and keeps each value
// for ttl.
type SecretsClient struct {
	api     SecretValueAPI
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	secrets map[string]cachedSecret
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return NewSecretsClientWithAPI(secretsmanager.NewFromConfig(cfg), DefaultSecretTTL)
}

// NewSecretsClientWithAPI builds a client over any SecretValueAPI. A
// non-positive ttl disables caching.
func NewSecretsClientWithAPI(api SecretValueAPI, ttl time.Duration) *SecretsClient {
	return &SecretsClient{
		api:     api,
		ttl:     ttl,
		now:     time.Now,
		secrets: make(map[string]cachedSecret),
	}
}

func (s *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	if v, ok := s.cached(name); ok {
		return v, nil
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(name)})
	if err != nil {
		return "", fmt.Errorf("read secret %q: %w", name, err)
	}
	value := sdkaws.ToString(out.SecretString)
	if value == "" {
		return "", errors.New("secret " + name + " has no string value")
	}

	if s.ttl > 0 {
		s.mu.Lock()
		s.secrets[name] = cachedSecret{value: value, fetchedAt: s.now()}
		s.mu.Unlock()
	}
	return value, nil
}

func (s *SecretsClient) cached(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.secrets[name]
	if !ok {
		return "", false
	}
	if s.now().Sub(entry.fetchedAt) >= s.ttl {
		delete(s.secrets, name)
		return "", false
	}
	return entry.value, true
}

// GetSecretJSON reads a secret holding a flat JSON object of strings, the
// layout Secrets Manager uses for database credentials.
func GetSecretJSON(ctx context.Context, getter SecretGetter, name string) (map[string]string, error) {
	raw, err := getter.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("secret %s is not a JSON object: %w", name, err)
	}
	return values, nil
}
