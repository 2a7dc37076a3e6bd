package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "oauth:negotiation:"

// RedisNegotiationStore persists OAuth negotiation state in Redis with the
// negotiation TTL. Consume uses GETDEL so the first observer wins and every
// replay sees nothing, which makes the state nonce single-use.
type RedisNegotiationStore struct {
	client *redis.Client
}

// NewRedisNegotiationStore creates a negotiation store on the given client.
func NewRedisNegotiationStore(client *redis.Client) *RedisNegotiationStore {
	return &RedisNegotiationStore{client: client}
}

var _ ports.NegotiationStore = (*RedisNegotiationStore)(nil)

// Save stores the negotiation keyed by its state nonce.
func (s *RedisNegotiationStore) Save(ctx context.Context, n *domain.Negotiation) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal negotiation: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+n.State, data, domain.NegotiationTTL).Err(); err != nil {
		return fmt.Errorf("failed to save negotiation: %w", err)
	}
	return nil
}

// Consume atomically fetches and deletes the negotiation for a state nonce.
// Returns nil when the nonce is unknown, expired, or already consumed.
func (s *RedisNegotiationStore) Consume(ctx context.Context, state string) (*domain.Negotiation, error) {
	data, err := s.client.GetDel(ctx, keyPrefix+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume negotiation: %w", err)
	}

	var n domain.Negotiation
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal negotiation: %w", err)
	}
	return &n, nil
}
