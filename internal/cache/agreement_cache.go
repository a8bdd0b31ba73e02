package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segyhp/rental-engine/internal/domain"
)

// AgreementCache holds the latest agreement of each chat.
type AgreementCache interface {
	// GetLatest returns nil with a nil error on a miss
	GetLatest(ctx context.Context, chatID int64) (*domain.RentalAgreement, error)
	SetLatest(ctx context.Context, agreement *domain.RentalAgreement) error
	Invalidate(ctx context.Context, chatID int64) error
}

func latestKey(chatID int64) string {
	return fmt.Sprintf("rental:chat:%d", chatID)
}

// entry is the stored form. It keeps the fields the API does not expose.
type entry struct {
	Agreement   *domain.RentalAgreement `json:"agreement"`
	LateCharged bool                    `json:"lateCharged"`
}

type redisAgreementCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAgreementCache returns a cache backed by client. A zero ttl keeps
// entries until they are invalidated.
func NewRedisAgreementCache(client *redis.Client, ttl time.Duration) AgreementCache {
	return &redisAgreementCache{client: client, ttl: ttl}
}

func (c *redisAgreementCache) GetLatest(ctx context.Context, chatID int64) (*domain.RentalAgreement, error) {
	raw, err := c.client.Get(ctx, latestKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, err
	}
	if e.Agreement == nil {
		return nil, nil
	}
	e.Agreement.LateCharged = e.LateCharged
	return e.Agreement, nil
}

func (c *redisAgreementCache) SetLatest(ctx context.Context, agreement *domain.RentalAgreement) error {
	payload, err := json.Marshal(entry{Agreement: agreement, LateCharged: agreement.LateCharged})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, latestKey(agreement.ChatID), string(payload), c.ttl).Err()
}

func (c *redisAgreementCache) Invalidate(ctx context.Context, chatID int64) error {
	return c.client.Del(ctx, latestKey(chatID)).Err()
}

type nopAgreementCache struct{}

// NewNopAgreementCache returns a cache that never stores anything.
func NewNopAgreementCache() AgreementCache { return nopAgreementCache{} }

func (nopAgreementCache) GetLatest(context.Context, int64) (*domain.RentalAgreement, error) {
	return nil, nil
}
func (nopAgreementCache) SetLatest(context.Context, *domain.RentalAgreement) error { return nil }
func (nopAgreementCache) Invalidate(context.Context, int64) error                  { return nil }
