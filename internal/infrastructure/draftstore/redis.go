package draftstore

import (
	"context"
	"errors"
	"fmt"

	"estate-marketplace/internal/application/listings"
	"estate-marketplace/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each owner's collection as one JSON string value.
type RedisStore struct {
	Rdb *redis.Client
}

func (s *RedisStore) LoadAll(ctx context.Context, owner string) ([]domain.Listing, error) {
	key := listings.StorageKeyFor(owner)
	raw, err := s.Rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Listing{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return decode(key, raw), nil
}

func (s *RedisStore) SaveAll(ctx context.Context, owner string, all []domain.Listing) error {
	key := listings.StorageKeyFor(owner)
	b, err := encode(all)
	if err != nil {
		return err
	}
	if err := s.Rdb.Set(ctx, key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
