package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore stores templates as JSON strings. A zero ttl keeps them
// until deleted.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, owner, recruiterID string) (Template, error) {
	raw, err := s.rdb.Get(ctx, Key(owner, recruiterID)).Result()
	if errors.Is(err, redis.Nil) {
		return Template{}, ErrTemplateNotFound
	}
	if err != nil {
		return Template{}, fmt.Errorf("get template: %w", err)
	}
	var tpl Template
	if err := json.Unmarshal([]byte(raw), &tpl); err != nil {
		return Template{}, fmt.Errorf("decode template: %w", err)
	}
	return tpl, nil
}

func (s *RedisStore) Put(ctx context.Context, owner, recruiterID string, tpl Template) error {
	payload, err := json.Marshal(tpl)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, Key(owner, recruiterID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("put template: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, owner, recruiterID string) error {
	removed, err := s.rdb.Del(ctx, Key(owner, recruiterID)).Result()
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if removed == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
