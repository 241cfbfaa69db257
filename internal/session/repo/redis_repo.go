package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
)

// RedisRepo stores the snapshot under hotelit:console:session:<profile>.
type RedisRepo struct {
	c   *redis.Client
	key string
}

func NewRedisRepo(c *redis.Client, profile string) *RedisRepo {
	return &RedisRepo{c: c, key: "hotelit:console:session:" + profile}
}

func (r *RedisRepo) Load(ctx context.Context) (entity.Snapshot, error) {
	var s entity.Snapshot
	b, err := r.c.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return s, nil
		}
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return entity.Snapshot{}, err
	}
	return s, nil
}

func (r *RedisRepo) Save(ctx context.Context, s entity.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.c.Set(ctx, r.key, b, 0).Err()
}

func (r *RedisRepo) Clear(ctx context.Context) error {
	return r.c.Del(ctx, r.key).Err()
}
