package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent; callers fall through to the
// database and repopulate.
var ErrMiss = errors.New("cache miss")

type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(url string) (*RedisCache, error) {
	client := redis.NewClient(
		&redis.Options{
			Addr:     url,
			Password: "",
			DB:       0,
		},
	)
	redisCache := &RedisCache{Client: client}

	return redisCache, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}

func (r *RedisCache) SetBool(ctx context.Context, key string, value bool, expiration time.Duration) error {
	strValue := "false"
	if value {
		strValue = "true"
	}
	return r.Client.Set(ctx, key, strValue, expiration).Err()
}

func (r *RedisCache) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := r.Client.Get(ctx, key).Bool()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, ErrMiss
		}
		return false, err
	}
	return value, nil
}

/*
* available seat numbers of a row
 */

func (r *RedisCache) GetRowAvailable(ctx context.Context, rowID uint) ([]uint, error) {
	var numbers []uint
	if err := r.Get(ctx, MakeRowAvailableKey(rowID), &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

func (r *RedisCache) SetRowAvailable(ctx context.Context, rowID uint, numbers []uint) error {
	return r.Set(ctx, MakeRowAvailableKey(rowID), numbers, RowAvailableTTL)
}

// InvalidateRows drops the availability entries of every touched row after a
// booking mutation commits.
func (r *RedisCache) InvalidateRows(ctx context.Context, rowIDs ...uint) error {
	keys := make([]string, 0, len(rowIDs))
	for _, id := range rowIDs {
		keys = append(keys, MakeRowAvailableKey(id))
	}
	return r.Delete(ctx, keys...)
}
