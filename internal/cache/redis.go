package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a Store on client. A positive ttl is applied to a
// set when it is first created.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func score(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *redisStore) Add(ctx context.Context, set string, id uint, value any) error {
	member, err := json.Marshal(value)
	if err != nil {
		return err
	}

	exists, err := s.client.Exists(ctx, set).Result()
	if err != nil {
		return err
	}

	if err := s.client.ZAdd(ctx, set, redis.Z{Score: float64(id), Member: member}).Err(); err != nil {
		return err
	}

	if exists == 0 && s.ttl > 0 {
		return s.client.Expire(ctx, set, s.ttl).Err()
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, set string, id uint) ([]byte, bool, error) {
	members, err := s.client.ZRangeByScore(ctx, set, &redis.ZRangeBy{Min: score(id), Max: score(id)}).Result()
	if err != nil {
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	return []byte(members[0]), true, nil
}

func (s *redisStore) Replace(ctx context.Context, set string, id uint, value any) error {
	member, err := json.Marshal(value)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, set, score(id), score(id))
		pipe.ZAdd(ctx, set, redis.Z{Score: float64(id), Member: member})
		return nil
	})
	return err
}

func (s *redisStore) Remove(ctx context.Context, set string, id uint) error {
	return s.client.ZRemRangeByScore(ctx, set, score(id), score(id)).Err()
}

func (s *redisStore) Range(ctx context.Context, set string, start, stop int64) ([][]byte, error) {
	members, err := s.client.ZRange(ctx, set, start, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(members))
	for i, member := range members {
		out[i] = []byte(member)
	}
	return out, nil
}

func (s *redisStore) Count(ctx context.Context, set string) (int64, error) {
	return s.client.ZCard(ctx, set).Result()
}

// MarkComplete flags the set as a full copy of its table. Both keys share
// the same expiry so the flag never outlives the members.
func (s *redisStore) MarkComplete(ctx context.Context, set string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, completeKey(set), "1", s.ttl)
		if s.ttl > 0 {
			pipe.Expire(ctx, set, s.ttl)
		}
		return nil
	})
	return err
}

func (s *redisStore) IsComplete(ctx context.Context, set string) (bool, error) {
	n, err := s.client.Exists(ctx, completeKey(set)).Result()
	return n == 1, err
}

func (s *redisStore) Invalidate(ctx context.Context, set string) error {
	return s.client.Del(ctx, set, completeKey(set)).Err()
}
