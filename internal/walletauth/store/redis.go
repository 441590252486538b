package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"microauth/internal/walletauth/models"
)

// RedisStore keeps records in one hash of JSON values, plus two string keys
// for the admin and the next-contract pointer.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedis(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) recordsKey() string      { return s.prefix + "records" }
func (s *RedisStore) adminKey() string        { return s.prefix + "admin" }
func (s *RedisStore) nextContractKey() string { return s.prefix + "next_contract" }

func (s *RedisStore) Load(ctx context.Context) (*models.Snapshot, error) {
	pipe := s.client.Pipeline()
	adminCmd := pipe.Get(ctx, s.adminKey())
	nextCmd := pipe.Get(ctx, s.nextContractKey())
	recordsCmd := pipe.HGetAll(ctx, s.recordsKey())
	// Exec reports redis.Nil when any GET misses; the commands are checked one by one.
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load registry state: %w", err)
	}

	admin, err := adminCmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load registry admin: %w", err)
	}

	next, err := nextCmd.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load next contract: %w", err)
	}

	raw, err := recordsCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("load wallet records: %w", err)
	}
	records := make(map[string]models.Record, len(raw))
	for wallet, value := range raw {
		var rec models.Record
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			return nil, fmt.Errorf("decode wallet record %s: %w", wallet, err)
		}
		records[wallet] = rec
	}

	return &models.Snapshot{
		Admin:        admin,
		NextContract: next,
		Records:      records,
	}, nil
}

func (s *RedisStore) SaveRecord(ctx context.Context, wallet string, record models.Record) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode wallet record: %w", err)
	}
	if err := s.client.HSet(ctx, s.recordsKey(), wallet, value).Err(); err != nil {
		return fmt.Errorf("save wallet record: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveAdmin(ctx context.Context, admin string) error {
	if err := s.client.Set(ctx, s.adminKey(), admin, 0).Err(); err != nil {
		return fmt.Errorf("save registry admin: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveNextContract(ctx context.Context, addr string) error {
	if err := s.client.Set(ctx, s.nextContractKey(), addr, 0).Err(); err != nil {
		return fmt.Errorf("save next contract: %w", err)
	}
	return nil
}

func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
