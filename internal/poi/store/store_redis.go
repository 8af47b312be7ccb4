package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"

	"agentproof/internal/poi/models"
	"agentproof/pkg/platform/sentinel"
)

// Redis key layout. Records are JSON blobs keyed by agent address; counters
// live in one hash so Snapshot is a single HGETALL.
const (
	redisChallengeKeyPrefix  = "poi:challenge:"
	redisCredentialKeyPrefix = "poi:credential:"
	redisCooldownKeyPrefix   = "poi:cooldown:"
	redisStatsKey            = "poi:stats"
)

// RedisChallengeStore is the distributed-deployment implementation of
// ChallengeStore. Records carry no TTL: expiry is recognized lazily on read,
// and an expired challenge is still a durable fact, only superseded on write.
type RedisChallengeStore struct {
	client *redis.Client
}

func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{client: client}
}

func (s *RedisChallengeStore) Save(ctx context.Context, challenge models.Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	return s.client.Set(ctx, redisChallengeKeyPrefix+challenge.Agent.Hex(), payload, 0).Err()
}

func (s *RedisChallengeStore) Find(ctx context.Context, agent common.Address) (models.Challenge, error) {
	raw, err := s.client.Get(ctx, redisChallengeKeyPrefix+agent.Hex()).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Challenge{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}
	var ch models.Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return models.Challenge{}, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return ch, nil
}

type RedisCredentialStore struct {
	client *redis.Client
}

func NewRedisCredentialStore(client *redis.Client) *RedisCredentialStore {
	return &RedisCredentialStore{client: client}
}

func (s *RedisCredentialStore) Save(ctx context.Context, credential models.Credential) error {
	payload, err := json.Marshal(credential)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	return s.client.Set(ctx, redisCredentialKeyPrefix+credential.Agent.Hex(), payload, 0).Err()
}

func (s *RedisCredentialStore) Find(ctx context.Context, agent common.Address) (models.Credential, error) {
	raw, err := s.client.Get(ctx, redisCredentialKeyPrefix+agent.Hex()).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Credential{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Credential{}, fmt.Errorf("get credential: %w", err)
	}
	var cred models.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return models.Credential{}, fmt.Errorf("unmarshal credential: %w", err)
	}
	return cred, nil
}

type RedisCooldownStore struct {
	client *redis.Client
}

func NewRedisCooldownStore(client *redis.Client) *RedisCooldownStore {
	return &RedisCooldownStore{client: client}
}

func (s *RedisCooldownStore) Touch(ctx context.Context, agent common.Address, at uint64) error {
	return s.client.Set(ctx, redisCooldownKeyPrefix+agent.Hex(), strconv.FormatUint(at, 10), 0).Err()
}

func (s *RedisCooldownStore) LastAttempt(ctx context.Context, agent common.Address) (uint64, error) {
	raw, err := s.client.Get(ctx, redisCooldownKeyPrefix+agent.Hex()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get cooldown: %w", err)
	}
	at, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cooldown value: %w", err)
	}
	return at, nil
}

type RedisStatsStore struct {
	client *redis.Client
}

func NewRedisStatsStore(client *redis.Client) *RedisStatsStore {
	return &RedisStatsStore{client: client}
}

func (s *RedisStatsStore) Incr(ctx context.Context, counter Counter) error {
	return s.client.HIncrBy(ctx, redisStatsKey, string(counter), 1).Err()
}

func (s *RedisStatsStore) Snapshot(ctx context.Context) (models.Stats, error) {
	fields, err := s.client.HGetAll(ctx, redisStatsKey).Result()
	if err != nil {
		return models.Stats{}, fmt.Errorf("get stats: %w", err)
	}
	read := func(counter Counter) uint64 {
		v, _ := strconv.ParseUint(fields[string(counter)], 10, 64)
		return v
	}
	return models.Stats{
		ChallengesIssued: read(CounterIssued),
		ChallengesPassed: read(CounterPassed),
		ChallengesFailed: read(CounterFailed),
		Renewals:         read(CounterRenewals),
		Decayed:          read(CounterDecayed),
	}, nil
}
