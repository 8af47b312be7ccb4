package store

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"agentproof/internal/poi/models"
	"agentproof/pkg/platform/sentinel"
)

// In-memory stores are the authoritative single-node implementation. They
// intentionally favor clarity over performance.

type InMemoryChallengeStore struct {
	mu         sync.RWMutex
	challenges map[common.Address]models.Challenge
}

func NewInMemoryChallengeStore() *InMemoryChallengeStore {
	return &InMemoryChallengeStore{challenges: make(map[common.Address]models.Challenge)}
}

func (s *InMemoryChallengeStore) Save(_ context.Context, challenge models.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.Agent] = challenge
	return nil
}

func (s *InMemoryChallengeStore) Find(_ context.Context, agent common.Address) (models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ch, ok := s.challenges[agent]; ok {
		return ch, nil
	}
	return models.Challenge{}, sentinel.ErrNotFound
}

type InMemoryCredentialStore struct {
	mu          sync.RWMutex
	credentials map[common.Address]models.Credential
}

func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{credentials: make(map[common.Address]models.Credential)}
}

func (s *InMemoryCredentialStore) Save(_ context.Context, credential models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[credential.Agent] = credential
	return nil
}

func (s *InMemoryCredentialStore) Find(_ context.Context, agent common.Address) (models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cred, ok := s.credentials[agent]; ok {
		return cred, nil
	}
	return models.Credential{}, sentinel.ErrNotFound
}

type InMemoryCooldownStore struct {
	mu       sync.RWMutex
	attempts map[common.Address]uint64
}

func NewInMemoryCooldownStore() *InMemoryCooldownStore {
	return &InMemoryCooldownStore{attempts: make(map[common.Address]uint64)}
}

func (s *InMemoryCooldownStore) Touch(_ context.Context, agent common.Address, at uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[agent] = at
	return nil
}

func (s *InMemoryCooldownStore) LastAttempt(_ context.Context, agent common.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if at, ok := s.attempts[agent]; ok {
		return at, nil
	}
	return 0, sentinel.ErrNotFound
}

type InMemoryStatsStore struct {
	mu    sync.RWMutex
	stats models.Stats
}

func NewInMemoryStatsStore() *InMemoryStatsStore {
	return &InMemoryStatsStore{}
}

func (s *InMemoryStatsStore) Incr(_ context.Context, counter Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch counter {
	case CounterIssued:
		s.stats.ChallengesIssued++
	case CounterPassed:
		s.stats.ChallengesPassed++
	case CounterFailed:
		s.stats.ChallengesFailed++
	case CounterRenewals:
		s.stats.Renewals++
	case CounterDecayed:
		s.stats.Decayed++
	default:
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *InMemoryStatsStore) Snapshot(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}
