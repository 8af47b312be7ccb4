//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"agentproof/internal/poi/models"
	"agentproof/pkg/platform/sentinel"
	"agentproof/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite

	ctx   context.Context
	redis *containers.RedisContainer

	challenges  *RedisChallengeStore
	credentials *RedisCredentialStore
	cooldowns   *RedisCooldownStore
	stats       *RedisStatsStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.challenges = NewRedisChallengeStore(s.redis.Client)
	s.credentials = NewRedisCredentialStore(s.redis.Client)
	s.cooldowns = NewRedisCooldownStore(s.redis.Client)
	s.stats = NewRedisStatsStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisStoreSuite) TestChallengeRoundTrip() {
	agent := common.HexToAddress("0x01")

	_, err := s.challenges.Find(s.ctx, agent)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	challenge := models.Challenge{
		Agent:         agent,
		Type:          models.PuzzleFibonacciXOR,
		Seed:          common.HexToHash("0xfeed"),
		Deadline:      1050,
		IssuedAtBlock: 1000,
		IssuedAtTime:  1_700_000_000,
	}
	s.Require().NoError(s.challenges.Save(s.ctx, challenge))

	got, err := s.challenges.Find(s.ctx, agent)
	s.Require().NoError(err)
	s.Equal(challenge, got)

	// Save overwrites: supersession is the only delete.
	challenge.Completed = true
	s.Require().NoError(s.challenges.Save(s.ctx, challenge))
	got, err = s.challenges.Find(s.ctx, agent)
	s.Require().NoError(err)
	s.True(got.Completed)
}

func (s *RedisStoreSuite) TestCredentialRoundTrip() {
	agent := common.HexToAddress("0x02")

	_, err := s.credentials.Find(s.ctx, agent)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	cred := models.Credential{
		Agent:            agent,
		IssuedAt:         1_700_000_000,
		ExpiresAt:        1_700_604_800,
		ChallengeType:    models.PuzzleHashChain,
		BlockSolved:      1001,
		Valid:            true,
		MaintenanceCount: 2,
		LastMaintained:   1_700_300_000,
		Reputation:       60,
	}
	s.Require().NoError(s.credentials.Save(s.ctx, cred))

	got, err := s.credentials.Find(s.ctx, agent)
	s.Require().NoError(err)
	s.Equal(cred, got)
}

func (s *RedisStoreSuite) TestCooldownRoundTrip() {
	agent := common.HexToAddress("0x03")

	_, err := s.cooldowns.LastAttempt(s.ctx, agent)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.cooldowns.Touch(s.ctx, agent, 1_700_000_000))
	last, err := s.cooldowns.LastAttempt(s.ctx, agent)
	s.Require().NoError(err)
	s.Equal(uint64(1_700_000_000), last)

	s.Require().NoError(s.cooldowns.Touch(s.ctx, agent, 1_700_003_600))
	last, err = s.cooldowns.LastAttempt(s.ctx, agent)
	s.Require().NoError(err)
	s.Equal(uint64(1_700_003_600), last)
}

func (s *RedisStoreSuite) TestStatsCounters() {
	snap, err := s.stats.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Stats{}, snap)

	s.Require().NoError(s.stats.Incr(s.ctx, CounterIssued))
	s.Require().NoError(s.stats.Incr(s.ctx, CounterIssued))
	s.Require().NoError(s.stats.Incr(s.ctx, CounterPassed))
	s.Require().NoError(s.stats.Incr(s.ctx, CounterFailed))
	s.Require().NoError(s.stats.Incr(s.ctx, CounterRenewals))
	s.Require().NoError(s.stats.Incr(s.ctx, CounterDecayed))

	snap, err = s.stats.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Stats{
		ChallengesIssued: 2,
		ChallengesPassed: 1,
		ChallengesFailed: 1,
		Renewals:         1,
		Decayed:          1,
	}, snap)
}
