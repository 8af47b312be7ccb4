package store

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"agentproof/internal/poi/models"
	"agentproof/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	ctx context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestChallengeStore() {
	st := NewInMemoryChallengeStore()
	agent := common.HexToAddress("0x00000000000000000000000000000000000000c1")

	_, err := st.Find(s.ctx, agent)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	ch := models.Challenge{
		Agent:         agent,
		Type:          models.PuzzleHashChain,
		Seed:          common.HexToHash("0x01"),
		Deadline:      150,
		IssuedAtBlock: 100,
		IssuedAtTime:  1700000000,
	}
	s.Require().NoError(st.Save(s.ctx, ch))

	got, err := st.Find(s.ctx, agent)
	s.Require().NoError(err)
	s.Equal(ch, got)

	// Save overwrites: supersession is the only delete.
	ch.Seed = common.HexToHash("0x02")
	ch.Deadline = 200
	s.Require().NoError(st.Save(s.ctx, ch))
	got, err = st.Find(s.ctx, agent)
	s.Require().NoError(err)
	s.Equal(uint64(200), got.Deadline)
}

func (s *InMemoryStoreSuite) TestCredentialStore() {
	st := NewInMemoryCredentialStore()
	agent := common.HexToAddress("0x00000000000000000000000000000000000000c2")

	_, err := st.Find(s.ctx, agent)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	cred := models.Credential{
		Agent:      agent,
		IssuedAt:   1700000000,
		ExpiresAt:  1700000000 + models.Seconds(models.ValidityPeriod),
		Valid:      true,
		Reputation: models.ReputationInitial,
	}
	s.Require().NoError(st.Save(s.ctx, cred))

	got, err := st.Find(s.ctx, agent)
	s.Require().NoError(err)
	s.Equal(cred, got)
}

func (s *InMemoryStoreSuite) TestCooldownStore() {
	st := NewInMemoryCooldownStore()
	agent := common.HexToAddress("0x00000000000000000000000000000000000000c3")

	_, err := st.LastAttempt(s.ctx, agent)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(st.Touch(s.ctx, agent, 1700000000))
	at, err := st.LastAttempt(s.ctx, agent)
	s.Require().NoError(err)
	s.Equal(uint64(1700000000), at)

	// Touch always advances, outcome-independent.
	s.Require().NoError(st.Touch(s.ctx, agent, 1700003600))
	at, err = st.LastAttempt(s.ctx, agent)
	s.Require().NoError(err)
	s.Equal(uint64(1700003600), at)
}

func (s *InMemoryStoreSuite) TestStatsStore() {
	st := NewInMemoryStatsStore()

	snap, err := st.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Stats{}, snap)

	s.Require().NoError(st.Incr(s.ctx, CounterIssued))
	s.Require().NoError(st.Incr(s.ctx, CounterIssued))
	s.Require().NoError(st.Incr(s.ctx, CounterPassed))
	s.Require().NoError(st.Incr(s.ctx, CounterFailed))
	s.Require().NoError(st.Incr(s.ctx, CounterRenewals))
	s.Require().NoError(st.Incr(s.ctx, CounterDecayed))

	snap, err = st.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Stats{
		ChallengesIssued: 2,
		ChallengesPassed: 1,
		ChallengesFailed: 1,
		Renewals:         1,
		Decayed:          1,
	}, snap)

	s.Require().Error(st.Incr(s.ctx, Counter("bogus")))
}
