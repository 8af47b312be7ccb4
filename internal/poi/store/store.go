// Package store persists the per-agent lifecycle records. Stores are
// interface-driven to keep the engine testable and to allow swapping
// in-memory, Redis, or Postgres persistence without rewiring business code.
//
// Stores return sentinel errors for factual states (pkg/platform/sentinel);
// the service translates them into domain errors.
package store

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"agentproof/internal/poi/models"
)

// ChallengeStore holds the single live challenge record per agent. Save
// overwrites unconditionally: supersession is the only delete.
type ChallengeStore interface {
	Save(ctx context.Context, challenge models.Challenge) error
	Find(ctx context.Context, agent common.Address) (models.Challenge, error)
}

// CredentialStore holds at most one credential per agent.
type CredentialStore interface {
	Save(ctx context.Context, credential models.Credential) error
	Find(ctx context.Context, agent common.Address) (models.Credential, error)
}

// CooldownStore tracks the last challenge-request timestamp per agent.
type CooldownStore interface {
	Touch(ctx context.Context, agent common.Address, at uint64) error
	// LastAttempt returns sentinel.ErrNotFound if the agent never requested.
	LastAttempt(ctx context.Context, agent common.Address) (uint64, error)
}

// Counter names the global terminal-event counters.
type Counter string

const (
	CounterIssued   Counter = "challenges_issued"
	CounterPassed   Counter = "challenges_passed"
	CounterFailed   Counter = "challenges_failed"
	CounterRenewals Counter = "renewals"
	CounterDecayed  Counter = "decayed"
)

// StatsStore accumulates the global counters. Each Incr corresponds to exactly
// one terminal event.
type StatsStore interface {
	Incr(ctx context.Context, counter Counter) error
	Snapshot(ctx context.Context) (models.Stats, error)
}
