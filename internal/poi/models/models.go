// Package models holds the credential lifecycle records and the protocol
// constants that govern them. Timestamps are chain timestamps (unix seconds)
// so every projection is a pure function of a record and a chain head.
package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Protocol timing constants. Deadline windows are block counts against the
// chain's sequence number; everything else is wall time measured by block
// timestamps.
const (
	ValidityPeriod    = 7 * 24 * time.Hour
	GracePeriod       = 24 * time.Hour
	MaintenanceWindow = 2 * 24 * time.Hour

	CooldownInitial     = time.Hour
	CooldownMaintenance = 30 * time.Minute

	// Maintenance gets a tighter deadline: routine renewal should be faster
	// than first-time onboarding.
	DeadlineWindowInitial     uint64 = 50
	DeadlineWindowMaintenance uint64 = 25

	ReputationInitial = 50
	ReputationReward  = 5
	ReputationPenalty = 10
	ReputationMax     = 100
	ReputationMin     = 0
)

// Seconds converts a protocol duration to chain-timestamp arithmetic.
func Seconds(d time.Duration) uint64 { return uint64(d / time.Second) }

// ClampReputation bounds a score to [ReputationMin, ReputationMax].
func ClampReputation(v int) int {
	if v < ReputationMin {
		return ReputationMin
	}
	if v > ReputationMax {
		return ReputationMax
	}
	return v
}

// PuzzleType selects one of the four deterministic answer families.
type PuzzleType uint8

const (
	PuzzlePrimeLookup  PuzzleType = 1
	PuzzleConditional  PuzzleType = 2
	PuzzleFibonacciXOR PuzzleType = 3
	PuzzleHashChain    PuzzleType = 4
)

// IsValid checks if the puzzle type is one of the supported values.
func (t PuzzleType) IsValid() bool {
	return t >= PuzzlePrimeLookup && t <= PuzzleHashChain
}

// String returns a stable name for logs and events.
func (t PuzzleType) String() string {
	switch t {
	case PuzzlePrimeLookup:
		return "prime_lookup"
	case PuzzleConditional:
		return "conditional"
	case PuzzleFibonacciXOR:
		return "fibonacci_xor"
	case PuzzleHashChain:
		return "hash_chain"
	}
	return "unknown"
}

// Challenge is the one live puzzle per agent. It is overwritten by the next
// request and completed exactly once; a completed or expired challenge is
// never deleted, only superseded.
type Challenge struct {
	Agent         common.Address `json:"agent"`
	Type          PuzzleType     `json:"type"`
	Seed          common.Hash    `json:"seed"`
	Deadline      uint64         `json:"deadline"`
	IssuedAtBlock uint64         `json:"issued_at_block"`
	IssuedAtTime  uint64         `json:"issued_at_time"`
	Completed     bool           `json:"completed"`
	Maintenance   bool           `json:"maintenance"`
}

// Exists reports whether a challenge was ever issued; a zero deadline means
// the record is vacant.
func (c Challenge) Exists() bool { return c.Deadline != 0 }

// ExpiredAt reports whether the submission deadline has passed at the given
// block. Expiry is recognized lazily, on the next read.
func (c Challenge) ExpiredAt(block uint64) bool { return block > c.Deadline }

// LiveAt reports whether the challenge still accepts an answer at the given
// block.
func (c Challenge) LiveAt(block uint64) bool {
	return c.Exists() && !c.Completed && !c.ExpiredAt(block)
}

// Credential asserts that an agent has passed verification. At most one per
// agent; it persists across challenges and is invalidated logically, never
// deleted.
type Credential struct {
	Agent            common.Address `json:"agent"`
	IssuedAt         uint64         `json:"issued_at"`
	ExpiresAt        uint64         `json:"expires_at"`
	ChallengeType    PuzzleType     `json:"challenge_type"`
	BlockSolved      uint64         `json:"block_solved"`
	Valid            bool           `json:"valid"`
	MaintenanceCount uint64         `json:"maintenance_count"`
	LastMaintained   uint64         `json:"last_maintained"`
	Reputation       int            `json:"reputation"`
}

// HasValidPoI reports whether the credential is valid and unexpired at the
// given chain time.
func (c Credential) HasValidPoI(now uint64) bool {
	return c.Valid && now <= c.ExpiresAt
}

// InGracePeriod reports whether the credential has expired but can still be
// renewed. Grace is derived, never stored: decay is the only persisted
// terminal transition.
func (c Credential) InGracePeriod(now uint64) bool {
	return c.Valid && now > c.ExpiresAt && now <= c.ExpiresAt+Seconds(GracePeriod)
}

// PastGrace reports whether the renewal window has closed entirely.
func (c Credential) PastGrace(now uint64) bool {
	return now > c.ExpiresAt+Seconds(GracePeriod)
}

// InMaintenanceWindow reports whether maintenance may be requested: at most
// MaintenanceWindow before expiry. The upper bound is enforced by the decay
// check, not here, so renewals during grace stay possible.
func (c Credential) InMaintenanceWindow(now uint64) bool {
	return now+Seconds(MaintenanceWindow) >= c.ExpiresAt
}

// DaysUntilExpiry returns whole days remaining, or 0 if expired or invalid.
func (c Credential) DaysUntilExpiry(now uint64) uint64 {
	if !c.Valid || now >= c.ExpiresAt {
		return 0
	}
	return (c.ExpiresAt - now) / 86400
}

// Stats are the global terminal-event counters. Each counter increments
// exactly once per event.
type Stats struct {
	ChallengesIssued uint64 `json:"challenges_issued"`
	ChallengesPassed uint64 `json:"challenges_passed"`
	ChallengesFailed uint64 `json:"challenges_failed"`
	Renewals         uint64 `json:"renewals"`
	Decayed          uint64 `json:"decayed"`
}
