// Package chain defines the external collaborator contracts the credential
// engine consumes: a sequence/clock/randomness source and a membership
// registry. Both are interface-driven so the engine can run against a live
// chain, a simulated backend, or a deterministic fake in tests.
package chain

//go:generate mockgen -source=chain.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Head is a snapshot of the sequencer at one point: monotonic block number,
// wall-clock block timestamp (unix seconds), and the per-block unpredictable
// value used for challenge seeding.
//
// The entropy is shared by every request ordered within the same block, so an
// agent's seed is influenced by data visible to other callers in that block.
// This is a known limitation of the seeding scheme, kept for compatibility;
// see internal/poi/puzzle.
type Head struct {
	Number  uint64
	Time    uint64
	Entropy common.Hash
}

// Source supplies the current chain head. Implementations must return
// monotonically non-decreasing numbers and timestamps across calls.
type Source interface {
	Head(ctx context.Context) (Head, error)
}

// Registry is the membership gate for challenge requests. An agent is
// registered iff its balance is positive (ERC-721 style ownership check).
type Registry interface {
	BalanceOf(ctx context.Context, agent common.Address) (*big.Int, error)
}
