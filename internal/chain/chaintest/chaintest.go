// Package chaintest provides deterministic chain.Source and chain.Registry
// implementations for tests: the head only moves when the test moves it.
package chaintest

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"agentproof/internal/chain"
)

// SecondsPerBlock approximates mainnet pacing when a test advances blocks
// without specifying elapsed time.
const SecondsPerBlock = 12

// Source is a settable chain head.
type Source struct {
	mu   sync.Mutex
	head chain.Head
}

// NewSource starts at the given head. A zero entropy is replaced with a value
// derived from the block number so seeds are never all-zero by accident.
func NewSource(head chain.Head) *Source {
	s := &Source{head: head}
	if s.head.Entropy == (common.Hash{}) {
		s.head.Entropy = entropyFor(s.head.Number)
	}
	return s
}

func (s *Source) Head(_ context.Context) (chain.Head, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head, nil
}

// AdvanceBlocks moves the head forward n blocks, ticking the clock at
// SecondsPerBlock and rotating the entropy per block.
func (s *Source) AdvanceBlocks(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head.Number += n
	s.head.Time += n * SecondsPerBlock
	s.head.Entropy = entropyFor(s.head.Number)
}

// AdvanceTime moves the clock forward by d and the block number by the
// equivalent number of blocks.
func (s *Source) AdvanceTime(d time.Duration) {
	secs := uint64(d / time.Second)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head.Time += secs
	s.head.Number += secs / SecondsPerBlock
	s.head.Entropy = entropyFor(s.head.Number)
}

// SetEntropy pins the per-block unpredictable value; useful for asserting
// exact seed derivations.
func (s *Source) SetEntropy(entropy common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head.Entropy = entropy
}

func entropyFor(block uint64) common.Hash {
	return common.BytesToHash(crypto.Keccak256(new(big.Int).SetUint64(block).Bytes()))
}

// Registry is an in-memory membership set.
type Registry struct {
	mu       sync.Mutex
	balances map[common.Address]int64
}

func NewRegistry() *Registry {
	return &Registry{balances: make(map[common.Address]int64)}
}

// Register marks an agent as a member (balance 1).
func (r *Registry) Register(agent common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[agent] = 1
}

// Deregister removes an agent's membership.
func (r *Registry) Deregister(agent common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.balances, agent)
}

func (r *Registry) BalanceOf(_ context.Context, agent common.Address) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return big.NewInt(r.balances[agent]), nil
}
