// Package simulated provides a wall-clock-driven chain for development runs
// without an RPC endpoint. The head advances one block every SecondsPerBlock
// and every agent counts as registered, so the full lifecycle is exercisable
// locally. Never use it where verification decisions matter.
package simulated

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"agentproof/internal/chain"
)

// SecondsPerBlock matches mainnet pacing.
const SecondsPerBlock = 12

// Chain implements chain.Source and chain.Registry off the wall clock.
type Chain struct {
	genesisTime  uint64
	genesisBlock uint64
	now          func() time.Time
}

// New starts a simulated chain at the current wall-clock time.
func New() *Chain {
	return &Chain{
		genesisTime:  uint64(time.Now().Unix()),
		genesisBlock: 1,
		now:          time.Now,
	}
}

func (c *Chain) Head(_ context.Context) (chain.Head, error) {
	now := uint64(c.now().Unix())
	elapsed := now - c.genesisTime
	block := c.genesisBlock + elapsed/SecondsPerBlock
	return chain.Head{
		Number:  block,
		Time:    now,
		Entropy: common.BytesToHash(crypto.Keccak256(new(big.Int).SetUint64(block).Bytes())),
	}, nil
}

// BalanceOf reports every agent as a member.
func (c *Chain) BalanceOf(_ context.Context, _ common.Address) (*big.Int, error) {
	return big.NewInt(1), nil
}
