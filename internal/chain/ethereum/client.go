// Package ethereum provides the production chain.Source and chain.Registry
// backed by an EVM node over RPC.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	gethcore "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"agentproof/internal/chain"
)

// balanceOf is the only registry method the engine consumes; membership is
// balance > 0.
const registryABIJSON = `[{"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

// Client implements chain.Source and chain.Registry against a live node.
type Client struct {
	rpcClient   *gethrpc.Client
	eth         *ethclient.Client
	registry    common.Address
	registryABI abi.ABI
}

// Dial connects to the configured RPC endpoint and binds the registry
// contract address.
func Dial(ctx context.Context, rpcURL string, registry common.Address) (*Client, error) {
	rpcURL = strings.TrimSpace(rpcURL)
	if rpcURL == "" {
		return nil, errors.New("chain RPC URL is required")
	}

	rpcClient, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial chain node: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(registryABIJSON))
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("parse registry ABI: %w", err)
	}

	return &Client{
		rpcClient:   rpcClient,
		eth:         ethclient.NewClient(rpcClient),
		registry:    registry,
		registryABI: parsed,
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// Head returns the latest block as a chain.Head snapshot. The per-block
// unpredictable value is the header's prevrandao (mix digest) on post-merge
// chains; older chains fall back to the block hash.
func (c *Client) Head(ctx context.Context) (chain.Head, error) {
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return chain.Head{}, fmt.Errorf("fetch latest header: %w", err)
	}

	entropy := header.MixDigest
	if entropy == (common.Hash{}) {
		entropy = header.Hash()
	}

	return chain.Head{
		Number:  header.Number.Uint64(),
		Time:    header.Time,
		Entropy: entropy,
	}, nil
}

// BalanceOf performs an eth_call against the registry contract.
func (c *Client) BalanceOf(ctx context.Context, agent common.Address) (*big.Int, error) {
	data, err := c.registryABI.Pack("balanceOf", agent)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf call: %w", err)
	}

	out, err := c.eth.CallContract(ctx, gethcore.CallMsg{To: &c.registry, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call registry balanceOf: %w", err)
	}

	results, err := c.registryABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf result: %w", err)
	}
	if len(results) != 1 {
		return nil, errors.New("unexpected balanceOf result arity")
	}

	balance, ok := results[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected balanceOf result type")
	}
	return balance, nil
}
