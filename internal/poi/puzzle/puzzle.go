// Package puzzle implements seed derivation and the four deterministic answer
// families. Every function here is pure: expected answers depend only on the
// puzzle type, the seed, the agent, and the issuance-time snapshot, never on
// the current head, so verification replays identically at any point in the
// submission window.
//
// Known limitation, preserved deliberately: the seed mixes the per-block
// entropy, which is shared by all requests ordered in the same block, and
// nothing binds a challenge to the machine that solves it. A human relaying
// challenges to an external reasoning service can pass. The seed formula is
// kept bit-compatible rather than silently hardened.
package puzzle

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"agentproof/internal/poi/models"
	dErrors "agentproof/pkg/domain-errors"
)

// The first 50 primes. Family 1 looks up a 1-indexed entry selected by the
// seed.
var primes = [50]uint64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29,
	31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 103, 107, 109, 113,
	127, 131, 137, 139, 149, 151, 157, 163, 167, 173,
	179, 181, 191, 193, 197, 199, 211, 223, 227, 229,
}

// Prime returns the n-th prime, 1-indexed over the fixed 50-entry table.
func Prime(n int) (uint64, error) {
	if n < 1 || n > len(primes) {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "prime index %d out of range [1,%d]", n, len(primes))
	}
	return primes[n-1], nil
}

// Fibonacci computes F(n) iteratively with F(0)=0, F(1)=1.
func Fibonacci(n uint64) uint64 {
	a, b := uint64(0), uint64(1)
	for i := uint64(0); i < n; i++ {
		a, b = b, a+b
	}
	return a
}

// word encodes v as a 32-byte big-endian word, matching how uint256 values
// are packed on the chain the identities live on.
func word(v uint64) []byte {
	b := make([]byte, 32)
	new(big.Int).SetUint64(v).FillBytes(b)
	return b
}

// seedMod interprets the seed as a 256-bit unsigned integer modulo m.
func seedMod(seed common.Hash, m int64) int64 {
	return new(big.Int).Mod(new(big.Int).SetBytes(seed[:]), big.NewInt(m)).Int64()
}

// DeriveSeed computes the challenge seed:
//
//	keccak256(entropy ‖ timestamp ‖ agent ‖ issuedCounter)
//
// The entropy is unknown to the caller before its request is ordered, and the
// issued counter makes seeds distinct within one block.
func DeriveSeed(entropy common.Hash, timestamp uint64, agent common.Address, issuedCounter uint64) common.Hash {
	return common.BytesToHash(crypto.Keccak256(entropy[:], word(timestamp), agent[:], word(issuedCounter)))
}

// TypeFromSeed rotates uniformly over the four families: seed mod 4 + 1.
func TypeFromSeed(seed common.Hash) models.PuzzleType {
	return models.PuzzleType(seedMod(seed, 4) + 1)
}

// Expected recomputes the answer for a challenge from its issuance-time
// snapshot. Equality against a submission is exact over the full hash.
func Expected(typ models.PuzzleType, seed common.Hash, agent common.Address, issuedBlock, issuedTime uint64) (common.Hash, error) {
	switch typ {
	case models.PuzzlePrimeLookup:
		// index = seed mod 20 + 1; answer = keccak(seed ‖ prime)
		p, err := Prime(int(seedMod(seed, 20)) + 1)
		if err != nil {
			return common.Hash{}, err
		}
		return common.BytesToHash(crypto.Keccak256(seed[:], word(p))), nil

	case models.PuzzleConditional:
		// Branch on the issuance snapshot, never the current head.
		if issuedBlock%7 < 3 {
			return common.BytesToHash(crypto.Keccak256(agent[:], seed[:])), nil
		}
		if issuedTime%2 == 0 {
			return common.BytesToHash(crypto.Keccak256(word(issuedBlock), seed[:])), nil
		}
		return common.BytesToHash(crypto.Keccak256([]byte("fallback"), seed[:], agent[:])), nil

	case models.PuzzleFibonacciXOR:
		// answer = keccak(seed XOR F(seed mod 20)), seed as a 256-bit integer.
		fib := Fibonacci(uint64(seedMod(seed, 20)))
		mixed := new(big.Int).Xor(new(big.Int).SetBytes(seed[:]), new(big.Int).SetUint64(fib))
		buf := make([]byte, 32)
		mixed.FillBytes(buf)
		return common.BytesToHash(crypto.Keccak256(buf)), nil

	case models.PuzzleHashChain:
		h1 := crypto.Keccak256(seed[:], agent[:])
		h2 := crypto.Keccak256(h1, word(issuedBlock))
		return common.BytesToHash(crypto.Keccak256(h2, word(issuedTime))), nil
	}

	return common.Hash{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown puzzle type %d", typ)
}
