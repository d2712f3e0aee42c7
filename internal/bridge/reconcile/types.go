// Package reconcile resolves the circular dependency between the bridge call
// amount and the gas fee: the encoded amount changes the calldata, the
// calldata changes the gas estimate, and the gas estimate changes the amount
// that can be sent. The loop is bounded and purely sequential.
package reconcile

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// GasEstimator is the slice of the chain RPC surface the reconciler needs.
type GasEstimator interface {
	// EstimateGas returns the gas limit the node expects the given call to
	// consume.
	EstimateGas(ctx context.Context, from, to common.Address, calldata []byte) (uint64, error)
}

// CalldataBuilder produces the bridge call encoding for a base-token amount.
type CalldataBuilder func(baseTokens *big.Int) ([]byte, error)

// Round is one estimator sample: the amount that was encoded and the gas
// figure the estimator reported for that exact calldata.
type Round struct {
	BaseTokens *big.Int
	GasLimit   uint64
	Calldata   []byte
}

// Result is the adopted (gasLimit, calldata, amount) triple plus the full
// round history for observability. The invariant is that Calldata was built
// from BaseTokens and GasLimit is the estimator's answer for that calldata.
type Result struct {
	BaseTokens *big.Int
	GasLimit   uint64
	Calldata   []byte
	Rounds     []Round
}

// Policy controls how many estimation rounds run and which round is adopted.
type Policy struct {
	// MaxRounds bounds the loop; must be at least 1.
	MaxRounds int

	// AdoptRound is the index of the round whose result is adopted when no
	// convergence predicate is set.
	AdoptRound int

	// Converged, when set, stops the loop once two consecutive gas figures
	// satisfy it; the last round is then adopted. If the loop exhausts
	// MaxRounds without converging, the last round is adopted as well.
	Converged func(prev, current uint64) bool
}

// CompatibilityPolicy runs exactly three estimation rounds and adopts the
// second round's result. The third round is only an observability sample;
// empirically the second round's figure is already stable enough.
func CompatibilityPolicy() Policy {
	return Policy{MaxRounds: 3, AdoptRound: 1}
}

// ConvergentPolicy stops as soon as two consecutive gas estimates differ by
// at most tolerance and adopts the final round, bounded by maxRounds.
func ConvergentPolicy(maxRounds int, tolerance uint64) Policy {
	return Policy{
		MaxRounds:  maxRounds,
		AdoptRound: -1,
		Converged: func(prev, current uint64) bool {
			if prev > current {
				return prev-current <= tolerance
			}
			return current-prev <= tolerance
		},
	}
}
