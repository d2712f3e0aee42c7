package reconcile

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github/chapool/bridge-withdraw/internal/bridge/errs"
)

// Reconciler runs the bounded fixed-point loop that settles on a
// (gasLimit, calldata) pair consistent with spending a full balance net of
// the fee.
type Reconciler struct {
	estimator GasEstimator
	build     CalldataBuilder
	policy    Policy
}

// NewReconciler validates the policy and builds a reconciler around the
// given estimator and calldata builder.
func NewReconciler(estimator GasEstimator, build CalldataBuilder, policy Policy) (*Reconciler, error) {
	if estimator == nil || build == nil {
		return nil, errors.New("estimator and calldata builder are required")
	}
	if policy.MaxRounds < 1 {
		return nil, errors.New("policy must allow at least one round")
	}
	if policy.Converged == nil && (policy.AdoptRound < 0 || policy.AdoptRound >= policy.MaxRounds) {
		return nil, errors.Errorf("adopt round %d is out of range for %d rounds", policy.AdoptRound, policy.MaxRounds)
	}

	return &Reconciler{
		estimator: estimator,
		build:     build,
		policy:    policy,
	}, nil
}

// ToBaseTokens converts a wei balance into base-token units by integer floor
// division with 10^decimalsGap. The sub-unit remainder has no representation
// on the layer-1 ledger and stays behind in the account.
func ToBaseTokens(wei *big.Int, decimalsGap uint) *big.Int {
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimalsGap)), nil)
	return new(big.Int).Quo(wei, factor)
}

// Run executes the estimation rounds for the given base-token balance.
// Round 0 encodes the full balance; every later round re-encodes
// balance minus the previous round's gas figure, taken in base-token units,
// and asks the estimator again with the fresh calldata. An estimator failure
// at any round aborts the run with no partial result.
func (r *Reconciler) Run(ctx context.Context, from, to common.Address, balance *big.Int) (*Result, error) {
	if balance == nil || balance.Sign() <= 0 {
		return nil, errors.Wrap(errs.ErrFormat, "balance must be positive")
	}

	rounds := make([]Round, 0, r.policy.MaxRounds)
	for i := 0; i < r.policy.MaxRounds; i++ {
		amount := new(big.Int).Set(balance)
		if i > 0 {
			prevGas := rounds[i-1].GasLimit
			amount.Sub(balance, new(big.Int).SetUint64(prevGas))
			if amount.Sign() <= 0 {
				return nil, errors.Wrapf(errs.ErrEstimation,
					"balance %s does not cover the estimated fee %d", balance, prevGas)
			}
		}

		calldata, err := r.build(amount)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build calldata")
		}

		gas, err := r.estimator.EstimateGas(ctx, from, to, calldata)
		if err != nil {
			return nil, errors.Wrapf(err, "estimation round %d failed", i)
		}

		rounds = append(rounds, Round{BaseTokens: amount, GasLimit: gas, Calldata: calldata})

		log.Debug().
			Int("round", i).
			Str("base_tokens", amount.String()).
			Uint64("gas", gas).
			Msg("Reconciliation round")

		if r.policy.Converged != nil && i > 0 && r.policy.Converged(rounds[i-1].GasLimit, gas) {
			break
		}
	}

	adopt := r.policy.AdoptRound
	if r.policy.Converged != nil {
		adopt = len(rounds) - 1
	}
	chosen := rounds[adopt]

	return &Result{
		BaseTokens: chosen.BaseTokens,
		GasLimit:   chosen.GasLimit,
		Calldata:   chosen.Calldata,
		Rounds:     rounds,
	}, nil
}
