package invariant

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

// AmountPositive rejects zero and negative amounts.
func AmountPositive(amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return errorsmod.Wrapf(ErrInvalidAmount, "got %s", amount)
	}
	return nil
}

// CoverageConstraint rejects claim amounts above the policy coverage.
func CoverageConstraint(claimAmount, coverageAmount sdkmath.Int) error {
	if claimAmount.GT(coverageAmount) {
		return errorsmod.Wrapf(ErrCoverageExceeded, "claim %s, coverage %s", claimAmount, coverageAmount)
	}
	return nil
}

// LiquiditySufficient is the liquidity preservation invariant: after every
// committed pool mutation, total liquidity must cover the reserved total.
func LiquiditySufficient(totalLiquidity, reservedTotal sdkmath.Int) error {
	if totalLiquidity.LT(reservedTotal) {
		return errorsmod.Wrapf(ErrLiquidityViolation, "total %s, reserved %s", totalLiquidity, reservedTotal)
	}
	return nil
}
