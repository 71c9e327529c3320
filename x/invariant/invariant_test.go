package invariant_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/stellarinsured/insured-core/x/invariant"
)

func TestSafeAddOverflowAtAmountBound(t *testing.T) {
	sum, err := invariant.SafeAdd(invariant.MaxAmount().Sub(sdkmath.NewInt(1)), sdkmath.NewInt(1))
	require.NoError(t, err)
	require.True(t, sum.Equal(invariant.MaxAmount()))

	_, err = invariant.SafeAdd(invariant.MaxAmount(), sdkmath.NewInt(1))
	require.ErrorIs(t, err, invariant.ErrOverflow)
}

func TestSafeSubUnderflowAtAmountBound(t *testing.T) {
	_, err := invariant.SafeSub(invariant.MaxAmount().Neg(), sdkmath.NewInt(2))
	require.ErrorIs(t, err, invariant.ErrOverflow)

	diff, err := invariant.SafeSub(sdkmath.NewInt(10), sdkmath.NewInt(4))
	require.NoError(t, err)
	require.True(t, diff.Equal(sdkmath.NewInt(6)))
}

func TestSafeMulOverflow(t *testing.T) {
	_, err := invariant.SafeMul(invariant.MaxAmount(), sdkmath.NewInt(2))
	require.ErrorIs(t, err, invariant.ErrOverflow)

	product, err := invariant.SafeMul(sdkmath.NewInt(1_000_000), sdkmath.NewInt(10_000))
	require.NoError(t, err)
	require.True(t, product.Equal(sdkmath.NewInt(10_000_000_000)))
}

func TestAmountPositiveRejectsZeroNegativeAndNil(t *testing.T) {
	require.NoError(t, invariant.AmountPositive(sdkmath.NewInt(1)))
	require.ErrorIs(t, invariant.AmountPositive(sdkmath.NewInt(0)), invariant.ErrInvalidAmount)
	require.ErrorIs(t, invariant.AmountPositive(sdkmath.NewInt(-5)), invariant.ErrInvalidAmount)
	require.ErrorIs(t, invariant.AmountPositive(sdkmath.Int{}), invariant.ErrInvalidAmount)
}

func TestCoverageConstraint(t *testing.T) {
	require.NoError(t, invariant.CoverageConstraint(sdkmath.NewInt(500), sdkmath.NewInt(500)))
	err := invariant.CoverageConstraint(sdkmath.NewInt(501), sdkmath.NewInt(500))
	require.ErrorIs(t, err, invariant.ErrCoverageExceeded)
}

func TestLiquiditySufficient(t *testing.T) {
	require.NoError(t, invariant.LiquiditySufficient(sdkmath.NewInt(100), sdkmath.NewInt(100)))
	err := invariant.LiquiditySufficient(sdkmath.NewInt(99), sdkmath.NewInt(100))
	require.ErrorIs(t, err, invariant.ErrLiquidityViolation)
}

func TestClaimTransitionWhitelist(t *testing.T) {
	allowed := [][2]invariant.ClaimState{
		{invariant.ClaimSubmitted, invariant.ClaimUnderReview},
		{invariant.ClaimUnderReview, invariant.ClaimApproved},
		{invariant.ClaimUnderReview, invariant.ClaimRejected},
		{invariant.ClaimApproved, invariant.ClaimSettled},
		{invariant.ClaimApproved, invariant.ClaimPendingSettlement},
		{invariant.ClaimPendingSettlement, invariant.ClaimSettled},
		{invariant.ClaimPendingSettlement, invariant.ClaimDisputed},
		{invariant.ClaimDisputed, invariant.ClaimRejected},
		{invariant.ClaimDisputed, invariant.ClaimSettled},
	}
	for _, pair := range allowed {
		require.True(t, invariant.ValidClaimTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
		require.NoError(t, invariant.RequireClaimTransition(pair[0], pair[1]))
	}

	denied := [][2]invariant.ClaimState{
		{invariant.ClaimSubmitted, invariant.ClaimApproved},
		{invariant.ClaimSubmitted, invariant.ClaimSettled},
		{invariant.ClaimUnderReview, invariant.ClaimSubmitted},
		{invariant.ClaimApproved, invariant.ClaimUnderReview},
		{invariant.ClaimRejected, invariant.ClaimUnderReview},
		{invariant.ClaimSettled, invariant.ClaimDisputed},
		{invariant.ClaimDisputed, invariant.ClaimApproved},
	}
	for _, pair := range denied {
		require.False(t, invariant.ValidClaimTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
		require.ErrorIs(t, invariant.RequireClaimTransition(pair[0], pair[1]), invariant.ErrInvalidClaimState)
	}
}

func TestTerminalStates(t *testing.T) {
	require.True(t, invariant.ClaimRejected.Terminal())
	require.True(t, invariant.ClaimSettled.Terminal())
	require.False(t, invariant.ClaimApproved.Terminal())
	require.False(t, invariant.ClaimDisputed.Terminal())
}
