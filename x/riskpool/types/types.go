package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// PoolConfig is the pool parameterization, set once at initialization.
type PoolConfig struct {
	MinProviderStake sdkmath.Int `json:"min_provider_stake"`
}

func (c PoolConfig) Validate() error {
	if c.MinProviderStake.IsNil() || !c.MinProviderStake.IsPositive() {
		return fmt.Errorf("minimum provider stake must be positive")
	}
	return nil
}

// PoolStats is the aggregate liquidity ledger. The liquidity preservation
// invariant, TotalLiquidity >= ReservedTotal, must hold after every
// committed mutation.
type PoolStats struct {
	TotalLiquidity sdkmath.Int `json:"total_liquidity"`
	TotalPaidOut   sdkmath.Int `json:"total_paid_out"`
	ReservedTotal  sdkmath.Int `json:"reserved_total"`
	ProviderCount  uint64      `json:"provider_count"`
}

// NewPoolStats returns zeroed pool statistics.
func NewPoolStats() PoolStats {
	return PoolStats{
		TotalLiquidity: sdkmath.ZeroInt(),
		TotalPaidOut:   sdkmath.ZeroInt(),
		ReservedTotal:  sdkmath.ZeroInt(),
	}
}

// Available returns the liquidity not earmarked for reservations.
func (s PoolStats) Available() sdkmath.Int {
	return s.TotalLiquidity.Sub(s.ReservedTotal)
}

// ProviderStake tracks one liquidity provider. Created on first deposit,
// removed only when the principal reaches zero.
type ProviderStake struct {
	Principal       sdkmath.Int `json:"principal"`
	CumulativeStake sdkmath.Int `json:"cumulative_stake"`
	JoinedAtUnix    int64       `json:"joined_at_unix"`
}

// ClaimReservation earmarks pool liquidity for one approved claim. Its
// existence is the authoritative record that the payout is funded; it is
// created exactly once on approval and consumed exactly once on settlement.
type ClaimReservation struct {
	ClaimID        uint64      `json:"claim_id"`
	ReservedAmount sdkmath.Int `json:"reserved_amount"`
	ReservedAtUnix int64       `json:"reserved_at_unix"`
}
