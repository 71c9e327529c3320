package keeper

// Event vocabulary for the riskpool module.
const (
	EventTypePoolInitialized     = "risk_pool_initialized"
	EventTypeLiquidityDeposited  = "liquidity_deposited"
	EventTypeLiquidityWithdrawn  = "liquidity_withdrawn"
	EventTypeLiquidityReserved   = "liquidity_reserved"
	EventTypeReservationReleased = "reservation_released"
	EventTypeReservedClaimPaid   = "reserved_claim_payout"
	EventTypeClaimPaid           = "claim_payout"
	EventTypePoolPaused          = "risk_pool_paused"
	EventTypePoolUnpaused        = "risk_pool_unpaused"

	AttributeKeyProvider       = "provider"
	AttributeKeyAmount         = "amount"
	AttributeKeyClaimID        = "claim_id"
	AttributeKeyRecipient      = "recipient"
	AttributeKeyActor          = "actor"
	AttributeKeyMinStake       = "min_provider_stake"
	AttributeKeyTotalLiquidity = "total_liquidity"
	AttributeKeyReservedTotal  = "reserved_total"
)
