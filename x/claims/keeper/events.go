package keeper

// Event vocabulary for the claims module.
const (
	EventTypeClaimsInitialized      = "claims_initialized"
	EventTypeClaimSubmitted         = "claim_submitted"
	EventTypeClaimUnderReview       = "claim_under_review"
	EventTypeClaimApproved          = "claim_approved"
	EventTypeClaimRejected          = "claim_rejected"
	EventTypeClaimPendingSettlement = "claim_pending_settlement"
	EventTypeClaimSettled           = "claim_settled"
	EventTypeClaimDisputed          = "claim_disputed"
	EventTypeDisputeResolved        = "dispute_resolved"
	EventTypeClaimsPaused           = "claims_paused"
	EventTypeClaimsUnpaused         = "claims_unpaused"

	AttributeKeyClaimID   = "claim_id"
	AttributeKeyPolicyID  = "policy_id"
	AttributeKeyClaimant  = "claimant"
	AttributeKeyAmount    = "amount"
	AttributeKeyActor     = "actor"
	AttributeKeyWindowEnd = "window_end"
	AttributeKeyReason    = "reason"
	AttributeKeyUpheld    = "upheld"
)
