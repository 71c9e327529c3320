package keeper

// Event vocabulary for the oracle module.
const (
	EventTypeRequestOpened    = "oracle_request_opened"
	EventTypeDataSubmitted    = "oracle_data_submitted"
	EventTypeRequestResolved  = "oracle_request_resolved"
	EventTypeResolverPaused   = "oracle_paused"
	EventTypeResolverUnpaused = "oracle_unpaused"

	AttributeKeyRequestID      = "request_id"
	AttributeKeyClaimID        = "claim_id"
	AttributeKeySource         = "source"
	AttributeKeyValue          = "value"
	AttributeKeyConsensusValue = "consensus_value"
	AttributeKeyAcceptedCount  = "accepted_count"
	AttributeKeyRejectedCount  = "rejected_count"
	AttributeKeyActor          = "actor"
)
