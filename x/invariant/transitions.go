package invariant

import (
	errorsmod "cosmossdk.io/errors"
)

// ClaimState enumerates the claim lifecycle states.
type ClaimState string

const (
	ClaimSubmitted         ClaimState = "submitted"
	ClaimUnderReview       ClaimState = "under_review"
	ClaimApproved          ClaimState = "approved"
	ClaimRejected          ClaimState = "rejected"
	ClaimPendingSettlement ClaimState = "pending_settlement"
	ClaimDisputed          ClaimState = "disputed"
	ClaimSettled           ClaimState = "settled"
)

// claimTransitions is the exhaustive whitelist of legal transitions. Any pair
// not listed is rejected, including stage skips and backward moves.
var claimTransitions = map[ClaimState][]ClaimState{
	ClaimSubmitted:   {ClaimUnderReview},
	ClaimUnderReview: {ClaimApproved, ClaimRejected},
	// Approved settles directly, or parks pending settlement while a dispute
	// window is open.
	ClaimApproved:          {ClaimSettled, ClaimPendingSettlement},
	ClaimPendingSettlement: {ClaimSettled, ClaimDisputed},
	// A dispute either overturns the approval or is dismissed and settles.
	ClaimDisputed: {ClaimRejected, ClaimSettled},
}

// ValidClaimTransition reports whether current -> next is whitelisted.
func ValidClaimTransition(current, next ClaimState) bool {
	for _, allowed := range claimTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RequireClaimTransition returns ErrInvalidClaimState unless current -> next
// is whitelisted.
func RequireClaimTransition(current, next ClaimState) error {
	if !ValidClaimTransition(current, next) {
		return errorsmod.Wrapf(ErrInvalidClaimState, "%s -> %s", current, next)
	}
	return nil
}

// Terminal reports whether no transition leads out of the state.
func (s ClaimState) Terminal() bool {
	return len(claimTransitions[s]) == 0
}
