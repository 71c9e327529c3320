package types

import (
	"context"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"

	"github.com/stellarinsured/insured-core/x/invariant"
)

// DefaultDisputeWindowSeconds keeps approved claims disputable for 24 hours
// after the decision.
const DefaultDisputeWindowSeconds = 86_400

// ClaimsConfig parameterizes the lifecycle machine.
type ClaimsConfig struct {
	// RequireOracleValidation makes approval demand a resolved oracle
	// reference.
	RequireOracleValidation bool `json:"require_oracle_validation"`
	// MinOracleSubmissions additionally gates approval on the resolution's
	// submission count when positive.
	MinOracleSubmissions uint32 `json:"min_oracle_submissions"`
	// DisputeWindowSeconds holds settlements open for dispute after the
	// decision timestamp. Zero disables the dispute fork.
	DisputeWindowSeconds int64 `json:"dispute_window_seconds"`
}

// DefaultClaimsConfig returns the default lifecycle parameters.
func DefaultClaimsConfig() ClaimsConfig {
	return ClaimsConfig{
		DisputeWindowSeconds: DefaultDisputeWindowSeconds,
	}
}

func (c ClaimsConfig) Validate() error {
	if c.DisputeWindowSeconds < 0 {
		return fmt.Errorf("dispute window cannot be negative")
	}
	if c.RequireOracleValidation && c.MinOracleSubmissions == 0 {
		return fmt.Errorf("oracle validation requires a positive minimum submission count")
	}
	return nil
}

// Claim is one payout request against a policy. The amount is immutable
// after creation; only the status and timestamps change, and records are
// never deleted.
type Claim struct {
	ID                   uint64               `json:"id"`
	PolicyID             uint64               `json:"policy_id"`
	Claimant             string               `json:"claimant"`
	Amount               sdkmath.Int          `json:"amount"`
	Status               invariant.ClaimState `json:"status"`
	SubmittedAtUnix      int64                `json:"submitted_at_unix"`
	DecisionAtUnix       int64                `json:"decision_at_unix,omitempty"`
	DisputeWindowEndUnix int64                `json:"dispute_window_end_unix,omitempty"`
	SettledAtUnix        int64                `json:"settled_at_unix,omitempty"`
}

// Dispute is a governance challenge against a claim awaiting settlement.
type Dispute struct {
	ClaimID        uint64 `json:"claim_id"`
	RaisedBy       string `json:"raised_by"`
	Reason         string `json:"reason"`
	RaisedAtUnix   int64  `json:"raised_at_unix"`
	Resolved       bool   `json:"resolved"`
	Upheld         bool   `json:"upheld,omitempty"`
	ResolvedBy     string `json:"resolved_by,omitempty"`
	ResolvedAtUnix int64  `json:"resolved_at_unix,omitempty"`
}

func (d Dispute) ValidateBasic() error {
	if strings.TrimSpace(d.RaisedBy) == "" {
		return fmt.Errorf("dispute raiser cannot be empty")
	}
	if strings.TrimSpace(d.Reason) == "" {
		return fmt.Errorf("dispute reason cannot be empty")
	}
	return nil
}

// Policy is the claims module's view of an issued policy. Policy issuance
// and renewal bookkeeping live outside the core.
type Policy struct {
	ID             uint64      `json:"id"`
	Holder         string      `json:"holder"`
	CoverageAmount sdkmath.Int `json:"coverage_amount"`
	Active         bool        `json:"active"`
}

// PolicySource provides policy records to the lifecycle machine.
type PolicySource interface {
	GetPolicy(ctx context.Context, policyID uint64) (Policy, error)
}
