package types

// Role is a named permission level. Each identity holds exactly one role at a
// time; identities without an assignment default to RoleUser.
type Role string

const (
	// RoleAdmin is the root administrator with full protocol access.
	RoleAdmin Role = "admin"
	// RoleGovernance is an approved governance participant.
	RoleGovernance Role = "governance"
	// RoleRiskPoolManager is authorized for liquidity operations.
	RoleRiskPoolManager Role = "risk_pool_manager"
	// RolePolicyManager is authorized to create and manage policies.
	RolePolicyManager Role = "policy_manager"
	// RoleClaimProcessor is authorized to approve and reject claims.
	RoleClaimProcessor Role = "claim_processor"
	// RoleUser is the default role for policyholders and liquidity providers.
	RoleUser Role = "user"
)

// Valid reports whether the role is one of the defined permission levels.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGovernance, RoleRiskPoolManager, RolePolicyManager, RoleClaimProcessor, RoleUser:
		return true
	}
	return false
}

// Permission predicates are derived from the role, never stored.

// CanAdmin reports permission for administrative actions.
func (r Role) CanAdmin() bool {
	return r == RoleAdmin
}

// CanManagePolicies reports permission to manage policies.
func (r Role) CanManagePolicies() bool {
	return r == RoleAdmin || r == RolePolicyManager
}

// CanProcessClaims reports permission to process claims.
func (r Role) CanProcessClaims() bool {
	return r == RoleAdmin || r == RoleClaimProcessor
}

// CanManageRiskPool reports permission for risk pool management.
func (r Role) CanManageRiskPool() bool {
	return r == RoleAdmin || r == RoleRiskPoolManager
}

// CanGovern reports permission to participate in governance.
func (r Role) CanGovern() bool {
	return r == RoleAdmin || r == RoleGovernance
}

// CanSubmitClaim reports permission to file a claim. Claim processors may not
// file their own claims.
func (r Role) CanSubmitClaim() bool {
	return r != RoleClaimProcessor
}
