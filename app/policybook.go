package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stellarinsured/insured-core/x/invariant"

	claimstypes "github.com/stellarinsured/insured-core/x/claims/types"
)

// PolicyBook is an in-memory PolicySource for hosts that manage policy
// issuance outside the core. It is safe for concurrent use.
type PolicyBook struct {
	mu       sync.RWMutex
	policies map[uint64]claimstypes.Policy
}

// NewPolicyBook returns an empty policy book.
func NewPolicyBook() *PolicyBook {
	return &PolicyBook{policies: make(map[uint64]claimstypes.Policy)}
}

// Add records an issued policy. Policy ids are caller-assigned and unique.
func (b *PolicyBook) Add(policy claimstypes.Policy) error {
	if policy.ID == 0 {
		return fmt.Errorf("policy id cannot be zero")
	}
	if strings.TrimSpace(policy.Holder) == "" {
		return fmt.Errorf("policy holder cannot be empty")
	}
	if err := invariant.AmountPositive(policy.CoverageAmount); err != nil {
		return fmt.Errorf("policy coverage: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.policies[policy.ID]; ok {
		return fmt.Errorf("policy %d already exists", policy.ID)
	}
	b.policies[policy.ID] = policy
	return nil
}

// GetPolicy implements claimstypes.PolicySource. Inactive policies are not
// claimable and read as missing.
func (b *PolicyBook) GetPolicy(_ context.Context, policyID uint64) (claimstypes.Policy, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	policy, ok := b.policies[policyID]
	if !ok || !policy.Active {
		return claimstypes.Policy{}, fmt.Errorf("policy %d not found", policyID)
	}
	return policy, nil
}
