package invariant

import (
	errorsmod "cosmossdk.io/errors"
)

// Violation codes keep the numbering of the deployed contract revisions so
// audit tooling can correlate failures across both codebases.
var (
	// ErrLiquidityViolation signals pool liquidity below outstanding reservations.
	ErrLiquidityViolation = errorsmod.Register(Codespace, 100, "pool liquidity below reserved total")

	// ErrInvalidClaimState signals a claim state transition outside the whitelist.
	ErrInvalidClaimState = errorsmod.Register(Codespace, 102, "invalid claim state transition")

	// ErrInvalidAmount signals a non-positive amount where a positive one is required.
	ErrInvalidAmount = errorsmod.Register(Codespace, 103, "amount must be positive")

	// ErrCoverageExceeded signals a claim amount above the policy coverage.
	ErrCoverageExceeded = errorsmod.Register(Codespace, 105, "claim amount exceeds policy coverage")

	// ErrOverflow signals arithmetic outside the 128-bit amount range.
	ErrOverflow = errorsmod.Register(Codespace, 107, "amount overflow")
)

// Codespace scopes the registered invariant violation codes.
const Codespace = "invariant"
