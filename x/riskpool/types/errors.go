package types

import (
	errorsmod "cosmossdk.io/errors"
)

var (
	// ErrUnauthorized signals a caller without risk pool permissions.
	ErrUnauthorized = errorsmod.Register(ModuleName, 2, "unauthorized")

	// ErrPaused signals a mutation attempted while the pool is paused.
	ErrPaused = errorsmod.Register(ModuleName, 3, "risk pool is paused")

	// ErrInvalidInput signals a structurally invalid argument.
	ErrInvalidInput = errorsmod.Register(ModuleName, 4, "invalid input")

	// ErrInsufficientFunds signals available liquidity below the requested amount.
	ErrInsufficientFunds = errorsmod.Register(ModuleName, 5, "insufficient available liquidity")

	// ErrNotFound signals a missing provider or reservation.
	ErrNotFound = errorsmod.Register(ModuleName, 6, "not found")

	// ErrAlreadyExists signals a duplicate reservation for a claim.
	ErrAlreadyExists = errorsmod.Register(ModuleName, 7, "already exists")

	// ErrInvalidState signals internally inconsistent ledger state.
	ErrInvalidState = errorsmod.Register(ModuleName, 8, "invalid state")

	// ErrNotInitialized signals use before pool initialization.
	ErrNotInitialized = errorsmod.Register(ModuleName, 9, "risk pool not initialized")

	// ErrAlreadyInitialized signals a second pool initialization.
	ErrAlreadyInitialized = errorsmod.Register(ModuleName, 10, "risk pool already initialized")
)
