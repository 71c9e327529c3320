package types

import (
	errorsmod "cosmossdk.io/errors"
)

var (
	// ErrUnauthorized signals a caller without the required permission.
	ErrUnauthorized = errorsmod.Register(ModuleName, 2, "unauthorized")

	// ErrPaused signals a mutation attempted while the module is paused.
	ErrPaused = errorsmod.Register(ModuleName, 3, "claims module is paused")

	// ErrInvalidInput signals a structurally invalid argument.
	ErrInvalidInput = errorsmod.Register(ModuleName, 4, "invalid input")

	// ErrNotFound signals a missing claim, policy or dispute.
	ErrNotFound = errorsmod.Register(ModuleName, 5, "not found")

	// ErrAlreadyExists signals a duplicate claim or dispute.
	ErrAlreadyExists = errorsmod.Register(ModuleName, 6, "already exists")

	// ErrInvalidState signals an operation against a claim in the wrong state.
	ErrInvalidState = errorsmod.Register(ModuleName, 7, "invalid state")

	// ErrNotInitialized signals use before module initialization.
	ErrNotInitialized = errorsmod.Register(ModuleName, 8, "claims module not initialized")

	// ErrAlreadyInitialized signals a second initialization.
	ErrAlreadyInitialized = errorsmod.Register(ModuleName, 9, "claims module already initialized")

	// ErrOracleValidationFailed signals approval without an acceptable
	// resolved oracle reference while oracle validation is mandatory.
	ErrOracleValidationFailed = errorsmod.Register(ModuleName, 10, "oracle validation failed")

	// ErrDisputeWindowClosed signals a dispute raised after the window end.
	ErrDisputeWindowClosed = errorsmod.Register(ModuleName, 11, "dispute window closed")
)
