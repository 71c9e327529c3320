package types

import (
	errorsmod "cosmossdk.io/errors"
)

var (
	// ErrUnauthorized signals a caller without the required role or permission.
	ErrUnauthorized = errorsmod.Register(ModuleName, 2, "unauthorized")

	// ErrInvalidRole signals an unknown role value.
	ErrInvalidRole = errorsmod.Register(ModuleName, 3, "invalid role")

	// ErrNotTrustedContract signals a cross-component caller outside the allowlist.
	ErrNotTrustedContract = errorsmod.Register(ModuleName, 4, "not a trusted contract")

	// ErrNotInitialized signals use before the protocol admin was set.
	ErrNotInitialized = errorsmod.Register(ModuleName, 5, "admin not initialized")

	// ErrAlreadyInitialized signals a second admin initialization.
	ErrAlreadyInitialized = errorsmod.Register(ModuleName, 6, "admin already initialized")
)
