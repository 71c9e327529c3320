package types

import (
	errorsmod "cosmossdk.io/errors"
)

var (
	// ErrUnauthorized signals a caller without oracle permissions.
	ErrUnauthorized = errorsmod.Register(ModuleName, 2, "unauthorized")

	// ErrPaused signals a mutation attempted while the resolver is paused.
	ErrPaused = errorsmod.Register(ModuleName, 3, "oracle resolver is paused")

	// ErrNotFound signals a missing request, submission or resolution.
	ErrNotFound = errorsmod.Register(ModuleName, 4, "not found")

	// ErrDuplicateSubmission signals a second submission from one source.
	ErrDuplicateSubmission = errorsmod.Register(ModuleName, 5, "duplicate submission")

	// ErrStaleData signals no submission fresh enough to resolve.
	ErrStaleData = errorsmod.Register(ModuleName, 6, "oracle data is stale")

	// ErrInsufficientSubmissions signals a submission set below the minimum.
	ErrInsufficientSubmissions = errorsmod.Register(ModuleName, 7, "insufficient oracle submissions")

	// ErrConsensusNotReached signals an accepted fraction below the threshold.
	ErrConsensusNotReached = errorsmod.Register(ModuleName, 8, "consensus not reached")

	// ErrAlreadyFinalized signals a submission after resolution.
	ErrAlreadyFinalized = errorsmod.Register(ModuleName, 9, "request already finalized")

	// ErrInvalidInput signals a structurally invalid argument.
	ErrInvalidInput = errorsmod.Register(ModuleName, 10, "invalid input")
)
