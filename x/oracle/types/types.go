package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

const (
	// DefaultMinSubmissions gates resolution on a minimum submission count.
	DefaultMinSubmissions = 3

	// DefaultMaxDeviationBps is the outlier band around the median (15%).
	DefaultMaxDeviationBps = 1500

	// DefaultConsensusThresholdBps is the accepted fraction required for
	// consensus (80%).
	DefaultConsensusThresholdBps = 8000

	// DefaultStalenessSeconds rejects submissions older than one hour at
	// resolution time.
	DefaultStalenessSeconds = 3600
)

// ResolverConfig parameterizes consensus resolution.
type ResolverConfig struct {
	MinSubmissions        uint32 `json:"min_submissions"`
	MaxDeviationBps       uint32 `json:"max_deviation_bps"`
	ConsensusThresholdBps uint32 `json:"consensus_threshold_bps"`
	StalenessSeconds      int64  `json:"staleness_seconds"`
}

// DefaultResolverConfig returns the default resolution parameters.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		MinSubmissions:        DefaultMinSubmissions,
		MaxDeviationBps:       DefaultMaxDeviationBps,
		ConsensusThresholdBps: DefaultConsensusThresholdBps,
		StalenessSeconds:      DefaultStalenessSeconds,
	}
}

func (c ResolverConfig) Validate() error {
	if c.MinSubmissions == 0 {
		return fmt.Errorf("minimum submissions must be positive")
	}
	if c.ConsensusThresholdBps == 0 || c.ConsensusThresholdBps > 10_000 {
		return fmt.Errorf("consensus threshold must be in (0, 10000] bps")
	}
	if c.MaxDeviationBps > 10_000 {
		return fmt.Errorf("max deviation must be at most 10000 bps")
	}
	if c.StalenessSeconds <= 0 {
		return fmt.Errorf("staleness threshold must be positive")
	}
	return nil
}

// DataRequest collects independent submissions about one claim.
type DataRequest struct {
	ID           uint64 `json:"id"`
	ClaimID      uint64 `json:"claim_id"`
	OpenedBy     string `json:"opened_by"`
	OpenedAtUnix int64  `json:"opened_at_unix"`
}

// Submission is one source's value for a data request. At most one is
// accepted per source per request.
type Submission struct {
	Source          string      `json:"source"`
	Value           sdkmath.Int `json:"value"`
	SubmittedAtUnix int64       `json:"submitted_at_unix"`
}

// Resolution is the immutable consensus record derived from a request's final
// submission set, kept for audit and dispute review.
type Resolution struct {
	RequestID       uint64      `json:"request_id"`
	ClaimID         uint64      `json:"claim_id"`
	ConsensusValue  sdkmath.Int `json:"consensus_value"`
	SubmissionCount uint32      `json:"submission_count"`
	AcceptedCount   uint32      `json:"accepted_count"`
	RejectedCount   uint32      `json:"rejected_count"`
	FinalizedAtUnix int64       `json:"finalized_at_unix"`
}
