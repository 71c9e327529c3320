package types

const (
	// ModuleName is the oracle module namespace.
	ModuleName = "oracle"

	// StoreKey is the module KV store key.
	StoreKey = ModuleName
)

var (
	// ConfigKey stores the resolver configuration.
	ConfigKey = []byte{0x01}

	// RequestKeyPrefix stores open data requests.
	RequestKeyPrefix = []byte{0x02}

	// RequestCountKey stores the next request sequence.
	RequestCountKey = []byte{0x03}

	// SubmissionKeyPrefix stores per-request source submissions.
	SubmissionKeyPrefix = []byte{0x04}

	// ResolutionKeyPrefix stores finalized consensus resolutions.
	ResolutionKeyPrefix = []byte{0x05}

	// PausedKey stores the pause flag.
	PausedKey = []byte{0x06}
)
