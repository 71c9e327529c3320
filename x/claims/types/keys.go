package types

const (
	// ModuleName is the claims module namespace. It is also the component
	// identity the module presents on privileged cross-component calls.
	ModuleName = "claims"

	// StoreKey is the module KV store key.
	StoreKey = ModuleName
)

var (
	// ConfigKey stores the claims configuration.
	ConfigKey = []byte{0x01}

	// ClaimKeyPrefix stores claim records.
	ClaimKeyPrefix = []byte{0x02}

	// PolicyClaimKeyPrefix maps policy id -> claim id for duplicate rejection.
	PolicyClaimKeyPrefix = []byte{0x03}

	// ClaimCountKey stores the next claim sequence.
	ClaimCountKey = []byte{0x04}

	// ClaimOracleRefKeyPrefix maps claim id -> oracle request id for audit.
	ClaimOracleRefKeyPrefix = []byte{0x05}

	// DisputeKeyPrefix stores dispute records.
	DisputeKeyPrefix = []byte{0x06}

	// PausedKey stores the pause flag.
	PausedKey = []byte{0x07}
)
