package types

const (
	// ModuleName is the riskpool module namespace.
	ModuleName = "riskpool"

	// StoreKey is the module KV store key.
	StoreKey = ModuleName
)

var (
	// ConfigKey stores the pool configuration.
	ConfigKey = []byte{0x01}

	// StatsKey stores the aggregate pool statistics.
	StatsKey = []byte{0x02}

	// ProviderKeyPrefix stores per-provider stakes.
	ProviderKeyPrefix = []byte{0x03}

	// ReservationKeyPrefix stores per-claim liquidity reservations.
	ReservationKeyPrefix = []byte{0x04}

	// PausedKey stores the pause flag.
	PausedKey = []byte{0x05}
)
