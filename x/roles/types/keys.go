package types

const (
	// ModuleName is the roles module namespace.
	ModuleName = "roles"

	// StoreKey is the module KV store key.
	StoreKey = ModuleName
)

var (
	// AdminKey stores the protocol admin identity.
	AdminKey = []byte{0x01}

	// RoleKeyPrefix stores identity -> role assignments.
	RoleKeyPrefix = []byte{0x02}

	// TrustedContractKeyPrefix stores the trusted component allowlist.
	TrustedContractKeyPrefix = []byte{0x03}
)
