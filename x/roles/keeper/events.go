package keeper

// Event vocabulary for the roles module.
const (
	EventTypeAdminInitialized            = "roles_admin_initialized"
	EventTypeRoleGranted                 = "role_granted"
	EventTypeRoleRevoked                 = "role_revoked"
	EventTypeTrustedContractRegistered   = "trusted_contract_registered"
	EventTypeTrustedContractUnregistered = "trusted_contract_unregistered"

	AttributeKeyIdentity = "identity"
	AttributeKeyRole     = "role"
	AttributeKeyActor    = "actor"
	AttributeKeyContract = "contract"
)
