package keeper

import (
	"context"
	"strings"
	"time"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/stellarinsured/insured-core/x/roles/types"
)

// Keeper owns the identity -> role mapping and the trusted-contract
// allowlist. Every other module authorizes privileged operations through it.
type Keeper struct {
	cdc          codec.Codec
	storeService store.KVStoreService
	logger       log.Logger

	Admin            collections.Item[string]
	Roles            collections.Map[string, string]
	TrustedContracts collections.KeySet[string]
}

// NewKeeper creates a new roles keeper.
func NewKeeper(
	cdc codec.Codec,
	storeService store.KVStoreService,
	logger log.Logger,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	return Keeper{
		cdc:          cdc,
		storeService: storeService,
		logger:       logger,
		Admin: collections.NewItem(
			sb,
			collections.NewPrefix(types.AdminKey),
			"admin",
			collections.StringValue,
		),
		Roles: collections.NewMap(
			sb,
			collections.NewPrefix(types.RoleKeyPrefix),
			"roles",
			collections.StringKey,
			collections.StringValue,
		),
		TrustedContracts: collections.NewKeySet(
			sb,
			collections.NewPrefix(types.TrustedContractKeyPrefix),
			"trusted_contracts",
			collections.StringKey,
		),
	}
}

// InitializeAdmin sets the protocol admin and grants it the admin role.
// One-time operation; fails once an admin exists.
func (k Keeper) InitializeAdmin(ctx context.Context, admin string) error {
	admin = strings.TrimSpace(admin)
	if admin == "" {
		return errorsmod.Wrap(types.ErrInvalidRole, "admin identity cannot be empty")
	}
	if has, err := k.Admin.Has(ctx); err == nil && has {
		return types.ErrAlreadyInitialized
	}

	if err := k.Admin.Set(ctx, admin); err != nil {
		return err
	}
	if err := k.Roles.Set(ctx, admin, string(types.RoleAdmin)); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeAdminInitialized,
		sdk.NewAttribute(AttributeKeyIdentity, admin),
	))

	return nil
}

// GetAdmin returns the protocol admin identity.
func (k Keeper) GetAdmin(ctx context.Context) (string, error) {
	admin, err := k.Admin.Get(ctx)
	if err != nil {
		return "", types.ErrNotInitialized
	}
	return admin, nil
}

// GrantRole assigns a role to an identity. Admin only.
func (k Keeper) GrantRole(ctx context.Context, caller, target string, role types.Role) error {
	if err := k.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return errorsmod.Wrap(types.ErrInvalidRole, "target identity cannot be empty")
	}
	if !role.Valid() {
		return errorsmod.Wrapf(types.ErrInvalidRole, "%q", role)
	}

	if err := k.Roles.Set(ctx, target, string(role)); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeRoleGranted,
		sdk.NewAttribute(AttributeKeyIdentity, target),
		sdk.NewAttribute(AttributeKeyRole, string(role)),
		sdk.NewAttribute(AttributeKeyActor, caller),
	))

	return nil
}

// RevokeRole resets an identity to the user role. Admin only. Revoking the
// caller's own role is rejected so an admin cannot lock itself out; rotating
// admin control therefore takes a second admin.
func (k Keeper) RevokeRole(ctx context.Context, caller, target string) error {
	if err := k.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	target = strings.TrimSpace(target)
	if strings.TrimSpace(caller) == target {
		return errorsmod.Wrap(types.ErrUnauthorized, "cannot revoke own role")
	}

	if err := k.Roles.Set(ctx, target, string(types.RoleUser)); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeRoleRevoked,
		sdk.NewAttribute(AttributeKeyIdentity, target),
		sdk.NewAttribute(AttributeKeyActor, caller),
	))

	return nil
}

// GetRole returns the role of an identity. Identities without an assignment
// are users; absence is the lowest privilege, never an error.
func (k Keeper) GetRole(ctx context.Context, identity string) types.Role {
	raw, err := k.Roles.Get(ctx, strings.TrimSpace(identity))
	if err != nil {
		return types.RoleUser
	}
	role := types.Role(raw)
	if !role.Valid() {
		return types.RoleUser
	}
	return role
}

// HasRole reports whether an identity holds exactly the given role.
func (k Keeper) HasRole(ctx context.Context, identity string, role types.Role) bool {
	return k.GetRole(ctx, identity) == role
}

// RequireRole fails with ErrUnauthorized unless the identity holds the role.
func (k Keeper) RequireRole(ctx context.Context, identity string, role types.Role) error {
	if !k.HasRole(ctx, identity, role) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s does not hold role %s", identity, role)
	}
	return nil
}

// RequireAdmin fails with ErrUnauthorized unless the identity is an admin.
func (k Keeper) RequireAdmin(ctx context.Context, identity string) error {
	return k.RequireRole(ctx, identity, types.RoleAdmin)
}

// RequireAnyRole fails with ErrUnauthorized unless the identity holds one of
// the given roles.
func (k Keeper) RequireAnyRole(ctx context.Context, identity string, roles ...types.Role) error {
	held := k.GetRole(ctx, identity)
	for _, role := range roles {
		if held == role {
			return nil
		}
	}
	return errorsmod.Wrapf(types.ErrUnauthorized, "%s holds %s", identity, held)
}

// RequirePolicyManagement admits admins and policy managers.
func (k Keeper) RequirePolicyManagement(ctx context.Context, identity string) error {
	if !k.GetRole(ctx, identity).CanManagePolicies() {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot manage policies", identity)
	}
	return nil
}

// RequireClaimProcessing admits admins and claim processors.
func (k Keeper) RequireClaimProcessing(ctx context.Context, identity string) error {
	if !k.GetRole(ctx, identity).CanProcessClaims() {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot process claims", identity)
	}
	return nil
}

// RequireRiskPoolManagement admits admins and risk pool managers.
func (k Keeper) RequireRiskPoolManagement(ctx context.Context, identity string) error {
	if !k.GetRole(ctx, identity).CanManageRiskPool() {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot manage the risk pool", identity)
	}
	return nil
}

// RequireGovernance admits admins and governance participants.
func (k Keeper) RequireGovernance(ctx context.Context, identity string) error {
	if !k.GetRole(ctx, identity).CanGovern() {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot govern", identity)
	}
	return nil
}

// RequireClaimSubmission rejects identities barred from filing claims.
func (k Keeper) RequireClaimSubmission(ctx context.Context, identity string) error {
	if !k.GetRole(ctx, identity).CanSubmitClaim() {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot submit claims", identity)
	}
	return nil
}

// RegisterTrustedContract allowlists a component identity for privileged
// cross-component calls. Admin only.
func (k Keeper) RegisterTrustedContract(ctx context.Context, caller, contract string) error {
	if err := k.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	contract = strings.TrimSpace(contract)
	if contract == "" {
		return errorsmod.Wrap(types.ErrNotTrustedContract, "contract identity cannot be empty")
	}

	if err := k.TrustedContracts.Set(ctx, contract); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeTrustedContractRegistered,
		sdk.NewAttribute(AttributeKeyContract, contract),
		sdk.NewAttribute(AttributeKeyActor, caller),
	))

	return nil
}

// UnregisterTrustedContract removes a component identity from the allowlist.
// Admin only.
func (k Keeper) UnregisterTrustedContract(ctx context.Context, caller, contract string) error {
	if err := k.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	contract = strings.TrimSpace(contract)

	if err := k.TrustedContracts.Remove(ctx, contract); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeTrustedContractUnregistered,
		sdk.NewAttribute(AttributeKeyContract, contract),
		sdk.NewAttribute(AttributeKeyActor, caller),
	))

	return nil
}

// IsTrustedContract reports allowlist membership.
func (k Keeper) IsTrustedContract(ctx context.Context, contract string) bool {
	has, err := k.TrustedContracts.Has(ctx, strings.TrimSpace(contract))
	return err == nil && has
}

// RequireTrustedContract fails with ErrNotTrustedContract unless the caller
// is allowlisted. Required before honoring any cross-component mutation.
func (k Keeper) RequireTrustedContract(ctx context.Context, contract string) error {
	if !k.IsTrustedContract(ctx, contract) {
		return errorsmod.Wrapf(types.ErrNotTrustedContract, "%s", contract)
	}
	return nil
}

func unwrapSDKContext(ctx context.Context) (sdk.Context, bool) {
	if ctx == nil {
		return sdk.Context{}, false
	}
	if sdkCtx, ok := ctx.(sdk.Context); ok {
		return sdkCtx, true
	}
	if val := ctx.Value(sdk.SdkContextKey); val != nil {
		if sdkCtx, ok := val.(sdk.Context); ok {
			return sdkCtx, true
		}
	}
	return sdk.Context{}, false
}

func contextNow(ctx context.Context) (sdk.Context, time.Time) {
	if sdkCtx, ok := unwrapSDKContext(ctx); ok {
		return sdkCtx, sdkCtx.BlockTime()
	}
	return sdk.Context{}, time.Now().UTC()
}

func emitEventIfPossible(ctx sdk.Context, event sdk.Event) {
	if em := ctx.EventManager(); em != nil {
		em.EmitEvent(event)
	}
}
