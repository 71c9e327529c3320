package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	storemetrics "cosmossdk.io/store/metrics"
	"cosmossdk.io/store/rootmulti"
	storetypes "cosmossdk.io/store/types"
	tmproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/cosmos/cosmos-sdk/std"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/stellarinsured/insured-core/x/roles/keeper"
	"github.com/stellarinsured/insured-core/x/roles/types"
)

func setupKeeper(t *testing.T) (keeper.Keeper, sdk.Context) {
	t.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	cms := rootmulti.NewStore(db, log.NewNopLogger(), storemetrics.NoOpMetrics{})
	cms.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, nil)
	require.NoError(t, cms.LoadLatestVersion())

	header := tmproto.Header{
		ChainID: "insured-test-1",
		Height:  1,
		Time:    time.Unix(1_770_000_000, 0).UTC(),
	}
	ctx := sdk.NewContext(cms, header, false, log.NewNopLogger())

	reg := codectypes.NewInterfaceRegistry()
	std.RegisterInterfaces(reg)
	cdc := codec.NewProtoCodec(reg)

	k := keeper.NewKeeper(cdc, runtime.NewKVStoreService(storeKey), log.NewNopLogger())

	return k, ctx
}

func TestInitializeAdminIsOneTime(t *testing.T) {
	k, ctx := setupKeeper(t)

	require.NoError(t, k.InitializeAdmin(ctx, "alice"))

	admin, err := k.GetAdmin(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", admin)
	require.Equal(t, types.RoleAdmin, k.GetRole(ctx, "alice"))

	require.ErrorIs(t, k.InitializeAdmin(ctx, "mallory"), types.ErrAlreadyInitialized)

	admin, err = k.GetAdmin(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", admin)
}

func TestGetAdminBeforeInitialization(t *testing.T) {
	k, ctx := setupKeeper(t)

	_, err := k.GetAdmin(ctx)
	require.ErrorIs(t, err, types.ErrNotInitialized)
}

func TestGrantRoleRequiresAdmin(t *testing.T) {
	k, ctx := setupKeeper(t)
	require.NoError(t, k.InitializeAdmin(ctx, "alice"))

	err := k.GrantRole(ctx, "mallory", "bob", types.RoleClaimProcessor)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	require.Equal(t, types.RoleUser, k.GetRole(ctx, "bob"))

	require.NoError(t, k.GrantRole(ctx, "alice", "bob", types.RoleClaimProcessor))
	require.Equal(t, types.RoleClaimProcessor, k.GetRole(ctx, "bob"))
}

func TestGrantRoleRejectsUnknownRole(t *testing.T) {
	k, ctx := setupKeeper(t)
	require.NoError(t, k.InitializeAdmin(ctx, "alice"))

	err := k.GrantRole(ctx, "alice", "bob", types.Role("superuser"))
	require.ErrorIs(t, err, types.ErrInvalidRole)
}

func TestUnassignedIdentityDefaultsToUser(t *testing.T) {
	k, ctx := setupKeeper(t)

	role := k.GetRole(ctx, "nobody")
	require.Equal(t, types.RoleUser, role)
	require.True(t, role.CanSubmitClaim())
	require.False(t, role.CanProcessClaims())
	require.False(t, role.CanGovern())
}

func TestSelfRevocationRejectedStateUnchanged(t *testing.T) {
	k, ctx := setupKeeper(t)
	require.NoError(t, k.InitializeAdmin(ctx, "alice"))
	require.NoError(t, k.GrantRole(ctx, "alice", "bob", types.RoleAdmin))

	err := k.RevokeRole(ctx, "alice", "alice")
	require.ErrorIs(t, err, types.ErrUnauthorized)

	// The refused revocation leaves every assignment intact.
	require.Equal(t, types.RoleAdmin, k.GetRole(ctx, "alice"))
	require.Equal(t, types.RoleAdmin, k.GetRole(ctx, "bob"))

	// Revoking the other admin works and strips its privileges.
	require.NoError(t, k.RevokeRole(ctx, "alice", "bob"))
	require.Equal(t, types.RoleUser, k.GetRole(ctx, "bob"))
	require.ErrorIs(t, k.RequireAdmin(ctx, "bob"), types.ErrUnauthorized)
}

func TestPermissionMatrix(t *testing.T) {
	k, ctx := setupKeeper(t)
	require.NoError(t, k.InitializeAdmin(ctx, "alice"))
	require.NoError(t, k.GrantRole(ctx, "alice", "pm", types.RolePolicyManager))
	require.NoError(t, k.GrantRole(ctx, "alice", "cp", types.RoleClaimProcessor))
	require.NoError(t, k.GrantRole(ctx, "alice", "rpm", types.RoleRiskPoolManager))
	require.NoError(t, k.GrantRole(ctx, "alice", "gov", types.RoleGovernance))

	require.NoError(t, k.RequirePolicyManagement(ctx, "alice"))
	require.NoError(t, k.RequirePolicyManagement(ctx, "pm"))
	require.ErrorIs(t, k.RequirePolicyManagement(ctx, "cp"), types.ErrUnauthorized)

	require.NoError(t, k.RequireClaimProcessing(ctx, "alice"))
	require.NoError(t, k.RequireClaimProcessing(ctx, "cp"))
	require.ErrorIs(t, k.RequireClaimProcessing(ctx, "pm"), types.ErrUnauthorized)

	require.NoError(t, k.RequireRiskPoolManagement(ctx, "alice"))
	require.NoError(t, k.RequireRiskPoolManagement(ctx, "rpm"))
	require.ErrorIs(t, k.RequireRiskPoolManagement(ctx, "gov"), types.ErrUnauthorized)

	require.NoError(t, k.RequireGovernance(ctx, "alice"))
	require.NoError(t, k.RequireGovernance(ctx, "gov"))
	require.ErrorIs(t, k.RequireGovernance(ctx, "rpm"), types.ErrUnauthorized)

	// Claim processors may not file their own claims; everyone else may.
	require.NoError(t, k.RequireClaimSubmission(ctx, "alice"))
	require.NoError(t, k.RequireClaimSubmission(ctx, "nobody"))
	require.ErrorIs(t, k.RequireClaimSubmission(ctx, "cp"), types.ErrUnauthorized)
}

func TestTrustedContractRegistry(t *testing.T) {
	k, ctx := setupKeeper(t)
	require.NoError(t, k.InitializeAdmin(ctx, "alice"))

	require.ErrorIs(t, k.RequireTrustedContract(ctx, "claims"), types.ErrNotTrustedContract)

	err := k.RegisterTrustedContract(ctx, "mallory", "claims")
	require.ErrorIs(t, err, types.ErrUnauthorized)

	require.NoError(t, k.RegisterTrustedContract(ctx, "alice", "claims"))
	require.True(t, k.IsTrustedContract(ctx, "claims"))
	require.NoError(t, k.RequireTrustedContract(ctx, "claims"))

	require.NoError(t, k.UnregisterTrustedContract(ctx, "alice", "claims"))
	require.False(t, k.IsTrustedContract(ctx, "claims"))
	require.ErrorIs(t, k.RequireTrustedContract(ctx, "claims"), types.ErrNotTrustedContract)
}
