package keeper_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
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

	"github.com/stellarinsured/insured-core/x/oracle/keeper"
	"github.com/stellarinsured/insured-core/x/oracle/types"
)

type mockRoleSource struct {
	admins     map[string]bool
	processors map[string]bool
	trusted    map[string]bool
}

func newMockRoleSource() *mockRoleSource {
	return &mockRoleSource{
		admins:     map[string]bool{"alice": true},
		processors: map[string]bool{"alice": true, "proc": true},
		trusted: map[string]bool{
			"feed-a": true,
			"feed-b": true,
			"feed-c": true,
			"feed-d": true,
			"feed-e": true,
		},
	}
}

func (m *mockRoleSource) RequireAdmin(_ context.Context, identity string) error {
	if !m.admins[identity] {
		return fmt.Errorf("%s is not an admin", identity)
	}
	return nil
}

func (m *mockRoleSource) RequireClaimProcessing(_ context.Context, identity string) error {
	if !m.processors[identity] {
		return fmt.Errorf("%s cannot process claims", identity)
	}
	return nil
}

func (m *mockRoleSource) RequireTrustedContract(_ context.Context, contract string) error {
	if !m.trusted[contract] {
		return fmt.Errorf("%s is not a trusted source", contract)
	}
	return nil
}

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

	k := keeper.NewKeeper(cdc, runtime.NewKVStoreService(storeKey), log.NewNopLogger(), newMockRoleSource())

	return k, ctx
}

func submitValues(t *testing.T, k keeper.Keeper, ctx sdk.Context, requestID uint64, values map[string]int64) {
	t.Helper()
	for source, value := range values {
		require.NoError(t, k.SubmitData(ctx, source, requestID, sdkmath.NewInt(value)))
	}
}

func TestOpenDataRequestAssignsSequentialIDs(t *testing.T) {
	k, ctx := setupKeeper(t)

	first, err := k.OpenDataRequest(ctx, "proc", 10)
	require.NoError(t, err)
	second, err := k.OpenDataRequest(ctx, "proc", 11)
	require.NoError(t, err)
	require.Equal(t, first+1, second)

	request, err := k.GetRequest(ctx, first)
	require.NoError(t, err)
	require.Equal(t, uint64(10), request.ClaimID)
	require.Equal(t, "proc", request.OpenedBy)

	_, err = k.OpenDataRequest(ctx, "rogue", 12)
	require.Error(t, err)
}

func TestSubmitDataRequiresTrustedSource(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)

	require.Error(t, k.SubmitData(ctx, "unknown-feed", requestID, sdkmath.NewInt(100)))
	require.NoError(t, k.SubmitData(ctx, "feed-a", requestID, sdkmath.NewInt(100)))
}

func TestDuplicateSubmissionRejectedFirstValueKept(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)

	require.NoError(t, k.SubmitData(ctx, "feed-a", requestID, sdkmath.NewInt(100)))
	err = k.SubmitData(ctx, "feed-a", requestID, sdkmath.NewInt(999))
	require.ErrorIs(t, err, types.ErrDuplicateSubmission)

	submitValues(t, k, ctx, requestID, map[string]int64{"feed-b": 100, "feed-c": 100})
	resolution, err := k.Resolve(ctx, "proc", requestID)
	require.NoError(t, err)
	require.True(t, resolution.ConsensusValue.Equal(sdkmath.NewInt(100)))
	require.Equal(t, uint32(3), resolution.SubmissionCount)
}

func TestSubmitRejectsNonPositiveValueAndUnknownRequest(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)

	require.Error(t, k.SubmitData(ctx, "feed-a", requestID, sdkmath.NewInt(0)))
	require.ErrorIs(t, k.SubmitData(ctx, "feed-a", requestID+100, sdkmath.NewInt(5)), types.ErrNotFound)
}

func TestResolveBelowMinimumSubmissions(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)
	submitValues(t, k, ctx, requestID, map[string]int64{"feed-a": 100, "feed-b": 101})

	_, err = k.Resolve(ctx, "proc", requestID)
	require.ErrorIs(t, err, types.ErrInsufficientSubmissions)

	// No resolution is stored for the failed attempt.
	_, err = k.GetResolution(ctx, requestID)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestResolveClassifiesOutlierAndKeepsMedianOfAccepted(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)
	submitValues(t, k, ctx, requestID, map[string]int64{
		"feed-a": 100,
		"feed-b": 102,
		"feed-c": 98,
		"feed-d": 101,
		"feed-e": 500,
	})

	resolution, err := k.Resolve(ctx, "proc", requestID)
	require.NoError(t, err)

	// Median of all five is 101; 500 falls outside the 15% band and is
	// rejected, leaving 4 of 5 accepted, exactly the 80% threshold. The
	// consensus value is the median of {98, 100, 101, 102}.
	require.Equal(t, uint32(5), resolution.SubmissionCount)
	require.Equal(t, uint32(4), resolution.AcceptedCount)
	require.Equal(t, uint32(1), resolution.RejectedCount)
	require.True(t, resolution.ConsensusValue.Equal(sdkmath.NewInt(100)))
	require.Equal(t, uint64(1), resolution.ClaimID)
}

func TestResolveConsensusNotReachedOnWideSpread(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)
	submitValues(t, k, ctx, requestID, map[string]int64{
		"feed-a": 100,
		"feed-b": 150,
		"feed-c": 200,
		"feed-d": 300,
		"feed-e": 400,
	})

	_, err = k.Resolve(ctx, "proc", requestID)
	require.ErrorIs(t, err, types.ErrConsensusNotReached)

	_, err = k.GetResolution(ctx, requestID)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestResolveEvenCountTakesIntegerMidpoint(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)
	submitValues(t, k, ctx, requestID, map[string]int64{
		"feed-a": 100,
		"feed-b": 101,
		"feed-c": 102,
		"feed-d": 103,
	})

	resolution, err := k.Resolve(ctx, "proc", requestID)
	require.NoError(t, err)
	require.Equal(t, uint32(4), resolution.AcceptedCount)
	require.True(t, resolution.ConsensusValue.Equal(sdkmath.NewInt(101)))
}

func TestResolveIsOrderIndependent(t *testing.T) {
	orders := [][]string{
		{"feed-a", "feed-b", "feed-c", "feed-d", "feed-e"},
		{"feed-e", "feed-c", "feed-a", "feed-d", "feed-b"},
	}
	values := map[string]int64{
		"feed-a": 100,
		"feed-b": 102,
		"feed-c": 98,
		"feed-d": 101,
		"feed-e": 500,
	}

	var results []types.Resolution
	for _, order := range orders {
		k, ctx := setupKeeper(t)
		requestID, err := k.OpenDataRequest(ctx, "proc", 1)
		require.NoError(t, err)
		for _, source := range order {
			require.NoError(t, k.SubmitData(ctx, source, requestID, sdkmath.NewInt(values[source])))
		}
		resolution, err := k.Resolve(ctx, "proc", requestID)
		require.NoError(t, err)
		results = append(results, resolution)
	}

	require.True(t, results[0].ConsensusValue.Equal(results[1].ConsensusValue))
	require.Equal(t, results[0].AcceptedCount, results[1].AcceptedCount)
	require.Equal(t, results[0].RejectedCount, results[1].RejectedCount)
}

func TestResolveIsIdempotentAndFreezesSubmissions(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)
	submitValues(t, k, ctx, requestID, map[string]int64{"feed-a": 100, "feed-b": 101, "feed-c": 102})

	first, err := k.Resolve(ctx, "proc", requestID)
	require.NoError(t, err)

	// Late data bounces off the finalized request.
	err = k.SubmitData(ctx, "feed-d", requestID, sdkmath.NewInt(999))
	require.ErrorIs(t, err, types.ErrAlreadyFinalized)

	second, err := k.Resolve(ctx, "proc", requestID)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestResolveDropsStaleSubmissions(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)

	submitValues(t, k, ctx, requestID, map[string]int64{"feed-a": 5000, "feed-b": 5000})

	// Two hours later the early values are past the one hour staleness bound.
	later := ctx.WithBlockTime(ctx.BlockTime().Add(2 * time.Hour))
	submitValues(t, k, later, requestID, map[string]int64{"feed-c": 100, "feed-d": 101, "feed-e": 102})

	resolution, err := k.Resolve(later, "proc", requestID)
	require.NoError(t, err)
	require.Equal(t, uint32(5), resolution.SubmissionCount)
	require.Equal(t, uint32(3), resolution.AcceptedCount)
	require.True(t, resolution.ConsensusValue.Equal(sdkmath.NewInt(101)))
}

func TestResolveAllStale(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)
	submitValues(t, k, ctx, requestID, map[string]int64{"feed-a": 100, "feed-b": 101, "feed-c": 102})

	later := ctx.WithBlockTime(ctx.BlockTime().Add(2 * time.Hour))
	_, err = k.Resolve(later, "proc", requestID)
	require.ErrorIs(t, err, types.ErrStaleData)
}

func TestSetConfigValidation(t *testing.T) {
	k, ctx := setupKeeper(t)

	err := k.SetConfig(ctx, "alice", types.ResolverConfig{
		MinSubmissions:        0,
		MaxDeviationBps:       1500,
		ConsensusThresholdBps: 8000,
		StalenessSeconds:      3600,
	})
	require.ErrorIs(t, err, types.ErrInvalidInput)

	require.Error(t, k.SetConfig(ctx, "rogue", types.DefaultResolverConfig()))

	custom := types.DefaultResolverConfig()
	custom.MinSubmissions = 5
	require.NoError(t, k.SetConfig(ctx, "alice", custom))
	require.Equal(t, uint32(5), k.GetConfig(ctx).MinSubmissions)
}

func TestPauseBlocksSubmissionAndResolution(t *testing.T) {
	k, ctx := setupKeeper(t)
	requestID, err := k.OpenDataRequest(ctx, "proc", 1)
	require.NoError(t, err)
	submitValues(t, k, ctx, requestID, map[string]int64{"feed-a": 100, "feed-b": 101, "feed-c": 102})

	require.NoError(t, k.Pause(ctx, "alice"))
	require.True(t, k.IsPaused(ctx))

	require.ErrorIs(t, k.SubmitData(ctx, "feed-d", requestID, sdkmath.NewInt(100)), types.ErrPaused)
	_, err = k.Resolve(ctx, "proc", requestID)
	require.ErrorIs(t, err, types.ErrPaused)
	_, err = k.OpenDataRequest(ctx, "proc", 2)
	require.ErrorIs(t, err, types.ErrPaused)

	require.NoError(t, k.Unpause(ctx, "alice"))
	_, err = k.Resolve(ctx, "proc", requestID)
	require.NoError(t, err)
}
