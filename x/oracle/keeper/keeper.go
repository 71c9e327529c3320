package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/stellarinsured/insured-core/x/invariant"
	"github.com/stellarinsured/insured-core/x/oracle/types"
)

// RoleSource is the authorization substrate used to gate request handling
// and to validate which data sources are trusted.
type RoleSource interface {
	RequireAdmin(ctx context.Context, identity string) error
	RequireClaimProcessing(ctx context.Context, identity string) error
	RequireTrustedContract(ctx context.Context, contract string) error
}

// Keeper turns N independent numeric submissions about a claim into a single
// defensible consensus value. Resolution depends only on the final submission
// set, never on arrival order.
type Keeper struct {
	cdc          codec.Codec
	storeService store.KVStoreService
	logger       log.Logger

	roleSource RoleSource

	Config       collections.Item[string]
	Requests     collections.Map[uint64, string]
	RequestCount collections.Item[uint64]
	Submissions  collections.Map[string, string]
	Resolutions  collections.Map[uint64, string]
	Paused       collections.Item[bool]
}

// NewKeeper creates a new oracle keeper.
func NewKeeper(
	cdc codec.Codec,
	storeService store.KVStoreService,
	logger log.Logger,
	roleSource RoleSource,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	return Keeper{
		cdc:          cdc,
		storeService: storeService,
		logger:       logger,
		roleSource:   roleSource,
		Config: collections.NewItem(
			sb,
			collections.NewPrefix(types.ConfigKey),
			"resolver_config",
			collections.StringValue,
		),
		Requests: collections.NewMap(
			sb,
			collections.NewPrefix(types.RequestKeyPrefix),
			"requests",
			collections.Uint64Key,
			collections.StringValue,
		),
		RequestCount: collections.NewItem(
			sb,
			collections.NewPrefix(types.RequestCountKey),
			"request_count",
			collections.Uint64Value,
		),
		Submissions: collections.NewMap(
			sb,
			collections.NewPrefix(types.SubmissionKeyPrefix),
			"submissions",
			collections.StringKey,
			collections.StringValue,
		),
		Resolutions: collections.NewMap(
			sb,
			collections.NewPrefix(types.ResolutionKeyPrefix),
			"resolutions",
			collections.Uint64Key,
			collections.StringValue,
		),
		Paused: collections.NewItem(
			sb,
			collections.NewPrefix(types.PausedKey),
			"paused",
			collections.BoolValue,
		),
	}
}

// SetConfig stores the resolver parameters. Admin only.
func (k Keeper) SetConfig(ctx context.Context, admin string, config types.ResolverConfig) error {
	if err := k.roleSource.RequireAdmin(ctx, admin); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidInput, err.Error())
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return err
	}
	return k.Config.Set(ctx, string(raw))
}

// GetConfig returns the resolver parameters, defaulting when unset.
func (k Keeper) GetConfig(ctx context.Context) types.ResolverConfig {
	raw, err := k.Config.Get(ctx)
	if err != nil {
		return types.DefaultResolverConfig()
	}
	var config types.ResolverConfig
	if err := json.Unmarshal([]byte(raw), &config); err != nil {
		return types.DefaultResolverConfig()
	}
	return config
}

// OpenDataRequest opens a submission window for a claim and returns the
// request id. Requires claim processing permission.
func (k Keeper) OpenDataRequest(ctx context.Context, requester string, claimID uint64) (uint64, error) {
	if err := k.roleSource.RequireClaimProcessing(ctx, requester); err != nil {
		return 0, err
	}
	if err := k.requireNotPaused(ctx); err != nil {
		return 0, err
	}

	_, now := contextNow(ctx)
	requestID, err := k.nextRequestID(ctx)
	if err != nil {
		return 0, err
	}

	request := types.DataRequest{
		ID:           requestID,
		ClaimID:      claimID,
		OpenedBy:     requester,
		OpenedAtUnix: now.Unix(),
	}
	if err := k.setRequest(ctx, request); err != nil {
		return 0, err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeRequestOpened,
		sdk.NewAttribute(AttributeKeyRequestID, fmt.Sprintf("%d", requestID)),
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyActor, requester),
	))

	return requestID, nil
}

// SubmitData records one source's value for an open request. Sources must be
// on the trusted allowlist; one accepted submission per source per request.
func (k Keeper) SubmitData(ctx context.Context, source string, requestID uint64, value sdkmath.Int) error {
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	if err := k.roleSource.RequireTrustedContract(ctx, source); err != nil {
		return err
	}
	if err := invariant.AmountPositive(value); err != nil {
		return err
	}
	if _, err := k.GetRequest(ctx, requestID); err != nil {
		return err
	}
	if has, err := k.Resolutions.Has(ctx, requestID); err == nil && has {
		return errorsmod.Wrapf(types.ErrAlreadyFinalized, "request %d", requestID)
	}

	key := submissionKey(requestID, source)
	if has, err := k.Submissions.Has(ctx, key); err == nil && has {
		return errorsmod.Wrapf(types.ErrDuplicateSubmission, "source %s on request %d", source, requestID)
	}

	_, now := contextNow(ctx)
	submission := types.Submission{
		Source:          strings.TrimSpace(source),
		Value:           value,
		SubmittedAtUnix: now.Unix(),
	}
	raw, err := json.Marshal(submission)
	if err != nil {
		return err
	}
	if err := k.Submissions.Set(ctx, key, string(raw)); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeDataSubmitted,
		sdk.NewAttribute(AttributeKeyRequestID, fmt.Sprintf("%d", requestID)),
		sdk.NewAttribute(AttributeKeySource, submission.Source),
		sdk.NewAttribute(AttributeKeyValue, value.String()),
	))

	return nil
}

// Resolve finalizes a request into a consensus resolution: stale submissions
// are dropped, outliers beyond the deviation band around the median are
// rejected, and the accepted fraction must meet the consensus threshold. The
// consensus value is the median of the accepted subset. Resolving an already
// finalized request returns the stored record unchanged.
func (k Keeper) Resolve(ctx context.Context, caller string, requestID uint64) (types.Resolution, error) {
	if err := k.roleSource.RequireClaimProcessing(ctx, caller); err != nil {
		return types.Resolution{}, err
	}
	if err := k.requireNotPaused(ctx); err != nil {
		return types.Resolution{}, err
	}

	if resolution, err := k.GetResolution(ctx, requestID); err == nil {
		return resolution, nil
	}

	request, err := k.GetRequest(ctx, requestID)
	if err != nil {
		return types.Resolution{}, err
	}

	submissions, err := k.requestSubmissions(ctx, requestID)
	if err != nil {
		return types.Resolution{}, err
	}

	config := k.GetConfig(ctx)
	if uint32(len(submissions)) < config.MinSubmissions {
		return types.Resolution{}, errorsmod.Wrapf(types.ErrInsufficientSubmissions,
			"got %d, need %d", len(submissions), config.MinSubmissions)
	}

	_, now := contextNow(ctx)
	cutoff := now.Unix() - config.StalenessSeconds
	fresh := make([]types.Submission, 0, len(submissions))
	staleCount := 0
	for _, submission := range submissions {
		if submission.SubmittedAtUnix < cutoff {
			staleCount++
			continue
		}
		fresh = append(fresh, submission)
	}
	if len(fresh) == 0 {
		return types.Resolution{}, errorsmod.Wrapf(types.ErrStaleData,
			"all %d submissions older than %ds", staleCount, config.StalenessSeconds)
	}

	values := make([]sdkmath.Int, len(fresh))
	for i, submission := range fresh {
		values[i] = submission.Value
	}
	center := medianOf(values)

	accepted := make([]sdkmath.Int, 0, len(fresh))
	for _, value := range values {
		within, err := withinDeviation(value, center, config.MaxDeviationBps)
		if err != nil {
			return types.Resolution{}, err
		}
		if within {
			accepted = append(accepted, value)
		}
	}

	// Accepted fraction over the fresh set, in basis points.
	if uint64(len(accepted))*10_000 < uint64(config.ConsensusThresholdBps)*uint64(len(fresh)) {
		return types.Resolution{}, errorsmod.Wrapf(types.ErrConsensusNotReached,
			"accepted %d of %d, need %d bps", len(accepted), len(fresh), config.ConsensusThresholdBps)
	}

	resolution := types.Resolution{
		RequestID:       requestID,
		ClaimID:         request.ClaimID,
		ConsensusValue:  medianOf(accepted),
		SubmissionCount: uint32(len(submissions)),
		AcceptedCount:   uint32(len(accepted)),
		RejectedCount:   uint32(len(submissions) - len(accepted)),
		FinalizedAtUnix: now.Unix(),
	}
	if err := k.setResolution(ctx, resolution); err != nil {
		return types.Resolution{}, err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeRequestResolved,
		sdk.NewAttribute(AttributeKeyRequestID, fmt.Sprintf("%d", requestID)),
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", request.ClaimID)),
		sdk.NewAttribute(AttributeKeyConsensusValue, resolution.ConsensusValue.String()),
		sdk.NewAttribute(AttributeKeyAcceptedCount, fmt.Sprintf("%d", resolution.AcceptedCount)),
		sdk.NewAttribute(AttributeKeyRejectedCount, fmt.Sprintf("%d", resolution.RejectedCount)),
	))

	return resolution, nil
}

// GetRequest loads one data request.
func (k Keeper) GetRequest(ctx context.Context, requestID uint64) (types.DataRequest, error) {
	raw, err := k.Requests.Get(ctx, requestID)
	if err != nil {
		return types.DataRequest{}, errorsmod.Wrapf(types.ErrNotFound, "request %d", requestID)
	}
	var request types.DataRequest
	if err := json.Unmarshal([]byte(raw), &request); err != nil {
		return types.DataRequest{}, fmt.Errorf("decode request: %w", err)
	}
	return request, nil
}

// GetResolution loads one finalized resolution.
func (k Keeper) GetResolution(ctx context.Context, requestID uint64) (types.Resolution, error) {
	raw, err := k.Resolutions.Get(ctx, requestID)
	if err != nil {
		return types.Resolution{}, errorsmod.Wrapf(types.ErrNotFound, "resolution for request %d", requestID)
	}
	var resolution types.Resolution
	if err := json.Unmarshal([]byte(raw), &resolution); err != nil {
		return types.Resolution{}, fmt.Errorf("decode resolution: %w", err)
	}
	return resolution, nil
}

// GetSubmissionCount returns the submission count for a request.
func (k Keeper) GetSubmissionCount(ctx context.Context, requestID uint64) (uint32, error) {
	submissions, err := k.requestSubmissions(ctx, requestID)
	if err != nil {
		return 0, err
	}
	return uint32(len(submissions)), nil
}

// Pause blocks submissions and resolution. Admin only.
func (k Keeper) Pause(ctx context.Context, admin string) error {
	return k.setPaused(ctx, admin, true)
}

// Unpause re-enables submissions and resolution. Admin only.
func (k Keeper) Unpause(ctx context.Context, admin string) error {
	return k.setPaused(ctx, admin, false)
}

// IsPaused reports the pause flag; absence means not paused.
func (k Keeper) IsPaused(ctx context.Context) bool {
	paused, err := k.Paused.Get(ctx)
	return err == nil && paused
}

func (k Keeper) requestSubmissions(ctx context.Context, requestID uint64) ([]types.Submission, error) {
	prefix := fmt.Sprintf("%d|", requestID)
	submissions := make([]types.Submission, 0)

	err := k.Submissions.Walk(ctx, nil, func(key string, raw string) (bool, error) {
		if !strings.HasPrefix(key, prefix) {
			return false, nil
		}
		var submission types.Submission
		if err := json.Unmarshal([]byte(raw), &submission); err != nil {
			return false, fmt.Errorf("decode submission: %w", err)
		}
		submissions = append(submissions, submission)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	// Sorted by source so downstream math never sees store iteration order.
	sort.Slice(submissions, func(i, j int) bool {
		return submissions[i].Source < submissions[j].Source
	})
	return submissions, nil
}

// medianOf returns the median of values; even-sized sets take the integer
// midpoint of the two central values. values must be non-empty.
func medianOf(values []sdkmath.Int) sdkmath.Int {
	sorted := make([]sdkmath.Int, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LT(sorted[j])
	})

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).QuoRaw(2)
}

func withinDeviation(value, center sdkmath.Int, maxDeviationBps uint32) (bool, error) {
	diff := value.Sub(center).Abs()
	lhs, err := invariant.SafeMul(diff, sdkmath.NewInt(10_000))
	if err != nil {
		return false, err
	}
	rhs, err := invariant.SafeMul(center.Abs(), sdkmath.NewInt(int64(maxDeviationBps)))
	if err != nil {
		return false, err
	}
	return lhs.LTE(rhs), nil
}

func submissionKey(requestID uint64, source string) string {
	return fmt.Sprintf("%d|%s", requestID, strings.TrimSpace(source))
}

func (k Keeper) nextRequestID(ctx context.Context) (uint64, error) {
	count, err := k.RequestCount.Get(ctx)
	if err != nil {
		count = 0
	}
	count++
	if err := k.RequestCount.Set(ctx, count); err != nil {
		return 0, err
	}
	return count, nil
}

func (k Keeper) setRequest(ctx context.Context, request types.DataRequest) error {
	raw, err := json.Marshal(request)
	if err != nil {
		return err
	}
	return k.Requests.Set(ctx, request.ID, string(raw))
}

func (k Keeper) setResolution(ctx context.Context, resolution types.Resolution) error {
	raw, err := json.Marshal(resolution)
	if err != nil {
		return err
	}
	return k.Resolutions.Set(ctx, resolution.RequestID, string(raw))
}

func (k Keeper) requireNotPaused(ctx context.Context) error {
	if k.IsPaused(ctx) {
		return types.ErrPaused
	}
	return nil
}

func (k Keeper) setPaused(ctx context.Context, admin string, paused bool) error {
	if err := k.roleSource.RequireAdmin(ctx, admin); err != nil {
		return err
	}
	if err := k.Paused.Set(ctx, paused); err != nil {
		return err
	}

	eventType := EventTypeResolverUnpaused
	if paused {
		eventType = EventTypeResolverPaused
	}
	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		eventType,
		sdk.NewAttribute(AttributeKeyActor, admin),
	))
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
