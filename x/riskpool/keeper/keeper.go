package keeper

import (
	"context"
	"encoding/json"
	"fmt"
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
	"github.com/stellarinsured/insured-core/x/riskpool/types"
)

// RoleSource is the authorization substrate the pool consults before any
// privileged or cross-component mutation.
type RoleSource interface {
	RequireAdmin(ctx context.Context, identity string) error
	RequireRiskPoolManagement(ctx context.Context, identity string) error
	RequireTrustedContract(ctx context.Context, contract string) error
}

// Keeper manages the shared liquidity pool: aggregate stats, per-provider
// stakes and per-claim reservations. Every mutation computes its proposed
// state first, verifies the liquidity preservation invariant against it, and
// only then commits.
type Keeper struct {
	cdc          codec.Codec
	storeService store.KVStoreService
	logger       log.Logger

	roleSource RoleSource

	Config       collections.Item[string]
	Stats        collections.Item[string]
	Providers    collections.Map[string, string]
	Reservations collections.Map[uint64, string]
	Paused       collections.Item[bool]
}

// NewKeeper creates a new riskpool keeper.
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
			"pool_config",
			collections.StringValue,
		),
		Stats: collections.NewItem(
			sb,
			collections.NewPrefix(types.StatsKey),
			"pool_stats",
			collections.StringValue,
		),
		Providers: collections.NewMap(
			sb,
			collections.NewPrefix(types.ProviderKeyPrefix),
			"providers",
			collections.StringKey,
			collections.StringValue,
		),
		Reservations: collections.NewMap(
			sb,
			collections.NewPrefix(types.ReservationKeyPrefix),
			"reservations",
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

// Initialize configures the pool. One-time, admin only.
func (k Keeper) Initialize(ctx context.Context, admin string, minProviderStake sdkmath.Int) error {
	if err := k.roleSource.RequireAdmin(ctx, admin); err != nil {
		return err
	}
	if has, err := k.Config.Has(ctx); err == nil && has {
		return types.ErrAlreadyInitialized
	}

	config := types.PoolConfig{MinProviderStake: minProviderStake}
	if err := config.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidInput, err.Error())
	}

	if err := k.setConfig(ctx, config); err != nil {
		return err
	}
	if err := k.setStats(ctx, types.NewPoolStats()); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypePoolInitialized,
		sdk.NewAttribute(AttributeKeyActor, admin),
		sdk.NewAttribute(AttributeKeyMinStake, minProviderStake.String()),
	))

	return nil
}

// DepositLiquidity adds stake for a provider and grows total liquidity.
// The resulting principal must meet the configured minimum stake.
func (k Keeper) DepositLiquidity(ctx context.Context, provider string, amount sdkmath.Int) error {
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return errorsmod.Wrap(types.ErrInvalidInput, "provider identity cannot be empty")
	}
	if err := invariant.AmountPositive(amount); err != nil {
		return err
	}

	config, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}
	stats, err := k.GetPoolStats(ctx)
	if err != nil {
		return err
	}

	_, now := contextNow(ctx)
	stake, err := k.GetProviderStake(ctx, provider)
	isNewProvider := err != nil
	if isNewProvider {
		stake = types.ProviderStake{
			Principal:       sdkmath.ZeroInt(),
			CumulativeStake: sdkmath.ZeroInt(),
			JoinedAtUnix:    now.Unix(),
		}
	}

	newPrincipal, err := invariant.SafeAdd(stake.Principal, amount)
	if err != nil {
		return err
	}
	if newPrincipal.LT(config.MinProviderStake) {
		return errorsmod.Wrapf(types.ErrInvalidInput,
			"stake %s below minimum %s", newPrincipal, config.MinProviderStake)
	}
	newCumulative, err := invariant.SafeAdd(stake.CumulativeStake, amount)
	if err != nil {
		return err
	}
	newTotal, err := invariant.SafeAdd(stats.TotalLiquidity, amount)
	if err != nil {
		return err
	}
	if err := invariant.LiquiditySufficient(newTotal, stats.ReservedTotal); err != nil {
		k.logger.Error("deposit aborted on invariant violation", "provider", provider, "err", err)
		return err
	}

	stake.Principal = newPrincipal
	stake.CumulativeStake = newCumulative
	stats.TotalLiquidity = newTotal
	if isNewProvider {
		stats.ProviderCount++
	}

	if err := k.setProviderStake(ctx, provider, stake); err != nil {
		return err
	}
	if err := k.setStats(ctx, stats); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeLiquidityDeposited,
		sdk.NewAttribute(AttributeKeyProvider, provider),
		sdk.NewAttribute(AttributeKeyAmount, amount.String()),
		sdk.NewAttribute(AttributeKeyTotalLiquidity, stats.TotalLiquidity.String()),
	))

	return nil
}

// WithdrawLiquidity removes unreserved stake. The remaining principal must be
// zero or at least the minimum stake; a zeroed provider record is removed.
func (k Keeper) WithdrawLiquidity(ctx context.Context, provider string, amount sdkmath.Int) error {
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	if err := invariant.AmountPositive(amount); err != nil {
		return err
	}

	config, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}
	stats, err := k.GetPoolStats(ctx)
	if err != nil {
		return err
	}
	stake, err := k.GetProviderStake(ctx, provider)
	if err != nil {
		return err
	}

	if stake.Principal.LT(amount) {
		return errorsmod.Wrapf(types.ErrInsufficientFunds, "stake %s, requested %s", stake.Principal, amount)
	}
	if stats.Available().LT(amount) {
		return errorsmod.Wrapf(types.ErrInsufficientFunds, "available %s, requested %s", stats.Available(), amount)
	}

	newPrincipal, err := invariant.SafeSub(stake.Principal, amount)
	if err != nil {
		return err
	}
	if !newPrincipal.IsZero() && newPrincipal.LT(config.MinProviderStake) {
		return errorsmod.Wrapf(types.ErrInvalidInput,
			"remaining stake %s below minimum %s", newPrincipal, config.MinProviderStake)
	}
	newTotal, err := invariant.SafeSub(stats.TotalLiquidity, amount)
	if err != nil {
		return err
	}
	if err := invariant.LiquiditySufficient(newTotal, stats.ReservedTotal); err != nil {
		k.logger.Error("withdraw aborted on invariant violation", "provider", provider, "err", err)
		return err
	}

	stats.TotalLiquidity = newTotal
	if newPrincipal.IsZero() {
		if err := k.Providers.Remove(ctx, strings.TrimSpace(provider)); err != nil {
			return err
		}
		stats.ProviderCount--
	} else {
		stake.Principal = newPrincipal
		if err := k.setProviderStake(ctx, provider, stake); err != nil {
			return err
		}
	}
	if err := k.setStats(ctx, stats); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeLiquidityWithdrawn,
		sdk.NewAttribute(AttributeKeyProvider, provider),
		sdk.NewAttribute(AttributeKeyAmount, amount.String()),
		sdk.NewAttribute(AttributeKeyTotalLiquidity, stats.TotalLiquidity.String()),
	))

	return nil
}

// ReserveLiquidity earmarks available liquidity for a claim. Trusted
// contracts only; exactly once per claim id.
func (k Keeper) ReserveLiquidity(ctx context.Context, caller string, claimID uint64, amount sdkmath.Int) error {
	if err := k.roleSource.RequireTrustedContract(ctx, caller); err != nil {
		return err
	}
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	if err := invariant.AmountPositive(amount); err != nil {
		return err
	}
	if has, err := k.Reservations.Has(ctx, claimID); err == nil && has {
		return errorsmod.Wrapf(types.ErrAlreadyExists, "reservation for claim %d", claimID)
	}

	stats, err := k.GetPoolStats(ctx)
	if err != nil {
		return err
	}
	if stats.Available().LT(amount) {
		return errorsmod.Wrapf(types.ErrInsufficientFunds, "available %s, requested %s", stats.Available(), amount)
	}

	newReserved, err := invariant.SafeAdd(stats.ReservedTotal, amount)
	if err != nil {
		return err
	}
	if err := invariant.LiquiditySufficient(stats.TotalLiquidity, newReserved); err != nil {
		k.logger.Error("reservation aborted on invariant violation", "claim_id", claimID, "err", err)
		return err
	}

	_, now := contextNow(ctx)
	stats.ReservedTotal = newReserved
	reservation := types.ClaimReservation{
		ClaimID:        claimID,
		ReservedAmount: amount,
		ReservedAtUnix: now.Unix(),
	}

	if err := k.setReservation(ctx, reservation); err != nil {
		return err
	}
	if err := k.setStats(ctx, stats); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeLiquidityReserved,
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyAmount, amount.String()),
		sdk.NewAttribute(AttributeKeyReservedTotal, stats.ReservedTotal.String()),
	))

	return nil
}

// ReleaseReservation drops a claim's reservation without payout, returning
// the earmarked amount to available liquidity. Trusted contracts only.
func (k Keeper) ReleaseReservation(ctx context.Context, caller string, claimID uint64) error {
	if err := k.roleSource.RequireTrustedContract(ctx, caller); err != nil {
		return err
	}

	reservation, err := k.GetReservation(ctx, claimID)
	if err != nil {
		return err
	}
	stats, err := k.GetPoolStats(ctx)
	if err != nil {
		return err
	}
	if stats.ReservedTotal.LT(reservation.ReservedAmount) {
		return errorsmod.Wrapf(types.ErrInvalidState,
			"reserved total %s below reservation %s", stats.ReservedTotal, reservation.ReservedAmount)
	}

	newReserved, err := invariant.SafeSub(stats.ReservedTotal, reservation.ReservedAmount)
	if err != nil {
		return err
	}
	if err := invariant.LiquiditySufficient(stats.TotalLiquidity, newReserved); err != nil {
		return err
	}

	stats.ReservedTotal = newReserved
	if err := k.Reservations.Remove(ctx, claimID); err != nil {
		return err
	}
	if err := k.setStats(ctx, stats); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeReservationReleased,
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyAmount, reservation.ReservedAmount.String()),
		sdk.NewAttribute(AttributeKeyReservedTotal, stats.ReservedTotal.String()),
	))

	return nil
}

// PayoutReservedClaim consumes a claim's reservation and pays out exactly the
// reserved amount. Trusted contracts only.
func (k Keeper) PayoutReservedClaim(ctx context.Context, caller string, claimID uint64, recipient string) error {
	if err := k.roleSource.RequireTrustedContract(ctx, caller); err != nil {
		return err
	}
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return errorsmod.Wrap(types.ErrInvalidInput, "recipient cannot be empty")
	}

	reservation, err := k.GetReservation(ctx, claimID)
	if err != nil {
		return err
	}
	stats, err := k.GetPoolStats(ctx)
	if err != nil {
		return err
	}

	amount := reservation.ReservedAmount
	if err := invariant.AmountPositive(amount); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidState, "reservation for claim %d holds %s", claimID, amount)
	}
	// Both aggregates must cover the reservation; anything else means the
	// ledger is inconsistent and the payout must not proceed.
	if stats.ReservedTotal.LT(amount) {
		return errorsmod.Wrapf(types.ErrInvalidState,
			"reserved total %s below reservation %s", stats.ReservedTotal, amount)
	}
	if stats.TotalLiquidity.LT(amount) {
		return errorsmod.Wrapf(types.ErrInsufficientFunds,
			"total liquidity %s below reservation %s", stats.TotalLiquidity, amount)
	}

	newReserved, err := invariant.SafeSub(stats.ReservedTotal, amount)
	if err != nil {
		return err
	}
	newTotal, err := invariant.SafeSub(stats.TotalLiquidity, amount)
	if err != nil {
		return err
	}
	newPaidOut, err := invariant.SafeAdd(stats.TotalPaidOut, amount)
	if err != nil {
		return err
	}
	if err := invariant.LiquiditySufficient(newTotal, newReserved); err != nil {
		k.logger.Error("payout aborted on invariant violation", "claim_id", claimID, "err", err)
		return err
	}

	stats.ReservedTotal = newReserved
	stats.TotalLiquidity = newTotal
	stats.TotalPaidOut = newPaidOut

	if err := k.Reservations.Remove(ctx, claimID); err != nil {
		return err
	}
	if err := k.setStats(ctx, stats); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeReservedClaimPaid,
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyRecipient, recipient),
		sdk.NewAttribute(AttributeKeyAmount, amount.String()),
	))

	return nil
}

// PayoutClaim is the direct payout path outside the claims flow, restricted
// to risk pool management.
func (k Keeper) PayoutClaim(ctx context.Context, manager, recipient string, amount sdkmath.Int) error {
	if err := k.roleSource.RequireRiskPoolManagement(ctx, manager); err != nil {
		return err
	}
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return errorsmod.Wrap(types.ErrInvalidInput, "recipient cannot be empty")
	}
	if err := invariant.AmountPositive(amount); err != nil {
		return err
	}

	stats, err := k.GetPoolStats(ctx)
	if err != nil {
		return err
	}
	if stats.Available().LT(amount) {
		return errorsmod.Wrapf(types.ErrInsufficientFunds, "available %s, requested %s", stats.Available(), amount)
	}

	newTotal, err := invariant.SafeSub(stats.TotalLiquidity, amount)
	if err != nil {
		return err
	}
	newPaidOut, err := invariant.SafeAdd(stats.TotalPaidOut, amount)
	if err != nil {
		return err
	}
	if err := invariant.LiquiditySufficient(newTotal, stats.ReservedTotal); err != nil {
		k.logger.Error("direct payout aborted on invariant violation", "recipient", recipient, "err", err)
		return err
	}

	stats.TotalLiquidity = newTotal
	stats.TotalPaidOut = newPaidOut
	if err := k.setStats(ctx, stats); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeClaimPaid,
		sdk.NewAttribute(AttributeKeyRecipient, recipient),
		sdk.NewAttribute(AttributeKeyAmount, amount.String()),
		sdk.NewAttribute(AttributeKeyActor, manager),
	))

	return nil
}

// Pause blocks pool mutations. Admin only.
func (k Keeper) Pause(ctx context.Context, admin string) error {
	return k.setPaused(ctx, admin, true)
}

// Unpause re-enables pool mutations. Admin only.
func (k Keeper) Unpause(ctx context.Context, admin string) error {
	return k.setPaused(ctx, admin, false)
}

// IsPaused reports the pause flag; absence means not paused.
func (k Keeper) IsPaused(ctx context.Context) bool {
	paused, err := k.Paused.Get(ctx)
	return err == nil && paused
}

// GetConfig returns the pool configuration.
func (k Keeper) GetConfig(ctx context.Context) (types.PoolConfig, error) {
	raw, err := k.Config.Get(ctx)
	if err != nil {
		return types.PoolConfig{}, types.ErrNotInitialized
	}
	var config types.PoolConfig
	if err := json.Unmarshal([]byte(raw), &config); err != nil {
		return types.PoolConfig{}, fmt.Errorf("decode pool config: %w", err)
	}
	return config, nil
}

// GetPoolStats returns the aggregate pool statistics.
func (k Keeper) GetPoolStats(ctx context.Context) (types.PoolStats, error) {
	raw, err := k.Stats.Get(ctx)
	if err != nil {
		return types.PoolStats{}, types.ErrNotInitialized
	}
	var stats types.PoolStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return types.PoolStats{}, fmt.Errorf("decode pool stats: %w", err)
	}
	return stats, nil
}

// GetProviderStake returns one provider's stake record.
func (k Keeper) GetProviderStake(ctx context.Context, provider string) (types.ProviderStake, error) {
	raw, err := k.Providers.Get(ctx, strings.TrimSpace(provider))
	if err != nil {
		return types.ProviderStake{}, errorsmod.Wrapf(types.ErrNotFound, "provider %s", provider)
	}
	var stake types.ProviderStake
	if err := json.Unmarshal([]byte(raw), &stake); err != nil {
		return types.ProviderStake{}, fmt.Errorf("decode provider stake: %w", err)
	}
	return stake, nil
}

// GetReservation returns one claim's reservation.
func (k Keeper) GetReservation(ctx context.Context, claimID uint64) (types.ClaimReservation, error) {
	raw, err := k.Reservations.Get(ctx, claimID)
	if err != nil {
		return types.ClaimReservation{}, errorsmod.Wrapf(types.ErrNotFound, "reservation for claim %d", claimID)
	}
	var reservation types.ClaimReservation
	if err := json.Unmarshal([]byte(raw), &reservation); err != nil {
		return types.ClaimReservation{}, fmt.Errorf("decode reservation: %w", err)
	}
	return reservation, nil
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

	eventType := EventTypePoolUnpaused
	if paused {
		eventType = EventTypePoolPaused
	}
	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		eventType,
		sdk.NewAttribute(AttributeKeyActor, admin),
	))
	return nil
}

func (k Keeper) setConfig(ctx context.Context, config types.PoolConfig) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return err
	}
	return k.Config.Set(ctx, string(raw))
}

func (k Keeper) setStats(ctx context.Context, stats types.PoolStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return k.Stats.Set(ctx, string(raw))
}

func (k Keeper) setProviderStake(ctx context.Context, provider string, stake types.ProviderStake) error {
	raw, err := json.Marshal(stake)
	if err != nil {
		return err
	}
	return k.Providers.Set(ctx, strings.TrimSpace(provider), string(raw))
}

func (k Keeper) setReservation(ctx context.Context, reservation types.ClaimReservation) error {
	raw, err := json.Marshal(reservation)
	if err != nil {
		return err
	}
	return k.Reservations.Set(ctx, reservation.ClaimID, string(raw))
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
