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

	"github.com/stellarinsured/insured-core/x/claims/types"
	"github.com/stellarinsured/insured-core/x/invariant"
	oracletypes "github.com/stellarinsured/insured-core/x/oracle/types"
)

// RoleSource is the authorization substrate consulted before every mutation.
type RoleSource interface {
	RequireAdmin(ctx context.Context, identity string) error
	RequireClaimProcessing(ctx context.Context, identity string) error
	RequireClaimSubmission(ctx context.Context, identity string) error
	RequireGovernance(ctx context.Context, identity string) error
}

// PoolKeeper is the liquidity ledger the lifecycle machine reserves against
// and settles through. The caller argument is the claims module identity and
// is verified against the trusted-contract allowlist on the pool side.
type PoolKeeper interface {
	ReserveLiquidity(ctx context.Context, caller string, claimID uint64, amount sdkmath.Int) error
	ReleaseReservation(ctx context.Context, caller string, claimID uint64) error
	PayoutReservedClaim(ctx context.Context, caller string, claimID uint64, recipient string) error
}

// OracleSource provides finalized consensus resolutions for claim approval.
type OracleSource interface {
	GetResolution(ctx context.Context, requestID uint64) (oracletypes.Resolution, error)
}

// Keeper owns claim records and drives them through the approval lifecycle,
// orchestrating the oracle resolver on approval and the liquidity ledger on
// approval and settlement. Transitions outside the whitelist are rejected
// and every failed sub-step aborts the operation with no partial write.
type Keeper struct {
	cdc          codec.Codec
	storeService store.KVStoreService
	logger       log.Logger

	roleSource   RoleSource
	poolKeeper   PoolKeeper
	oracleSource OracleSource
	policySource types.PolicySource

	Config          collections.Item[string]
	Claims          collections.Map[uint64, string]
	PolicyClaims    collections.Map[uint64, uint64]
	ClaimCount      collections.Item[uint64]
	ClaimOracleRefs collections.Map[uint64, uint64]
	Disputes        collections.Map[uint64, string]
	Paused          collections.Item[bool]
}

// NewKeeper creates a new claims keeper.
func NewKeeper(
	cdc codec.Codec,
	storeService store.KVStoreService,
	logger log.Logger,
	roleSource RoleSource,
	poolKeeper PoolKeeper,
	oracleSource OracleSource,
	policySource types.PolicySource,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	return Keeper{
		cdc:          cdc,
		storeService: storeService,
		logger:       logger,
		roleSource:   roleSource,
		poolKeeper:   poolKeeper,
		oracleSource: oracleSource,
		policySource: policySource,
		Config: collections.NewItem(
			sb,
			collections.NewPrefix(types.ConfigKey),
			"claims_config",
			collections.StringValue,
		),
		Claims: collections.NewMap(
			sb,
			collections.NewPrefix(types.ClaimKeyPrefix),
			"claims",
			collections.Uint64Key,
			collections.StringValue,
		),
		PolicyClaims: collections.NewMap(
			sb,
			collections.NewPrefix(types.PolicyClaimKeyPrefix),
			"policy_claims",
			collections.Uint64Key,
			collections.Uint64Value,
		),
		ClaimCount: collections.NewItem(
			sb,
			collections.NewPrefix(types.ClaimCountKey),
			"claim_count",
			collections.Uint64Value,
		),
		ClaimOracleRefs: collections.NewMap(
			sb,
			collections.NewPrefix(types.ClaimOracleRefKeyPrefix),
			"claim_oracle_refs",
			collections.Uint64Key,
			collections.Uint64Value,
		),
		Disputes: collections.NewMap(
			sb,
			collections.NewPrefix(types.DisputeKeyPrefix),
			"disputes",
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

// Initialize configures the lifecycle machine. One-time, admin only.
func (k Keeper) Initialize(ctx context.Context, admin string, config types.ClaimsConfig) error {
	if err := k.roleSource.RequireAdmin(ctx, admin); err != nil {
		return err
	}
	if has, err := k.Config.Has(ctx); err == nil && has {
		return types.ErrAlreadyInitialized
	}
	if err := config.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidInput, err.Error())
	}
	if err := k.setConfig(ctx, config); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeClaimsInitialized,
		sdk.NewAttribute(AttributeKeyActor, admin),
	))

	return nil
}

// UpdateConfig replaces the lifecycle configuration. Admin only.
func (k Keeper) UpdateConfig(ctx context.Context, admin string, config types.ClaimsConfig) error {
	if err := k.roleSource.RequireAdmin(ctx, admin); err != nil {
		return err
	}
	if _, err := k.GetConfig(ctx); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidInput, err.Error())
	}
	return k.setConfig(ctx, config)
}

// SubmitClaim files a claim against a policy and returns the new claim id.
// One claim per policy; the amount must be positive and within coverage.
func (k Keeper) SubmitClaim(ctx context.Context, claimant string, policyID uint64, amount sdkmath.Int) (uint64, error) {
	if err := k.requireNotPaused(ctx); err != nil {
		return 0, err
	}
	claimant = strings.TrimSpace(claimant)
	if claimant == "" {
		return 0, errorsmod.Wrap(types.ErrInvalidInput, "claimant cannot be empty")
	}
	if err := k.roleSource.RequireClaimSubmission(ctx, claimant); err != nil {
		return 0, err
	}
	if _, err := k.GetConfig(ctx); err != nil {
		return 0, err
	}

	policy, err := k.policySource.GetPolicy(ctx, policyID)
	if err != nil {
		return 0, errorsmod.Wrapf(types.ErrNotFound, "policy %d", policyID)
	}
	if policy.Holder != claimant {
		return 0, errorsmod.Wrapf(types.ErrUnauthorized, "%s does not hold policy %d", claimant, policyID)
	}
	if has, err := k.PolicyClaims.Has(ctx, policyID); err == nil && has {
		return 0, errorsmod.Wrapf(types.ErrAlreadyExists, "policy %d already has a claim", policyID)
	}
	if err := invariant.AmountPositive(amount); err != nil {
		return 0, errorsmod.Wrap(types.ErrInvalidInput, err.Error())
	}
	if err := invariant.CoverageConstraint(amount, policy.CoverageAmount); err != nil {
		return 0, errorsmod.Wrap(types.ErrInvalidInput, err.Error())
	}

	_, now := contextNow(ctx)
	claimID, err := k.nextClaimID(ctx)
	if err != nil {
		return 0, err
	}

	claim := types.Claim{
		ID:              claimID,
		PolicyID:        policyID,
		Claimant:        claimant,
		Amount:          amount,
		Status:          invariant.ClaimSubmitted,
		SubmittedAtUnix: now.Unix(),
	}
	if err := k.setClaim(ctx, claim); err != nil {
		return 0, err
	}
	if err := k.PolicyClaims.Set(ctx, policyID, claimID); err != nil {
		return 0, err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeClaimSubmitted,
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyPolicyID, fmt.Sprintf("%d", policyID)),
		sdk.NewAttribute(AttributeKeyClaimant, claimant),
		sdk.NewAttribute(AttributeKeyAmount, amount.String()),
	))

	return claimID, nil
}

// StartReview moves a submitted claim under review.
func (k Keeper) StartReview(ctx context.Context, processor string, claimID uint64) error {
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	if err := k.roleSource.RequireClaimProcessing(ctx, processor); err != nil {
		return err
	}

	claim, err := k.GetClaim(ctx, claimID)
	if err != nil {
		return err
	}
	if err := invariant.RequireClaimTransition(claim.Status, invariant.ClaimUnderReview); err != nil {
		return err
	}

	claim.Status = invariant.ClaimUnderReview
	if err := k.setClaim(ctx, claim); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeClaimUnderReview,
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyActor, processor),
	))

	return nil
}

// ApproveClaim approves a claim under review. When oracle validation is
// mandatory, a resolved oracle reference for this claim must be supplied
// (oracleRequestID zero means none). The claim amount is reserved in the
// liquidity ledger; the claim becomes Approved only if the reservation
// succeeds.
func (k Keeper) ApproveClaim(ctx context.Context, processor string, claimID, oracleRequestID uint64) error {
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	if err := k.roleSource.RequireClaimProcessing(ctx, processor); err != nil {
		return err
	}

	claim, err := k.GetClaim(ctx, claimID)
	if err != nil {
		return err
	}
	if err := invariant.RequireClaimTransition(claim.Status, invariant.ClaimApproved); err != nil {
		return err
	}
	if err := invariant.AmountPositive(claim.Amount); err != nil {
		return err
	}

	config, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}
	if config.RequireOracleValidation {
		if oracleRequestID == 0 {
			return errorsmod.Wrap(types.ErrOracleValidationFailed, "no oracle reference supplied")
		}
		resolution, err := k.oracleSource.GetResolution(ctx, oracleRequestID)
		if err != nil {
			return errorsmod.Wrapf(types.ErrOracleValidationFailed, "request %d: %s", oracleRequestID, err)
		}
		if resolution.ClaimID != claimID {
			return errorsmod.Wrapf(types.ErrOracleValidationFailed,
				"resolution %d is for claim %d", oracleRequestID, resolution.ClaimID)
		}
		if resolution.SubmissionCount < config.MinOracleSubmissions {
			return errorsmod.Wrapf(types.ErrOracleValidationFailed,
				"%d submissions, need %d", resolution.SubmissionCount, config.MinOracleSubmissions)
		}
	}

	if err := k.poolKeeper.ReserveLiquidity(ctx, types.ModuleName, claimID, claim.Amount); err != nil {
		return err
	}

	_, now := contextNow(ctx)
	claim.Status = invariant.ClaimApproved
	claim.DecisionAtUnix = now.Unix()
	if config.DisputeWindowSeconds > 0 {
		claim.DisputeWindowEndUnix = now.Unix() + config.DisputeWindowSeconds
	}
	if err := k.setClaim(ctx, claim); err != nil {
		return err
	}
	if oracleRequestID != 0 {
		if err := k.ClaimOracleRefs.Set(ctx, claimID, oracleRequestID); err != nil {
			return err
		}
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeClaimApproved,
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyClaimant, claim.Claimant),
		sdk.NewAttribute(AttributeKeyAmount, claim.Amount.String()),
		sdk.NewAttribute(AttributeKeyActor, processor),
	))

	return nil
}

// RejectClaim rejects a claim under review. No ledger side effect.
func (k Keeper) RejectClaim(ctx context.Context, processor string, claimID uint64) error {
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	if err := k.roleSource.RequireClaimProcessing(ctx, processor); err != nil {
		return err
	}

	claim, err := k.GetClaim(ctx, claimID)
	if err != nil {
		return err
	}
	if err := invariant.RequireClaimTransition(claim.Status, invariant.ClaimRejected); err != nil {
		return err
	}

	_, now := contextNow(ctx)
	claim.Status = invariant.ClaimRejected
	claim.DecisionAtUnix = now.Unix()
	if err := k.setClaim(ctx, claim); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeClaimRejected,
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyActor, processor),
	))

	return nil
}

// SettleClaim pays out an approved claim's reservation. While the claim's
// dispute window is still open the claim parks in PendingSettlement instead
// and a later settle call, after the window closes, completes the payout.
func (k Keeper) SettleClaim(ctx context.Context, processor string, claimID uint64) error {
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	if err := k.roleSource.RequireClaimProcessing(ctx, processor); err != nil {
		return err
	}

	claim, err := k.GetClaim(ctx, claimID)
	if err != nil {
		return err
	}
	if err := invariant.AmountPositive(claim.Amount); err != nil {
		return err
	}

	_, now := contextNow(ctx)
	windowOpen := claim.DisputeWindowEndUnix > 0 && now.Unix() <= claim.DisputeWindowEndUnix

	if claim.Status == invariant.ClaimApproved && windowOpen {
		if err := invariant.RequireClaimTransition(claim.Status, invariant.ClaimPendingSettlement); err != nil {
			return err
		}
		claim.Status = invariant.ClaimPendingSettlement
		if err := k.setClaim(ctx, claim); err != nil {
			return err
		}

		sdkCtx, _ := contextNow(ctx)
		emitEventIfPossible(sdkCtx, sdk.NewEvent(
			EventTypeClaimPendingSettlement,
			sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
			sdk.NewAttribute(AttributeKeyWindowEnd, fmt.Sprintf("%d", claim.DisputeWindowEndUnix)),
		))
		return nil
	}

	if err := invariant.RequireClaimTransition(claim.Status, invariant.ClaimSettled); err != nil {
		return err
	}
	if claim.Status == invariant.ClaimPendingSettlement && windowOpen {
		return errorsmod.Wrapf(types.ErrInvalidState,
			"dispute window open until %d", claim.DisputeWindowEndUnix)
	}

	if err := k.poolKeeper.PayoutReservedClaim(ctx, types.ModuleName, claimID, claim.Claimant); err != nil {
		return err
	}

	claim.Status = invariant.ClaimSettled
	claim.SettledAtUnix = now.Unix()
	if err := k.setClaim(ctx, claim); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeClaimSettled,
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyClaimant, claim.Claimant),
		sdk.NewAttribute(AttributeKeyAmount, claim.Amount.String()),
	))

	return nil
}

// RaiseDispute challenges a claim awaiting settlement. The raiser must hold
// governance permission and the dispute window must still be open.
func (k Keeper) RaiseDispute(ctx context.Context, raiser string, claimID uint64, reason string) error {
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	if err := k.roleSource.RequireGovernance(ctx, raiser); err != nil {
		return err
	}

	claim, err := k.GetClaim(ctx, claimID)
	if err != nil {
		return err
	}
	if err := invariant.RequireClaimTransition(claim.Status, invariant.ClaimDisputed); err != nil {
		return err
	}

	_, now := contextNow(ctx)
	if claim.DisputeWindowEndUnix == 0 || now.Unix() > claim.DisputeWindowEndUnix {
		return errorsmod.Wrapf(types.ErrDisputeWindowClosed, "window ended at %d", claim.DisputeWindowEndUnix)
	}
	if has, err := k.Disputes.Has(ctx, claimID); err == nil && has {
		return errorsmod.Wrapf(types.ErrAlreadyExists, "dispute for claim %d", claimID)
	}

	dispute := types.Dispute{
		ClaimID:      claimID,
		RaisedBy:     strings.TrimSpace(raiser),
		Reason:       strings.TrimSpace(reason),
		RaisedAtUnix: now.Unix(),
	}
	if err := dispute.ValidateBasic(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidInput, err.Error())
	}

	claim.Status = invariant.ClaimDisputed
	if err := k.setClaim(ctx, claim); err != nil {
		return err
	}
	if err := k.setDispute(ctx, dispute); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeClaimDisputed,
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyActor, dispute.RaisedBy),
		sdk.NewAttribute(AttributeKeyReason, dispute.Reason),
	))

	return nil
}

// ResolveDispute closes a dispute. Upholding it overturns the approval: the
// claim is rejected and its reservation released. Dismissing it settles the
// claim and pays out.
func (k Keeper) ResolveDispute(ctx context.Context, resolver string, claimID uint64, uphold bool) error {
	if err := k.requireNotPaused(ctx); err != nil {
		return err
	}
	if err := k.roleSource.RequireGovernance(ctx, resolver); err != nil {
		return err
	}

	dispute, err := k.GetDispute(ctx, claimID)
	if err != nil {
		return err
	}
	if dispute.Resolved {
		return errorsmod.Wrapf(types.ErrInvalidState, "dispute for claim %d already resolved", claimID)
	}
	claim, err := k.GetClaim(ctx, claimID)
	if err != nil {
		return err
	}

	_, now := contextNow(ctx)
	if uphold {
		if err := invariant.RequireClaimTransition(claim.Status, invariant.ClaimRejected); err != nil {
			return err
		}
		if err := k.poolKeeper.ReleaseReservation(ctx, types.ModuleName, claimID); err != nil {
			return err
		}
		claim.Status = invariant.ClaimRejected
	} else {
		if err := invariant.RequireClaimTransition(claim.Status, invariant.ClaimSettled); err != nil {
			return err
		}
		if err := k.poolKeeper.PayoutReservedClaim(ctx, types.ModuleName, claimID, claim.Claimant); err != nil {
			return err
		}
		claim.Status = invariant.ClaimSettled
		claim.SettledAtUnix = now.Unix()
	}

	dispute.Resolved = true
	dispute.Upheld = uphold
	dispute.ResolvedBy = strings.TrimSpace(resolver)
	dispute.ResolvedAtUnix = now.Unix()

	if err := k.setClaim(ctx, claim); err != nil {
		return err
	}
	if err := k.setDispute(ctx, dispute); err != nil {
		return err
	}

	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		EventTypeDisputeResolved,
		sdk.NewAttribute(AttributeKeyClaimID, fmt.Sprintf("%d", claimID)),
		sdk.NewAttribute(AttributeKeyActor, dispute.ResolvedBy),
		sdk.NewAttribute(AttributeKeyUpheld, fmt.Sprintf("%t", uphold)),
	))

	return nil
}

// Pause blocks claim mutations; reads stay available. Admin only.
func (k Keeper) Pause(ctx context.Context, admin string) error {
	return k.setPaused(ctx, admin, true)
}

// Unpause re-enables claim mutations. Admin only.
func (k Keeper) Unpause(ctx context.Context, admin string) error {
	return k.setPaused(ctx, admin, false)
}

// IsPaused reports the pause flag; absence means not paused.
func (k Keeper) IsPaused(ctx context.Context) bool {
	paused, err := k.Paused.Get(ctx)
	return err == nil && paused
}

// GetConfig returns the lifecycle configuration.
func (k Keeper) GetConfig(ctx context.Context) (types.ClaimsConfig, error) {
	raw, err := k.Config.Get(ctx)
	if err != nil {
		return types.ClaimsConfig{}, types.ErrNotInitialized
	}
	var config types.ClaimsConfig
	if err := json.Unmarshal([]byte(raw), &config); err != nil {
		return types.ClaimsConfig{}, fmt.Errorf("decode claims config: %w", err)
	}
	return config, nil
}

// GetClaim loads one claim record.
func (k Keeper) GetClaim(ctx context.Context, claimID uint64) (types.Claim, error) {
	raw, err := k.Claims.Get(ctx, claimID)
	if err != nil {
		return types.Claim{}, errorsmod.Wrapf(types.ErrNotFound, "claim %d", claimID)
	}
	var claim types.Claim
	if err := json.Unmarshal([]byte(raw), &claim); err != nil {
		return types.Claim{}, fmt.Errorf("decode claim: %w", err)
	}
	return claim, nil
}

// GetClaimByPolicy returns the claim filed against a policy, if any.
func (k Keeper) GetClaimByPolicy(ctx context.Context, policyID uint64) (types.Claim, error) {
	claimID, err := k.PolicyClaims.Get(ctx, policyID)
	if err != nil {
		return types.Claim{}, errorsmod.Wrapf(types.ErrNotFound, "no claim for policy %d", policyID)
	}
	return k.GetClaim(ctx, claimID)
}

// GetClaimOracleRef returns the oracle request recorded at approval.
func (k Keeper) GetClaimOracleRef(ctx context.Context, claimID uint64) (uint64, error) {
	requestID, err := k.ClaimOracleRefs.Get(ctx, claimID)
	if err != nil {
		return 0, errorsmod.Wrapf(types.ErrNotFound, "no oracle reference for claim %d", claimID)
	}
	return requestID, nil
}

// GetDispute loads the dispute for a claim.
func (k Keeper) GetDispute(ctx context.Context, claimID uint64) (types.Dispute, error) {
	raw, err := k.Disputes.Get(ctx, claimID)
	if err != nil {
		return types.Dispute{}, errorsmod.Wrapf(types.ErrNotFound, "dispute for claim %d", claimID)
	}
	var dispute types.Dispute
	if err := json.Unmarshal([]byte(raw), &dispute); err != nil {
		return types.Dispute{}, fmt.Errorf("decode dispute: %w", err)
	}
	return dispute, nil
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

	eventType := EventTypeClaimsUnpaused
	if paused {
		eventType = EventTypeClaimsPaused
	}
	sdkCtx, _ := contextNow(ctx)
	emitEventIfPossible(sdkCtx, sdk.NewEvent(
		eventType,
		sdk.NewAttribute(AttributeKeyActor, admin),
	))
	return nil
}

func (k Keeper) nextClaimID(ctx context.Context) (uint64, error) {
	count, err := k.ClaimCount.Get(ctx)
	if err != nil {
		count = 0
	}
	count++
	if err := k.ClaimCount.Set(ctx, count); err != nil {
		return 0, err
	}
	return count, nil
}

func (k Keeper) setConfig(ctx context.Context, config types.ClaimsConfig) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return err
	}
	return k.Config.Set(ctx, string(raw))
}

func (k Keeper) setClaim(ctx context.Context, claim types.Claim) error {
	raw, err := json.Marshal(claim)
	if err != nil {
		return err
	}
	return k.Claims.Set(ctx, claim.ID, string(raw))
}

func (k Keeper) setDispute(ctx context.Context, dispute types.Dispute) error {
	raw, err := json.Marshal(dispute)
	if err != nil {
		return err
	}
	return k.Disputes.Set(ctx, dispute.ClaimID, string(raw))
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
