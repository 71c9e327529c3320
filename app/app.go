package app

import (
	"context"

	"cosmossdk.io/core/store"
	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/codec"

	claimskeeper "github.com/stellarinsured/insured-core/x/claims/keeper"
	claimstypes "github.com/stellarinsured/insured-core/x/claims/types"
	oraclekeeper "github.com/stellarinsured/insured-core/x/oracle/keeper"
	oracletypes "github.com/stellarinsured/insured-core/x/oracle/types"
	riskpoolkeeper "github.com/stellarinsured/insured-core/x/riskpool/keeper"
	roleskeeper "github.com/stellarinsured/insured-core/x/roles/keeper"
)

// StoreServices carries one KV store handle per component. Each component
// owns its namespace in full; no two components share a handle.
type StoreServices struct {
	Roles    store.KVStoreService
	RiskPool store.KVStoreService
	Oracle   store.KVStoreService
	Claims   store.KVStoreService
}

// Protocol wires the financial-integrity core together: the authorization
// substrate, the liquidity ledger, the consensus resolver and the claim
// lifecycle machine, each keeper behind its own store handle. The host owns
// transport, token custody and policy issuance; policies reach the core
// through the supplied PolicySource.
type Protocol struct {
	Roles    roleskeeper.Keeper
	RiskPool riskpoolkeeper.Keeper
	Oracle   oraclekeeper.Keeper
	Claims   claimskeeper.Keeper
}

// NewProtocol constructs the four keepers and their cross-component wiring.
func NewProtocol(
	cdc codec.Codec,
	logger log.Logger,
	stores StoreServices,
	policies claimstypes.PolicySource,
) Protocol {
	roles := roleskeeper.NewKeeper(cdc, stores.Roles, logger.With("module", "roles"))
	riskPool := riskpoolkeeper.NewKeeper(cdc, stores.RiskPool, logger.With("module", "riskpool"), roles)
	oracle := oraclekeeper.NewKeeper(cdc, stores.Oracle, logger.With("module", "oracle"), roles)
	claims := claimskeeper.NewKeeper(
		cdc,
		stores.Claims,
		logger.With("module", "claims"),
		roles,
		riskPool,
		oracle,
		policies,
	)

	return Protocol{
		Roles:    roles,
		RiskPool: riskPool,
		Oracle:   oracle,
		Claims:   claims,
	}
}

// BootstrapParams is the one-shot genesis configuration for the core.
type BootstrapParams struct {
	Admin            string
	MinProviderStake sdkmath.Int
	ClaimsConfig     claimstypes.ClaimsConfig
	ResolverConfig   oracletypes.ResolverConfig
}

// DefaultBootstrapParams returns the stock configuration for an admin.
func DefaultBootstrapParams(admin string) BootstrapParams {
	return BootstrapParams{
		Admin:            admin,
		MinProviderStake: sdkmath.NewInt(1),
		ClaimsConfig:     claimstypes.DefaultClaimsConfig(),
		ResolverConfig:   oracletypes.DefaultResolverConfig(),
	}
}

// Bootstrap initializes every component and registers the claims module on
// the trusted-contract allowlist so its reserve and payout calls pass the
// pool's caller check. One-time; each step fails if already done.
func (p Protocol) Bootstrap(ctx context.Context, params BootstrapParams) error {
	if err := p.Roles.InitializeAdmin(ctx, params.Admin); err != nil {
		return err
	}
	if err := p.RiskPool.Initialize(ctx, params.Admin, params.MinProviderStake); err != nil {
		return err
	}
	if err := p.Oracle.SetConfig(ctx, params.Admin, params.ResolverConfig); err != nil {
		return err
	}
	if err := p.Claims.Initialize(ctx, params.Admin, params.ClaimsConfig); err != nil {
		return err
	}
	return p.Roles.RegisterTrustedContract(ctx, params.Admin, claimstypes.ModuleName)
}
