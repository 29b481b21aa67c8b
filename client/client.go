// Package client is the entry point for callers: quotes against the latest snapshot,
// operation submission and state, and protocol health.
package client

import (
	"context"
	"fmt"

	e "code.pegvault.io/pegclient/errors"
	"code.pegvault.io/pegclient/quote"
	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

type snapshotReader interface {
	Snapshot() types.ProtocolSnapshot
	Account() types.AccountState
}

type operations interface {
	SubmitMint(ctx context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error)
	SubmitRedeem(ctx context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error)
	CurrentOperationState() types.PendingOperation
}

// Client ties the quote engine, the state store and the orchestrator together.
type Client struct {
	store  snapshotReader
	ops    operations
	assets map[types.AssetID]types.Asset
}

// New returns a Client for the given collateral assets.
func New(store snapshotReader, ops operations, assets []types.Asset) *Client {
	c := &Client{
		store:  store,
		ops:    ops,
		assets: make(map[types.AssetID]types.Asset, len(assets)),
	}
	for _, a := range assets {
		c.assets[a.ID] = a
	}
	return c
}

// Assets returns the configured collateral assets.
func (c *Client) Assets() []types.AssetID {
	ids := make([]types.AssetID, 0, len(c.assets))
	for id := range c.assets {
		ids = append(ids, id)
	}
	return ids
}

func (c *Client) checkAsset(asset types.AssetID) error {
	if _, ok := c.assets[asset]; !ok {
		return fmt.Errorf("%w: %s", e.ErrUnknownAsset, asset)
	}
	return nil
}

// QuoteMint previews a deposit of amount of asset.
func (c *Client) QuoteMint(asset types.AssetID, amount num.Decimal) (types.MintQuote, error) {
	if err := c.checkAsset(asset); err != nil {
		return types.MintQuote{}, err
	}
	return quote.MintQuote(amount, c.store.Snapshot())
}

// QuoteRedeem previews burning amount tokens for asset.
func (c *Client) QuoteRedeem(asset types.AssetID, amount num.Decimal) (types.RedeemQuote, error) {
	if err := c.checkAsset(asset); err != nil {
		return types.RedeemQuote{}, err
	}
	return quote.RedeemQuote(amount, asset, c.store.Snapshot())
}

// MaxRedeemable returns how many tokens the vault's holding of asset can currently
// cover.
func (c *Client) MaxRedeemable(asset types.AssetID) (num.Decimal, error) {
	if err := c.checkAsset(asset); err != nil {
		return num.DecimalZero(), err
	}
	return quote.MaxRedeemable(asset, c.store.Snapshot()), nil
}

// SubmitMint starts a mint.
func (c *Client) SubmitMint(ctx context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error) {
	return c.ops.SubmitMint(ctx, asset, amount)
}

// SubmitRedeem starts a redemption.
func (c *Client) SubmitRedeem(ctx context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error) {
	return c.ops.SubmitRedeem(ctx, asset, amount)
}

// CurrentOperationState returns the live operation, Idle if there is none.
func (c *Client) CurrentOperationState() types.PendingOperation {
	return c.ops.CurrentOperationState()
}

// Snapshot returns the latest protocol snapshot.
func (c *Client) Snapshot() types.ProtocolSnapshot {
	return c.store.Snapshot()
}

// Account returns the latest state of the connected account.
func (c *Client) Account() types.AccountState {
	return c.store.Account()
}

// Health classifies the current collateral ratio.
func (c *Client) Health() quote.Health {
	snap := c.store.Snapshot()
	return quote.HealthStatus(quote.CurrentRatio(snap), snap.TotalSupply)
}

// RewardPerToken returns the reward tier payout at the current collateral ratio.
func (c *Client) RewardPerToken() num.Decimal {
	return quote.RewardPerToken(quote.CurrentRatio(c.store.Snapshot()))
}
