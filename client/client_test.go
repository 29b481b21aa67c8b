package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	e "code.pegvault.io/pegclient/errors"
	"code.pegvault.io/pegclient/quote"
	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

type stubOps struct {
	minted   num.Decimal
	redeemed num.Decimal
}

func (s *stubOps) SubmitMint(_ context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error) {
	s.minted = amount
	return types.PendingOperation{Kind: types.Mint, Asset: asset, Amount: amount, State: types.AwaitingApprovalSignature}, nil
}

func (s *stubOps) SubmitRedeem(_ context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error) {
	s.redeemed = amount
	return types.PendingOperation{Kind: types.Redeem, Asset: asset, Amount: amount, State: types.AwaitingExecutionSignature}, nil
}

func (s *stubOps) CurrentOperationState() types.PendingOperation {
	return types.PendingOperation{State: types.Idle}
}

func newClient(t *testing.T) (*Client, *types.SnapshotStore, *stubOps) {
	t.Helper()

	store := types.NewSnapshotStore()
	t.Cleanup(store.Close)
	store.Replace(types.ProtocolSnapshot{
		Price:              num.MustDecimal("100000"),
		TotalSupply:        num.MustDecimal("100000"),
		CollateralValueUSD: num.MustDecimal("115000"),
		Collateral:         map[types.AssetID]types.VaultBalance{"WBTC": num.MustDecimal("0.5")},
	})

	ops := &stubOps{}
	return New(store, ops, []types.Asset{{ID: "WBTC", Decimals: 8}}), store, ops
}

func TestClient_Quotes(t *testing.T) {
	c, _, _ := newClient(t)

	mq, err := c.QuoteMint("WBTC", num.MustDecimal("1"))
	require.NoError(t, err)
	assert.Equal(t, "1.15", mq.MintPrice.String())

	rq, err := c.QuoteRedeem("WBTC", num.MustDecimal("1000"))
	require.NoError(t, err)
	assert.Equal(t, types.Healthy, rq.Mode)

	limit, err := c.MaxRedeemable("WBTC")
	require.NoError(t, err)
	assert.Equal(t, "50000", limit.String())

	_, err = c.QuoteMint("tBTC", num.MustDecimal("1"))
	assert.ErrorIs(t, err, e.ErrUnknownAsset)
	_, err = c.QuoteRedeem("tBTC", num.MustDecimal("1"))
	assert.ErrorIs(t, err, e.ErrUnknownAsset)
}

func TestClient_HealthAndReward(t *testing.T) {
	c, store, _ := newClient(t)

	assert.Equal(t, quote.Good, c.Health().Status)
	assert.Equal(t, "0.01", c.RewardPerToken().String())

	store.SnapshotSet(types.SetCollateralValue(num.MustDecimal("202000")))
	assert.Equal(t, quote.Excellent, c.Health().Status)
	assert.Equal(t, "0.1", c.RewardPerToken().String())

	store.SnapshotSet(types.SetTotalSupply(num.DecimalZero()))
	assert.Equal(t, quote.NoSupply, c.Health().Status)
}

func TestClient_DelegatesOperations(t *testing.T) {
	c, _, ops := newClient(t)

	op, err := c.SubmitMint(context.Background(), "WBTC", num.MustDecimal("0.1"))
	require.NoError(t, err)
	assert.Equal(t, types.Mint, op.Kind)
	assert.Equal(t, "0.1", ops.minted.String())

	op, err = c.SubmitRedeem(context.Background(), "WBTC", num.MustDecimal("10"))
	require.NoError(t, err)
	assert.Equal(t, types.Redeem, op.Kind)
	assert.Equal(t, "10", ops.redeemed.String())

	assert.Equal(t, types.Idle, c.CurrentOperationState().State)
	assert.Equal(t, []types.AssetID{"WBTC"}, c.Assets())
}
