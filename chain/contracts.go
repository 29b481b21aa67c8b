package chain

import (
	"github.com/ethereum/go-ethereum/common"

	"code.pegvault.io/pegclient/types"
)

// Contracts is the deployed protocol: the pegged token, the collateral vault, the price
// oracle, and the collateral assets the vault accepts.
type Contracts struct {
	Token  types.ContractRef
	Vault  types.ContractRef
	Oracle types.ContractRef
	Assets []types.Asset

	// TokenDecimals applies to the token supply, balances and the collateral value;
	// PriceDecimals to the oracle price.
	TokenDecimals uint8
	PriceDecimals uint8
}

// NewContracts builds the contract set from addresses.
func NewContracts(token, vault, oracle common.Address, tokenDecimals, priceDecimals uint8, assets []types.Asset) Contracts {
	return Contracts{
		Token:         types.ContractRef{Name: "token", Address: token},
		Vault:         types.ContractRef{Name: "vault", Address: vault},
		Oracle:        types.ContractRef{Name: "oracle", Address: oracle},
		Assets:        assets,
		TokenDecimals: tokenDecimals,
		PriceDecimals: priceDecimals,
	}
}

// Asset looks up a collateral asset by id.
func (c Contracts) Asset(id types.AssetID) (types.Asset, bool) {
	for _, a := range c.Assets {
		if a.ID == id {
			return a, true
		}
	}
	return types.Asset{}, false
}

// AssetRef returns the ERC20 contract of a collateral asset.
func AssetRef(a types.Asset) types.ContractRef {
	return types.ContractRef{Name: string(a.ID), Address: a.Address}
}
