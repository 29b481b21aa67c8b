package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"code.pegvault.io/pegclient/types/num"
)

// AssetID names a collateral asset, e.g. "WBTC".
type AssetID string

// Asset describes a collateral token accepted by the vault.
type Asset struct {
	ID       AssetID
	Address  common.Address
	Decimals uint8
}

// VaultBalance is the amount of one collateral asset held by the vault, in asset units.
type VaultBalance = num.Decimal

// Distribution holds the reward distribution counters published by the protocol.
type Distribution struct {
	Round            uint64      `json:"round"`
	TotalDistributed num.Decimal `json:"totalDistributed"`
}

// ProtocolSnapshot is the latest known protocol state. It is a value: the store hands out
// copies and replaces it wholesale, so holders may keep one without further locking.
type ProtocolSnapshot struct {
	Price              num.Decimal
	TotalSupply        num.Decimal
	Collateral         map[AssetID]VaultBalance
	CollateralValueUSD num.Decimal
	Distribution       Distribution
	UpdatedAt          time.Time
}

// Clone returns a deep copy of the snapshot.
func (s ProtocolSnapshot) Clone() ProtocolSnapshot {
	c := s
	c.Collateral = make(map[AssetID]VaultBalance, len(s.Collateral))
	for k, v := range s.Collateral {
		c.Collateral[k] = v
	}
	return c
}

// VaultBalance returns the vault balance of asset, zero if unknown.
func (s ProtocolSnapshot) VaultBalance(asset AssetID) VaultBalance {
	return s.Collateral[asset]
}

// Ratio returns the collateral ratio of the snapshot.
func (s ProtocolSnapshot) Ratio() Ratio {
	return NewRatio(s.CollateralValueUSD, s.TotalSupply)
}

// AccountState holds the balances of the connected account.
type AccountState struct {
	Address       common.Address
	ChainID       *big.Int
	TokenBalance  num.Decimal
	AssetBalances map[AssetID]num.Decimal
	Allowances    map[AssetID]num.Decimal
}

// EmptyAccount returns zero balances for the account of s.
func EmptyAccount(s Session) AccountState {
	a := AccountState{
		Address:       s.Address,
		TokenBalance:  num.DecimalZero(),
		AssetBalances: map[AssetID]num.Decimal{},
		Allowances:    map[AssetID]num.Decimal{},
	}
	if s.ChainID != nil {
		a.ChainID = new(big.Int).Set(s.ChainID)
	}
	return a
}

// BelongsTo reports whether the balances were read for the account and chain of s.
func (a AccountState) BelongsTo(s Session) bool {
	if a.Address != s.Address {
		return false
	}
	if a.ChainID == nil || s.ChainID == nil {
		return a.ChainID == nil && s.ChainID == nil
	}
	return a.ChainID.Cmp(s.ChainID) == 0
}

// Clone returns a deep copy of the account state.
func (a AccountState) Clone() AccountState {
	c := a
	if a.ChainID != nil {
		c.ChainID = new(big.Int).Set(a.ChainID)
	}
	c.AssetBalances = cloneDecimals(a.AssetBalances)
	c.Allowances = cloneDecimals(a.Allowances)
	return c
}

func cloneDecimals(m map[AssetID]num.Decimal) map[AssetID]num.Decimal {
	c := make(map[AssetID]num.Decimal, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Ratio is a collateral ratio. Defined is false when the supply is zero, in which case
// Value is zero and must not be used in arithmetic.
type Ratio struct {
	Value   num.Decimal `json:"value"`
	Defined bool        `json:"defined"`
}

// NewRatio computes collateralValue / supply, undefined when supply is not positive.
func NewRatio(collateralValue, supply num.Decimal) Ratio {
	if !supply.IsPositive() {
		return Ratio{Value: num.DecimalZero()}
	}
	return Ratio{Value: num.DivDown(collateralValue, supply), Defined: true}
}

// DefinedRatio wraps a known ratio value.
func DefinedRatio(v num.Decimal) Ratio {
	return Ratio{Value: v, Defined: true}
}

// Display returns the value shown to users: zero for an undefined ratio.
func (r Ratio) Display() num.Decimal {
	if !r.Defined {
		return num.DecimalZero()
	}
	return r.Value
}

func (r Ratio) String() string {
	if !r.Defined {
		return "undefined"
	}
	return r.Value.String()
}

// MintQuote is the outcome of depositing collateral.
type MintQuote struct {
	USDValue       num.Decimal `json:"usdValue"`
	MintPrice      num.Decimal `json:"mintPrice"`
	TokensToMint   num.Decimal `json:"tokensToMint"`
	DevFee         num.Decimal `json:"devFee"`
	EndowmentFee   num.Decimal `json:"endowmentFee"`
	TotalMinted    num.Decimal `json:"totalMinted"`
	ProjectedRatio Ratio       `json:"projectedRatio"`
}

// RedeemMode is the redemption pricing regime.
type RedeemMode int

const (
	// Healthy redemptions are priced at par.
	Healthy RedeemMode = iota
	// Stress redemptions are haircut in proportion to the collateral ratio.
	Stress
)

func (m RedeemMode) String() string {
	switch m {
	case Healthy:
		return "healthy"
	case Stress:
		return "stress"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (m RedeemMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// RedeemQuote is the outcome of burning tokens for collateral.
type RedeemQuote struct {
	Mode            RedeemMode  `json:"mode"`
	EffectivePrice  num.Decimal `json:"effectivePrice"`
	GrossAssetValue num.Decimal `json:"grossAssetValue"`
	DevFee          num.Decimal `json:"devFee"`
	NetAssetValue   num.Decimal `json:"netAssetValue"`
	ProjectedRatio  Ratio       `json:"projectedRatio"`
}

// TxRef identifies a submitted transaction.
type TxRef struct {
	Hash common.Hash
}

func (r TxRef) String() string {
	return r.Hash.Hex()
}

// Receipt is the settled outcome of a transaction.
type Receipt struct {
	TxRef       TxRef
	BlockNumber uint64
	Success     bool
	// RevertReason is set when the receipt reports failure and the reason could be recovered.
	RevertReason string
}
