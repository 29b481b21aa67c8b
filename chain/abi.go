package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Method names used against the protocol contracts and the collateral tokens.
const (
	MethodBalanceOf          = "balanceOf"
	MethodAllowance          = "allowance"
	MethodApprove            = "approve"
	MethodTotalSupply        = "totalSupply"
	MethodMint               = "mint"
	MethodRedeem             = "redeem"
	MethodPrice              = "getBTCPrice"
	MethodCollateralValue    = "getTotalCollateralValue"
	MethodRewardRound        = "currentRewardRound"
	MethodRewardsDistributed = "totalRewardsDistributed"
)

// protocolABI covers every method the client calls. The protocol token, the vault,
// the price oracle and the collateral ERC20s share this one definition; methods are
// only ever invoked against the contract that implements them.
const protocolABI = `[
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"redeem","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"},{"name":"tokenAmount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getBTCPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getTotalCollateralValue","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"currentRewardRound","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalRewardsDistributed","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

var parsedABI = mustParseABI(protocolABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}
