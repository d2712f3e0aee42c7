package iscmagic

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"

	"github/chapool/bridge-withdraw/internal/bridge/errs"
	"github/chapool/bridge-withdraw/internal/bridge/l1addr"
)

// sendABI is the fixed surface of the bridge contract's send entrypoint.
const sendABI = `[
	{
		"name": "send",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{
				"name": "targetAddress",
				"type": "tuple",
				"components": [{"name": "data", "type": "bytes"}]
			},
			{
				"name": "assets",
				"type": "tuple",
				"components": [
					{"name": "baseTokens", "type": "uint64"},
					{
						"name": "nativeTokens",
						"type": "tuple[]",
						"components": [
							{"name": "ID", "type": "tuple", "components": [{"name": "data", "type": "bytes"}]},
							{"name": "amount", "type": "uint256"}
						]
					},
					{"name": "nfts", "type": "bytes32[]"}
				]
			},
			{"name": "adjustMinimumStorageDeposit", "type": "bool"},
			{
				"name": "metadata",
				"type": "tuple",
				"components": [
					{"name": "targetContract", "type": "uint32"},
					{"name": "entrypoint", "type": "uint32"},
					{
						"name": "params",
						"type": "tuple",
						"components": [
							{
								"name": "items",
								"type": "tuple[]",
								"components": [
									{"name": "key", "type": "bytes"},
									{"name": "value", "type": "bytes"}
								]
							}
						]
					},
					{
						"name": "allowance",
						"type": "tuple",
						"components": [
							{"name": "baseTokens", "type": "uint64"},
							{
								"name": "nativeTokens",
								"type": "tuple[]",
								"components": [
									{"name": "ID", "type": "tuple", "components": [{"name": "data", "type": "bytes"}]},
									{"name": "amount", "type": "uint256"}
								]
							},
							{"name": "nfts", "type": "bytes32[]"}
						]
					},
					{"name": "gasBudget", "type": "uint64"}
				]
			},
			{
				"name": "sendOptions",
				"type": "tuple",
				"components": [
					{"name": "timelock", "type": "int64"},
					{
						"name": "expiration",
						"type": "tuple",
						"components": [
							{"name": "time", "type": "int64"},
							{"name": "returnAddress", "type": "tuple", "components": [{"name": "data", "type": "bytes"}]}
						]
					}
				]
			}
		],
		"outputs": []
	}
]`

var bridgeABI = mustParseABI(sendABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// BuildWithdrawCalldata encodes the plain-transfer form of the bridge send
// call: the given base-token amount to the recipient, no native tokens, no
// NFTs, zero metadata and options. Pure function of its inputs.
func BuildWithdrawCalldata(recipient l1addr.Address, baseTokens *big.Int) ([]byte, error) {
	if baseTokens == nil || baseTokens.Sign() < 0 {
		return nil, errors.Wrap(errs.ErrFormat, "base token amount must be non-negative")
	}
	if !baseTokens.IsUint64() {
		return nil, errors.Wrapf(errs.ErrFormat, "base token amount %s exceeds uint64 range", baseTokens)
	}

	target := L1Address{Data: recipient.BridgeBytes()}
	assets := Assets{BaseTokens: baseTokens.Uint64()}

	data, err := bridgeABI.Pack("send", target, assets, false, SendMetadata{}, SendOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode bridge send call")
	}

	return data, nil
}
