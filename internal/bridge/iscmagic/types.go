// Package iscmagic encodes calls to the chain's bridge ("magic") contract,
// which moves layer-2 assets back to layer-1 addresses.
package iscmagic

import "math/big"

// L1Address is the serialized layer-1 address form the contract consumes.
type L1Address struct {
	Data []byte
}

// NativeTokenID identifies a layer-1 native token.
type NativeTokenID struct {
	Data []byte
}

// NativeToken is an amount of a layer-1 native token.
type NativeToken struct {
	ID     NativeTokenID
	Amount *big.Int
}

// Assets is an asset allowance: base tokens plus native token and NFT
// collections. A plain withdrawal only ever sets BaseTokens.
type Assets struct {
	BaseTokens   uint64
	NativeTokens []NativeToken
	Nfts         [][32]byte
}

// DictItem is a single key/value entry of a call parameter dictionary.
type DictItem struct {
	Key   []byte
	Value []byte
}

// Dict is a structured call parameter list.
type Dict struct {
	Items []DictItem
}

// SendMetadata describes an optional on-arrival contract call: target
// contract and entrypoint hnames, parameters, allowance and gas budget.
// The zero value requests a plain transfer.
type SendMetadata struct {
	TargetContract uint32
	Entrypoint     uint32
	Params         Dict
	Allowance      Assets
	GasBudget      uint64
}

// Expiration returns the transfer to ReturnAddress if it is not claimed
// before Time (unix seconds). Zero means no expiration.
type Expiration struct {
	Time          int64
	ReturnAddress L1Address
}

// SendOptions carries the transfer's timelock and expiration. The zero value
// means immediate, unconditional delivery.
type SendOptions struct {
	Timelock   int64
	Expiration Expiration
}
