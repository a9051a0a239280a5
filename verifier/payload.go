// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verifier

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/launchpad/utils/wrappers"
)

const (
	tierPayloadLen    = 2*wrappers.AddressLen + 2*wrappers.Uint256Len + wrappers.ByteLen
	prefundPayloadLen = 2*wrappers.AddressLen + 2*wrappers.Uint256Len + wrappers.ByteLen
	auctionPayloadLen = 2*wrappers.AddressLen + 3*wrappers.Uint256Len
	mintPayloadLen    = 2*wrappers.AddressLen + 2*wrappers.Uint256Len
)

// TierPayload is the message authorizing user to claim level while holding
// nonce, bound to chainID and the tier ledger at ledger.
func TierPayload(user common.Address, nonce uint64, level uint8, chainID uint64, ledger common.Address) []byte {
	p := wrappers.NewPacker(tierPayloadLen)
	p.PackAddress(user)
	p.PackUint64Word(nonce)
	p.PackByte(level)
	p.PackUint64Word(chainID)
	p.PackAddress(ledger)
	return p.Bytes
}

// PrefundPayload is the lottery-win message letting user invest at tier in
// projectID through the prefund ledger at ledger.
func PrefundPayload(user, ledger common.Address, chainID, projectID uint64, tier uint8) []byte {
	p := wrappers.NewPacker(prefundPayloadLen)
	p.PackAddress(user)
	p.PackAddress(ledger)
	p.PackUint64Word(chainID)
	p.PackUint64Word(projectID)
	p.PackByte(tier)
	return p.Bytes
}

// AuctionPayload is the message letting user bid amount in projectID through
// the auction ledger at ledger.
func AuctionPayload(user, ledger common.Address, projectID uint64, amount *uint256.Int, chainID uint64) []byte {
	p := wrappers.NewPacker(auctionPayloadLen)
	p.PackAddress(user)
	p.PackAddress(ledger)
	p.PackUint64Word(projectID)
	p.PackUint256(amount)
	p.PackUint64Word(chainID)
	return p.Bytes
}

// MintPayload is the KYC approval letting investor mint through the claim
// token at mint in projectID.
func MintPayload(investor, mint common.Address, projectID, chainID uint64) []byte {
	p := wrappers.NewPacker(mintPayloadLen)
	p.PackAddress(investor)
	p.PackAddress(mint)
	p.PackUint64Word(projectID)
	p.PackUint64Word(chainID)
	return p.Bytes
}
