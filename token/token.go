// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token declares the token contracts the launchpad calls into.
// Balance bookkeeping lives behind these interfaces.
package token

import (
	"context"
	"errors"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

var (
	ErrUnknownToken        = errors.New("unknown token")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientAllow   = errors.New("insufficient allowance")
	ErrUnknownTokenID      = errors.New("unknown token id")
)

// Fungible is an ERC-20 style token.
type Fungible interface {
	// TransferFrom moves amount from owner to recipient using an allowance
	// owner granted to spender.
	TransferFrom(ctx context.Context, spender, owner, recipient common.Address, amount *uint256.Int) error
	// Transfer moves amount held by holder to recipient.
	Transfer(ctx context.Context, holder, recipient common.Address, amount *uint256.Int) error
	BalanceOf(ctx context.Context, owner common.Address) (*uint256.Int, error)
}

// ClaimInfo describes a minted claim token.
type ClaimInfo struct {
	Owner     common.Address
	ProjectID uint64
}

// ClaimToken is the non-fungible investment claim minted once per user and
// project.
type ClaimToken interface {
	Mint(ctx context.Context, projectID uint64, to common.Address) (uint64, error)
	Burn(ctx context.Context, tokenID uint64) error
	Claim(ctx context.Context, tokenID uint64) (ClaimInfo, error)
}

// GiftMinter mints the flat reward handed to the earliest auction bidders.
type GiftMinter interface {
	MintGift(ctx context.Context, to common.Address) error
}

// Resolver finds the contract deployed at an address.
type Resolver interface {
	Fungible(addr common.Address) (Fungible, error)
	ClaimToken(addr common.Address) (ClaimToken, error)
	GiftMinter(addr common.Address) (GiftMinter, error)
}
