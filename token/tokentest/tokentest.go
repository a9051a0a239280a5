// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tokentest provides in-memory token contracts for tests and local
// runs.
package tokentest

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/launchpad/token"
)

var (
	_ token.Fungible   = (*Fungible)(nil)
	_ token.ClaimToken = (*ClaimToken)(nil)
	_ token.GiftMinter = (*GiftMinter)(nil)
	_ token.Resolver   = (*Resolver)(nil)
)

type allowanceKey struct {
	owner, spender common.Address
}

// Fungible is an in-memory ERC-20.
type Fungible struct {
	lock       sync.Mutex
	balances   map[common.Address]*uint256.Int
	allowances map[allowanceKey]*uint256.Int
}

func NewFungible() *Fungible {
	return &Fungible{
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(map[allowanceKey]*uint256.Int),
	}
}

// Mint credits amount to owner.
func (f *Fungible) Mint(owner common.Address, amount *uint256.Int) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.balances[owner] = new(uint256.Int).Add(f.balanceOf(owner), amount)
}

// Approve lets spender move up to amount of owner's balance.
func (f *Fungible) Approve(owner, spender common.Address, amount *uint256.Int) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.allowances[allowanceKey{owner: owner, spender: spender}] = amount.Clone()
}

func (f *Fungible) Allowance(owner, spender common.Address) *uint256.Int {
	f.lock.Lock()
	defer f.lock.Unlock()

	if a, ok := f.allowances[allowanceKey{owner: owner, spender: spender}]; ok {
		return a.Clone()
	}
	return new(uint256.Int)
}

func (f *Fungible) TransferFrom(_ context.Context, spender, owner, recipient common.Address, amount *uint256.Int) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	key := allowanceKey{owner: owner, spender: spender}
	allowance, ok := f.allowances[key]
	if !ok || allowance.Lt(amount) {
		return fmt.Errorf("%w: %s for %s", token.ErrInsufficientAllow, owner, spender)
	}
	if err := f.move(owner, recipient, amount); err != nil {
		return err
	}
	f.allowances[key] = new(uint256.Int).Sub(allowance, amount)
	return nil
}

func (f *Fungible) Transfer(_ context.Context, holder, recipient common.Address, amount *uint256.Int) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.move(holder, recipient, amount)
}

func (f *Fungible) BalanceOf(_ context.Context, owner common.Address) (*uint256.Int, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.balanceOf(owner).Clone(), nil
}

// Balance is BalanceOf without the context, for assertions.
func (f *Fungible) Balance(owner common.Address) *uint256.Int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.balanceOf(owner).Clone()
}

func (f *Fungible) move(from, to common.Address, amount *uint256.Int) error {
	fromBalance := f.balanceOf(from)
	if fromBalance.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", token.ErrInsufficientBalance, from, fromBalance, amount)
	}
	f.balances[from] = new(uint256.Int).Sub(fromBalance, amount)
	f.balances[to] = new(uint256.Int).Add(f.balanceOf(to), amount)
	return nil
}

func (f *Fungible) balanceOf(owner common.Address) *uint256.Int {
	if b, ok := f.balances[owner]; ok {
		return b
	}
	return new(uint256.Int)
}

// ClaimToken is an in-memory claim NFT with sequential ids from 1.
type ClaimToken struct {
	lock   sync.Mutex
	nextID uint64
	tokens map[uint64]token.ClaimInfo
}

func NewClaimToken() *ClaimToken {
	return &ClaimToken{
		nextID: 1,
		tokens: make(map[uint64]token.ClaimInfo),
	}
}

func (c *ClaimToken) Mint(_ context.Context, projectID uint64, to common.Address) (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	id := c.nextID
	c.nextID++
	c.tokens[id] = token.ClaimInfo{Owner: to, ProjectID: projectID}
	return id, nil
}

func (c *ClaimToken) Burn(_ context.Context, tokenID uint64) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if _, ok := c.tokens[tokenID]; !ok {
		return fmt.Errorf("%w: %d", token.ErrUnknownTokenID, tokenID)
	}
	delete(c.tokens, tokenID)
	return nil
}

func (c *ClaimToken) Claim(_ context.Context, tokenID uint64) (token.ClaimInfo, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	info, ok := c.tokens[tokenID]
	if !ok {
		return token.ClaimInfo{}, fmt.Errorf("%w: %d", token.ErrUnknownTokenID, tokenID)
	}
	return info, nil
}

// TransferClaim hands tokenID to a new owner.
func (c *ClaimToken) TransferClaim(tokenID uint64, to common.Address) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	info, ok := c.tokens[tokenID]
	if !ok {
		return fmt.Errorf("%w: %d", token.ErrUnknownTokenID, tokenID)
	}
	info.Owner = to
	c.tokens[tokenID] = info
	return nil
}

// GiftMinter counts gifts per recipient.
type GiftMinter struct {
	lock  sync.Mutex
	gifts map[common.Address]int
}

func NewGiftMinter() *GiftMinter {
	return &GiftMinter{gifts: make(map[common.Address]int)}
}

func (g *GiftMinter) MintGift(_ context.Context, to common.Address) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.gifts[to]++
	return nil
}

func (g *GiftMinter) Gifts(to common.Address) int {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.gifts[to]
}

// Resolver maps addresses to registered in-memory contracts.
type Resolver struct {
	lock        sync.RWMutex
	fungibles   map[common.Address]token.Fungible
	claimTokens map[common.Address]token.ClaimToken
	giftMinters map[common.Address]token.GiftMinter
}

func NewResolver() *Resolver {
	return &Resolver{
		fungibles:   make(map[common.Address]token.Fungible),
		claimTokens: make(map[common.Address]token.ClaimToken),
		giftMinters: make(map[common.Address]token.GiftMinter),
	}
}

func (r *Resolver) AddFungible(addr common.Address, f token.Fungible) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.fungibles[addr] = f
}

func (r *Resolver) AddClaimToken(addr common.Address, c token.ClaimToken) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.claimTokens[addr] = c
}

func (r *Resolver) AddGiftMinter(addr common.Address, g token.GiftMinter) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.giftMinters[addr] = g
}

func (r *Resolver) Fungible(addr common.Address) (token.Fungible, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	f, ok := r.fungibles[addr]
	if !ok {
		return nil, fmt.Errorf("%w: fungible %s", token.ErrUnknownToken, addr)
	}
	return f, nil
}

func (r *Resolver) ClaimToken(addr common.Address) (token.ClaimToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	c, ok := r.claimTokens[addr]
	if !ok {
		return nil, fmt.Errorf("%w: claim token %s", token.ErrUnknownToken, addr)
	}
	return c, nil
}

func (r *Resolver) GiftMinter(addr common.Address) (token.GiftMinter, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	g, ok := r.giftMinters[addr]
	if !ok {
		return nil, fmt.Errorf("%w: gift minter %s", token.ErrUnknownToken, addr)
	}
	return g, nil
}
