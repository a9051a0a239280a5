// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/rpc"

	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/tier"
	"github.com/luxfi/launchpad/utils/json"
)

// Path is where the launchpad service is mounted on a node.
const Path = "/ext/launchpad"

// Client for interacting with the launchpad service.
type Client struct {
	Requester rpc.EndpointRequester
}

// NewClient returns a client for the launchpad served at uri.
func NewClient(uri string) *Client {
	return &Client{Requester: rpc.NewEndpointRequester(
		uri + Path,
	)}
}

func (c *Client) GetBadge(ctx context.Context, user common.Address, options ...rpc.Option) (tier.Badge, error) {
	res := &GetBadgeReply{}
	err := c.Requester.SendRequest(ctx, "launchpad.getBadge", &AddressArgs{
		Address: user,
	}, res, options...)
	return tier.Badge{
		Level:  uint8(res.Level),
		Nonce:  uint64(res.Nonce),
		Usable: res.Usable,
	}, err
}

func (c *Client) GetProject(ctx context.Context, id uint64, options ...rpc.Option) (*project.Project, error) {
	res := &GetProjectReply{}
	err := c.Requester.SendRequest(ctx, "launchpad.getProject", &ProjectArgs{
		ProjectID: json.Uint64(id),
	}, res, options...)
	return res.Project, err
}

func (c *Client) IsRegistered(ctx context.Context, id uint64, user common.Address, options ...rpc.Option) (bool, error) {
	res := &IsRegisteredReply{}
	err := c.Requester.SendRequest(ctx, "launchpad.isRegistered", &UserProjectArgs{
		ProjectID: json.Uint64(id),
		User:      user,
	}, res, options...)
	return res.Registered, err
}

// GetInvestment returns the prefund tier user invested at, and whether they
// invested at all.
func (c *Client) GetInvestment(ctx context.Context, id uint64, user common.Address, options ...rpc.Option) (uint8, bool, error) {
	res := &GetInvestmentReply{}
	err := c.Requester.SendRequest(ctx, "launchpad.getInvestment", &UserProjectArgs{
		ProjectID: json.Uint64(id),
		User:      user,
	}, res, options...)
	return uint8(res.Tier), res.Invested, err
}

func (c *Client) GetSpent(ctx context.Context, id uint64, user common.Address, options ...rpc.Option) (*uint256.Int, error) {
	res := &GetSpentReply{}
	err := c.Requester.SendRequest(ctx, "launchpad.getSpent", &UserProjectArgs{
		ProjectID: json.Uint64(id),
		User:      user,
	}, res, options...)
	if err != nil {
		return nil, err
	}
	return uint256.FromDecimal(res.Spent)
}

// GetClaim returns the allocation and compensation user may redeem.
func (c *Client) GetClaim(ctx context.Context, id uint64, user common.Address, options ...rpc.Option) (*uint256.Int, *uint256.Int, error) {
	res := &GetClaimReply{}
	err := c.Requester.SendRequest(ctx, "launchpad.getClaim", &UserProjectArgs{
		ProjectID: json.Uint64(id),
		User:      user,
	}, res, options...)
	if err != nil {
		return nil, nil, err
	}
	allocation, err := uint256.FromDecimal(res.Allocation)
	if err != nil {
		return nil, nil, err
	}
	compensation, err := uint256.FromDecimal(res.Compensation)
	return allocation, compensation, err
}

func (c *Client) AddressOf(ctx context.Context, alias string, options ...rpc.Option) (common.Address, error) {
	res := &AddressOfReply{}
	err := c.Requester.SendRequest(ctx, "launchpad.addressOf", &AddressOfArgs{
		Alias: alias,
	}, res, options...)
	return res.Address, err
}

// ClaimTier submits a claim verifier signature, r || s || v, for level.
func (c *Client) ClaimTier(ctx context.Context, user common.Address, level uint8, sig []byte, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "launchpad.claimTier", &ClaimTierArgs{
		User:      user,
		Level:     json.Uint64(level),
		Signature: sig,
	}, &EmptyReply{}, options...)
}

func (c *Client) Register(ctx context.Context, id uint64, user common.Address, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "launchpad.register", &UserProjectArgs{
		ProjectID: json.Uint64(id),
		User:      user,
	}, &EmptyReply{}, options...)
}

func (c *Client) Prefund(ctx context.Context, id uint64, user common.Address, level uint8, sig []byte, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "launchpad.prefund", &PrefundArgs{
		ProjectID: json.Uint64(id),
		User:      user,
		Tier:      json.Uint64(level),
		Signature: sig,
	}, &EmptyReply{}, options...)
}

func (c *Client) Participate(ctx context.Context, id uint64, user common.Address, amount *uint256.Int, sig []byte, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "launchpad.participate", &ParticipateArgs{
		ProjectID: json.Uint64(id),
		User:      user,
		Amount:    amount.Dec(),
		Signature: sig,
	}, &EmptyReply{}, options...)
}

// Mint returns the id of the claim token minted for user. sig is the KYC
// approval and may be nil while no KYC verifier is set.
func (c *Client) Mint(ctx context.Context, id uint64, user common.Address, sig []byte, options ...rpc.Option) (uint64, error) {
	res := &MintReply{}
	err := c.Requester.SendRequest(ctx, "launchpad.mint", &MintArgs{
		ProjectID: json.Uint64(id),
		User:      user,
		Signature: sig,
	}, res, options...)
	return uint64(res.TokenID), err
}
