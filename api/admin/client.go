// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package admin

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/rpc"

	"github.com/luxfi/launchpad/auction"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/tier"
	"github.com/luxfi/launchpad/utils/json"
)

// Path is where the admin service is mounted on a node.
const Path = "/ext/admin"

// Client for interacting with the admin service. Every call acts as Caller.
type Client struct {
	Requester rpc.EndpointRequester
	Caller    common.Address
}

// NewClient returns a client for the admin API served at uri that acts as
// caller.
func NewClient(uri string, caller common.Address) *Client {
	return &Client{
		Requester: rpc.NewEndpointRequester(uri + Path),
		Caller:    caller,
	}
}

func (c *Client) AddEditor(ctx context.Context, editor common.Address, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.addEditor", &EditorArgs{
		Caller: c.Caller,
		Editor: editor,
	}, &EmptyReply{}, options...)
}

func (c *Client) DeleteEditor(ctx context.Context, editor common.Address, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.deleteEditor", &EditorArgs{
		Caller: c.Caller,
		Editor: editor,
	}, &EmptyReply{}, options...)
}

func (c *Client) AddTierEditor(ctx context.Context, editor common.Address, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.addTierEditor", &EditorArgs{
		Caller: c.Caller,
		Editor: editor,
	}, &EmptyReply{}, options...)
}

func (c *Client) DeleteTierEditor(ctx context.Context, editor common.Address, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.deleteTierEditor", &EditorArgs{
		Caller: c.Caller,
		Editor: editor,
	}, &EmptyReply{}, options...)
}

func (c *Client) UseTier(ctx context.Context, user common.Address, level uint8, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.useTier", &UseTierArgs{
		Caller: c.Caller,
		User:   user,
		Level:  json.Uint64(level),
	}, &EmptyReply{}, options...)
}

func (c *Client) SetTierFees(ctx context.Context, fees [tier.NumLevels]*uint256.Int, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.setTierFees", &SetTierFeesArgs{
		Caller: c.Caller,
		Fees:   decimals(fees[:]),
	}, &EmptyReply{}, options...)
}

func (c *Client) SetClaimVerifier(ctx context.Context, verifier common.Address, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.setClaimVerifier", &SetClaimVerifierArgs{
		Caller:   c.Caller,
		Verifier: verifier,
	}, &EmptyReply{}, options...)
}

func (c *Client) SetKYCVerifier(ctx context.Context, verifier common.Address, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.setKYCVerifier", &SetClaimVerifierArgs{
		Caller:   c.Caller,
		Verifier: verifier,
	}, &EmptyReply{}, options...)
}

// StartProject creates a project with its registration window and returns
// its id.
func (c *Client) StartProject(ctx context.Context, registration project.Window, options ...rpc.Option) (uint64, error) {
	res := &ProjectIDReply{}
	err := c.Requester.SendRequest(ctx, "admin.startProject", &WindowArgs{
		Caller: c.Caller,
		Start:  json.Uint64(registration.Start),
		End:    json.Uint64(registration.End),
	}, res, options...)
	return uint64(res.ProjectID), err
}

func (c *Client) InitPrefund(ctx context.Context, id uint64, params project.PrefundParams, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.initPrefund", &InitPrefundArgs{
		WindowArgs: WindowArgs{
			Caller:    c.Caller,
			ProjectID: json.Uint64(id),
			Start:     json.Uint64(params.Window.Start),
			End:       json.Uint64(params.Window.End),
		},
		InvestAmounts: decimals(params.InvestAmounts[:]),
		Pools:         decimals(params.Pools[:]),
		Token:         params.Token,
	}, &EmptyReply{}, options...)
}

func (c *Client) InitAuction(ctx context.Context, id uint64, w project.Window, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.initAuction", &WindowArgs{
		Caller:    c.Caller,
		ProjectID: json.Uint64(id),
		Start:     json.Uint64(w.Start),
		End:       json.Uint64(w.End),
	}, &EmptyReply{}, options...)
}

func (c *Client) SetAuctionData(ctx context.Context, id uint64, data auction.Data, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.setAuctionData", &SetAuctionDataArgs{
		Caller:     c.Caller,
		ProjectID:  json.Uint64(id),
		Min:        decimal(data.Min),
		GiftAmount: json.Uint64(data.GiftAmount),
	}, &EmptyReply{}, options...)
}

func (c *Client) InitAllocationCompensation(ctx context.Context, id uint64, a project.Allocation, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.initAllocationCompensation", &AllocationArgs{
		Caller:              c.Caller,
		ProjectID:           json.Uint64(id),
		PrefundAllocation:   decimal(a.PrefundAllocation),
		PrefundCompensation: decimal(a.PrefundCompensation),
		AuctionAllocation:   decimal(a.AuctionAllocation),
		AuctionCompensation: decimal(a.AuctionCompensation),
		ClaimToken:          a.ClaimToken,
	}, &EmptyReply{}, options...)
}

func (c *Client) TransferPrefund(ctx context.Context, id uint64, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.transferPrefund", &ProjectArgs{
		Caller:    c.Caller,
		ProjectID: json.Uint64(id),
	}, &EmptyReply{}, options...)
}

func (c *Client) InitMinting(ctx context.Context, id uint64, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.initMinting", &ProjectArgs{
		Caller:    c.Caller,
		ProjectID: json.Uint64(id),
	}, &EmptyReply{}, options...)
}

func (c *Client) SetProjectToken(ctx context.Context, id uint64, token common.Address, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.setProjectToken", &SetProjectTokenArgs{
		Caller:    c.Caller,
		ProjectID: json.Uint64(id),
		Token:     token,
	}, &EmptyReply{}, options...)
}

// Fund credits user with amount of every faucet token.
func (c *Client) Fund(ctx context.Context, user common.Address, amount *uint256.Int, options ...rpc.Option) error {
	return c.Requester.SendRequest(ctx, "admin.fund", &FundArgs{
		User:   user,
		Amount: decimal(amount),
	}, &EmptyReply{}, options...)
}

func decimal(v *uint256.Int) string {
	if v == nil {
		return ""
	}
	return v.Dec()
}

func decimals(values []*uint256.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = decimal(v)
	}
	return out
}
