// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/launchpad/auction"
	"github.com/luxfi/launchpad/auth"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/tier"
	"github.com/luxfi/launchpad/utils/json"
)

var (
	owner = common.HexToAddress("0x0c0ffee")
	alice = common.HexToAddress("0xa11ce")
	token = common.HexToAddress("0x70c3")
)

// call records a forwarded admin operation.
type call struct {
	op     string
	caller common.Address
	id     uint64
	arg    any
}

type fakeLaunchpad struct {
	lock  sync.Mutex
	calls []call
}

func (f *fakeLaunchpad) record(c call) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if c.caller != owner {
		return auth.ErrUnauthorized
	}
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeLaunchpad) recorded() []call {
	f.lock.Lock()
	defer f.lock.Unlock()

	return append([]call(nil), f.calls...)
}

func (f *fakeLaunchpad) AddEditor(caller, editor common.Address) error {
	return f.record(call{op: "addEditor", caller: caller, arg: editor})
}

func (f *fakeLaunchpad) DeleteEditor(caller, editor common.Address) error {
	return f.record(call{op: "deleteEditor", caller: caller, arg: editor})
}

func (f *fakeLaunchpad) AddTierEditor(caller, editor common.Address) error {
	return f.record(call{op: "addTierEditor", caller: caller, arg: editor})
}

func (f *fakeLaunchpad) DeleteTierEditor(caller, editor common.Address) error {
	return f.record(call{op: "deleteTierEditor", caller: caller, arg: editor})
}

func (f *fakeLaunchpad) UseTier(caller, user common.Address, level uint8) error {
	return f.record(call{op: "useTier", caller: caller, arg: tier.Badge{Level: level}})
}

func (f *fakeLaunchpad) SetTierFees(caller common.Address, fees [tier.NumLevels]*uint256.Int) error {
	return f.record(call{op: "setTierFees", caller: caller, arg: fees})
}

func (f *fakeLaunchpad) SetClaimVerifier(caller, addr common.Address) error {
	return f.record(call{op: "setClaimVerifier", caller: caller, arg: addr})
}

func (f *fakeLaunchpad) SetKYCVerifier(caller, addr common.Address) error {
	return f.record(call{op: "setKYCVerifier", caller: caller, arg: addr})
}

func (f *fakeLaunchpad) StartProject(caller common.Address, registration project.Window) (uint64, error) {
	if err := f.record(call{op: "startProject", caller: caller, arg: registration}); err != nil {
		return 0, err
	}
	return 4, nil
}

func (f *fakeLaunchpad) InitPrefund(caller common.Address, id uint64, params project.PrefundParams) error {
	return f.record(call{op: "initPrefund", caller: caller, id: id, arg: params})
}

func (f *fakeLaunchpad) InitAuction(caller common.Address, id uint64, w project.Window) error {
	return f.record(call{op: "initAuction", caller: caller, id: id, arg: w})
}

func (f *fakeLaunchpad) SetAuctionData(caller common.Address, id uint64, data auction.Data) error {
	return f.record(call{op: "setAuctionData", caller: caller, id: id, arg: data})
}

func (f *fakeLaunchpad) InitAllocationCompensation(caller common.Address, id uint64, a project.Allocation) error {
	return f.record(call{op: "initAllocationCompensation", caller: caller, id: id, arg: a})
}

func (f *fakeLaunchpad) TransferPrefund(caller common.Address, id uint64) error {
	return f.record(call{op: "transferPrefund", caller: caller, id: id})
}

func (f *fakeLaunchpad) InitMinting(caller common.Address, id uint64) error {
	return f.record(call{op: "initMinting", caller: caller, id: id})
}

func (f *fakeLaunchpad) SetProjectToken(caller common.Address, id uint64, addr common.Address) error {
	return f.record(call{op: "setProjectToken", caller: caller, id: id, arg: addr})
}

type fakeFaucet struct {
	lock  sync.Mutex
	funds map[common.Address]*uint256.Int
}

func (f *fakeFaucet) Fund(user common.Address, amount *uint256.Int) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.funds[user] = amount
	return nil
}

func (f *fakeFaucet) funded(user common.Address) *uint256.Int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.funds[user]
}

func newClient(t *testing.T, faucet Faucet) (*Client, *fakeLaunchpad) {
	lp := &fakeLaunchpad{}
	handler, err := NewService(lp, faucet, log.NewNoOpLogger())
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.Handle(Path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return NewClient(server.URL, owner), lp
}

func TestClient(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	funds := &fakeFaucet{funds: make(map[common.Address]*uint256.Int)}
	c, lp := newClient(t, funds)

	require.NoError(c.AddEditor(ctx, alice))
	require.NoError(c.AddTierEditor(ctx, alice))
	require.NoError(c.UseTier(ctx, alice, 2))
	require.NoError(c.DeleteTierEditor(ctx, alice))
	require.NoError(c.DeleteEditor(ctx, alice))
	require.NoError(c.SetClaimVerifier(ctx, alice))
	require.NoError(c.SetKYCVerifier(ctx, alice))

	fees := [tier.NumLevels]*uint256.Int{
		uint256.NewInt(0),
		uint256.NewInt(10),
		uint256.NewInt(20),
		uint256.NewInt(30),
	}
	require.NoError(c.SetTierFees(ctx, fees))

	id, err := c.StartProject(ctx, project.Window{Start: 10, End: 20})
	require.NoError(err)
	require.Equal(uint64(4), id)

	params := project.PrefundParams{
		Window: project.Window{Start: 21, End: 30},
		InvestAmounts: [project.NumPrefundTiers]*uint256.Int{
			uint256.NewInt(100), uint256.NewInt(200), uint256.NewInt(300),
		},
		Pools: [project.NumPrefundTiers]*uint256.Int{
			uint256.NewInt(1_000), uint256.NewInt(2_000), uint256.NewInt(3_000),
		},
		Token: token,
	}
	require.NoError(c.InitPrefund(ctx, id, params))
	require.NoError(c.InitAuction(ctx, id, project.Window{Start: 31, End: 40}))

	data := auction.Data{Min: uint256.NewInt(50), GiftAmount: 3}
	require.NoError(c.SetAuctionData(ctx, id, data))

	allocation := project.Allocation{
		PrefundAllocation:   uint256.NewInt(1),
		PrefundCompensation: uint256.NewInt(2),
		AuctionAllocation:   uint256.NewInt(3),
		AuctionCompensation: uint256.NewInt(4),
		ClaimToken:          token,
	}
	require.NoError(c.InitAllocationCompensation(ctx, id, allocation))
	require.NoError(c.TransferPrefund(ctx, id))
	require.NoError(c.InitMinting(ctx, id))
	require.NoError(c.SetProjectToken(ctx, id, token))

	require.Equal([]call{
		{op: "addEditor", caller: owner, arg: alice},
		{op: "addTierEditor", caller: owner, arg: alice},
		{op: "useTier", caller: owner, arg: tier.Badge{Level: 2}},
		{op: "deleteTierEditor", caller: owner, arg: alice},
		{op: "deleteEditor", caller: owner, arg: alice},
		{op: "setClaimVerifier", caller: owner, arg: alice},
		{op: "setKYCVerifier", caller: owner, arg: alice},
		{op: "setTierFees", caller: owner, arg: fees},
		{op: "startProject", caller: owner, arg: project.Window{Start: 10, End: 20}},
		{op: "initPrefund", caller: owner, id: 4, arg: params},
		{op: "initAuction", caller: owner, id: 4, arg: project.Window{Start: 31, End: 40}},
		{op: "setAuctionData", caller: owner, id: 4, arg: data},
		{op: "initAllocationCompensation", caller: owner, id: 4, arg: allocation},
		{op: "transferPrefund", caller: owner, id: 4},
		{op: "initMinting", caller: owner, id: 4},
		{op: "setProjectToken", caller: owner, id: 4, arg: token},
	}, lp.recorded())

	require.NoError(c.Fund(ctx, alice, uint256.NewInt(1_000)))
	require.Equal(uint256.NewInt(1_000), funds.funded(alice))
}

func TestClientCallerIsForwarded(t *testing.T) {
	require := require.New(t)
	c, lp := newClient(t, nil)
	c.Caller = alice

	err := c.AddEditor(context.Background(), alice)
	require.ErrorContains(err, auth.ErrUnauthorized.Error())
	require.Empty(lp.recorded())
}

func TestRejectMalformedArgs(t *testing.T) {
	lp := &fakeLaunchpad{}
	a := &Admin{lp: lp, log: log.NewNoOpLogger()}

	tests := []struct {
		name        string
		call        func() error
		expectedErr error
	}{
		{
			name: "level",
			call: func() error {
				return a.UseTier(nil, &UseTierArgs{Caller: owner, User: alice, Level: 256}, &EmptyReply{})
			},
			expectedErr: tier.ErrInvalidLevel,
		},
		{
			name: "fee count",
			call: func() error {
				return a.SetTierFees(nil, &SetTierFeesArgs{Caller: owner, Fees: []string{"1"}}, &EmptyReply{})
			},
			expectedErr: errInvalidAmount,
		},
		{
			name: "prefund amount",
			call: func() error {
				return a.InitPrefund(nil, &InitPrefundArgs{
					WindowArgs:    WindowArgs{Caller: owner, ProjectID: 1, Start: 1, End: 2},
					InvestAmounts: []string{"1", "x", "3"},
					Pools:         []string{"1", "2", "3"},
				}, &EmptyReply{})
			},
			expectedErr: errInvalidAmount,
		},
		{
			name: "auction minimum",
			call: func() error {
				return a.SetAuctionData(nil, &SetAuctionDataArgs{Caller: owner, ProjectID: json.Uint64(1), Min: "-1"}, &EmptyReply{})
			},
			expectedErr: errInvalidAmount,
		},
		{
			name: "allocation",
			call: func() error {
				return a.InitAllocationCompensation(nil, &AllocationArgs{Caller: owner, ProjectID: 1, AuctionAllocation: "1e9"}, &EmptyReply{})
			},
			expectedErr: errInvalidAmount,
		},
		{
			name: "no faucet",
			call: func() error {
				return a.Fund(nil, &FundArgs{User: alice, Amount: "1"}, &EmptyReply{})
			},
			expectedErr: errNoFaucet,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.ErrorIs(t, test.call(), test.expectedErr)
		})
	}
	require.Empty(t, lp.recorded())
}

func TestEmptyAmountIsZero(t *testing.T) {
	require := require.New(t)
	lp := &fakeLaunchpad{}
	a := &Admin{lp: lp, log: log.NewNoOpLogger()}

	require.NoError(a.SetAuctionData(nil, &SetAuctionDataArgs{Caller: owner, ProjectID: 2}, &EmptyReply{}))
	require.Equal([]call{{
		op:     "setAuctionData",
		caller: owner,
		id:     2,
		arg:    auction.Data{Min: new(uint256.Int)},
	}}, lp.recorded())
}
