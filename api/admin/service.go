// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package admin serves the owner and editor operations of a launchpad over
// JSON-RPC. Callers name themselves, so the service is only for nodes whose
// operator controls who can reach it.
package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/launchpad/auction"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/tier"
	"github.com/luxfi/launchpad/utils/json"
)

// ServiceName is the JSON-RPC namespace of Admin.
const ServiceName = "admin"

var (
	errInvalidAmount = errors.New("invalid amount")
	errNoFaucet      = errors.New("faucet not enabled")
)

// Launchpad is the administration surface the service forwards to.
type Launchpad interface {
	AddEditor(caller, editor common.Address) error
	DeleteEditor(caller, editor common.Address) error
	AddTierEditor(caller, editor common.Address) error
	DeleteTierEditor(caller, editor common.Address) error
	UseTier(caller, user common.Address, level uint8) error
	SetTierFees(caller common.Address, fees [tier.NumLevels]*uint256.Int) error
	SetClaimVerifier(caller, addr common.Address) error
	SetKYCVerifier(caller, addr common.Address) error

	StartProject(caller common.Address, registration project.Window) (uint64, error)
	InitPrefund(caller common.Address, id uint64, params project.PrefundParams) error
	InitAuction(caller common.Address, id uint64, w project.Window) error
	SetAuctionData(caller common.Address, id uint64, data auction.Data) error
	InitAllocationCompensation(caller common.Address, id uint64, a project.Allocation) error
	TransferPrefund(caller common.Address, id uint64) error
	InitMinting(caller common.Address, id uint64) error
	SetProjectToken(caller common.Address, id uint64, addr common.Address) error
}

// Faucet credits development accounts.
type Faucet interface {
	Fund(user common.Address, amount *uint256.Int) error
}

// NewService returns the admin JSON-RPC handler. faucet may be nil.
func NewService(lp Launchpad, faucet Faucet, logger log.Logger) (http.Handler, error) {
	server := rpc.NewServer()
	codec := json.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return server, server.RegisterService(
		&Admin{
			lp:     lp,
			faucet: faucet,
			log:    logger,
		},
		ServiceName,
	)
}

// Admin is the API service for launchpad administration.
type Admin struct {
	lp     Launchpad
	faucet Faucet
	log    log.Logger
}

type EmptyReply struct{}

type EditorArgs struct {
	Caller common.Address `json:"caller"`
	Editor common.Address `json:"editor"`
}

// AddEditor lets editor administer projects and their auctions.
func (a *Admin) AddEditor(_ *http.Request, args *EditorArgs, _ *EmptyReply) error {
	a.called("addEditor", args.Caller)
	return a.lp.AddEditor(args.Caller, args.Editor)
}

func (a *Admin) DeleteEditor(_ *http.Request, args *EditorArgs, _ *EmptyReply) error {
	a.called("deleteEditor", args.Caller)
	return a.lp.DeleteEditor(args.Caller, args.Editor)
}

// AddTierEditor lets editor spend tier badges.
func (a *Admin) AddTierEditor(_ *http.Request, args *EditorArgs, _ *EmptyReply) error {
	a.called("addTierEditor", args.Caller)
	return a.lp.AddTierEditor(args.Caller, args.Editor)
}

func (a *Admin) DeleteTierEditor(_ *http.Request, args *EditorArgs, _ *EmptyReply) error {
	a.called("deleteTierEditor", args.Caller)
	return a.lp.DeleteTierEditor(args.Caller, args.Editor)
}

type UseTierArgs struct {
	Caller common.Address `json:"caller"`
	User   common.Address `json:"user"`
	Level  json.Uint64    `json:"level"`
}

func (a *Admin) UseTier(_ *http.Request, args *UseTierArgs, _ *EmptyReply) error {
	a.called("useTier", args.Caller)
	if args.Level > json.Uint64(tier.MaxLevel) {
		return fmt.Errorf("%w: %d", tier.ErrInvalidLevel, args.Level)
	}
	return a.lp.UseTier(args.Caller, args.User, uint8(args.Level))
}

type SetTierFeesArgs struct {
	Caller common.Address `json:"caller"`
	// Fees are the decimal fees of levels 0..3.
	Fees []string `json:"fees"`
}

func (a *Admin) SetTierFees(_ *http.Request, args *SetTierFeesArgs, _ *EmptyReply) error {
	a.called("setTierFees", args.Caller)

	var fees [tier.NumLevels]*uint256.Int
	if len(args.Fees) != tier.NumLevels {
		return fmt.Errorf("%w: %d fees for %d levels", errInvalidAmount, len(args.Fees), tier.NumLevels)
	}
	for i, s := range args.Fees {
		fee, err := parseAmount(s)
		if err != nil {
			return err
		}
		fees[i] = fee
	}
	return a.lp.SetTierFees(args.Caller, fees)
}

type SetClaimVerifierArgs struct {
	Caller   common.Address `json:"caller"`
	Verifier common.Address `json:"verifier"`
}

func (a *Admin) SetClaimVerifier(_ *http.Request, args *SetClaimVerifierArgs, _ *EmptyReply) error {
	a.called("setClaimVerifier", args.Caller)
	return a.lp.SetClaimVerifier(args.Caller, args.Verifier)
}

// SetKYCVerifier replaces the mint approver. The zero address lets every
// contributor mint without approval.
func (a *Admin) SetKYCVerifier(_ *http.Request, args *SetClaimVerifierArgs, _ *EmptyReply) error {
	a.called("setKYCVerifier", args.Caller)
	return a.lp.SetKYCVerifier(args.Caller, args.Verifier)
}

type WindowArgs struct {
	Caller    common.Address `json:"caller"`
	ProjectID json.Uint64    `json:"projectID"`
	Start     json.Uint64    `json:"start"`
	End       json.Uint64    `json:"end"`
}

func (w *WindowArgs) window() project.Window {
	return project.Window{Start: uint64(w.Start), End: uint64(w.End)}
}

type ProjectIDReply struct {
	ProjectID json.Uint64 `json:"projectID"`
}

// StartProject creates a project and opens its registration window.
// ProjectID in the args is ignored.
func (a *Admin) StartProject(_ *http.Request, args *WindowArgs, reply *ProjectIDReply) error {
	a.called("startProject", args.Caller)

	id, err := a.lp.StartProject(args.Caller, args.window())
	reply.ProjectID = json.Uint64(id)
	return err
}

func (a *Admin) InitAuction(_ *http.Request, args *WindowArgs, _ *EmptyReply) error {
	a.called("initAuction", args.Caller)
	return a.lp.InitAuction(args.Caller, uint64(args.ProjectID), args.window())
}

type InitPrefundArgs struct {
	WindowArgs
	// InvestAmounts and Pools are decimal per-tier amounts of tiers 1..3.
	InvestAmounts []string       `json:"investAmounts"`
	Pools         []string       `json:"pools"`
	Token         common.Address `json:"token"`
}

func (a *Admin) InitPrefund(_ *http.Request, args *InitPrefundArgs, _ *EmptyReply) error {
	a.called("initPrefund", args.Caller)

	params := project.PrefundParams{
		Window: args.window(),
		Token:  args.Token,
	}
	if err := parseTiers(params.InvestAmounts[:], args.InvestAmounts); err != nil {
		return err
	}
	if err := parseTiers(params.Pools[:], args.Pools); err != nil {
		return err
	}
	return a.lp.InitPrefund(args.Caller, uint64(args.ProjectID), params)
}

type SetAuctionDataArgs struct {
	Caller     common.Address `json:"caller"`
	ProjectID  json.Uint64    `json:"projectID"`
	Min        string         `json:"min"`
	GiftAmount json.Uint64    `json:"giftAmount"`
}

func (a *Admin) SetAuctionData(_ *http.Request, args *SetAuctionDataArgs, _ *EmptyReply) error {
	a.called("setAuctionData", args.Caller)

	minimum, err := parseAmount(args.Min)
	if err != nil {
		return err
	}
	return a.lp.SetAuctionData(args.Caller, uint64(args.ProjectID), auction.Data{
		Min:        minimum,
		GiftAmount: uint64(args.GiftAmount),
	})
}

type AllocationArgs struct {
	Caller              common.Address `json:"caller"`
	ProjectID           json.Uint64    `json:"projectID"`
	PrefundAllocation   string         `json:"prefundAllocation"`
	PrefundCompensation string         `json:"prefundCompensation"`
	AuctionAllocation   string         `json:"auctionAllocation"`
	AuctionCompensation string         `json:"auctionCompensation"`
	ClaimToken          common.Address `json:"claimToken"`
}

func (a *Admin) InitAllocationCompensation(_ *http.Request, args *AllocationArgs, _ *EmptyReply) error {
	a.called("initAllocationCompensation", args.Caller)

	allocation := project.Allocation{ClaimToken: args.ClaimToken}
	for _, field := range []struct {
		value string
		dst   **uint256.Int
	}{
		{value: args.PrefundAllocation, dst: &allocation.PrefundAllocation},
		{value: args.PrefundCompensation, dst: &allocation.PrefundCompensation},
		{value: args.AuctionAllocation, dst: &allocation.AuctionAllocation},
		{value: args.AuctionCompensation, dst: &allocation.AuctionCompensation},
	} {
		v, err := parseAmount(field.value)
		if err != nil {
			return err
		}
		*field.dst = v
	}
	return a.lp.InitAllocationCompensation(args.Caller, uint64(args.ProjectID), allocation)
}

type ProjectArgs struct {
	Caller    common.Address `json:"caller"`
	ProjectID json.Uint64    `json:"projectID"`
}

// TransferPrefund moves the unsold prefund share into the auction totals.
func (a *Admin) TransferPrefund(_ *http.Request, args *ProjectArgs, _ *EmptyReply) error {
	a.called("transferPrefund", args.Caller)
	return a.lp.TransferPrefund(args.Caller, uint64(args.ProjectID))
}

func (a *Admin) InitMinting(_ *http.Request, args *ProjectArgs, _ *EmptyReply) error {
	a.called("initMinting", args.Caller)
	return a.lp.InitMinting(args.Caller, uint64(args.ProjectID))
}

type SetProjectTokenArgs struct {
	Caller    common.Address `json:"caller"`
	ProjectID json.Uint64    `json:"projectID"`
	Token     common.Address `json:"token"`
}

func (a *Admin) SetProjectToken(_ *http.Request, args *SetProjectTokenArgs, _ *EmptyReply) error {
	a.called("setProjectToken", args.Caller)
	return a.lp.SetProjectToken(args.Caller, uint64(args.ProjectID), args.Token)
}

type FundArgs struct {
	User   common.Address `json:"user"`
	Amount string         `json:"amount"`
}

// Fund credits user from the development faucet.
func (a *Admin) Fund(_ *http.Request, args *FundArgs, _ *EmptyReply) error {
	a.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "fund"),
		log.Stringer("user", args.User),
		log.String("amount", args.Amount),
	)

	if a.faucet == nil {
		return errNoFaucet
	}
	amount, err := parseAmount(args.Amount)
	if err != nil {
		return err
	}
	return a.faucet.Fund(args.User, amount)
}

func (a *Admin) called(method string, caller common.Address) {
	a.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", method),
		log.Stringer("caller", caller),
	)
}

// parseAmount reads a decimal amount. Empty means zero.
func parseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", errInvalidAmount, s, err)
	}
	return v, nil
}

func parseTiers(dst []*uint256.Int, values []string) error {
	if len(values) != len(dst) {
		return fmt.Errorf("%w: %d amounts for %d tiers", errInvalidAmount, len(values), len(dst))
	}
	for i, s := range values {
		v, err := parseAmount(s)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}
