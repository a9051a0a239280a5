// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api serves launchpad state and the user operations over JSON-RPC.
// Every user operation is authorized the way the launchpad authorizes it,
// mostly by a verifier signature, so the service itself trusts no caller.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/launchpad/allocation"
	"github.com/luxfi/launchpad/prefund"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/tier"
	"github.com/luxfi/launchpad/utils/json"
	"github.com/luxfi/launchpad/verifier"
	utilmetric "github.com/luxfi/launchpad/utils/metric"
)

// ServiceName is the JSON-RPC namespace of Service.
const ServiceName = "launchpad"

// Launchpad is the state the service reads and the user operations it
// forwards.
type Launchpad interface {
	ClaimTier(ctx context.Context, user common.Address, level uint8, sig verifier.Signature) error
	Register(user common.Address, id uint64) error
	Prefund(ctx context.Context, user common.Address, id uint64, level uint8, sig verifier.Signature) error
	Participate(ctx context.Context, user common.Address, id uint64, amount *uint256.Int, sig verifier.Signature) error
	Mint(ctx context.Context, user common.Address, id uint64, sig verifier.Signature) (uint64, error)

	ChainID() uint64
	Badge(user common.Address) (tier.Badge, error)
	Project(id uint64) (*project.Project, error)
	IsRegistered(id uint64, user common.Address) (bool, error)
	Investment(id uint64, user common.Address) (prefund.Investment, bool, error)
	Spent(id uint64, user common.Address) (*uint256.Int, error)
	Claim(id uint64, user common.Address) (allocation.Claim, error)
	AddressOf(alias string) (common.Address, error)
}

// NewHandler returns the JSON-RPC handler of the launchpad service.
func NewHandler(lp Launchpad, logger log.Logger, registerer prometheus.Registerer) (http.Handler, error) {
	interceptor, err := utilmetric.NewAPIInterceptor(ServiceName+"_api", registerer)
	if err != nil {
		return nil, err
	}

	server := rpc.NewServer()
	codec := json.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	server.RegisterInterceptFunc(interceptor.InterceptRequest)
	server.RegisterAfterFunc(interceptor.AfterRequest)
	return server, server.RegisterService(&Service{lp: lp, log: logger}, ServiceName)
}

// Service is the launchpad JSON-RPC service.
type Service struct {
	lp  Launchpad
	log log.Logger
}

type AddressArgs struct {
	Address common.Address `json:"address"`
}

type ProjectArgs struct {
	ProjectID json.Uint64 `json:"projectID"`
}

type UserProjectArgs struct {
	ProjectID json.Uint64    `json:"projectID"`
	User      common.Address `json:"user"`
}

type GetBadgeReply struct {
	Level  json.Uint64 `json:"level"`
	Nonce  json.Uint64 `json:"nonce"`
	Usable bool        `json:"usable"`
}

// GetBadge returns the tier badge of an address.
func (s *Service) GetBadge(_ *http.Request, args *AddressArgs, reply *GetBadgeReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "getBadge"),
		log.Stringer("address", args.Address),
	)

	badge, err := s.lp.Badge(args.Address)
	if err != nil {
		return err
	}
	reply.Level = json.Uint64(badge.Level)
	reply.Nonce = json.Uint64(badge.Nonce)
	reply.Usable = badge.Usable
	return nil
}

type GetProjectReply struct {
	Project *project.Project `json:"project"`
}

// GetProject returns a project's phase record.
func (s *Service) GetProject(_ *http.Request, args *ProjectArgs, reply *GetProjectReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "getProject"),
		log.Uint64("projectID", uint64(args.ProjectID)),
	)

	p, err := s.lp.Project(uint64(args.ProjectID))
	if err != nil {
		return err
	}
	reply.Project = p
	return nil
}

type IsRegisteredReply struct {
	Registered bool `json:"registered"`
}

func (s *Service) IsRegistered(_ *http.Request, args *UserProjectArgs, reply *IsRegisteredReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "isRegistered"),
		log.Uint64("projectID", uint64(args.ProjectID)),
		log.Stringer("user", args.User),
	)

	registered, err := s.lp.IsRegistered(uint64(args.ProjectID), args.User)
	reply.Registered = registered
	return err
}

type GetInvestmentReply struct {
	Invested bool        `json:"invested"`
	Tier     json.Uint64 `json:"tier"`
}

func (s *Service) GetInvestment(_ *http.Request, args *UserProjectArgs, reply *GetInvestmentReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "getInvestment"),
		log.Uint64("projectID", uint64(args.ProjectID)),
		log.Stringer("user", args.User),
	)

	investment, invested, err := s.lp.Investment(uint64(args.ProjectID), args.User)
	if err != nil {
		return err
	}
	reply.Invested = invested
	reply.Tier = json.Uint64(investment.Tier)
	return nil
}

type GetSpentReply struct {
	Spent string `json:"spent"`
}

func (s *Service) GetSpent(_ *http.Request, args *UserProjectArgs, reply *GetSpentReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "getSpent"),
		log.Uint64("projectID", uint64(args.ProjectID)),
		log.Stringer("user", args.User),
	)

	spent, err := s.lp.Spent(uint64(args.ProjectID), args.User)
	if err != nil {
		return err
	}
	reply.Spent = spent.Dec()
	return nil
}

type GetClaimReply struct {
	Allocation   string `json:"allocation"`
	Compensation string `json:"compensation"`
}

// GetClaim returns what a user may redeem once the project's prefund has
// moved to the auction.
func (s *Service) GetClaim(_ *http.Request, args *UserProjectArgs, reply *GetClaimReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "getClaim"),
		log.Uint64("projectID", uint64(args.ProjectID)),
		log.Stringer("user", args.User),
	)

	claim, err := s.lp.Claim(uint64(args.ProjectID), args.User)
	if err != nil {
		return err
	}
	reply.Allocation = claim.Allocation.Dec()
	reply.Compensation = claim.Compensation.Dec()
	return nil
}

type AddressOfArgs struct {
	Alias string `json:"alias"`
}

type AddressOfReply struct {
	ChainID json.Uint64    `json:"chainID"`
	Address common.Address `json:"address"`
}

// AddressOf looks a contract alias up on the launchpad's network.
func (s *Service) AddressOf(_ *http.Request, args *AddressOfArgs, reply *AddressOfReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "addressOf"),
		log.String("alias", args.Alias),
	)

	addr, err := s.lp.AddressOf(args.Alias)
	if err != nil {
		return err
	}
	reply.ChainID = json.Uint64(s.lp.ChainID())
	reply.Address = addr
	return nil
}
