// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/luxfi/log"

	"github.com/luxfi/launchpad/tier"
	"github.com/luxfi/launchpad/utils/json"
	"github.com/luxfi/launchpad/verifier"
)

var errInvalidAmount = errors.New("invalid amount")

// EmptyReply is the reply of operations that return nothing.
type EmptyReply struct{}

type ClaimTierArgs struct {
	User  common.Address `json:"user"`
	Level json.Uint64    `json:"level"`
	// Signature is r || s || v as hex.
	Signature hexutil.Bytes `json:"signature"`
}

// ClaimTier raises user's badge to level with a claim verifier signature.
// The level fee is collected from user.
func (s *Service) ClaimTier(r *http.Request, args *ClaimTierArgs, _ *EmptyReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "claimTier"),
		log.Stringer("user", args.User),
		log.Uint64("level", uint64(args.Level)),
	)

	level, err := toLevel(args.Level)
	if err != nil {
		return err
	}
	sig, err := verifier.SignatureFromBytes(args.Signature)
	if err != nil {
		return err
	}
	return s.lp.ClaimTier(r.Context(), args.User, level, sig)
}

// Register enters user into project id during its registration window.
func (s *Service) Register(_ *http.Request, args *UserProjectArgs, _ *EmptyReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "register"),
		log.Uint64("projectID", uint64(args.ProjectID)),
		log.Stringer("user", args.User),
	)

	return s.lp.Register(args.User, uint64(args.ProjectID))
}

type PrefundArgs struct {
	ProjectID json.Uint64    `json:"projectID"`
	User      common.Address `json:"user"`
	Tier      json.Uint64    `json:"tier"`
	Signature hexutil.Bytes  `json:"signature"`
}

func (s *Service) Prefund(r *http.Request, args *PrefundArgs, _ *EmptyReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "prefund"),
		log.Uint64("projectID", uint64(args.ProjectID)),
		log.Stringer("user", args.User),
		log.Uint64("tier", uint64(args.Tier)),
	)

	level, err := toLevel(args.Tier)
	if err != nil {
		return err
	}
	sig, err := verifier.SignatureFromBytes(args.Signature)
	if err != nil {
		return err
	}
	return s.lp.Prefund(r.Context(), args.User, uint64(args.ProjectID), level, sig)
}

type ParticipateArgs struct {
	ProjectID json.Uint64    `json:"projectID"`
	User      common.Address `json:"user"`
	// Amount is a decimal collateral amount.
	Amount    string        `json:"amount"`
	Signature hexutil.Bytes `json:"signature"`
}

// Participate places a signed auction bid.
func (s *Service) Participate(r *http.Request, args *ParticipateArgs, _ *EmptyReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "participate"),
		log.Uint64("projectID", uint64(args.ProjectID)),
		log.Stringer("user", args.User),
		log.String("amount", args.Amount),
	)

	amount, err := uint256.FromDecimal(args.Amount)
	if err != nil {
		return fmt.Errorf("%w %q: %w", errInvalidAmount, args.Amount, err)
	}
	sig, err := verifier.SignatureFromBytes(args.Signature)
	if err != nil {
		return err
	}
	return s.lp.Participate(r.Context(), args.User, uint64(args.ProjectID), amount, sig)
}

type MintArgs struct {
	ProjectID json.Uint64    `json:"projectID"`
	User      common.Address `json:"user"`
	// Signature is the KYC approval. It may be empty while no KYC verifier
	// is set.
	Signature hexutil.Bytes `json:"signature,omitempty"`
}

type MintReply struct {
	TokenID json.Uint64 `json:"tokenID"`
}

// Mint mints user's claim token of project id.
func (s *Service) Mint(r *http.Request, args *MintArgs, reply *MintReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "mint"),
		log.Uint64("projectID", uint64(args.ProjectID)),
		log.Stringer("user", args.User),
	)

	var sig verifier.Signature
	if len(args.Signature) != 0 {
		var err error
		if sig, err = verifier.SignatureFromBytes(args.Signature); err != nil {
			return err
		}
	}
	tokenID, err := s.lp.Mint(r.Context(), args.User, uint64(args.ProjectID), sig)
	reply.TokenID = json.Uint64(tokenID)
	return err
}

func toLevel(v json.Uint64) (uint8, error) {
	if v > 255 {
		return 0, fmt.Errorf("%w: %d", tier.ErrInvalidLevel, v)
	}
	return uint8(v), nil
}
