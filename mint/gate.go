// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mint issues each contributor's claim token once the auction is
// over and minting is enabled.
package mint

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/launchpad/allocation"
	"github.com/luxfi/launchpad/auth"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/token"
	"github.com/luxfi/launchpad/utils/wrappers"
	"github.com/luxfi/launchpad/verifier"
)

var (
	ErrAlreadyMinted  = errors.New("already minted")
	ErrNothingToClaim = errors.New("nothing to claim")
	ErrUnknownReceipt = errors.New("unknown receipt")

	mintedPrefix    = []byte("minted")
	receiptPrefix   = []byte("receipt")
	editorPrefix    = []byte("editor")
	singletonPrefix = []byte("singleton")

	kycVerifierKey = []byte("kycVerifier")

	receiptLen = 2 * wrappers.Uint256Len
)

// Schedule reads project records.
type Schedule interface {
	Get(id uint64) (*project.Project, error)
}

// Claims computes what a user may redeem.
type Claims interface {
	Claim(id uint64, user common.Address) (allocation.Claim, error)
}

type Config struct {
	ChainID uint64
	Owner   common.Address
	// KYCVerifier signs mint approvals. The zero address mints without one.
	KYCVerifier common.Address
}

// Gate is the MintGate.
type Gate struct {
	lock sync.Mutex

	log      log.Logger
	clock    clockwork.Clock
	chainID  uint64
	schedule Schedule
	claims   Claims
	tokens   token.Resolver

	acl         *auth.ACL
	kycVerifier common.Address
	mintedDB    database.Database
	receiptDB   database.Database
	singletonDB database.Database
}

func New(log log.Logger, db database.Database, clock clockwork.Clock, config Config, schedule Schedule, claims Claims, tokens token.Resolver) *Gate {
	return &Gate{
		log:         log,
		clock:       clock,
		chainID:     config.ChainID,
		schedule:    schedule,
		claims:      claims,
		tokens:      tokens,
		acl:         auth.New(prefixdb.New(editorPrefix, db), config.Owner),
		kycVerifier: config.KYCVerifier,
		mintedDB:    prefixdb.New(mintedPrefix, db),
		receiptDB:   prefixdb.New(receiptPrefix, db),
		singletonDB: prefixdb.New(singletonPrefix, db),
	}
}

// KYCVerifier returns the address whose signatures approve mints, or the
// zero address if mints need no approval.
func (g *Gate) KYCVerifier() (common.Address, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.getKYCVerifier()
}

// SetKYCVerifier replaces the KYC verifier. The zero address turns approval
// off. Owner only.
func (g *Gate) SetKYCVerifier(caller, addr common.Address) error {
	if err := g.acl.RequireOwner(caller); err != nil {
		return err
	}

	g.lock.Lock()
	defer g.lock.Unlock()

	g.log.Info("kyc verifier changed", log.Stringer("verifier", addr))
	return g.singletonDB.Put(kycVerifierKey, addr[:])
}

// Mint issues user's claim token for project id and records the claim it
// carries. It returns the token id. While a KYC verifier is set, sig must be
// its signature over the user's mint payload; otherwise sig is ignored.
func (g *Gate) Mint(ctx context.Context, user common.Address, id uint64, sig verifier.Signature) (uint64, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	p, err := g.schedule.Get(id)
	if err != nil {
		return 0, err
	}
	if !p.MintingEnabled {
		return 0, fmt.Errorf("%w: minting of project %d", project.ErrNotInitialized, id)
	}
	if now := uint64(g.clock.Now().Unix()); !p.Ended(project.Auction, now) {
		return 0, fmt.Errorf("%w: project %d auction ends at %d, now %d", project.ErrPhaseNotStarted, id, p.Auction.End, now)
	}

	key := mintedKey(id, user)
	minted, err := g.mintedDB.Has(key)
	if err != nil {
		return 0, err
	}
	if minted {
		return 0, fmt.Errorf("%w: %s in project %d", ErrAlreadyMinted, user, id)
	}

	kycVerifier, err := g.getKYCVerifier()
	if err != nil {
		return 0, err
	}
	if kycVerifier != (common.Address{}) {
		payload := verifier.MintPayload(user, p.ClaimToken, id, g.chainID)
		if err := verifier.New(kycVerifier).Verify(payload, sig); err != nil {
			return 0, err
		}
	}

	claim, err := g.claims.Claim(id, user)
	if err != nil {
		return 0, err
	}
	if claim.IsZero() {
		return 0, fmt.Errorf("%w: %s in project %d", ErrNothingToClaim, user, id)
	}

	claimToken, err := g.tokens.ClaimToken(p.ClaimToken)
	if err != nil {
		return 0, err
	}
	tokenID, err := claimToken.Mint(ctx, id, user)
	if err != nil {
		return 0, fmt.Errorf("minting claim token: %w", err)
	}

	if err := database.PutUInt64(g.mintedDB, key, tokenID); err != nil {
		return 0, err
	}
	if err := g.putReceipt(id, tokenID, claim); err != nil {
		return 0, err
	}

	g.log.Debug("claim token minted",
		log.Stringer("user", user),
		log.Uint64("projectID", id),
		log.Uint64("tokenID", tokenID),
		log.Stringer("allocation", claim.Allocation),
		log.Stringer("compensation", claim.Compensation),
	)
	return tokenID, nil
}

// Minted returns the token id minted for user in project id, if any.
func (g *Gate) Minted(id uint64, user common.Address) (uint64, bool, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	tokenID, err := database.GetUInt64(g.mintedDB, mintedKey(id, user))
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return tokenID, true, nil
}

// Receipt returns the claim carried by tokenID of project id.
func (g *Gate) Receipt(id, tokenID uint64) (allocation.Claim, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	b, err := g.receiptDB.Get(receiptKey(id, tokenID))
	if errors.Is(err, database.ErrNotFound) {
		return allocation.Claim{}, fmt.Errorf("%w: token %d of project %d", ErrUnknownReceipt, tokenID, id)
	}
	if err != nil {
		return allocation.Claim{}, err
	}
	p := wrappers.NewUnpacker(b)
	claim := allocation.Claim{
		Allocation:   p.UnpackUint256(),
		Compensation: p.UnpackUint256(),
	}
	return claim, p.Err
}

func (g *Gate) putReceipt(id, tokenID uint64, claim allocation.Claim) error {
	p := wrappers.NewPacker(receiptLen)
	p.PackUint256(claim.Allocation)
	p.PackUint256(claim.Compensation)
	if p.Err != nil {
		return p.Err
	}
	return g.receiptDB.Put(receiptKey(id, tokenID), p.Bytes)
}

func (g *Gate) getKYCVerifier() (common.Address, error) {
	b, err := g.singletonDB.Get(kycVerifierKey)
	if errors.Is(err, database.ErrNotFound) {
		return g.kycVerifier, nil
	}
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(b), nil
}

func mintedKey(id uint64, user common.Address) []byte {
	return append(database.PackUInt64(id), user[:]...)
}

func receiptKey(id, tokenID uint64) []byte {
	return append(database.PackUInt64(id), database.PackUInt64(tokenID)...)
}
