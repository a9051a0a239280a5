// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package burn redeems claim tokens. A token is burned once, either for its
// share of the project token or for its compensation in collateral.
package burn

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/launchpad/allocation"
	"github.com/luxfi/launchpad/auth"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/token"
)

var (
	ErrProjectMismatch = errors.New("claim token belongs to another project")
	ErrAlreadyBurned   = errors.New("claim token already burned")

	burnedPrefix = []byte("burned")
	paidPrefix   = []byte("paid")
)

// Kind is what a burned token paid out.
type Kind byte

const (
	ForAllocation Kind = iota + 1
	ForCompensation
)

func (k Kind) String() string {
	switch k {
	case ForAllocation:
		return "allocation"
	case ForCompensation:
		return "compensation"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

type Schedule interface {
	Get(id uint64) (*project.Project, error)
}

// Receipts returns the claim recorded when a token was minted.
type Receipts interface {
	Receipt(id, tokenID uint64) (allocation.Claim, error)
}

type Config struct {
	// Address holds the project tokens and collateral paid out on burn.
	Address    common.Address
	Collateral common.Address
}

// Gate is the BurnGate.
type Gate struct {
	lock sync.Mutex

	log      log.Logger
	config   Config
	schedule Schedule
	receipts Receipts
	tokens   token.Resolver

	burnedDB database.Database
	paidDB   database.Database
}

func New(log log.Logger, db database.Database, config Config, schedule Schedule, receipts Receipts, tokens token.Resolver) *Gate {
	return &Gate{
		log:      log,
		config:   config,
		schedule: schedule,
		receipts: receipts,
		tokens:   tokens,
		burnedDB: prefixdb.New(burnedPrefix, db),
		paidDB:   prefixdb.New(paidPrefix, db),
	}
}

// BurnForAllocation burns tokenID and pays its allocation in the project
// token. It returns the amount paid.
func (g *Gate) BurnForAllocation(ctx context.Context, user common.Address, id, tokenID uint64) (*uint256.Int, error) {
	return g.burn(ctx, user, id, tokenID, ForAllocation)
}

// BurnForCompensation burns tokenID and pays its compensation in collateral.
// It returns the amount paid.
func (g *Gate) BurnForCompensation(ctx context.Context, user common.Address, id, tokenID uint64) (*uint256.Int, error) {
	return g.burn(ctx, user, id, tokenID, ForCompensation)
}

// Burned reports how tokenID of project id was redeemed, if it was.
func (g *Gate) Burned(id, tokenID uint64) (Kind, bool, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	b, err := g.burnedDB.Get(key(id, tokenID))
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(b) != 1 {
		return 0, false, fmt.Errorf("corrupt burn record of token %d", tokenID)
	}
	return Kind(b[0]), true, nil
}

// Paid returns the total paid out of project id for kind.
func (g *Gate) Paid(id uint64, kind Kind) (*uint256.Int, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.paid(id, kind)
}

func (g *Gate) burn(ctx context.Context, user common.Address, id, tokenID uint64, kind Kind) (*uint256.Int, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	p, err := g.schedule.Get(id)
	if err != nil {
		return nil, err
	}
	payToken := g.config.Collateral
	if kind == ForAllocation {
		if p.ProjectToken == (common.Address{}) {
			return nil, fmt.Errorf("%w: project token of project %d", project.ErrNotInitialized, id)
		}
		payToken = p.ProjectToken
	}

	burned, err := g.burnedDB.Has(key(id, tokenID))
	if err != nil {
		return nil, err
	}
	if burned {
		return nil, fmt.Errorf("%w: token %d of project %d", ErrAlreadyBurned, tokenID, id)
	}

	claimToken, err := g.tokens.ClaimToken(p.ClaimToken)
	if err != nil {
		return nil, err
	}
	info, err := claimToken.Claim(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if info.Owner != user {
		return nil, fmt.Errorf("%w: token %d is owned by %s", auth.ErrUnauthorized, tokenID, info.Owner)
	}
	if info.ProjectID != id {
		return nil, fmt.Errorf("%w: token %d is of project %d, not %d", ErrProjectMismatch, tokenID, info.ProjectID, id)
	}

	claim, err := g.receipts.Receipt(id, tokenID)
	if err != nil {
		return nil, err
	}
	amount := claim.Allocation
	if kind == ForCompensation {
		amount = claim.Compensation
	}

	pay, err := g.tokens.Fungible(payToken)
	if err != nil {
		return nil, err
	}
	// The claim token cannot be restored once burned, so a payout that is
	// bound to fail is refused first.
	balance, err := pay.BalanceOf(ctx, g.config.Address)
	if err != nil {
		return nil, err
	}
	if balance.Lt(amount) {
		return nil, fmt.Errorf("%w: burn gate holds %s %s, owes %s", token.ErrInsufficientBalance, balance, kind, amount)
	}

	if err := claimToken.Burn(ctx, tokenID); err != nil {
		return nil, fmt.Errorf("burning claim token: %w", err)
	}
	if !amount.IsZero() {
		if err := pay.Transfer(ctx, g.config.Address, user, amount); err != nil {
			return nil, fmt.Errorf("paying %s: %w", kind, err)
		}
	}

	if err := g.burnedDB.Put(key(id, tokenID), []byte{byte(kind)}); err != nil {
		return nil, err
	}
	total, err := g.paid(id, kind)
	if err != nil {
		return nil, err
	}
	if err := g.paidDB.Put(paidKey(id, kind), total.Add(total, amount).Bytes()); err != nil {
		return nil, err
	}

	g.log.Debug("claim token burned",
		log.Stringer("user", user),
		log.Uint64("projectID", id),
		log.Uint64("tokenID", tokenID),
		log.Stringer("kind", kind),
		log.Stringer("amount", amount),
	)
	return amount.Clone(), nil
}

func (g *Gate) paid(id uint64, kind Kind) (*uint256.Int, error) {
	b, err := g.paidDB.Get(paidKey(id, kind))
	if errors.Is(err, database.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(b), nil
}

func key(id, tokenID uint64) []byte {
	return append(database.PackUInt64(id), database.PackUInt64(tokenID)...)
}

func paidKey(id uint64, kind Kind) []byte {
	return append(database.PackUInt64(id), byte(kind))
}
