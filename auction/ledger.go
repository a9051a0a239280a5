// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auction records signed collateral bids made during a project's
// auction window.
package auction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/launchpad/auth"
	"github.com/luxfi/launchpad/prefund"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/token"
	"github.com/luxfi/launchpad/utils/math"
	"github.com/luxfi/launchpad/utils/wrappers"
	"github.com/luxfi/launchpad/verifier"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrBelowMinimum  = errors.New("bid below minimum")

	spentPrefix  = []byte("spent")
	totalsPrefix = []byte("totals")
	dataPrefix   = []byte("data")

	totalsLen = wrappers.Uint256Len + 2*wrappers.LongLen
	dataLen   = wrappers.Uint256Len + wrappers.LongLen
)

// Schedule gates bids by the project's auction window.
type Schedule interface {
	RequireOpen(id uint64, phase project.Phase, now uint64) error
}

// Registrations reports project membership.
type Registrations interface {
	RequireRegistered(id uint64, user common.Address) error
}

// Investments reports prefund investments. Prefund investors do not bid.
type Investments interface {
	Investment(id uint64, user common.Address) (prefund.Investment, bool, error)
}

// Data configures a project's auction.
type Data struct {
	// Min is the smallest accepted bid.
	Min *uint256.Int `json:"min"`
	// GiftAmount is how many of the earliest distinct bidders get a gift.
	GiftAmount uint64 `json:"giftAmount"`
}

// Totals aggregates a project's auction.
type Totals struct {
	Spent        *uint256.Int `json:"spent"`
	Participants uint64       `json:"participants"`
	GiftsMinted  uint64       `json:"giftsMinted"`
}

// Config identifies the ledger and its collaborators.
type Config struct {
	Address common.Address
	ChainID uint64
	// Verifier signs bids.
	Verifier common.Address
	// Collateral is the token bids are paid in.
	Collateral common.Address
	// Gift mints the early bidder reward.
	Gift common.Address
}

// Ledger is the AuctionLedger.
type Ledger struct {
	lock sync.Mutex

	log           log.Logger
	clock         clockwork.Clock
	config        Config
	acl           *auth.ACL
	schedule      Schedule
	registrations Registrations
	investments   Investments
	tokens        token.Resolver

	spentDB  database.Database
	totalsDB database.Database
	dataDB   database.Database
}

func New(
	log log.Logger,
	db database.Database,
	clock clockwork.Clock,
	config Config,
	acl *auth.ACL,
	schedule Schedule,
	registrations Registrations,
	investments Investments,
	tokens token.Resolver,
) *Ledger {
	return &Ledger{
		log:           log,
		clock:         clock,
		config:        config,
		acl:           acl,
		schedule:      schedule,
		registrations: registrations,
		investments:   investments,
		tokens:        tokens,
		spentDB:       prefixdb.New(spentPrefix, db),
		totalsDB:      prefixdb.New(totalsPrefix, db),
		dataDB:        prefixdb.New(dataPrefix, db),
	}
}

// Address returns the ledger's own address.
func (l *Ledger) Address() common.Address {
	return l.config.Address
}

// SetData sets the minimum bid and gift count of project id once. Editor
// only.
func (l *Ledger) SetData(caller common.Address, id uint64, data Data) error {
	if err := l.acl.RequireEditor(caller); err != nil {
		return err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	key := database.PackUInt64(id)
	set, err := l.dataDB.Has(key)
	if err != nil {
		return err
	}
	if set {
		return fmt.Errorf("%w: auction data of project %d", project.ErrAlreadyInitialized, id)
	}

	p := wrappers.NewPacker(dataLen)
	p.PackUint256(data.Min)
	p.PackLong(data.GiftAmount)
	if p.Err != nil {
		return p.Err
	}
	if err := l.dataDB.Put(key, p.Bytes); err != nil {
		return err
	}

	l.log.Debug("auction data set",
		log.Uint64("projectID", id),
		log.Stringer("min", data.Min),
		log.Uint64("giftAmount", data.GiftAmount),
	)
	return nil
}

// Data returns the auction data of project id and whether it was set.
func (l *Ledger) Data(id uint64) (Data, bool, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.data(id)
}

// Participate collects amount of collateral from user as a bid in project
// id. Bids by the same user add up.
func (l *Ledger) Participate(ctx context.Context, user common.Address, id uint64, amount *uint256.Int, sig verifier.Signature) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	now := uint64(l.clock.Now().Unix())
	if err := l.schedule.RequireOpen(id, project.Auction, now); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return fmt.Errorf("%w: bid must be positive", ErrInvalidAmount)
	}
	data, dataSet, err := l.data(id)
	if err != nil {
		return err
	}
	if dataSet && amount.Lt(data.Min) {
		return fmt.Errorf("%w: %s < %s", ErrBelowMinimum, amount, data.Min)
	}
	if err := l.registrations.RequireRegistered(id, user); err != nil {
		return err
	}
	if _, invested, err := l.investments.Investment(id, user); err != nil {
		return err
	} else if invested {
		return fmt.Errorf("%w: %s prefunded project %d and cannot bid", prefund.ErrAlreadyInvested, user, id)
	}

	payload := verifier.AuctionPayload(user, l.config.Address, id, amount, l.config.ChainID)
	if err := verifier.New(l.config.Verifier).Verify(payload, sig); err != nil {
		return err
	}

	spent, err := l.spent(id, user)
	if err != nil {
		return err
	}
	newSpent, err := math.Add256(spent, amount)
	if err != nil {
		return err
	}
	totals, err := l.totals(id)
	if err != nil {
		return err
	}
	totalSpent, err := math.Add256(totals.Spent, amount)
	if err != nil {
		return err
	}
	firstBid := spent.IsZero()
	gift := firstBid && dataSet && totals.GiftsMinted < data.GiftAmount

	collateral, err := l.tokens.Fungible(l.config.Collateral)
	if err != nil {
		return err
	}
	var minter token.GiftMinter
	if gift {
		minter, err = l.tokens.GiftMinter(l.config.Gift)
		if err != nil {
			return err
		}
	}

	// Token movements are the last fallible steps. A failed gift returns
	// the collected bid.
	if err := collateral.TransferFrom(ctx, l.config.Address, user, l.config.Address, amount); err != nil {
		return fmt.Errorf("collecting bid: %w", err)
	}
	if gift {
		if err := minter.MintGift(ctx, user); err != nil {
			if refundErr := collateral.Transfer(ctx, l.config.Address, user, amount); refundErr != nil {
				return fmt.Errorf("minting gift: %w; refunding bid: %w", err, refundErr)
			}
			return fmt.Errorf("minting gift: %w", err)
		}
		totals.GiftsMinted++
	}

	totals.Spent = totalSpent
	if firstBid {
		totals.Participants++
	}
	if err := l.spentDB.Put(spentKey(id, user), newSpent.Bytes()); err != nil {
		return err
	}
	if err := l.putTotals(id, totals); err != nil {
		return err
	}

	l.log.Debug("bid placed",
		log.Stringer("user", user),
		log.Uint64("projectID", id),
		log.Stringer("amount", amount),
		log.Stringer("spent", newSpent),
		log.Bool("gift", gift),
	)
	return nil
}

// Spent returns user's cumulative bids in project id.
func (l *Ledger) Spent(id uint64, user common.Address) (*uint256.Int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.spent(id, user)
}

// Totals returns the aggregate bids of project id.
func (l *Ledger) Totals(id uint64) (Totals, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.totals(id)
}

func (l *Ledger) spent(id uint64, user common.Address) (*uint256.Int, error) {
	b, err := l.spentDB.Get(spentKey(id, user))
	if errors.Is(err, database.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(b), nil
}

func (l *Ledger) data(id uint64) (Data, bool, error) {
	b, err := l.dataDB.Get(database.PackUInt64(id))
	if errors.Is(err, database.ErrNotFound) {
		return Data{Min: new(uint256.Int)}, false, nil
	}
	if err != nil {
		return Data{}, false, err
	}
	p := wrappers.NewUnpacker(b)
	data := Data{
		Min:        p.UnpackUint256(),
		GiftAmount: p.UnpackLong(),
	}
	return data, true, p.Err
}

func (l *Ledger) totals(id uint64) (Totals, error) {
	b, err := l.totalsDB.Get(database.PackUInt64(id))
	if errors.Is(err, database.ErrNotFound) {
		return Totals{Spent: new(uint256.Int)}, nil
	}
	if err != nil {
		return Totals{}, err
	}
	p := wrappers.NewUnpacker(b)
	totals := Totals{
		Spent:        p.UnpackUint256(),
		Participants: p.UnpackLong(),
		GiftsMinted:  p.UnpackLong(),
	}
	return totals, p.Err
}

func (l *Ledger) putTotals(id uint64, totals Totals) error {
	p := wrappers.NewPacker(totalsLen)
	p.PackUint256(totals.Spent)
	p.PackLong(totals.Participants)
	p.PackLong(totals.GiftsMinted)
	if p.Err != nil {
		return p.Err
	}
	return l.totalsDB.Put(database.PackUInt64(id), p.Bytes)
}

func spentKey(id uint64, user common.Address) []byte {
	return append(database.PackUInt64(id), user[:]...)
}
