// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package prefund lets lottery winners invest a fixed per-tier amount in a
// project before its auction.
package prefund

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

	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/tier"
	"github.com/luxfi/launchpad/token"
	"github.com/luxfi/launchpad/utils/math"
	"github.com/luxfi/launchpad/utils/wrappers"
	"github.com/luxfi/launchpad/verifier"
)

var (
	ErrAlreadyInvested = errors.New("already invested")

	investmentPrefix = []byte("investment")
	totalsPrefix     = []byte("totals")

	totalsLen = wrappers.Uint256Len + wrappers.LongLen
)

// Schedule is the part of the project schedule a prefund touches.
type Schedule interface {
	Get(id uint64) (*project.Project, error)
	ConsumePrefundPool(caller common.Address, id uint64, tier uint8) (*uint256.Int, error)
}

// Registrations reports project membership.
type Registrations interface {
	RequireRegistered(id uint64, user common.Address) error
}

// Bids reports auction spend. Bidders do not prefund.
type Bids interface {
	Spent(id uint64, user common.Address) (*uint256.Int, error)
}

// Tiers reports and spends tier credentials.
type Tiers interface {
	Badge(user common.Address) (tier.Badge, error)
	Use(caller, user common.Address, level uint8) error
}

// Investment is a user's prefund in one project. Tier is the tier the
// lottery win was signed for, not the user's current level.
type Investment struct {
	Tier uint8 `json:"tier"`
}

// Totals aggregates a project's prefund.
type Totals struct {
	Collected *uint256.Int `json:"collected"`
	Investors uint64       `json:"investors"`
}

// Config identifies the ledger in signatures.
type Config struct {
	Address common.Address
	ChainID uint64
	// Verifier signs lottery wins.
	Verifier common.Address
}

// Ledger is the PrefundLedger. Its address must be an editor of both the
// schedule and the tier ledger.
type Ledger struct {
	lock sync.Mutex

	log           log.Logger
	clock         clockwork.Clock
	config        Config
	schedule      Schedule
	registrations Registrations
	tiers         Tiers
	bids          Bids
	tokens        token.Resolver

	investmentDB database.Database
	totalsDB     database.Database
}

func New(
	log log.Logger,
	db database.Database,
	clock clockwork.Clock,
	config Config,
	schedule Schedule,
	registrations Registrations,
	tiers Tiers,
	bids Bids,
	tokens token.Resolver,
) *Ledger {
	return &Ledger{
		log:           log,
		clock:         clock,
		config:        config,
		schedule:      schedule,
		registrations: registrations,
		tiers:         tiers,
		bids:          bids,
		tokens:        tokens,
		investmentDB:  prefixdb.New(investmentPrefix, db),
		totalsDB:      prefixdb.New(totalsPrefix, db),
	}
}

// Address returns the ledger's own address.
func (l *Ledger) Address() common.Address {
	return l.config.Address
}

// Prefund invests one unit of level's pool for user in project id.
//
// The user must be registered, hold an unspent badge of at least level, have
// no auction bids in the project and present a verifier signature for the
// win. On success the pool shrinks by
// the unit, the unit is collected in the project's prefund token and the
// user's badge is spent.
func (l *Ledger) Prefund(ctx context.Context, user common.Address, id uint64, level uint8, sig verifier.Signature) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	p, err := l.schedule.Get(id)
	if err != nil {
		return err
	}
	if err := p.RequireOpen(project.Prefund, uint64(l.clock.Now().Unix())); err != nil {
		return err
	}
	if level < 1 || level > project.NumPrefundTiers {
		return fmt.Errorf("%w: tier %d cannot prefund", tier.ErrInvalidLevel, level)
	}
	if err := l.registrations.RequireRegistered(id, user); err != nil {
		return err
	}
	badge, err := l.tiers.Badge(user)
	if err != nil {
		return err
	}
	if !badge.Holds(level) {
		return fmt.Errorf("%w: %s cannot prefund tier %d with %s", tier.ErrInvalidLevel, user, level, badge)
	}

	key := investmentKey(id, user)
	invested, err := l.investmentDB.Has(key)
	if err != nil {
		return err
	}
	if invested {
		return fmt.Errorf("%w: %s in project %d", ErrAlreadyInvested, user, id)
	}
	spent, err := l.bids.Spent(id, user)
	if err != nil {
		return err
	}
	if !spent.IsZero() {
		return fmt.Errorf("%w: %s bid %s in project %d and cannot prefund", ErrAlreadyInvested, user, spent, id)
	}

	payload := verifier.PrefundPayload(user, l.config.Address, l.config.ChainID, id, level)
	if err := verifier.New(l.config.Verifier).Verify(payload, sig); err != nil {
		return err
	}

	prefundToken, err := l.tokens.Fungible(p.PrefundToken)
	if err != nil {
		return err
	}
	unit, err := l.schedule.ConsumePrefundPool(l.config.Address, id, level)
	if err != nil {
		return err
	}
	if err := l.tiers.Use(l.config.Address, user, badge.Level); err != nil {
		return err
	}
	totals, err := l.totals(id)
	if err != nil {
		return err
	}
	collected, err := math.Add256(totals.Collected, unit)
	if err != nil {
		return err
	}
	totals.Collected = collected
	totals.Investors++

	// Collecting the unit is the last external effect.
	if err := prefundToken.TransferFrom(ctx, l.config.Address, user, l.config.Address, unit); err != nil {
		return fmt.Errorf("collecting prefund: %w", err)
	}
	if err := l.investmentDB.Put(key, []byte{level}); err != nil {
		return err
	}
	if err := l.putTotals(id, totals); err != nil {
		return err
	}

	l.log.Debug("prefunded",
		log.Stringer("user", user),
		log.Uint64("projectID", id),
		log.Int("tier", int(level)),
		log.Stringer("amount", unit),
	)
	return nil
}

// Investment returns user's investment in project id, if any.
func (l *Ledger) Investment(id uint64, user common.Address) (Investment, bool, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	b, err := l.investmentDB.Get(investmentKey(id, user))
	if errors.Is(err, database.ErrNotFound) {
		return Investment{}, false, nil
	}
	if err != nil {
		return Investment{}, false, err
	}
	if len(b) != wrappers.ByteLen {
		return Investment{}, false, fmt.Errorf("%w: investment record", wrappers.ErrInsufficientLength)
	}
	return Investment{Tier: b[0]}, true, nil
}

// Totals returns what project id has collected so far.
func (l *Ledger) Totals(id uint64) (Totals, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.totals(id)
}

func (l *Ledger) totals(id uint64) (Totals, error) {
	b, err := l.totalsDB.Get(database.PackUInt64(id))
	if errors.Is(err, database.ErrNotFound) {
		return Totals{Collected: new(uint256.Int)}, nil
	}
	if err != nil {
		return Totals{}, err
	}
	p := wrappers.NewUnpacker(b)
	totals := Totals{
		Collected: p.UnpackUint256(),
		Investors: p.UnpackLong(),
	}
	return totals, p.Err
}

func (l *Ledger) putTotals(id uint64, totals Totals) error {
	p := wrappers.NewPacker(totalsLen)
	p.PackUint256(totals.Collected)
	p.PackLong(totals.Investors)
	if p.Err != nil {
		return p.Err
	}
	return l.totalsDB.Put(database.PackUInt64(id), p.Bytes)
}

func investmentKey(id uint64, user common.Address) []byte {
	return append(database.PackUInt64(id), user[:]...)
}
