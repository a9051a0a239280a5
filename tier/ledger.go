// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tier keeps every user's tier badge and advances it on verifier
// signed claims.
package tier

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

	"github.com/luxfi/launchpad/auth"
	"github.com/luxfi/launchpad/token"
	"github.com/luxfi/launchpad/utils/wrappers"
	"github.com/luxfi/launchpad/verifier"
)

var (
	ErrInvalidLevel = errors.New("invalid level")

	badgePrefix     = []byte("badge")
	editorPrefix    = []byte("editor")
	singletonPrefix = []byte("singleton")

	verifierKey = []byte("verifier")
	feesKey     = []byte("fees")

	feesLen = NumLevels * wrappers.Uint256Len
)

// Config holds the values a ledger starts with. They are written on first
// use of an empty database and read back afterwards.
type Config struct {
	// Address identifies the ledger in claim signatures and receives fees.
	Address common.Address
	ChainID uint64
	Owner   common.Address
	// ClaimVerifier signs level claims.
	ClaimVerifier common.Address
	Fees          [NumLevels]*uint256.Int
}

// Ledger is the TierLedger.
type Ledger struct {
	lock sync.Mutex

	log      log.Logger
	address  common.Address
	chainID  uint64
	feeToken token.Fungible

	acl         *auth.ACL
	badgeDB     database.Database
	singletonDB database.Database
}

// New opens the ledger stored in db. Fees are collected in feeToken.
func New(log log.Logger, db database.Database, config Config, feeToken token.Fungible) (*Ledger, error) {
	l := &Ledger{
		log:         log,
		address:     config.Address,
		chainID:     config.ChainID,
		feeToken:    feeToken,
		acl:         auth.New(prefixdb.New(editorPrefix, db), config.Owner),
		badgeDB:     prefixdb.New(badgePrefix, db),
		singletonDB: prefixdb.New(singletonPrefix, db),
	}

	initialized, err := l.singletonDB.Has(verifierKey)
	if err != nil {
		return nil, err
	}
	if initialized {
		return l, nil
	}
	if err := l.singletonDB.Put(verifierKey, config.ClaimVerifier[:]); err != nil {
		return nil, err
	}
	if err := l.putFees(config.Fees); err != nil {
		return nil, err
	}
	return l, nil
}

// Address returns the ledger's own address.
func (l *Ledger) Address() common.Address {
	return l.address
}

// Badge returns user's badge, or the zero badge if the user never claimed.
func (l *Ledger) Badge(user common.Address) (Badge, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.getBadge(user)
}

// Level returns user's current level. Unclaimed users are at level 0.
func (l *Ledger) Level(user common.Address) (uint8, error) {
	badge, err := l.Badge(user)
	return badge.Level, err
}

// Claim moves user to level on a signature from the claim verifier over the
// user's current nonce, then collects the level's fee from the user.
func (l *Ledger) Claim(ctx context.Context, user common.Address, level uint8, sig verifier.Signature) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	badge, err := l.getBadge(user)
	if err != nil {
		return err
	}
	if !badge.CanClaim(level) {
		return fmt.Errorf("%w: cannot claim %d from %s", ErrInvalidLevel, level, badge)
	}

	claimVerifier, err := l.getClaimVerifier()
	if err != nil {
		return err
	}
	payload := verifier.TierPayload(user, badge.Nonce, level, l.chainID, l.address)
	if err := verifier.New(claimVerifier).Verify(payload, sig); err != nil {
		return err
	}

	fees, err := l.getFees()
	if err != nil {
		return err
	}
	if fee := fees[level]; !fee.IsZero() {
		if err := l.feeToken.TransferFrom(ctx, l.address, user, l.address, fee); err != nil {
			return fmt.Errorf("collecting tier fee: %w", err)
		}
	}

	claimed := Badge{
		Level:  level,
		Nonce:  badge.Nonce + 1,
		Usable: true,
	}
	if err := l.badgeDB.Put(user[:], claimed.bytes()); err != nil {
		return err
	}

	l.log.Debug("tier claimed",
		log.Stringer("user", user),
		log.Int("level", int(level)),
		log.Uint64("nonce", claimed.Nonce),
	)
	return nil
}

// Use spends user's credential at level without changing the level. Only
// editors may spend credentials.
func (l *Ledger) Use(caller, user common.Address, level uint8) error {
	if err := l.acl.RequireEditor(caller); err != nil {
		return err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	badge, err := l.getBadge(user)
	if err != nil {
		return err
	}
	if !badge.Claimed() || badge.Level != level {
		return fmt.Errorf("%w: cannot use %d from %s", ErrInvalidLevel, level, badge)
	}

	badge.Usable = false
	if err := l.badgeDB.Put(user[:], badge.bytes()); err != nil {
		return err
	}

	l.log.Debug("tier used",
		log.Stringer("user", user),
		log.Stringer("by", caller),
		log.Int("level", int(level)),
	)
	return nil
}

// Fees returns the fee charged for claiming each level.
func (l *Ledger) Fees() ([NumLevels]*uint256.Int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.getFees()
}

// SetFees replaces the claim fees. Owner only.
func (l *Ledger) SetFees(caller common.Address, fees [NumLevels]*uint256.Int) error {
	if err := l.acl.RequireOwner(caller); err != nil {
		return err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	return l.putFees(fees)
}

// ClaimVerifier returns the address whose signatures authorize claims.
func (l *Ledger) ClaimVerifier() (common.Address, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.getClaimVerifier()
}

// SetClaimVerifier replaces the claim verifier. Owner only.
func (l *Ledger) SetClaimVerifier(caller, addr common.Address) error {
	if err := l.acl.RequireOwner(caller); err != nil {
		return err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	l.log.Info("claim verifier changed", log.Stringer("verifier", addr))
	return l.singletonDB.Put(verifierKey, addr[:])
}

// AddEditor lets editor spend credentials. Owner only.
func (l *Ledger) AddEditor(caller, editor common.Address) error {
	return l.acl.AddEditor(caller, editor)
}

// DeleteEditor revokes editor. Owner only.
func (l *Ledger) DeleteEditor(caller, editor common.Address) error {
	return l.acl.DeleteEditor(caller, editor)
}

// IsEditor reports whether addr may spend credentials.
func (l *Ledger) IsEditor(addr common.Address) (bool, error) {
	return l.acl.IsEditor(addr)
}

func (l *Ledger) getBadge(user common.Address) (Badge, error) {
	b, err := l.badgeDB.Get(user[:])
	if errors.Is(err, database.ErrNotFound) {
		return Badge{}, nil
	}
	if err != nil {
		return Badge{}, err
	}
	return parseBadge(b)
}

func (l *Ledger) getClaimVerifier() (common.Address, error) {
	b, err := l.singletonDB.Get(verifierKey)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(b), nil
}

func (l *Ledger) getFees() ([NumLevels]*uint256.Int, error) {
	var fees [NumLevels]*uint256.Int
	b, err := l.singletonDB.Get(feesKey)
	if err != nil {
		return fees, err
	}
	p := wrappers.NewUnpacker(b)
	for i := range fees {
		fees[i] = p.UnpackUint256()
	}
	return fees, p.Err
}

func (l *Ledger) putFees(fees [NumLevels]*uint256.Int) error {
	p := wrappers.NewPacker(feesLen)
	for _, fee := range fees {
		p.PackUint256(fee)
	}
	if p.Err != nil {
		return p.Err
	}
	return l.singletonDB.Put(feesKey, p.Bytes)
}
