// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registration records which users registered for which project.
package registration

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/tier"
)

var (
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")

	memberPrefix = []byte("member")
	countPrefix  = []byte("count")
)

// Schedule gates registration by the project's registration window.
type Schedule interface {
	RequireOpen(id uint64, phase project.Phase, now uint64) error
}

// Tiers reports user badges.
type Tiers interface {
	Badge(user common.Address) (tier.Badge, error)
}

// Ledger is the RegistrationLedger.
type Ledger struct {
	lock sync.Mutex

	log      log.Logger
	clock    clockwork.Clock
	schedule Schedule
	tiers    Tiers

	memberDB database.Database
	countDB  database.Database
}

func New(log log.Logger, db database.Database, clock clockwork.Clock, schedule Schedule, tiers Tiers) *Ledger {
	return &Ledger{
		log:      log,
		clock:    clock,
		schedule: schedule,
		tiers:    tiers,
		memberDB: prefixdb.New(memberPrefix, db),
		countDB:  prefixdb.New(countPrefix, db),
	}
}

// Register adds user to project id. The registration window must be open
// and the user must have claimed at least tier 1.
func (l *Ledger) Register(user common.Address, id uint64) error {
	now := uint64(l.clock.Now().Unix())
	if err := l.schedule.RequireOpen(id, project.Registration, now); err != nil {
		return err
	}

	badge, err := l.tiers.Badge(user)
	if err != nil {
		return err
	}
	if !badge.Claimed() || badge.Level < 1 {
		return fmt.Errorf("%w: %s needs tier 1 to register, has %s", tier.ErrInvalidLevel, user, badge)
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	key := memberKey(id, user)
	registered, err := l.memberDB.Has(key)
	if err != nil {
		return err
	}
	if registered {
		return fmt.Errorf("%w: %s in project %d", ErrAlreadyRegistered, user, id)
	}
	if err := l.memberDB.Put(key, []byte{database.BoolTrue}); err != nil {
		return err
	}

	count, err := l.count(id)
	if err != nil {
		return err
	}
	if err := database.PutUInt64(l.countDB, database.PackUInt64(id), count+1); err != nil {
		return err
	}

	l.log.Debug("registered",
		log.Stringer("user", user),
		log.Uint64("projectID", id),
	)
	return nil
}

// IsRegistered reports whether user registered for project id.
func (l *Ledger) IsRegistered(id uint64, user common.Address) (bool, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.memberDB.Has(memberKey(id, user))
}

// RequireRegistered fails with ErrNotRegistered unless user registered for
// project id.
func (l *Ledger) RequireRegistered(id uint64, user common.Address) error {
	registered, err := l.IsRegistered(id, user)
	if err != nil {
		return err
	}
	if !registered {
		return fmt.Errorf("%w: %s in project %d", ErrNotRegistered, user, id)
	}
	return nil
}

// Count returns the number of users registered for project id.
func (l *Ledger) Count(id uint64) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.count(id)
}

func (l *Ledger) count(id uint64) (uint64, error) {
	count, err := database.GetUInt64(l.countDB, database.PackUInt64(id))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return count, err
}

func memberKey(id uint64, user common.Address) []byte {
	return append(database.PackUInt64(id), user[:]...)
}
