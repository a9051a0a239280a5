// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auth implements the owner and editor capability checks shared by
// the launchpad ledgers.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
)

var ErrUnauthorized = errors.New("unauthorized")

// ACL is a fixed owner plus a persisted set of editors. The owner passes
// every editor check.
type ACL struct {
	lock  sync.RWMutex
	owner common.Address
	db    database.Database
}

// New returns an ACL owned by owner whose editors live in db.
func New(db database.Database, owner common.Address) *ACL {
	return &ACL{
		owner: owner,
		db:    db,
	}
}

// Owner returns the owner address.
func (a *ACL) Owner() common.Address {
	return a.owner
}

// IsEditor reports whether addr may call editor operations.
func (a *ACL) IsEditor(addr common.Address) (bool, error) {
	if addr == a.owner {
		return true, nil
	}

	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.db.Has(addr[:])
}

// RequireOwner fails with ErrUnauthorized unless caller is the owner.
func (a *ACL) RequireOwner(caller common.Address) error {
	if caller != a.owner {
		return fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, caller)
	}
	return nil
}

// RequireEditor fails with ErrUnauthorized unless caller is the owner or an
// editor.
func (a *ACL) RequireEditor(caller common.Address) error {
	ok, err := a.IsEditor(caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s is not an editor", ErrUnauthorized, caller)
	}
	return nil
}

// AddEditor grants editor rights to editor. Owner only.
func (a *ACL) AddEditor(caller, editor common.Address) error {
	if err := a.RequireOwner(caller); err != nil {
		return err
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	return a.db.Put(editor[:], []byte{database.BoolTrue})
}

// DeleteEditor revokes editor rights. Owner only.
func (a *ACL) DeleteEditor(caller, editor common.Address) error {
	if err := a.RequireOwner(caller); err != nil {
		return err
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	return a.db.Delete(editor[:])
}
