// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package project keeps each launchpad project's phase windows, one-shot
// flags, prefund pools and allocation totals.
package project

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/launchpad/auth"
	"github.com/luxfi/launchpad/utils/math"
)

var (
	ErrUnknownProject     = errors.New("unknown project")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("prerequisite not initialized")
	ErrInvalidWindow      = errors.New("invalid window")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrPhaseNotStarted    = errors.New("phase not started")
	ErrPhaseClosed        = errors.New("phase closed")
	ErrPoolExhausted      = errors.New("pool exhausted")

	errZeroAddress = errors.New("zero address")

	projectPrefix   = []byte("project")
	editorPrefix    = []byte("editor")
	singletonPrefix = []byte("singleton")

	countKey = []byte("count")
)

// PrefundParams configures a project's prefund phase.
type PrefundParams struct {
	Window        Window
	InvestAmounts [NumPrefundTiers]*uint256.Int
	Pools         [NumPrefundTiers]*uint256.Int
	Token         common.Address
}

// Allocation holds the totals apportioned to prefund investors and auction
// bidders, and the token their claims are minted into.
type Allocation struct {
	PrefundAllocation   *uint256.Int
	PrefundCompensation *uint256.Int
	AuctionAllocation   *uint256.Int
	AuctionCompensation *uint256.Int
	ClaimToken          common.Address
}

// Schedule is the PhaseSchedule. Every mutation is editor only.
type Schedule struct {
	lock sync.Mutex

	log         log.Logger
	acl         *auth.ACL
	projectDB   database.Database
	singletonDB database.Database
}

func New(log log.Logger, db database.Database, owner common.Address) *Schedule {
	return &Schedule{
		log:         log,
		acl:         auth.New(prefixdb.New(editorPrefix, db), owner),
		projectDB:   prefixdb.New(projectPrefix, db),
		singletonDB: prefixdb.New(singletonPrefix, db),
	}
}

func (s *Schedule) AddEditor(caller, editor common.Address) error {
	return s.acl.AddEditor(caller, editor)
}

func (s *Schedule) DeleteEditor(caller, editor common.Address) error {
	return s.acl.DeleteEditor(caller, editor)
}

func (s *Schedule) IsEditor(addr common.Address) (bool, error) {
	return s.acl.IsEditor(addr)
}

// Count returns the most recently assigned project id, or 0 if none.
func (s *Schedule) Count() (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.count()
}

// Create assigns the next project id, starting at 1.
func (s *Schedule) Create(caller common.Address) (uint64, error) {
	if err := s.acl.RequireEditor(caller); err != nil {
		return 0, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	count, err := s.count()
	if err != nil {
		return 0, err
	}
	id, err := math.Add(count, 1)
	if err != nil {
		return 0, err
	}
	if err := s.put(newProject(id)); err != nil {
		return 0, err
	}
	if err := database.PutUInt64(s.singletonDB, countKey, id); err != nil {
		return 0, err
	}

	s.log.Debug("project created", log.Uint64("projectID", id))
	return id, nil
}

// Get returns a copy of project id.
func (s *Schedule) Get(id uint64) (*Project, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.get(id)
}

// RequireOpen fails unless now falls inside the phase window of project id.
func (s *Schedule) RequireOpen(id uint64, phase Phase, now uint64) error {
	p, err := s.Get(id)
	if err != nil {
		return err
	}
	return p.RequireOpen(phase, now)
}

func (s *Schedule) InitRegistration(caller common.Address, id uint64, w Window) error {
	return s.update(caller, id, "registration initialized", func(p *Project) error {
		if p.RegistrationSet {
			return fmt.Errorf("%w: registration of project %d", ErrAlreadyInitialized, id)
		}
		if err := verifyWindow(w); err != nil {
			return err
		}
		p.Registration = w
		p.RegistrationSet = true
		return nil
	})
}

func (s *Schedule) InitPrefund(caller common.Address, id uint64, params PrefundParams) error {
	return s.update(caller, id, "prefund initialized", func(p *Project) error {
		if p.PrefundSet {
			return fmt.Errorf("%w: prefund of project %d", ErrAlreadyInitialized, id)
		}
		if err := verifyWindow(params.Window); err != nil {
			return err
		}
		if params.Token == (common.Address{}) {
			return fmt.Errorf("%w: prefund token", errZeroAddress)
		}
		for i := range NumPrefundTiers {
			amount, pool := params.InvestAmounts[i], params.Pools[i]
			if amount == nil || amount.IsZero() {
				return fmt.Errorf("%w: tier %d invest amount is zero", ErrInvalidAmount, i+1)
			}
			if pool == nil {
				pool = new(uint256.Int)
			}
			p.InvestAmounts[i] = amount.Clone()
			p.Pools[i] = pool.Clone()
			p.PoolsRemaining[i] = pool.Clone()
		}
		p.Prefund = params.Window
		p.PrefundToken = params.Token
		p.PrefundSet = true
		return nil
	})
}

func (s *Schedule) InitAuction(caller common.Address, id uint64, w Window) error {
	return s.update(caller, id, "auction initialized", func(p *Project) error {
		if p.AuctionSet {
			return fmt.Errorf("%w: auction of project %d", ErrAlreadyInitialized, id)
		}
		if err := verifyWindow(w); err != nil {
			return err
		}
		p.Auction = w
		p.AuctionSet = true
		return nil
	})
}

// SetAllocationCompensation stores the allocation totals once the auction is
// scheduled.
func (s *Schedule) SetAllocationCompensation(caller common.Address, id uint64, a Allocation) error {
	return s.update(caller, id, "allocation and compensation set", func(p *Project) error {
		if !p.AuctionSet {
			return fmt.Errorf("%w: auction of project %d", ErrNotInitialized, id)
		}
		if p.AllocationCompensationSet {
			return fmt.Errorf("%w: allocation of project %d", ErrAlreadyInitialized, id)
		}
		if a.ClaimToken == (common.Address{}) {
			return fmt.Errorf("%w: claim token", errZeroAddress)
		}
		p.PrefundAllocation = orZero(a.PrefundAllocation)
		p.PrefundCompensation = orZero(a.PrefundCompensation)
		p.AuctionAllocation = orZero(a.AuctionAllocation)
		p.AuctionCompensation = orZero(a.AuctionCompensation)
		p.ClaimToken = a.ClaimToken
		p.AllocationCompensationSet = true
		return nil
	})
}

// MarkPrefundTransferred adds the unsold prefund share to the auction totals.
func (s *Schedule) MarkPrefundTransferred(caller common.Address, id uint64, allocation, compensation *uint256.Int) error {
	return s.update(caller, id, "prefund transferred", func(p *Project) error {
		if !p.AllocationCompensationSet {
			return fmt.Errorf("%w: allocation of project %d", ErrNotInitialized, id)
		}
		if p.PrefundTransferred {
			return fmt.Errorf("%w: prefund of project %d already transferred", ErrAlreadyInitialized, id)
		}
		auctionAllocation, err := math.Add256(p.AuctionAllocation, allocation)
		if err != nil {
			return err
		}
		auctionCompensation, err := math.Add256(p.AuctionCompensation, compensation)
		if err != nil {
			return err
		}
		p.AuctionAllocation = auctionAllocation
		p.AuctionCompensation = auctionCompensation
		p.PrefundTransferred = true
		return nil
	})
}

func (s *Schedule) InitMinting(caller common.Address, id uint64) error {
	return s.update(caller, id, "minting enabled", func(p *Project) error {
		if !p.PrefundTransferred {
			return fmt.Errorf("%w: prefund of project %d not transferred", ErrNotInitialized, id)
		}
		if p.MintingEnabled {
			return fmt.Errorf("%w: minting of project %d", ErrAlreadyInitialized, id)
		}
		p.MintingEnabled = true
		return nil
	})
}

// SetProjectToken records the token paid out for burnt allocation claims.
func (s *Schedule) SetProjectToken(caller common.Address, id uint64, addr common.Address) error {
	return s.update(caller, id, "project token set", func(p *Project) error {
		if p.ProjectToken != (common.Address{}) {
			return fmt.Errorf("%w: project token of project %d", ErrAlreadyInitialized, id)
		}
		if addr == (common.Address{}) {
			return fmt.Errorf("%w: project token", errZeroAddress)
		}
		p.ProjectToken = addr
		return nil
	})
}

// ConsumePrefundPool takes one investment unit of tier out of its pool and
// returns the unit. Checking and deducting happen under one lock.
func (s *Schedule) ConsumePrefundPool(caller common.Address, id uint64, tier uint8) (*uint256.Int, error) {
	var unit *uint256.Int
	err := s.update(caller, id, "prefund pool consumed", func(p *Project) error {
		if !p.PrefundSet {
			return fmt.Errorf("%w: prefund of project %d", ErrNotInitialized, id)
		}
		if p.PrefundTransferred {
			return fmt.Errorf("%w: pools of project %d moved to the auction", ErrPhaseClosed, id)
		}
		i, err := poolIndex(tier)
		if err != nil {
			return err
		}
		remaining, err := math.Sub256(p.PoolsRemaining[i], p.InvestAmounts[i])
		if err != nil {
			return fmt.Errorf("%w: tier %d of project %d has %s left, unit is %s",
				ErrPoolExhausted, tier, id, p.PoolsRemaining[i], p.InvestAmounts[i])
		}
		p.PoolsRemaining[i] = remaining
		unit = p.InvestAmounts[i].Clone()
		return nil
	})
	return unit, err
}

// update applies fn to project id and stores the result if fn succeeds.
func (s *Schedule) update(caller common.Address, id uint64, msg string, fn func(*Project) error) error {
	if err := s.acl.RequireEditor(caller); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	p, err := s.get(id)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	if err := s.put(p); err != nil {
		return err
	}

	s.log.Debug(msg,
		log.Uint64("projectID", id),
		log.Stringer("by", caller),
	)
	return nil
}

func (s *Schedule) count() (uint64, error) {
	count, err := database.GetUInt64(s.singletonDB, countKey)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return count, err
}

func (s *Schedule) get(id uint64) (*Project, error) {
	b, err := s.projectDB.Get(database.PackUInt64(id))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProject, id)
	}
	if err != nil {
		return nil, err
	}
	return parseProject(b)
}

func (s *Schedule) put(p *Project) error {
	b, err := p.bytes()
	if err != nil {
		return err
	}
	return s.projectDB.Put(database.PackUInt64(p.ID), b)
}

func verifyWindow(w Window) error {
	if w.Start >= w.End {
		return fmt.Errorf("%w: start %d must be before end %d", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v.Clone()
}
