// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package allocation converts what a project raised into per-user claims on
// its token allocation and collateral compensation.
//
// Prefund units are priced at a fixed rate: the prefund allocation spread
// over the full prefund pools. Whatever the prefund did not sell moves to
// the auction at that same rate, and the auction's totals are then shared
// pro rata to each bidder's spend. Rates carry Scaler fixed-point precision
// and every division floors, so claims never add up to more than the totals.
package allocation

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/launchpad/auction"
	"github.com/luxfi/launchpad/prefund"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/utils/math"
)

var (
	ErrPrefundOpen = errors.New("prefund still open")

	// Scaler is the fixed-point precision of rates, 1e36.
	Scaler = uint256.MustFromDecimal("1000000000000000000000000000000000000")
)

// Schedule stores allocation totals on the project record.
type Schedule interface {
	Get(id uint64) (*project.Project, error)
	SetAllocationCompensation(caller common.Address, id uint64, a project.Allocation) error
	MarkPrefundTransferred(caller common.Address, id uint64, allocation, compensation *uint256.Int) error
}

// Investments reports prefund investments.
type Investments interface {
	Investment(id uint64, user common.Address) (prefund.Investment, bool, error)
}

// Bids reports auction spend.
type Bids interface {
	Spent(id uint64, user common.Address) (*uint256.Int, error)
	Totals(id uint64) (auction.Totals, error)
}

// Claim is what one user may redeem from a project.
type Claim struct {
	Allocation   *uint256.Int `json:"allocation"`
	Compensation *uint256.Int `json:"compensation"`
}

// IsZero reports whether the claim is worth nothing.
func (c Claim) IsZero() bool {
	return c.Allocation.IsZero() && c.Compensation.IsZero()
}

func zeroClaim() Claim {
	return Claim{
		Allocation:   new(uint256.Int),
		Compensation: new(uint256.Int),
	}
}

// Rates are per-unit amounts scaled by Scaler.
type Rates struct {
	PrefundAllocation   *uint256.Int `json:"prefundAllocation"`
	PrefundCompensation *uint256.Int `json:"prefundCompensation"`
	AuctionAllocation   *uint256.Int `json:"auctionAllocation"`
	AuctionCompensation *uint256.Int `json:"auctionCompensation"`
}

// Engine is the AllocationEngine. It keeps no state of its own.
type Engine struct {
	log         log.Logger
	clock       clockwork.Clock
	schedule    Schedule
	investments Investments
	bids        Bids
}

func New(log log.Logger, clock clockwork.Clock, schedule Schedule, investments Investments, bids Bids) *Engine {
	return &Engine{
		log:         log,
		clock:       clock,
		schedule:    schedule,
		investments: investments,
		bids:        bids,
	}
}

// InitAllocationCompensation stores the four totals and the claim token of
// project id once its auction is scheduled.
func (e *Engine) InitAllocationCompensation(caller common.Address, id uint64, a project.Allocation) error {
	return e.schedule.SetAllocationCompensation(caller, id, a)
}

// TransferPrefund moves the unsold prefund share into the auction totals.
// A scheduled prefund must be over, since its pools stop selling here.
func (e *Engine) TransferPrefund(caller common.Address, id uint64) error {
	p, err := e.schedule.Get(id)
	if err != nil {
		return err
	}
	if !p.AllocationCompensationSet {
		return fmt.Errorf("%w: allocation of project %d", project.ErrNotInitialized, id)
	}
	if now := uint64(e.clock.Now().Unix()); p.PrefundSet && !p.Ended(project.Prefund, now) {
		return fmt.Errorf("%w: project %d prefund ends at %d, now %d", ErrPrefundOpen, id, p.Prefund.End, now)
	}

	prefundAllocation, prefundCompensation, err := prefundRates(p)
	if err != nil {
		return err
	}
	unsold, err := math.Sum256(p.PoolsRemaining[:]...)
	if err != nil {
		return err
	}
	allocation, err := math.MulDiv(unsold, prefundAllocation, Scaler)
	if err != nil {
		return err
	}
	compensation, err := math.MulDiv(unsold, prefundCompensation, Scaler)
	if err != nil {
		return err
	}
	if err := e.schedule.MarkPrefundTransferred(caller, id, allocation, compensation); err != nil {
		return err
	}

	e.log.Debug("prefund transferred to auction",
		log.Uint64("projectID", id),
		log.Stringer("unsold", unsold),
		log.Stringer("allocation", allocation),
		log.Stringer("compensation", compensation),
	)
	return nil
}

// Rates returns the scaled per-unit rates of project id.
func (e *Engine) Rates(id uint64) (Rates, error) {
	p, err := e.schedule.Get(id)
	if err != nil {
		return Rates{}, err
	}
	return e.rates(p)
}

// Claim returns what user may redeem from project id. Totals are final only
// after the prefund transfer, so earlier calls fail.
func (e *Engine) Claim(id uint64, user common.Address) (Claim, error) {
	p, err := e.schedule.Get(id)
	if err != nil {
		return Claim{}, err
	}
	if !p.PrefundTransferred {
		return Claim{}, fmt.Errorf("%w: prefund of project %d not transferred", project.ErrNotInitialized, id)
	}
	rates, err := e.rates(p)
	if err != nil {
		return Claim{}, err
	}

	investment, invested, err := e.investments.Investment(id, user)
	if err != nil {
		return Claim{}, err
	}
	if invested {
		unit, err := p.InvestAmount(investment.Tier)
		if err != nil {
			return Claim{}, err
		}
		return apply(unit, rates.PrefundAllocation, rates.PrefundCompensation)
	}

	spent, err := e.bids.Spent(id, user)
	if err != nil {
		return Claim{}, err
	}
	if spent.IsZero() {
		return zeroClaim(), nil
	}
	return apply(spent, rates.AuctionAllocation, rates.AuctionCompensation)
}

func (e *Engine) rates(p *project.Project) (Rates, error) {
	prefundAllocation, prefundCompensation, err := prefundRates(p)
	if err != nil {
		return Rates{}, err
	}

	totals, err := e.bids.Totals(p.ID)
	if err != nil {
		return Rates{}, err
	}
	auctionAllocation, err := rate(p.AuctionAllocation, totals.Spent)
	if err != nil {
		return Rates{}, err
	}
	auctionCompensation, err := rate(p.AuctionCompensation, totals.Spent)
	if err != nil {
		return Rates{}, err
	}
	return Rates{
		PrefundAllocation:   prefundAllocation,
		PrefundCompensation: prefundCompensation,
		AuctionAllocation:   auctionAllocation,
		AuctionCompensation: auctionCompensation,
	}, nil
}

func prefundRates(p *project.Project) (*uint256.Int, *uint256.Int, error) {
	pools, err := math.Sum256(p.Pools[:]...)
	if err != nil {
		return nil, nil, err
	}
	allocation, err := rate(p.PrefundAllocation, pools)
	if err != nil {
		return nil, nil, err
	}
	compensation, err := rate(p.PrefundCompensation, pools)
	if err != nil {
		return nil, nil, err
	}
	return allocation, compensation, nil
}

// rate returns total * Scaler / units, or zero when nothing was raised.
func rate(total, units *uint256.Int) (*uint256.Int, error) {
	if units.IsZero() {
		return new(uint256.Int), nil
	}
	return math.MulDiv(total, Scaler, units)
}

func apply(units, allocationRate, compensationRate *uint256.Int) (Claim, error) {
	allocation, err := math.MulDiv(units, allocationRate, Scaler)
	if err != nil {
		return Claim{}, err
	}
	compensation, err := math.MulDiv(units, compensationRate, Scaler)
	if err != nil {
		return Claim{}, err
	}
	return Claim{
		Allocation:   allocation,
		Compensation: compensation,
	}, nil
}
