// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package project

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/launchpad/tier"
	"github.com/luxfi/launchpad/utils/wrappers"
)

// NumPrefundTiers is the number of tiers with a prefund pool. Tier 0 never
// prefunds, so pool i belongs to tier i+1.
const NumPrefundTiers = 3

const (
	windowLen  = 2 * wrappers.LongLen
	projectLen = wrappers.LongLen +
		3*windowLen +
		6*wrappers.BoolLen +
		3*NumPrefundTiers*wrappers.Uint256Len +
		3*wrappers.AddressLen +
		4*wrappers.Uint256Len
)

// Phase names a windowed phase of a project.
type Phase uint8

const (
	Registration Phase = iota
	Prefund
	Auction
)

func (p Phase) String() string {
	switch p {
	case Registration:
		return "registration"
	case Prefund:
		return "prefund"
	case Auction:
		return "auction"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Window is an inclusive [Start, End] range of unix seconds.
type Window struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Contains reports whether now falls inside the window.
func (w Window) Contains(now uint64) bool {
	return w.Start <= now && now <= w.End
}

// Project is the phase record of one project.
type Project struct {
	ID uint64 `json:"id"`

	Registration Window `json:"registration"`
	Prefund      Window `json:"prefund"`
	Auction      Window `json:"auction"`

	RegistrationSet           bool `json:"registrationSet"`
	PrefundSet                bool `json:"prefundSet"`
	AuctionSet                bool `json:"auctionSet"`
	AllocationCompensationSet bool `json:"allocationCompensationSet"`
	PrefundTransferred        bool `json:"prefundTransferred"`
	MintingEnabled            bool `json:"mintingEnabled"`

	// InvestAmounts is the fixed unit a winner of tier i+1 invests.
	InvestAmounts [NumPrefundTiers]*uint256.Int `json:"investAmounts"`
	// Pools caps the total prefund of tier i+1.
	Pools          [NumPrefundTiers]*uint256.Int `json:"pools"`
	PoolsRemaining [NumPrefundTiers]*uint256.Int `json:"poolsRemaining"`
	PrefundToken   common.Address                `json:"prefundToken"`

	PrefundAllocation   *uint256.Int   `json:"prefundAllocation"`
	PrefundCompensation *uint256.Int   `json:"prefundCompensation"`
	AuctionAllocation   *uint256.Int   `json:"auctionAllocation"`
	AuctionCompensation *uint256.Int   `json:"auctionCompensation"`
	ClaimToken          common.Address `json:"claimToken"`
	ProjectToken        common.Address `json:"projectToken"`
}

func newProject(id uint64) *Project {
	p := &Project{
		ID:                  id,
		PrefundAllocation:   new(uint256.Int),
		PrefundCompensation: new(uint256.Int),
		AuctionAllocation:   new(uint256.Int),
		AuctionCompensation: new(uint256.Int),
	}
	for i := range NumPrefundTiers {
		p.InvestAmounts[i] = new(uint256.Int)
		p.Pools[i] = new(uint256.Int)
		p.PoolsRemaining[i] = new(uint256.Int)
	}
	return p
}

// Window returns the window of phase and whether it was initialized.
func (p *Project) Window(phase Phase) (Window, bool) {
	switch phase {
	case Registration:
		return p.Registration, p.RegistrationSet
	case Prefund:
		return p.Prefund, p.PrefundSet
	case Auction:
		return p.Auction, p.AuctionSet
	default:
		return Window{}, false
	}
}

// RequireOpen fails unless now falls inside the initialized window of phase.
func (p *Project) RequireOpen(phase Phase, now uint64) error {
	w, ok := p.Window(phase)
	switch {
	case !ok:
		return fmt.Errorf("%w: project %d has no %s window", ErrPhaseNotStarted, p.ID, phase)
	case now < w.Start:
		return fmt.Errorf("%w: project %d %s opens at %d, now %d", ErrPhaseNotStarted, p.ID, phase, w.Start, now)
	case now > w.End:
		return fmt.Errorf("%w: project %d %s closed at %d, now %d", ErrPhaseClosed, p.ID, phase, w.End, now)
	default:
		return nil
	}
}

// Ended reports whether the window of phase was initialized and is over.
func (p *Project) Ended(phase Phase, now uint64) bool {
	w, ok := p.Window(phase)
	return ok && now > w.End
}

// InvestAmount returns the prefund unit of tier 1..3.
func (p *Project) InvestAmount(t uint8) (*uint256.Int, error) {
	i, err := poolIndex(t)
	if err != nil {
		return nil, err
	}
	return p.InvestAmounts[i], nil
}

func poolIndex(t uint8) (int, error) {
	if t < 1 || t > NumPrefundTiers {
		return 0, fmt.Errorf("%w: tier %d has no prefund pool", tier.ErrInvalidLevel, t)
	}
	return int(t) - 1, nil
}

func (p *Project) bytes() ([]byte, error) {
	pk := wrappers.NewPacker(projectLen)
	pk.PackLong(p.ID)
	for _, w := range []Window{p.Registration, p.Prefund, p.Auction} {
		pk.PackLong(w.Start)
		pk.PackLong(w.End)
	}
	for _, flag := range []bool{
		p.RegistrationSet,
		p.PrefundSet,
		p.AuctionSet,
		p.AllocationCompensationSet,
		p.PrefundTransferred,
		p.MintingEnabled,
	} {
		pk.PackBool(flag)
	}
	for i := range NumPrefundTiers {
		pk.PackUint256(p.InvestAmounts[i])
		pk.PackUint256(p.Pools[i])
		pk.PackUint256(p.PoolsRemaining[i])
	}
	pk.PackAddress(p.PrefundToken)
	pk.PackUint256(p.PrefundAllocation)
	pk.PackUint256(p.PrefundCompensation)
	pk.PackUint256(p.AuctionAllocation)
	pk.PackUint256(p.AuctionCompensation)
	pk.PackAddress(p.ClaimToken)
	pk.PackAddress(p.ProjectToken)
	return pk.Bytes, pk.Err
}

func parseProject(b []byte) (*Project, error) {
	pk := wrappers.NewUnpacker(b)
	p := &Project{ID: pk.UnpackLong()}
	for _, w := range []*Window{&p.Registration, &p.Prefund, &p.Auction} {
		w.Start = pk.UnpackLong()
		w.End = pk.UnpackLong()
	}
	for _, flag := range []*bool{
		&p.RegistrationSet,
		&p.PrefundSet,
		&p.AuctionSet,
		&p.AllocationCompensationSet,
		&p.PrefundTransferred,
		&p.MintingEnabled,
	} {
		*flag = pk.UnpackBool()
	}
	for i := range NumPrefundTiers {
		p.InvestAmounts[i] = pk.UnpackUint256()
		p.Pools[i] = pk.UnpackUint256()
		p.PoolsRemaining[i] = pk.UnpackUint256()
	}
	p.PrefundToken = pk.UnpackAddress()
	p.PrefundAllocation = pk.UnpackUint256()
	p.PrefundCompensation = pk.UnpackUint256()
	p.AuctionAllocation = pk.UnpackUint256()
	p.AuctionCompensation = pk.UnpackUint256()
	p.ClaimToken = pk.UnpackAddress()
	p.ProjectToken = pk.UnpackAddress()
	return p, pk.Err
}
