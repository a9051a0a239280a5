// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry maps (network id, alias) pairs to deployed contract
// addresses.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/luxfi/geth/common"
)

const (
	Tier           = "tier"
	TierWrapper    = "tierWrapper"
	Project        = "project"
	ProjectWrapper = "projectWrapper"
	Registration   = "registration"
	Prefund        = "prefund"
	Auction        = "auction"
	Gift           = "gift"
	Invest         = "invest"
	USDC           = "usdc"
	Mint           = "mint"
	Burn           = "burn"
	Crowns         = "crowns"
)

var (
	ErrUnknownNetwork = errors.New("unknown network")
	ErrUnknownAlias   = errors.New("unknown alias")

	knownAliases = []string{
		Tier,
		TierWrapper,
		Project,
		ProjectWrapper,
		Registration,
		Prefund,
		Auction,
		Gift,
		Invest,
		USDC,
		Mint,
		Burn,
		Crowns,
	}
)

// Table is the JSON shape of a registry.
type Table map[uint64]map[string]common.Address

// Aliases returns every alias a registry accepts.
func Aliases() []string {
	return slices.Clone(knownAliases)
}

func knownAlias(alias string) bool {
	return slices.Contains(knownAliases, alias)
}

// Registry is safe for concurrent use.
type Registry struct {
	lock     sync.RWMutex
	networks Table
}

// New returns a registry holding table. Unknown aliases are rejected.
func New(table Table) (*Registry, error) {
	r := &Registry{networks: make(Table, len(table))}
	for networkID, addrs := range table {
		r.networks[networkID] = make(map[string]common.Address, len(addrs))
		for alias, addr := range addrs {
			if err := r.set(networkID, alias, addr); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Default returns the moonbase alpha (1287) and moonriver (1285)
// deployments.
func Default() *Registry {
	r, err := New(DefaultTable())
	if err != nil {
		panic(err)
	}
	return r
}

func DefaultTable() Table {
	return Table{
		1287: {
			Crowns:         common.HexToAddress("0xFde9cad69E98b3Cc8C998a8F2094293cb0bD6911"),
			Tier:           common.HexToAddress("0x1bb55d99aaf303a1586114662ef74638ed9db2ee"),
			TierWrapper:    common.HexToAddress("0xeFfdB75Ff90349151E100D82Dfd38fa1d7f050D2"),
			USDC:           common.HexToAddress("0x1bc33357E79c1E69A46b69c3f6F14691164375Dd"),
			Project:        common.HexToAddress("0xCC084E9962eFc1f35fD18423Dc2424a0A0324f18"),
			ProjectWrapper: common.HexToAddress("0xFA565e757FFE5A36Eaa623fA5353d1C70c1ab327"),
			Registration:   common.HexToAddress("0x908CCdD6C53deB1D14F815b178f828317e4E2943"),
			Prefund:        common.HexToAddress("0xC44E0A63ac50e5E58010d6aaa76579B1800914E1"),
			Auction:        common.HexToAddress("0xC31E7B6888d0AD6EF851Ad833Fc93E3640471E3a"),
			Gift:           common.HexToAddress("0x5b4a54Bf2F695A2aB20eF486EB3B5358C89A537C"),
			Invest:         common.HexToAddress("0xCd8a64e4736DeA2aFa6d2650B4354df6A82AAdDD"),
			Mint:           common.HexToAddress("0xd542c9c0ec62c7a634A6eAEbF204EF5Ffd72c5eE"),
		},
		1285: {
			USDC:           common.HexToAddress("0xE3F5a90F9cb311505cd691a46596599aA1A0AD7D"),
			Crowns:         common.HexToAddress("0x6fc9651f45B262AE6338a701D563Ab118B1eC0Ce"),
			TierWrapper:    common.HexToAddress("0xbc719dc309beb82489e9a949c415e0eaed87d247"),
			Registration:   common.HexToAddress("0xf102cA709bB314614167574e2965aDFcb001d3e9"),
			Prefund:        common.HexToAddress("0x8caABAe09aaF3980A2954dB9d4F37c0FFe36E493"),
			Auction:        common.HexToAddress("0x28788cadf01b37DA1c866c479B6809B24Ac8fD2B"),
			Gift:           common.HexToAddress("0x2D81C6e616d1C2925Ed01f41D298BFD52f2f7ea0"),
			Invest:         common.HexToAddress("0x32A9f8BB0bc177619c1c5C475AFd3E497288c1fd"),
			Project:        common.HexToAddress("0x0395560D3b148b7b69255B87635AD01B2f761806"),
			ProjectWrapper: common.HexToAddress("0x6749C5793d0F64D2287bEEf7D152F94B98679EE4"),
			Mint:           common.HexToAddress("0xd8d458C7Fc844d97ef90CCdAEddD7B2f8d066Fe0"),
		},
	}
}

// AddressOf returns the address deployed under alias on networkID.
func (r *Registry) AddressOf(networkID uint64, alias string) (common.Address, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	addrs, ok := r.networks[networkID]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %d", ErrUnknownNetwork, networkID)
	}
	if !knownAlias(alias) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrUnknownAlias, alias)
	}
	addr, ok := addrs[alias]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %q is not deployed on %d", ErrUnknownAlias, alias, networkID)
	}
	return addr, nil
}

// Set records addr under alias on networkID, adding the network if needed.
// The zero address unsets the alias.
func (r *Registry) Set(networkID uint64, alias string, addr common.Address) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.set(networkID, alias, addr)
}

func (r *Registry) set(networkID uint64, alias string, addr common.Address) error {
	if !knownAlias(alias) {
		return fmt.Errorf("%w: %q", ErrUnknownAlias, alias)
	}
	addrs, ok := r.networks[networkID]
	if !ok {
		addrs = make(map[string]common.Address)
		r.networks[networkID] = addrs
	}
	if addr == (common.Address{}) {
		delete(addrs, alias)
		return nil
	}
	addrs[alias] = addr
	return nil
}

// Networks returns the known network ids in increasing order.
func (r *Registry) Networks() []uint64 {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return slices.Sorted(maps.Keys(r.networks))
}

// Table returns a copy of the registry contents.
func (r *Registry) Table() Table {
	r.lock.RLock()
	defer r.lock.RUnlock()

	table := make(Table, len(r.networks))
	for networkID, addrs := range r.networks {
		table[networkID] = maps.Clone(addrs)
	}
	return table
}

func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Table())
}

func (r *Registry) UnmarshalJSON(b []byte) error {
	var table Table
	if err := json.Unmarshal(b, &table); err != nil {
		return err
	}
	parsed, err := New(table)
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.networks = parsed.networks
	return nil
}
