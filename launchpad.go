// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package launchpad runs the tiered IDO launchpad: tier badges, project
// phases, registration, prefund, auction, allocation, and claim token
// mint and burn.
//
// Every state-changing call is serialized and runs against a single
// versioned database. A call either commits all of its writes or none.
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/launchpad/allocation"
	"github.com/luxfi/launchpad/auction"
	"github.com/luxfi/launchpad/auth"
	"github.com/luxfi/launchpad/burn"
	"github.com/luxfi/launchpad/config"
	"github.com/luxfi/launchpad/mint"
	"github.com/luxfi/launchpad/prefund"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/registration"
	"github.com/luxfi/launchpad/registry"
	"github.com/luxfi/launchpad/tier"
	"github.com/luxfi/launchpad/token"
	"github.com/luxfi/launchpad/verifier"
)

var (
	tierPrefix         = []byte("tier")
	projectPrefix      = []byte("project")
	registrationPrefix = []byte("registration")
	prefundPrefix      = []byte("prefund")
	auctionPrefix      = []byte("auction")
	auctionACLPrefix   = []byte("auctionACL")
	mintPrefix         = []byte("mint")
	burnPrefix         = []byte("burn")
)

// Addresses are the contract identities the launchpad signs against and
// settles through.
type Addresses struct {
	Tier       common.Address `json:"tier"`
	Prefund    common.Address `json:"prefund"`
	Auction    common.Address `json:"auction"`
	Gift       common.Address `json:"gift"`
	Collateral common.Address `json:"collateral"`
	// Burn is zero when no burn contract is deployed on the network.
	Burn common.Address `json:"burn"`
}

// ResolveAddresses looks the launchpad contracts up in r.
func ResolveAddresses(r *registry.Registry, networkID uint64) (Addresses, error) {
	var (
		addrs Addresses
		err   error
	)
	for _, entry := range []struct {
		alias string
		addr  *common.Address
	}{
		{alias: registry.TierWrapper, addr: &addrs.Tier},
		{alias: registry.Prefund, addr: &addrs.Prefund},
		{alias: registry.Auction, addr: &addrs.Auction},
		{alias: registry.Gift, addr: &addrs.Gift},
		{alias: registry.Crowns, addr: &addrs.Collateral},
	} {
		*entry.addr, err = r.AddressOf(networkID, entry.alias)
		if err != nil {
			return Addresses{}, err
		}
	}

	addrs.Burn, err = r.AddressOf(networkID, registry.Burn)
	if err != nil && !errors.Is(err, registry.ErrUnknownAlias) {
		return Addresses{}, err
	}
	return addrs, nil
}

// Launchpad owns every ledger of the launchpad.
type Launchpad struct {
	lock sync.RWMutex

	log      log.Logger
	metrics  *metrics
	db       *versiondb.Database
	chainID  uint64
	addrs    Addresses
	registry *registry.Registry

	tiers         *tier.Ledger
	schedule      *project.Schedule
	registrations *registration.Ledger
	prefunds      *prefund.Ledger
	auctionACL    *auth.ACL
	auctions      *auction.Ledger
	engine        *allocation.Engine
	minter        *mint.Gate
	burner        *burn.Gate
}

// auctionBids reads the auction ledger, which is built after the prefund
// ledger it serves.
type auctionBids struct {
	l *Launchpad
}

func (b auctionBids) Spent(id uint64, user common.Address) (*uint256.Int, error) {
	return b.l.auctions.Spent(id, user)
}

// New opens the launchpad stored in db. Contract addresses come from the
// configured registry under cfg.ChainID.
func New(
	cfg config.Config,
	db database.Database,
	tokens token.Resolver,
	clock clockwork.Clock,
	logger log.Logger,
	registerer prometheus.Registerer,
) (*Launchpad, error) {
	if err := cfg.Verify(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	fees, err := cfg.Fees()
	if err != nil {
		return nil, err
	}
	r, err := cfg.NewRegistry()
	if err != nil {
		return nil, err
	}
	addrs, err := ResolveAddresses(r, cfg.ChainID)
	if err != nil {
		return nil, err
	}
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	feeToken, err := tokens.Fungible(addrs.Collateral)
	if err != nil {
		return nil, err
	}

	vdb := versiondb.New(db)
	l := &Launchpad{
		log:      logger,
		metrics:  m,
		db:       vdb,
		chainID:  cfg.ChainID,
		addrs:    addrs,
		registry: r,
	}

	l.tiers, err = tier.New(
		logger,
		prefixdb.New(tierPrefix, vdb),
		tier.Config{
			Address:       addrs.Tier,
			ChainID:       cfg.ChainID,
			Owner:         cfg.Owner,
			ClaimVerifier: cfg.ClaimVerifier,
			Fees:          fees,
		},
		feeToken,
	)
	if err != nil {
		return nil, err
	}
	l.schedule = project.New(logger, prefixdb.New(projectPrefix, vdb), cfg.Owner)
	l.registrations = registration.New(logger, prefixdb.New(registrationPrefix, vdb), clock, l.schedule, l.tiers)
	l.prefunds = prefund.New(
		logger,
		prefixdb.New(prefundPrefix, vdb),
		clock,
		prefund.Config{
			Address:  addrs.Prefund,
			ChainID:  cfg.ChainID,
			Verifier: cfg.ProjectVerifier,
		},
		l.schedule,
		l.registrations,
		l.tiers,
		auctionBids{l: l},
		tokens,
	)
	l.auctionACL = auth.New(prefixdb.New(auctionACLPrefix, vdb), cfg.Owner)
	l.auctions = auction.New(
		logger,
		prefixdb.New(auctionPrefix, vdb),
		clock,
		auction.Config{
			Address:    addrs.Auction,
			ChainID:    cfg.ChainID,
			Verifier:   cfg.ProjectVerifier,
			Collateral: addrs.Collateral,
			Gift:       addrs.Gift,
		},
		l.auctionACL,
		l.schedule,
		l.registrations,
		l.prefunds,
		tokens,
	)
	l.engine = allocation.New(logger, clock, l.schedule, l.prefunds, l.auctions)
	l.minter = mint.New(
		logger,
		prefixdb.New(mintPrefix, vdb),
		clock,
		mint.Config{
			ChainID:     cfg.ChainID,
			Owner:       cfg.Owner,
			KYCVerifier: cfg.KYCVerifier,
		},
		l.schedule,
		l.engine,
		tokens,
	)
	if addrs.Burn != (common.Address{}) {
		l.burner = burn.New(
			logger,
			prefixdb.New(burnPrefix, vdb),
			burn.Config{
				Address:    addrs.Burn,
				Collateral: addrs.Collateral,
			},
			l.schedule,
			l.minter,
			tokens,
		)
	}

	// The prefund ledger draws down pools and spends badges.
	err = l.run("grantRoles", func() error {
		if err := l.tiers.AddEditor(cfg.Owner, addrs.Prefund); err != nil {
			return err
		}
		return l.schedule.AddEditor(cfg.Owner, addrs.Prefund)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("launchpad initialized",
		log.Uint64("chainID", cfg.ChainID),
		log.Stringer("owner", cfg.Owner),
		log.Stringer("tier", addrs.Tier),
		log.Stringer("prefund", addrs.Prefund),
		log.Stringer("auction", addrs.Auction),
		log.Bool("burnEnabled", l.burner != nil),
	)
	return l, nil
}

// run executes op under the write lock and commits its writes only if it
// succeeds.
func (l *Launchpad) run(op string, fn func() error) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	start := time.Now()
	err := fn()
	if err == nil {
		err = l.db.Commit()
	}
	if err != nil {
		l.db.Abort()
		l.log.Debug("operation rejected",
			log.String("op", op),
			log.Err(err),
		)
	}
	l.metrics.observe(op, start, err)
	return err
}

// ChainID is the chain id signed into every payload.
func (l *Launchpad) ChainID() uint64 {
	return l.chainID
}

func (l *Launchpad) Addresses() Addresses {
	return l.addrs
}

// AddressOf looks alias up on the launchpad's network.
func (l *Launchpad) AddressOf(alias string) (common.Address, error) {
	return l.registry.AddressOf(l.chainID, alias)
}

// Tier badges

func (l *Launchpad) ClaimTier(ctx context.Context, user common.Address, level uint8, sig verifier.Signature) error {
	return l.run("claimTier", func() error {
		return l.tiers.Claim(ctx, user, level, sig)
	})
}

func (l *Launchpad) SetTierFees(caller common.Address, fees [tier.NumLevels]*uint256.Int) error {
	return l.run("setTierFees", func() error {
		return l.tiers.SetFees(caller, fees)
	})
}

func (l *Launchpad) SetClaimVerifier(caller, addr common.Address) error {
	return l.run("setClaimVerifier", func() error {
		return l.tiers.SetClaimVerifier(caller, addr)
	})
}

// AddTierEditor lets editor spend tier badges.
func (l *Launchpad) AddTierEditor(caller, editor common.Address) error {
	return l.run("addTierEditor", func() error {
		return l.tiers.AddEditor(caller, editor)
	})
}

// UseTier spends user's credential at level. Tier editors only.
func (l *Launchpad) UseTier(caller, user common.Address, level uint8) error {
	return l.run("useTier", func() error {
		return l.tiers.Use(caller, user, level)
	})
}

func (l *Launchpad) DeleteTierEditor(caller, editor common.Address) error {
	return l.run("deleteTierEditor", func() error {
		return l.tiers.DeleteEditor(caller, editor)
	})
}

func (l *Launchpad) Badge(user common.Address) (tier.Badge, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.tiers.Badge(user)
}

func (l *Launchpad) TierFees() ([tier.NumLevels]*uint256.Int, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.tiers.Fees()
}

// Project administration

// AddEditor lets editor administer projects and their auctions.
func (l *Launchpad) AddEditor(caller, editor common.Address) error {
	return l.run("addEditor", func() error {
		if err := l.schedule.AddEditor(caller, editor); err != nil {
			return err
		}
		return l.auctionACL.AddEditor(caller, editor)
	})
}

func (l *Launchpad) DeleteEditor(caller, editor common.Address) error {
	return l.run("deleteEditor", func() error {
		if err := l.schedule.DeleteEditor(caller, editor); err != nil {
			return err
		}
		return l.auctionACL.DeleteEditor(caller, editor)
	})
}

func (l *Launchpad) CreateProject(caller common.Address) (uint64, error) {
	var id uint64
	err := l.run("createProject", func() error {
		var err error
		id, err = l.schedule.Create(caller)
		return err
	})
	return id, err
}

// StartProject creates a project and opens its registration window.
func (l *Launchpad) StartProject(caller common.Address, registration project.Window) (uint64, error) {
	var id uint64
	err := l.run("startProject", func() error {
		var err error
		id, err = l.schedule.Create(caller)
		if err != nil {
			return err
		}
		return l.schedule.InitRegistration(caller, id, registration)
	})
	return id, err
}

func (l *Launchpad) InitRegistration(caller common.Address, id uint64, w project.Window) error {
	return l.run("initRegistration", func() error {
		return l.schedule.InitRegistration(caller, id, w)
	})
}

func (l *Launchpad) InitPrefund(caller common.Address, id uint64, params project.PrefundParams) error {
	return l.run("initPrefund", func() error {
		return l.schedule.InitPrefund(caller, id, params)
	})
}

func (l *Launchpad) InitAuction(caller common.Address, id uint64, w project.Window) error {
	return l.run("initAuction", func() error {
		return l.schedule.InitAuction(caller, id, w)
	})
}

func (l *Launchpad) SetAuctionData(caller common.Address, id uint64, data auction.Data) error {
	return l.run("setAuctionData", func() error {
		return l.auctions.SetData(caller, id, data)
	})
}

func (l *Launchpad) InitAllocationCompensation(caller common.Address, id uint64, a project.Allocation) error {
	return l.run("initAllocationCompensation", func() error {
		return l.engine.InitAllocationCompensation(caller, id, a)
	})
}

func (l *Launchpad) TransferPrefund(caller common.Address, id uint64) error {
	return l.run("transferPrefund", func() error {
		return l.engine.TransferPrefund(caller, id)
	})
}

func (l *Launchpad) InitMinting(caller common.Address, id uint64) error {
	return l.run("initMinting", func() error {
		return l.schedule.InitMinting(caller, id)
	})
}

func (l *Launchpad) SetProjectToken(caller common.Address, id uint64, addr common.Address) error {
	return l.run("setProjectToken", func() error {
		return l.schedule.SetProjectToken(caller, id, addr)
	})
}

func (l *Launchpad) Project(id uint64) (*project.Project, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.schedule.Get(id)
}

func (l *Launchpad) ProjectCount() (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.schedule.Count()
}

// User operations

func (l *Launchpad) Register(user common.Address, id uint64) error {
	return l.run("register", func() error {
		return l.registrations.Register(user, id)
	})
}

func (l *Launchpad) Prefund(ctx context.Context, user common.Address, id uint64, level uint8, sig verifier.Signature) error {
	return l.run("prefund", func() error {
		return l.prefunds.Prefund(ctx, user, id, level, sig)
	})
}

func (l *Launchpad) Participate(ctx context.Context, user common.Address, id uint64, amount *uint256.Int, sig verifier.Signature) error {
	return l.run("participate", func() error {
		return l.auctions.Participate(ctx, user, id, amount, sig)
	})
}

// Mint issues user's claim token. sig is the KYC approval, ignored while no
// KYC verifier is set.
func (l *Launchpad) Mint(ctx context.Context, user common.Address, id uint64, sig verifier.Signature) (uint64, error) {
	var tokenID uint64
	err := l.run("mint", func() error {
		var err error
		tokenID, err = l.minter.Mint(ctx, user, id, sig)
		return err
	})
	return tokenID, err
}

func (l *Launchpad) SetKYCVerifier(caller, addr common.Address) error {
	return l.run("setKYCVerifier", func() error {
		return l.minter.SetKYCVerifier(caller, addr)
	})
}

func (l *Launchpad) KYCVerifier() (common.Address, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.minter.KYCVerifier()
}

func (l *Launchpad) BurnForAllocation(ctx context.Context, user common.Address, id, tokenID uint64) (*uint256.Int, error) {
	return l.burn("burnForAllocation", func(b *burn.Gate) (*uint256.Int, error) {
		return b.BurnForAllocation(ctx, user, id, tokenID)
	})
}

func (l *Launchpad) BurnForCompensation(ctx context.Context, user common.Address, id, tokenID uint64) (*uint256.Int, error) {
	return l.burn("burnForCompensation", func(b *burn.Gate) (*uint256.Int, error) {
		return b.BurnForCompensation(ctx, user, id, tokenID)
	})
}

func (l *Launchpad) burn(op string, fn func(*burn.Gate) (*uint256.Int, error)) (*uint256.Int, error) {
	var paid *uint256.Int
	err := l.run(op, func() error {
		if l.burner == nil {
			return fmt.Errorf("%w: %q is not deployed on %d", registry.ErrUnknownAlias, registry.Burn, l.chainID)
		}
		var err error
		paid, err = fn(l.burner)
		return err
	})
	return paid, err
}

// Reads

func (l *Launchpad) IsRegistered(id uint64, user common.Address) (bool, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.registrations.IsRegistered(id, user)
}

func (l *Launchpad) Registrations(id uint64) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.registrations.Count(id)
}

func (l *Launchpad) Investment(id uint64, user common.Address) (prefund.Investment, bool, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.prefunds.Investment(id, user)
}

func (l *Launchpad) PrefundTotals(id uint64) (prefund.Totals, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.prefunds.Totals(id)
}

func (l *Launchpad) Spent(id uint64, user common.Address) (*uint256.Int, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.auctions.Spent(id, user)
}

func (l *Launchpad) AuctionTotals(id uint64) (auction.Totals, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.auctions.Totals(id)
}

func (l *Launchpad) AuctionData(id uint64) (auction.Data, bool, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.auctions.Data(id)
}

func (l *Launchpad) Claim(id uint64, user common.Address) (allocation.Claim, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.engine.Claim(id, user)
}

func (l *Launchpad) Rates(id uint64) (allocation.Rates, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.engine.Rates(id)
}

func (l *Launchpad) Minted(id uint64, user common.Address) (uint64, bool, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.minter.Minted(id, user)
}
