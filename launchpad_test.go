// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package launchpad

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
	"github.com/luxfi/crypto"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/launchpad/allocation"
	"github.com/luxfi/launchpad/auction"
	"github.com/luxfi/launchpad/auth"
	"github.com/luxfi/launchpad/config"
	"github.com/luxfi/launchpad/mint"
	"github.com/luxfi/launchpad/prefund"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/registration"
	"github.com/luxfi/launchpad/registry"
	"github.com/luxfi/launchpad/tier"
	"github.com/luxfi/launchpad/token"
	"github.com/luxfi/launchpad/token/tokentest"
	"github.com/luxfi/launchpad/verifier"
)

const start = 1_700_000_000

var (
	owner    = common.HexToAddress("0x01")
	burnAddr = common.HexToAddress("0xb042")
	pccAddr  = common.HexToAddress("0x9cc")

	u1 = common.HexToAddress("0x1001")
	u2 = common.HexToAddress("0x1002")
	u3 = common.HexToAddress("0x1003")
	u4 = common.HexToAddress("0x1004")
	u5 = common.HexToAddress("0x1005")
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type env struct {
	t       *testing.T
	require *require.Assertions

	clock         *clockwork.FakeClock
	claimSigner   *verifier.Signer
	projectSigner *verifier.Signer
	addrs         Addresses
	invest        common.Address
	usdc          common.Address

	crowns  *tokentest.Fungible
	stable  *tokentest.Fungible
	pcc     *tokentest.Fungible
	gifts   *tokentest.GiftMinter
	claims  *tokentest.ClaimToken
	metrics *prometheus.Registry
	lp      *Launchpad
}

func newEnv(t *testing.T) *env {
	require := require.New(t)

	claimKey, err := crypto.GenerateKey()
	require.NoError(err)
	projectKey, err := crypto.GenerateKey()
	require.NoError(err)

	cfg := config.DefaultConfig()
	cfg.Owner = owner
	cfg.ClaimVerifier = common.Address(crypto.PubkeyToAddress(claimKey.PublicKey))
	cfg.ProjectVerifier = common.Address(crypto.PubkeyToAddress(projectKey.PublicKey))
	cfg.TierFees = []string{"0", "10", "20", "30"}
	cfg.Registry[cfg.ChainID][registry.Burn] = burnAddr

	r, err := cfg.NewRegistry()
	require.NoError(err)
	addrs, err := ResolveAddresses(r, cfg.ChainID)
	require.NoError(err)
	invest, err := r.AddressOf(cfg.ChainID, registry.Invest)
	require.NoError(err)
	usdc, err := r.AddressOf(cfg.ChainID, registry.USDC)
	require.NoError(err)

	e := &env{
		t:             t,
		require:       require,
		clock:         clockwork.NewFakeClockAt(time.Unix(start, 0)),
		claimSigner:   verifier.NewSigner(claimKey),
		projectSigner: verifier.NewSigner(projectKey),
		addrs:         addrs,
		invest:        invest,
		usdc:          usdc,
		crowns:        tokentest.NewFungible(),
		stable:        tokentest.NewFungible(),
		pcc:           tokentest.NewFungible(),
		gifts:         tokentest.NewGiftMinter(),
		claims:        tokentest.NewClaimToken(),
		metrics:       prometheus.NewRegistry(),
	}

	tokens := tokentest.NewResolver()
	tokens.AddFungible(addrs.Collateral, e.crowns)
	tokens.AddFungible(usdc, e.stable)
	tokens.AddFungible(pccAddr, e.pcc)
	tokens.AddGiftMinter(addrs.Gift, e.gifts)
	tokens.AddClaimToken(invest, e.claims)

	e.lp, err = New(cfg, memdb.New(), tokens, e.clock, log.NewNoOpLogger(), e.metrics)
	require.NoError(err)
	return e
}

func (e *env) at(offset uint64) {
	now := uint64(e.clock.Now().Unix())
	e.require.LessOrEqual(now, start+offset)
	e.clock.Advance(time.Duration(start+offset-now) * time.Second)
}

// fund gives user collateral and stablecoin, approved to every ledger.
func (e *env) fund(user common.Address) {
	e.crowns.Mint(user, uint256.NewInt(10_000))
	e.crowns.Approve(user, e.addrs.Tier, uint256.NewInt(10_000))
	e.crowns.Approve(user, e.addrs.Auction, uint256.NewInt(10_000))
	e.stable.Mint(user, uint256.NewInt(1_000))
	e.stable.Approve(user, e.addrs.Prefund, uint256.NewInt(1_000))
}

func (e *env) claimTier(user common.Address, level uint8) error {
	badge, err := e.lp.Badge(user)
	e.require.NoError(err)
	payload := verifier.TierPayload(user, badge.Nonce, level, e.lp.ChainID(), e.addrs.Tier)
	sig, err := e.claimSigner.Sign(payload)
	e.require.NoError(err)
	return e.lp.ClaimTier(context.Background(), user, level, sig)
}

// tierOne funds user and climbs to level 1.
func (e *env) tierOne(user common.Address) {
	e.fund(user)
	e.require.NoError(e.claimTier(user, 0))
	e.require.NoError(e.claimTier(user, 1))
}

func (e *env) prefund(user common.Address, id uint64, level uint8) error {
	payload := verifier.PrefundPayload(user, e.addrs.Prefund, e.lp.ChainID(), id, level)
	sig, err := e.projectSigner.Sign(payload)
	e.require.NoError(err)
	return e.lp.Prefund(context.Background(), user, id, level, sig)
}

func (e *env) bid(user common.Address, id uint64, amount uint64) error {
	payload := verifier.AuctionPayload(user, e.addrs.Auction, id, uint256.NewInt(amount), e.lp.ChainID())
	sig, err := e.projectSigner.Sign(payload)
	e.require.NoError(err)
	return e.lp.Participate(context.Background(), user, id, uint256.NewInt(amount), sig)
}

func (e *env) poolRemaining(id uint64, level uint8) *uint256.Int {
	p, err := e.lp.Project(id)
	e.require.NoError(err)
	return p.PoolsRemaining[level-1]
}

func (e *env) initPrefund(id uint64, w project.Window) {
	e.require.NoError(e.lp.InitPrefund(owner, id, project.PrefundParams{
		Window: w,
		InvestAmounts: [project.NumPrefundTiers]*uint256.Int{
			uint256.NewInt(100),
			uint256.NewInt(200),
			uint256.NewInt(300),
		},
		Pools: [project.NumPrefundTiers]*uint256.Int{
			uint256.NewInt(250),
			uint256.NewInt(400),
			uint256.NewInt(600),
		},
		Token: e.usdc,
	}))
}

func TestRegistrationAndPrefundScenario(t *testing.T) {
	e := newEnv(t)
	require := e.require

	id, err := e.lp.StartProject(owner, project.Window{Start: start, End: start + 60})
	require.NoError(err)
	require.Equal(uint64(1), id)
	require.ErrorIs(e.lp.InitRegistration(owner, id, project.Window{Start: start, End: start + 60}), project.ErrAlreadyInitialized)

	for _, user := range []common.Address{u1, u2, u3, u4} {
		e.tierOne(user)
	}
	// Level fees went to the tier ledger.
	require.Equal(uint256.NewInt(40), e.crowns.Balance(e.addrs.Tier))

	e.at(10)
	for _, user := range []common.Address{u1, u2, u3} {
		require.NoError(e.lp.Register(user, id))
	}
	require.ErrorIs(e.lp.Register(u1, id), registration.ErrAlreadyRegistered)

	e.at(70)
	require.ErrorIs(e.lp.Register(u4, id), project.ErrPhaseClosed)
	registered, err := e.lp.Registrations(id)
	require.NoError(err)
	require.Equal(uint64(3), registered)

	e.initPrefund(id, project.Window{Start: start + 70, End: start + 130})

	require.NoError(e.prefund(u1, id, 1))
	require.NoError(e.prefund(u2, id, 1))
	require.Equal(uint256.NewInt(50), e.poolRemaining(id, 1))

	require.ErrorIs(e.prefund(u3, id, 1), project.ErrPoolExhausted)
	require.Equal(uint256.NewInt(50), e.poolRemaining(id, 1))
	require.Equal(uint256.NewInt(1_000), e.stable.Balance(u3))
	badge, err := e.lp.Badge(u3)
	require.NoError(err)
	require.True(badge.Usable)

	totals, err := e.lp.PrefundTotals(id)
	require.NoError(err)
	require.Equal(prefund.Totals{Collected: uint256.NewInt(200), Investors: 2}, totals)
	require.Equal(uint256.NewInt(200), e.stable.Balance(e.addrs.Prefund))

	// Prefunding spent the badges.
	badge, err = e.lp.Badge(u1)
	require.NoError(err)
	require.Equal(tier.Badge{Level: 1, Nonce: 2, Usable: false}, badge)
	require.ErrorIs(e.prefund(u1, id, 1), tier.ErrInvalidLevel)
}

func TestFailedOperationLeavesNoState(t *testing.T) {
	e := newEnv(t)
	require := e.require

	id, err := e.lp.StartProject(owner, project.Window{Start: start, End: start + 60})
	require.NoError(err)
	for _, user := range []common.Address{u1, u2} {
		e.tierOne(user)
	}
	e.at(10)
	for _, user := range []common.Address{u1, u2} {
		require.NoError(e.lp.Register(user, id))
	}
	e.initPrefund(id, project.Window{Start: start + 70, End: start + 130})
	e.at(70)

	// The pool is drawn down and the badge spent before the stablecoin is
	// collected. A failed collection must undo both.
	e.stable.Approve(u2, e.addrs.Prefund, uint256.NewInt(0))
	require.ErrorIs(e.prefund(u2, id, 1), token.ErrInsufficientAllow)
	require.Equal(uint256.NewInt(250), e.poolRemaining(id, 1))
	badge, err := e.lp.Badge(u2)
	require.NoError(err)
	require.True(badge.Usable)
	_, invested, err := e.lp.Investment(id, u2)
	require.NoError(err)
	require.False(invested)

	e.stable.Approve(u2, e.addrs.Prefund, uint256.NewInt(1_000))
	require.NoError(e.prefund(u2, id, 1))
	require.Equal(uint256.NewInt(150), e.poolRemaining(id, 1))

	require.Equal(float64(1), testutil.ToFloat64(e.lp.metrics.operations.WithLabelValues("prefund", resultRejected)))
	require.Equal(float64(1), testutil.ToFloat64(e.lp.metrics.operations.WithLabelValues("prefund", resultAccepted)))
}

func TestPrefundWithoutTierEditorKeepsFunds(t *testing.T) {
	e := newEnv(t)
	require := e.require

	id, err := e.lp.StartProject(owner, project.Window{Start: start, End: start + 60})
	require.NoError(err)
	e.tierOne(u1)
	e.at(10)
	require.NoError(e.lp.Register(u1, id))
	e.initPrefund(id, project.Window{Start: start + 70, End: start + 130})
	e.at(70)

	require.NoError(e.lp.DeleteTierEditor(owner, e.addrs.Prefund))
	require.ErrorIs(e.prefund(u1, id, 1), auth.ErrUnauthorized)
	require.Equal(uint256.NewInt(1_000), e.stable.Balance(u1))
	require.True(e.stable.Balance(e.addrs.Prefund).IsZero())
	require.Equal(uint256.NewInt(250), e.poolRemaining(id, 1))

	require.NoError(e.lp.AddTierEditor(owner, e.addrs.Prefund))
	require.NoError(e.prefund(u1, id, 1))
}

func TestBidderCannotPrefund(t *testing.T) {
	e := newEnv(t)
	require := e.require

	id, err := e.lp.StartProject(owner, project.Window{Start: start, End: start + 60})
	require.NoError(err)
	e.tierOne(u1)
	e.at(10)
	require.NoError(e.lp.Register(u1, id))

	// Overlapping prefund and auction windows.
	e.initPrefund(id, project.Window{Start: start + 70, End: start + 130})
	require.NoError(e.lp.InitAuction(owner, id, project.Window{Start: start + 70, End: start + 130}))
	e.at(70)

	require.NoError(e.bid(u1, id, 500))
	require.ErrorIs(e.prefund(u1, id, 1), prefund.ErrAlreadyInvested)

	_, invested, err := e.lp.Investment(id, u1)
	require.NoError(err)
	require.False(invested)
	require.Equal(uint256.NewInt(1_000), e.stable.Balance(u1))
	spent, err := e.lp.Spent(id, u1)
	require.NoError(err)
	require.Equal(uint256.NewInt(500), spent)
}

func TestTransferPrefundWhilePrefundOpen(t *testing.T) {
	e := newEnv(t)
	require := e.require

	id, err := e.lp.StartProject(owner, project.Window{Start: start, End: start + 60})
	require.NoError(err)
	e.initPrefund(id, project.Window{Start: start + 70, End: start + 130})
	require.NoError(e.lp.InitAuction(owner, id, project.Window{Start: start + 200, End: start + 300}))
	require.NoError(e.lp.InitAllocationCompensation(owner, id, project.Allocation{
		PrefundAllocation: uint256.NewInt(1_250_000),
		AuctionAllocation: uint256.NewInt(400_000),
		ClaimToken:        e.invest,
	}))

	e.at(100)
	require.ErrorIs(e.lp.TransferPrefund(owner, id), allocation.ErrPrefundOpen)

	e.at(131)
	require.NoError(e.lp.TransferPrefund(owner, id))
	p, err := e.lp.Project(id)
	require.NoError(err)
	require.Equal(uint256.NewInt(1_650_000), p.AuctionAllocation)
}

func TestUseTier(t *testing.T) {
	e := newEnv(t)
	require := e.require

	editor := common.HexToAddress("0xed")
	e.tierOne(u1)

	require.ErrorIs(e.lp.UseTier(editor, u1, 1), auth.ErrUnauthorized)
	require.NoError(e.lp.AddTierEditor(owner, editor))
	require.ErrorIs(e.lp.UseTier(editor, u1, 2), tier.ErrInvalidLevel)
	require.NoError(e.lp.UseTier(editor, u1, 1))

	badge, err := e.lp.Badge(u1)
	require.NoError(err)
	require.Equal(tier.Badge{Level: 1, Nonce: 2, Usable: false}, badge)
	require.Equal(float64(1), testutil.ToFloat64(e.lp.metrics.operations.WithLabelValues("useTier", resultAccepted)))
}

func TestConcurrentPrefundNeverOverdrawsPool(t *testing.T) {
	e := newEnv(t)
	require := e.require

	id, err := e.lp.StartProject(owner, project.Window{Start: start, End: start + 60})
	require.NoError(err)

	users := make([]common.Address, 16)
	for i := range users {
		users[i] = common.BigToAddress(uint256.NewInt(uint64(0x2000 + i)).ToBig())
		e.tierOne(users[i])
	}
	e.at(10)
	for _, user := range users {
		require.NoError(e.lp.Register(user, id))
	}
	e.initPrefund(id, project.Window{Start: start + 70, End: start + 130})
	e.at(70)

	sigs := make([]verifier.Signature, len(users))
	for i, user := range users {
		sigs[i], err = e.projectSigner.Sign(verifier.PrefundPayload(user, e.addrs.Prefund, e.lp.ChainID(), id, 1))
		require.NoError(err)
	}

	accepted := make([]bool, len(users))
	var eg errgroup.Group
	for i, user := range users {
		eg.Go(func() error {
			err := e.lp.Prefund(context.Background(), user, id, 1, sigs[i])
			switch {
			case err == nil:
				accepted[i] = true
				return nil
			case errors.Is(err, project.ErrPoolExhausted):
				return nil
			default:
				return err
			}
		})
	}
	require.NoError(eg.Wait())

	var n int
	for _, ok := range accepted {
		if ok {
			n++
		}
	}
	require.Equal(2, n)
	require.Equal(uint256.NewInt(50), e.poolRemaining(id, 1))
	require.Equal(uint256.NewInt(200), e.stable.Balance(e.addrs.Prefund))
}

func TestProjectLifecycle(t *testing.T) {
	e := newEnv(t)
	require := e.require

	id, err := e.lp.StartProject(owner, project.Window{Start: start, End: start + 60})
	require.NoError(err)
	for _, user := range []common.Address{u1, u3, u5} {
		e.tierOne(user)
	}
	e.at(10)
	for _, user := range []common.Address{u1, u3, u5} {
		require.NoError(e.lp.Register(user, id))
	}
	e.initPrefund(id, project.Window{Start: start + 70, End: start + 130})
	e.at(70)
	require.NoError(e.prefund(u1, id, 1))

	editor := common.HexToAddress("0xed")
	require.ErrorIs(e.lp.AddEditor(editor, editor), auth.ErrUnauthorized)
	require.NoError(e.lp.AddEditor(owner, editor))

	auctionWindow := project.Window{Start: start + 200, End: start + 300}
	require.ErrorIs(e.lp.InitAllocationCompensation(editor, id, project.Allocation{}), project.ErrNotInitialized)
	require.NoError(e.lp.InitAuction(editor, id, auctionWindow))
	require.NoError(e.lp.SetAuctionData(editor, id, auction.Data{Min: uint256.NewInt(50), GiftAmount: 1}))

	e.at(200)
	require.ErrorIs(e.bid(u1, id, 100), prefund.ErrAlreadyInvested)
	require.ErrorIs(e.bid(u3, id, 10), auction.ErrBelowMinimum)
	require.NoError(e.bid(u3, id, 300))
	require.NoError(e.bid(u5, id, 100))
	require.Equal(1, e.gifts.Gifts(u3))
	require.Zero(e.gifts.Gifts(u5))

	totals, err := e.lp.AuctionTotals(id)
	require.NoError(err)
	require.Equal(auction.Totals{Spent: uint256.NewInt(400), Participants: 2, GiftsMinted: 1}, totals)

	// 1250 prefund units are priced at 1200 allocation and 10 compensation.
	require.NoError(e.lp.InitAllocationCompensation(owner, id, project.Allocation{
		PrefundAllocation:   uint256.NewInt(1_500_000),
		PrefundCompensation: uint256.NewInt(12_500),
		AuctionAllocation:   uint256.NewInt(400_000),
		AuctionCompensation: uint256.NewInt(4_000),
		ClaimToken:          e.invest,
	}))
	require.ErrorIs(e.lp.InitMinting(owner, id), project.ErrNotInitialized)
	require.NoError(e.lp.TransferPrefund(owner, id))

	// 1150 units went unsold and move to the auction.
	rates, err := e.lp.Rates(id)
	require.NoError(err)
	require.Equal(new(uint256.Int).Mul(uint256.NewInt(1_200), allocation.Scaler), rates.PrefundAllocation)
	require.Equal(new(uint256.Int).Mul(uint256.NewInt(4_450), allocation.Scaler), rates.AuctionAllocation)

	claims := map[common.Address]allocation.Claim{
		u1: {Allocation: uint256.NewInt(120_000), Compensation: uint256.NewInt(1_000)},
		u3: {Allocation: uint256.NewInt(1_335_000), Compensation: uint256.NewInt(11_625)},
		u5: {Allocation: uint256.NewInt(445_000), Compensation: uint256.NewInt(3_875)},
	}
	for user, expected := range claims {
		claim, err := e.lp.Claim(id, user)
		require.NoError(err)
		require.Equal(expected, claim, "user %s", user)
	}

	_, err = e.lp.Mint(context.Background(), u1, id, verifier.Signature{})
	require.ErrorIs(err, project.ErrNotInitialized)
	require.NoError(e.lp.InitMinting(owner, id))
	_, err = e.lp.Mint(context.Background(), u1, id, verifier.Signature{})
	require.ErrorIs(err, project.ErrPhaseNotStarted)

	e.at(301)
	kyc := e.claimSigner.Address()
	require.ErrorIs(e.lp.SetKYCVerifier(editor, kyc), auth.ErrUnauthorized)
	require.NoError(e.lp.SetKYCVerifier(owner, kyc))
	_, err = e.lp.Mint(context.Background(), u1, id, verifier.Signature{})
	require.ErrorIs(err, verifier.ErrInvalidSignature)

	tokenIDs := make(map[common.Address]uint64)
	approval, err := e.claimSigner.Sign(verifier.MintPayload(u1, e.invest, id, e.lp.ChainID()))
	require.NoError(err)
	tokenIDs[u1], err = e.lp.Mint(context.Background(), u1, id, approval)
	require.NoError(err)

	require.NoError(e.lp.SetKYCVerifier(owner, common.Address{}))
	for _, user := range []common.Address{u3, u5} {
		tokenIDs[user], err = e.lp.Mint(context.Background(), user, id, verifier.Signature{})
		require.NoError(err)
	}
	_, err = e.lp.Mint(context.Background(), u1, id, verifier.Signature{})
	require.ErrorIs(err, mint.ErrAlreadyMinted)
	_, err = e.lp.Mint(context.Background(), u4, id, verifier.Signature{})
	require.ErrorIs(err, mint.ErrNothingToClaim)
	minted, ok, err := e.lp.Minted(id, u3)
	require.NoError(err)
	require.True(ok)
	require.Equal(tokenIDs[u3], minted)

	e.pcc.Mint(burnAddr, uint256.NewInt(2_000_000))
	e.crowns.Mint(burnAddr, uint256.NewInt(20_000))

	_, err = e.lp.BurnForAllocation(context.Background(), u1, id, tokenIDs[u1])
	require.ErrorIs(err, project.ErrNotInitialized)
	require.NoError(e.lp.SetProjectToken(owner, id, pccAddr))

	paid, err := e.lp.BurnForAllocation(context.Background(), u1, id, tokenIDs[u1])
	require.NoError(err)
	require.Equal(uint256.NewInt(120_000), paid)
	require.Equal(uint256.NewInt(120_000), e.pcc.Balance(u1))

	_, err = e.lp.BurnForCompensation(context.Background(), u5, id, tokenIDs[u3])
	require.ErrorIs(err, auth.ErrUnauthorized)
	paid, err = e.lp.BurnForCompensation(context.Background(), u3, id, tokenIDs[u3])
	require.NoError(err)
	require.Equal(uint256.NewInt(11_625), paid)
}

func TestNewRejectsBadConfig(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig()
	cfg.ChainID = 1
	_, err := New(cfg, memdb.New(), tokentest.NewResolver(), clockwork.NewFakeClock(), log.NewNoOpLogger(), prometheus.NewRegistry())
	require.ErrorIs(err, registry.ErrUnknownNetwork)

	cfg = config.DefaultConfig()
	_, err = New(cfg, memdb.New(), tokentest.NewResolver(), clockwork.NewFakeClock(), log.NewNoOpLogger(), prometheus.NewRegistry())
	require.ErrorIs(err, token.ErrUnknownToken)
}

func TestBurnWithoutBurnContract(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig()
	tokens := tokentest.NewResolver()
	tokens.AddFungible(common.HexToAddress("0xFde9cad69E98b3Cc8C998a8F2094293cb0bD6911"), tokentest.NewFungible())
	lp, err := New(cfg, memdb.New(), tokens, clockwork.NewFakeClock(), log.NewNoOpLogger(), prometheus.NewRegistry())
	require.NoError(err)
	require.Equal(common.Address{}, lp.Addresses().Burn)

	_, err = lp.BurnForAllocation(context.Background(), u1, 1, 1)
	require.ErrorIs(err, registry.ErrUnknownAlias)
}
