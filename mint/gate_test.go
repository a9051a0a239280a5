// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mint

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
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/launchpad/allocation"
	"github.com/luxfi/launchpad/auth"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/token/tokenmock"
	"github.com/luxfi/launchpad/token/tokentest"
	"github.com/luxfi/launchpad/verifier"
)

const (
	chainID    = 1287
	projectID  = 1
	auctionEnd = 1_700_000_200
)

var (
	invest = common.HexToAddress("0xCd8a64e4736DeA2aFa6d2650B4354df6A82AAdDD")
	owner  = common.HexToAddress("0x0c0ffee")
	alice  = common.HexToAddress("0xa11ce")
	bob    = common.HexToAddress("0xb0b")

	errMintPaused = errors.New("mint paused")
)

type projects map[uint64]*project.Project

func (p projects) Get(id uint64) (*project.Project, error) {
	if proj, ok := p[id]; ok {
		return proj, nil
	}
	return nil, project.ErrUnknownProject
}

type claims map[common.Address]allocation.Claim

func (c claims) Claim(_ uint64, user common.Address) (allocation.Claim, error) {
	if claim, ok := c[user]; ok {
		return claim, nil
	}
	return allocation.Claim{Allocation: new(uint256.Int), Compensation: new(uint256.Int)}, nil
}

func testProject(mintingEnabled bool) projects {
	return projects{
		projectID: {
			ID:             projectID,
			Auction:        project.Window{Start: auctionEnd - 100, End: auctionEnd},
			AuctionSet:     true,
			MintingEnabled: mintingEnabled,
			ClaimToken:     invest,
		},
	}
}

func testClaims() claims {
	return claims{
		alice: {Allocation: uint256.NewInt(416_666), Compensation: uint256.NewInt(4_166)},
	}
}

func newTestGate(clock clockwork.Clock, schedule Schedule, resolver *tokentest.Resolver) *Gate {
	return New(log.NewNoOpLogger(), memdb.New(), clock, Config{ChainID: chainID, Owner: owner}, schedule, testClaims(), resolver)
}

func TestMint(t *testing.T) {
	require := require.New(t)

	claimToken := tokentest.NewClaimToken()
	resolver := tokentest.NewResolver()
	resolver.AddClaimToken(invest, claimToken)
	clock := clockwork.NewFakeClockAt(time.Unix(auctionEnd+1, 0))
	g := newTestGate(clock, testProject(true), resolver)

	tokenID, err := g.Mint(context.Background(), alice, projectID, verifier.Signature{})
	require.NoError(err)
	require.Equal(uint64(1), tokenID)

	_, err = g.Mint(context.Background(), alice, projectID, verifier.Signature{})
	require.ErrorIs(err, ErrAlreadyMinted)

	minted, ok, err := g.Minted(projectID, alice)
	require.NoError(err)
	require.True(ok)
	require.Equal(tokenID, minted)

	receipt, err := g.Receipt(projectID, tokenID)
	require.NoError(err)
	require.Equal(testClaims()[alice], receipt)

	info, err := claimToken.Claim(context.Background(), tokenID)
	require.NoError(err)
	require.Equal(alice, info.Owner)
	require.Equal(uint64(projectID), info.ProjectID)

	_, err = g.Receipt(projectID, tokenID+1)
	require.ErrorIs(err, ErrUnknownReceipt)
}

func TestMintRejects(t *testing.T) {
	tests := []struct {
		name        string
		now         int64
		projects    projects
		user        common.Address
		id          uint64
		expectedErr error
	}{
		{
			name:        "unknown project",
			now:         auctionEnd + 1,
			projects:    testProject(true),
			user:        alice,
			id:          projectID + 1,
			expectedErr: project.ErrUnknownProject,
		},
		{
			name:        "minting disabled",
			now:         auctionEnd + 1,
			projects:    testProject(false),
			user:        alice,
			id:          projectID,
			expectedErr: project.ErrNotInitialized,
		},
		{
			name:        "auction running",
			now:         auctionEnd,
			projects:    testProject(true),
			user:        alice,
			id:          projectID,
			expectedErr: project.ErrPhaseNotStarted,
		},
		{
			name:        "no contribution",
			now:         auctionEnd + 1,
			projects:    testProject(true),
			user:        bob,
			id:          projectID,
			expectedErr: ErrNothingToClaim,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			clock := clockwork.NewFakeClockAt(time.Unix(test.now, 0))
			resolver := tokentest.NewResolver()
			resolver.AddClaimToken(invest, tokentest.NewClaimToken())
			g := newTestGate(clock, test.projects, resolver)

			_, err := g.Mint(context.Background(), test.user, test.id, verifier.Signature{})
			require.ErrorIs(err, test.expectedErr)

			_, ok, err := g.Minted(test.id, test.user)
			require.NoError(err)
			require.False(ok)
		})
	}
}

func TestMintTokenFailure(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)

	claimToken := tokenmock.NewClaimToken(ctrl)
	gomock.InOrder(
		claimToken.EXPECT().Mint(gomock.Any(), uint64(projectID), alice).Return(uint64(0), errMintPaused),
		claimToken.EXPECT().Mint(gomock.Any(), uint64(projectID), alice).Return(uint64(7), nil),
	)
	resolver := tokentest.NewResolver()
	resolver.AddClaimToken(invest, claimToken)
	clock := clockwork.NewFakeClockAt(time.Unix(auctionEnd+1, 0))
	g := newTestGate(clock, testProject(true), resolver)

	_, err := g.Mint(context.Background(), alice, projectID, verifier.Signature{})
	require.ErrorIs(err, errMintPaused)

	tokenID, err := g.Mint(context.Background(), alice, projectID, verifier.Signature{})
	require.NoError(err)
	require.Equal(uint64(7), tokenID)
}

func TestMintWithKYCVerifier(t *testing.T) {
	require := require.New(t)

	key, err := crypto.GenerateKey()
	require.NoError(err)
	kyc := verifier.NewSigner(key)
	other, err := crypto.GenerateKey()
	require.NoError(err)

	claimToken := tokentest.NewClaimToken()
	resolver := tokentest.NewResolver()
	resolver.AddClaimToken(invest, claimToken)
	clock := clockwork.NewFakeClockAt(time.Unix(auctionEnd+1, 0))
	g := New(
		log.NewNoOpLogger(),
		memdb.New(),
		clock,
		Config{ChainID: chainID, Owner: owner, KYCVerifier: kyc.Address()},
		testProject(true),
		testClaims(),
		resolver,
	)

	addr, err := g.KYCVerifier()
	require.NoError(err)
	require.Equal(kyc.Address(), addr)

	payload := verifier.MintPayload(alice, invest, projectID, chainID)
	forged, err := verifier.NewSigner(other).Sign(payload)
	require.NoError(err)
	_, err = g.Mint(context.Background(), alice, projectID, forged)
	require.ErrorIs(err, verifier.ErrInvalidSignature)

	wrongProject, err := kyc.Sign(verifier.MintPayload(alice, invest, projectID+1, chainID))
	require.NoError(err)
	_, err = g.Mint(context.Background(), alice, projectID, wrongProject)
	require.ErrorIs(err, verifier.ErrInvalidSignature)

	_, ok, err := g.Minted(projectID, alice)
	require.NoError(err)
	require.False(ok)

	sig, err := kyc.Sign(payload)
	require.NoError(err)
	tokenID, err := g.Mint(context.Background(), alice, projectID, sig)
	require.NoError(err)
	require.Equal(uint64(1), tokenID)
}

func TestSetKYCVerifier(t *testing.T) {
	require := require.New(t)

	key, err := crypto.GenerateKey()
	require.NoError(err)
	kyc := verifier.NewSigner(key)

	resolver := tokentest.NewResolver()
	resolver.AddClaimToken(invest, tokentest.NewClaimToken())
	clock := clockwork.NewFakeClockAt(time.Unix(auctionEnd+1, 0))
	g := newTestGate(clock, testProject(true), resolver)

	require.ErrorIs(g.SetKYCVerifier(alice, kyc.Address()), auth.ErrUnauthorized)
	require.NoError(g.SetKYCVerifier(owner, kyc.Address()))

	_, err = g.Mint(context.Background(), alice, projectID, verifier.Signature{})
	require.ErrorIs(err, verifier.ErrInvalidSignature)

	require.NoError(g.SetKYCVerifier(owner, common.Address{}))
	addr, err := g.KYCVerifier()
	require.NoError(err)
	require.Equal(common.Address{}, addr)

	_, err = g.Mint(context.Background(), alice, projectID, verifier.Signature{})
	require.NoError(err)
}
