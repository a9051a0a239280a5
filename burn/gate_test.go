// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package burn

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/launchpad/allocation"
	"github.com/luxfi/launchpad/auth"
	"github.com/luxfi/launchpad/mint"
	"github.com/luxfi/launchpad/project"
	"github.com/luxfi/launchpad/token"
	"github.com/luxfi/launchpad/token/tokenmock"
	"github.com/luxfi/launchpad/token/tokentest"
)

const projectID = 2

var (
	burnAddr   = common.HexToAddress("0xb042")
	crownsAddr = common.HexToAddress("0xFde9cad69E98b3Cc8C998a8F2094293cb0bD6911")
	pccAddr    = common.HexToAddress("0x9cc")
	investAddr = common.HexToAddress("0xCd8a64e4736DeA2aFa6d2650B4354df6A82AAdDD")
	alice      = common.HexToAddress("0xa11ce")
	bob        = common.HexToAddress("0xb0b")

	errTransferPaused = errors.New("transfer paused")
)

type projects map[uint64]*project.Project

func (p projects) Get(id uint64) (*project.Project, error) {
	if proj, ok := p[id]; ok {
		return proj, nil
	}
	return nil, fmt.Errorf("%w: %d", project.ErrUnknownProject, id)
}

type receipts map[uint64]allocation.Claim

func (r receipts) Receipt(_ uint64, tokenID uint64) (allocation.Claim, error) {
	claim, ok := r[tokenID]
	if !ok {
		return allocation.Claim{}, mint.ErrUnknownReceipt
	}
	return claim, nil
}

type env struct {
	claims   *tokentest.ClaimToken
	crowns   *tokentest.Fungible
	pcc      *tokentest.Fungible
	tokens   *tokentest.Resolver
	projects projects
	gate     *Gate
}

// newEnv mints token 1 to alice and token 2 to bob.
func newEnv(t *testing.T) *env {
	require := require.New(t)

	claims := tokentest.NewClaimToken()
	crowns := tokentest.NewFungible()
	pcc := tokentest.NewFungible()
	crowns.Mint(burnAddr, uint256.NewInt(10_000))
	pcc.Mint(burnAddr, uint256.NewInt(2_000_000))

	tokens := tokentest.NewResolver()
	tokens.AddClaimToken(investAddr, claims)
	tokens.AddFungible(crownsAddr, crowns)
	tokens.AddFungible(pccAddr, pcc)

	for _, user := range []common.Address{alice, bob} {
		_, err := claims.Mint(context.Background(), projectID, user)
		require.NoError(err)
	}

	projects := projects{
		projectID: {
			ID:             projectID,
			MintingEnabled: true,
			ClaimToken:     investAddr,
			ProjectToken:   pccAddr,
		},
	}
	gate := New(
		log.NewNoOpLogger(),
		memdb.New(),
		Config{Address: burnAddr, Collateral: crownsAddr},
		projects,
		receipts{
			1: {Allocation: uint256.NewInt(416_666), Compensation: uint256.NewInt(4_166)},
			2: {Allocation: uint256.NewInt(833_333), Compensation: uint256.NewInt(0)},
		},
		tokens,
	)
	return &env{
		claims:   claims,
		crowns:   crowns,
		pcc:      pcc,
		tokens:   tokens,
		projects: projects,
		gate:     gate,
	}
}

func TestBurnForAllocation(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	paid, err := e.gate.BurnForAllocation(context.Background(), alice, projectID, 1)
	require.NoError(err)
	require.Equal(uint256.NewInt(416_666), paid)
	require.Equal(uint256.NewInt(416_666), e.pcc.Balance(alice))
	require.True(e.crowns.Balance(alice).IsZero())

	_, err = e.claims.Claim(context.Background(), 1)
	require.ErrorIs(err, token.ErrUnknownTokenID)

	kind, ok, err := e.gate.Burned(projectID, 1)
	require.NoError(err)
	require.True(ok)
	require.Equal(ForAllocation, kind)

	_, err = e.gate.BurnForCompensation(context.Background(), alice, projectID, 1)
	require.ErrorIs(err, ErrAlreadyBurned)

	total, err := e.gate.Paid(projectID, ForAllocation)
	require.NoError(err)
	require.Equal(uint256.NewInt(416_666), total)
}

func TestBurnForCompensation(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	paid, err := e.gate.BurnForCompensation(context.Background(), alice, projectID, 1)
	require.NoError(err)
	require.Equal(uint256.NewInt(4_166), paid)
	require.Equal(uint256.NewInt(4_166), e.crowns.Balance(alice))
	require.Equal(uint256.NewInt(5_834), e.crowns.Balance(burnAddr))

	// Nothing to pay still burns the token.
	paid, err = e.gate.BurnForCompensation(context.Background(), bob, projectID, 2)
	require.NoError(err)
	require.True(paid.IsZero())
	kind, ok, err := e.gate.Burned(projectID, 2)
	require.NoError(err)
	require.True(ok)
	require.Equal(ForCompensation, kind)

	total, err := e.gate.Paid(projectID, ForCompensation)
	require.NoError(err)
	require.Equal(uint256.NewInt(4_166), total)
	total, err = e.gate.Paid(projectID, ForAllocation)
	require.NoError(err)
	require.True(total.IsZero())
}

func TestBurnRejects(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*testing.T, *env)
		user        common.Address
		id          uint64
		tokenID     uint64
		kind        Kind
		expectedErr error
	}{
		{
			name:        "unknown project",
			user:        alice,
			id:          projectID + 1,
			tokenID:     1,
			kind:        ForAllocation,
			expectedErr: project.ErrUnknownProject,
		},
		{
			name:        "not the owner",
			user:        bob,
			id:          projectID,
			tokenID:     1,
			kind:        ForCompensation,
			expectedErr: auth.ErrUnauthorized,
		},
		{
			name:        "unknown token",
			user:        alice,
			id:          projectID,
			tokenID:     9,
			kind:        ForCompensation,
			expectedErr: token.ErrUnknownTokenID,
		},
		{
			name: "token of another project",
			setup: func(t *testing.T, e *env) {
				_, err := e.claims.Mint(context.Background(), projectID+1, alice)
				require.NoError(t, err)
			},
			user:        alice,
			id:          projectID,
			tokenID:     3,
			kind:        ForCompensation,
			expectedErr: ErrProjectMismatch,
		},
		{
			name: "project token not set",
			setup: func(_ *testing.T, e *env) {
				e.projects[projectID].ProjectToken = common.Address{}
			},
			user:        alice,
			id:          projectID,
			tokenID:     1,
			kind:        ForAllocation,
			expectedErr: project.ErrNotInitialized,
		},
		{
			name: "transferred token",
			setup: func(t *testing.T, e *env) {
				require.NoError(t, e.claims.TransferClaim(1, bob))
			},
			user:        alice,
			id:          projectID,
			tokenID:     1,
			kind:        ForAllocation,
			expectedErr: auth.ErrUnauthorized,
		},
		{
			name: "gate out of collateral",
			setup: func(t *testing.T, e *env) {
				require.NoError(t, e.crowns.Transfer(context.Background(), burnAddr, bob, uint256.NewInt(10_000)))
			},
			user:        alice,
			id:          projectID,
			tokenID:     1,
			kind:        ForCompensation,
			expectedErr: token.ErrInsufficientBalance,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			e := newEnv(t)
			if test.setup != nil {
				test.setup(t, e)
			}

			burn := e.gate.BurnForAllocation
			if test.kind == ForCompensation {
				burn = e.gate.BurnForCompensation
			}
			_, err := burn(context.Background(), test.user, test.id, test.tokenID)
			require.ErrorIs(err, test.expectedErr)

			_, ok, err := e.gate.Burned(test.id, test.tokenID)
			require.NoError(err)
			require.False(ok)
		})
	}
}

func TestBurnPaymentFailure(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	e := newEnv(t)

	pcc := tokenmock.NewFungible(ctrl)
	gomock.InOrder(
		pcc.EXPECT().BalanceOf(gomock.Any(), burnAddr).Return(uint256.NewInt(2_000_000), nil),
		pcc.EXPECT().Transfer(gomock.Any(), burnAddr, alice, uint256.NewInt(416_666)).Return(errTransferPaused),
	)
	e.tokens.AddFungible(pccAddr, pcc)

	_, err := e.gate.BurnForAllocation(context.Background(), alice, projectID, 1)
	require.ErrorIs(err, errTransferPaused)

	_, ok, err := e.gate.Burned(projectID, 1)
	require.NoError(err)
	require.False(ok)
}
