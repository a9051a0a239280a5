// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/launchpad/token/tokentest"
)

// faucet credits the in-memory fungible tokens and approves the launchpad
// ledgers to spend them.
type faucet struct {
	tokens   []*tokentest.Fungible
	spenders []common.Address
}

func (f *faucet) Fund(user common.Address, amount *uint256.Int) error {
	for _, token := range f.tokens {
		token.Mint(user, amount)
		for _, spender := range f.spenders {
			allowance := token.Allowance(user, spender)
			token.Approve(user, spender, allowance.Add(allowance, amount))
		}
	}
	return nil
}
