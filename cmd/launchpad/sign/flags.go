// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sign

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/spf13/pflag"

	"github.com/luxfi/launchpad/registry"
	"github.com/luxfi/launchpad/verifier"
)

const (
	PrivateKeyKey = "private-key"
	ChainIDKey    = "chain-id"
	LedgerKey     = "ledger"
	UserKey       = "user"
	NonceKey      = "nonce"
	LevelKey      = "level"
	ProjectIDKey  = "project-id"
	TierKey       = "tier"
	AmountKey     = "amount"
)

var (
	errMissingPrivateKey = errors.New("missing private key")
	errInvalidAddress    = errors.New("invalid address")
)

func addCommonFlags(flags *pflag.FlagSet) {
	flags.String(PrivateKeyKey, "", "Hex encoded verifier private key (required)")
	flags.Uint64(ChainIDKey, 1287, "Chain id the signature is bound to")
	flags.String(LedgerKey, "", "Ledger address the signature is bound to; defaults to the registry entry")
	flags.String(UserKey, "", "Address the signature authorizes (required)")
}

type commonConfig struct {
	Signer  *verifier.Signer
	ChainID uint64
	Ledger  common.Address
	User    common.Address
}

// parseCommonFlags reads the flags shared by every payload. The ledger falls
// back to alias in the default registry.
func parseCommonFlags(flags *pflag.FlagSet, alias string) (*commonConfig, error) {
	keyStr, err := flags.GetString(PrivateKeyKey)
	if err != nil {
		return nil, err
	}
	if keyStr == "" {
		return nil, errMissingPrivateKey
	}
	signer, err := verifier.NewSignerFromHex(keyStr)
	if err != nil {
		return nil, err
	}

	chainID, err := flags.GetUint64(ChainIDKey)
	if err != nil {
		return nil, err
	}

	ledger, err := parseAddress(flags, LedgerKey)
	if err != nil {
		return nil, err
	}
	if ledger == (common.Address{}) {
		ledger, err = registry.Default().AddressOf(chainID, alias)
		if err != nil {
			return nil, err
		}
	}

	user, err := parseAddress(flags, UserKey)
	if err != nil {
		return nil, err
	}
	if user == (common.Address{}) {
		return nil, fmt.Errorf("%w: --%s is required", errInvalidAddress, UserKey)
	}

	return &commonConfig{
		Signer:  signer,
		ChainID: chainID,
		Ledger:  ledger,
		User:    user,
	}, nil
}

func parseAddress(flags *pflag.FlagSet, key string) (common.Address, error) {
	s, err := flags.GetString(key)
	if err != nil {
		return common.Address{}, err
	}
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: --%s %q", errInvalidAddress, key, s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(flags *pflag.FlagSet) (*uint256.Int, error) {
	s, err := flags.GetString(AmountKey)
	if err != nil {
		return nil, err
	}
	return uint256.FromDecimal(s)
}
