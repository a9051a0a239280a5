// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines the launchpad configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/launchpad/registry"
	"github.com/luxfi/launchpad/tier"
)

var (
	ErrInvalidChainID  = errors.New("invalid chain id")
	ErrInvalidTierFees = errors.New("invalid tier fees")
	ErrInvalidPort     = errors.New("invalid port")
)

// Config holds the launchpad configuration.
type Config struct {
	// ChainID is signed into every payload and selects the registry network.
	ChainID uint64 `json:"chainId"`

	// Owner administers every ledger.
	Owner common.Address `json:"owner"`
	// ClaimVerifier signs tier claims.
	ClaimVerifier common.Address `json:"claimVerifier"`
	// ProjectVerifier signs lottery wins and auction bids.
	ProjectVerifier common.Address `json:"projectVerifier"`
	// KYCVerifier signs mint approvals. Mints need none while it is zero.
	KYCVerifier common.Address `json:"kycVerifier"`

	// TierFees are the decimal fees of levels 0..3, paid in crowns.
	TierFees []string `json:"tierFees"`

	// Registry holds the contract addresses per network.
	Registry registry.Table `json:"registry"`

	HTTPHost string `json:"httpHost"`
	HTTPPort uint16 `json:"httpPort"`
	// HTTPAllowedOrigins are the CORS origins the API answers.
	HTTPAllowedOrigins []string `json:"httpAllowedOrigins"`
	// HTTPAllowedHosts are the Host headers accepted besides IPs. "*" allows
	// any host.
	HTTPAllowedHosts []string `json:"httpAllowedHosts"`

	// AdminAPIEnabled serves the owner and editor operations and the token
	// faucet. Callers name themselves there, so only enable it on nodes
	// nobody else can reach.
	AdminAPIEnabled bool `json:"adminApiEnabled"`
}

// DefaultConfig returns the moonbase alpha configuration.
func DefaultConfig() Config {
	return Config{
		ChainID: 1287,
		TierFees: []string{
			"1000000000000000000",  // 1 CWS
			"5000000000000000000",  // 5 CWS
			"10000000000000000000", // 10 CWS
			"20000000000000000000", // 20 CWS
		},
		Registry: registry.DefaultTable(),
		HTTPHost: "127.0.0.1",
		HTTPPort: 9660,

		HTTPAllowedOrigins: []string{"*"},
		HTTPAllowedHosts:   []string{"localhost"},
	}
}

// ParseConfig overlays JSON bytes on the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the config file at path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// Verify checks the configuration is usable.
func (c *Config) Verify() error {
	if c.ChainID == 0 {
		return ErrInvalidChainID
	}
	if _, err := c.Fees(); err != nil {
		return err
	}
	r, err := c.NewRegistry()
	if err != nil {
		return err
	}
	if _, err := r.AddressOf(c.ChainID, registry.Auction); err != nil {
		return err
	}
	if c.HTTPPort == 0 {
		return ErrInvalidPort
	}
	return nil
}

// Fees parses TierFees.
func (c *Config) Fees() ([tier.NumLevels]*uint256.Int, error) {
	var fees [tier.NumLevels]*uint256.Int
	if len(c.TierFees) != tier.NumLevels {
		return fees, fmt.Errorf("%w: %d fees for %d levels", ErrInvalidTierFees, len(c.TierFees), tier.NumLevels)
	}
	for i, s := range c.TierFees {
		fee, err := uint256.FromDecimal(s)
		if err != nil {
			return fees, fmt.Errorf("%w: level %d fee %q: %w", ErrInvalidTierFees, i, s, err)
		}
		fees[i] = fee
	}
	return fees, nil
}

// NewRegistry builds the address registry from Registry.
func (c *Config) NewRegistry() (*registry.Registry, error) {
	return registry.New(c.Registry)
}
