// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"github.com/spf13/pflag"

	"github.com/luxfi/launchpad/config"
)

const (
	ConfigFileKey = "config-file"
	ChainIDKey    = "chain-id"
	HTTPHostKey   = "http-host"
	HTTPPortKey   = "http-port"

	AdminAPIEnabledKey = "admin-api-enabled"
)

func AddFlags(flags *pflag.FlagSet) {
	defaults := config.DefaultConfig()
	flags.String(ConfigFileKey, "", "JSON config file; defaults are used when unset")
	flags.Uint64(ChainIDKey, defaults.ChainID, "Chain id signed into payloads")
	flags.String(HTTPHostKey, defaults.HTTPHost, "Host the API listens on")
	flags.Uint16(HTTPPortKey, defaults.HTTPPort, "Port the API listens on")
	flags.Bool(AdminAPIEnabledKey, defaults.AdminAPIEnabled, "Serve the unauthenticated admin API and token faucet")
}

// ParseFlags loads the config file, if any, and applies the flags that were
// set explicitly on top of it.
func ParseFlags(flags *pflag.FlagSet) (config.Config, error) {
	path, err := flags.GetString(ConfigFileKey)
	if err != nil {
		return config.Config{}, err
	}
	cfg := config.DefaultConfig()
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}

	if flags.Changed(ChainIDKey) {
		if cfg.ChainID, err = flags.GetUint64(ChainIDKey); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed(HTTPHostKey) {
		if cfg.HTTPHost, err = flags.GetString(HTTPHostKey); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed(HTTPPortKey) {
		if cfg.HTTPPort, err = flags.GetUint16(HTTPPortKey); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed(AdminAPIEnabledKey) {
		if cfg.AdminAPIEnabled, err = flags.GetBool(AdminAPIEnabledKey); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, cfg.Verify()
}
