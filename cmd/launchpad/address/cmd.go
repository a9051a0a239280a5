// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package address

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/launchpad/config"
	"github.com/luxfi/launchpad/registry"
)

const (
	ConfigFileKey = "config-file"
	ChainIDKey    = "chain-id"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "address [alias]",
		Short: "Looks up contract addresses in the registry",
		Long:  "Prints the address deployed under alias, or every deployed alias when none is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  addressFunc,
	}
	flags := c.Flags()
	flags.String(ConfigFileKey, "", "JSON config file holding the registry; defaults are used when unset")
	flags.Uint64(ChainIDKey, config.DefaultConfig().ChainID, "Network to look up")
	return c
}

func addressFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	path, err := flags.GetString(ConfigFileKey)
	if err != nil {
		return err
	}
	chainID, err := flags.GetUint64(ChainIDKey)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	r, err := cfg.NewRegistry()
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	if len(args) == 1 {
		addr, err := r.AddressOf(chainID, args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, addr)
		return err
	}

	for _, alias := range registry.Aliases() {
		addr, err := r.AddressOf(chainID, alias)
		if errors.Is(err, registry.ErrUnknownAlias) {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%-15s %s\n", alias, addr); err != nil {
			return err
		}
	}
	return nil
}
