// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sign produces the verifier signatures the launchpad accepts.
package sign

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/luxfi/launchpad/registry"
	"github.com/luxfi/launchpad/verifier"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "sign",
		Short: "Signs launchpad payloads as a verifier",
	}
	c.AddCommand(
		tierCommand(),
		prefundCommand(),
		auctionCommand(),
		mintCommand(),
	)
	return c
}

func tierCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "tier",
		Short: "Signs a tier claim",
		RunE: func(c *cobra.Command, _ []string) error {
			flags := c.Flags()
			cfg, err := parseCommonFlags(flags, registry.TierWrapper)
			if err != nil {
				return err
			}
			nonce, err := flags.GetUint64(NonceKey)
			if err != nil {
				return err
			}
			level, err := flags.GetUint8(LevelKey)
			if err != nil {
				return err
			}
			payload := verifier.TierPayload(cfg.User, nonce, level, cfg.ChainID, cfg.Ledger)
			return write(c.OutOrStdout(), cfg.Signer, payload)
		},
	}
	flags := c.Flags()
	addCommonFlags(flags)
	flags.Uint64(NonceKey, 0, "Current badge nonce of the user")
	flags.Uint8(LevelKey, 0, "Level the user may claim")
	return c
}

func prefundCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "prefund",
		Short: "Signs a lottery win",
		RunE: func(c *cobra.Command, _ []string) error {
			flags := c.Flags()
			cfg, err := parseCommonFlags(flags, registry.Prefund)
			if err != nil {
				return err
			}
			projectID, err := flags.GetUint64(ProjectIDKey)
			if err != nil {
				return err
			}
			tier, err := flags.GetUint8(TierKey)
			if err != nil {
				return err
			}
			payload := verifier.PrefundPayload(cfg.User, cfg.Ledger, cfg.ChainID, projectID, tier)
			return write(c.OutOrStdout(), cfg.Signer, payload)
		},
	}
	flags := c.Flags()
	addCommonFlags(flags)
	flags.Uint64(ProjectIDKey, 0, "Project the user won")
	flags.Uint8(TierKey, 1, "Prefund tier the user won")
	return c
}

func auctionCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "auction",
		Short: "Signs an auction bid",
		RunE: func(c *cobra.Command, _ []string) error {
			flags := c.Flags()
			cfg, err := parseCommonFlags(flags, registry.Auction)
			if err != nil {
				return err
			}
			projectID, err := flags.GetUint64(ProjectIDKey)
			if err != nil {
				return err
			}
			amount, err := parseAmount(flags)
			if err != nil {
				return err
			}
			payload := verifier.AuctionPayload(cfg.User, cfg.Ledger, projectID, amount, cfg.ChainID)
			return write(c.OutOrStdout(), cfg.Signer, payload)
		},
	}
	flags := c.Flags()
	addCommonFlags(flags)
	flags.Uint64(ProjectIDKey, 0, "Project the user bids in")
	flags.String(AmountKey, "0", "Decimal amount the user may bid")
	return c
}

func mintCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "mint",
		Short: "Signs a KYC mint approval",
		RunE: func(c *cobra.Command, _ []string) error {
			flags := c.Flags()
			cfg, err := parseCommonFlags(flags, registry.Invest)
			if err != nil {
				return err
			}
			projectID, err := flags.GetUint64(ProjectIDKey)
			if err != nil {
				return err
			}
			payload := verifier.MintPayload(cfg.User, cfg.Ledger, projectID, cfg.ChainID)
			return write(c.OutOrStdout(), cfg.Signer, payload)
		},
	}
	flags := c.Flags()
	addCommonFlags(flags)
	flags.Uint64(ProjectIDKey, 0, "Project the user mints in")
	return c
}

func write(w io.Writer, signer *verifier.Signer, payload []byte) error {
	sig, err := signer.Sign(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "signer: %s\nv: %d\nr: 0x%x\ns: 0x%x\n", signer.Address(), sig.V, sig.R, sig.S)
	return err
}
