// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luxfi/launchpad/cmd/launchpad/address"
	"github.com/luxfi/launchpad/cmd/launchpad/serve"
	"github.com/luxfi/launchpad/cmd/launchpad/sign"
)

func init() {
	cobra.EnablePrefixMatching = true
}

func main() {
	cmd := &cobra.Command{
		Use:   "launchpad",
		Short: "Runs and operates a tiered launchpad",
	}
	cmd.AddCommand(
		serve.Command(),
		sign.Command(),
		address.Command(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "command failed %v\n", err)
		os.Exit(1)
	}
}
