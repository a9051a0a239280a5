// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/launchpad"
	"github.com/luxfi/launchpad/api"
	"github.com/luxfi/launchpad/api/admin"
	"github.com/luxfi/launchpad/api/server"
	"github.com/luxfi/launchpad/config"
	"github.com/luxfi/launchpad/registry"
	"github.com/luxfi/launchpad/token/tokentest"
)

const (
	apiRoute     = "launchpad"
	adminRoute   = "admin"
	metricsRoute = "metrics"

	shutdownTimeout = 5 * time.Second
)

var httpConfig = server.HTTPConfig{
	ReadTimeout:       30 * time.Second,
	ReadHeaderTimeout: 10 * time.Second,
	WriteTimeout:      30 * time.Second,
	IdleTimeout:       120 * time.Second,
}

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serves an in-memory development launchpad over JSON-RPC",
		RunE:  serveFunc,
	}
	AddFlags(c.Flags())
	return c
}

func serveFunc(c *cobra.Command, _ []string) error {
	cfg, err := ParseFlags(c.Flags())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.HTTPHost, strconv.Itoa(int(cfg.HTTPPort)))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	logger := log.NewLogger("launchpad")
	s, err := NewServer(cfg, logger, listener)
	if err != nil {
		_ = listener.Close()
		return err
	}

	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		logger.Info("serving launchpad API", log.String("address", addr))
		if err := s.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down launchpad API")
		return s.Shutdown()
	})
	return g.Wait()
}

// NewServer builds a development launchpad over an in-memory database and
// token world and routes its API and metrics on listener. State is lost on
// shutdown. With AdminAPIEnabled the admin API and a token faucet are routed
// too.
func NewServer(cfg config.Config, logger log.Logger, listener net.Listener) (*server.Server, error) {
	r, err := cfg.NewRegistry()
	if err != nil {
		return nil, err
	}
	tokens, fungibles, err := newTokens(r, cfg.ChainID)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}

	lp, err := launchpad.New(cfg, memdb.New(), tokens, clockwork.NewRealClock(), logger, reg)
	if err != nil {
		return nil, err
	}
	apiHandler, err := api.NewHandler(lp, logger, reg)
	if err != nil {
		return nil, err
	}

	s, err := server.New(
		logger,
		listener,
		cfg.HTTPAllowedOrigins,
		cfg.HTTPAllowedHosts,
		shutdownTimeout,
		reg,
		httpConfig,
	)
	if err != nil {
		return nil, err
	}
	if err := s.AddRoute(apiHandler, apiRoute); err != nil {
		return nil, err
	}
	if cfg.AdminAPIEnabled {
		addrs := lp.Addresses()
		adminHandler, err := admin.NewService(lp, &faucet{
			tokens:   fungibles,
			spenders: []common.Address{addrs.Tier, addrs.Prefund, addrs.Auction},
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := s.AddRoute(adminHandler, adminRoute); err != nil {
			return nil, err
		}
	}
	if err := s.AddRoute(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metricsRoute); err != nil {
		return nil, err
	}
	return s, nil
}

// newTokens backs every token alias of the network with an in-memory token.
func newTokens(r *registry.Registry, chainID uint64) (*tokentest.Resolver, []*tokentest.Fungible, error) {
	var (
		tokens    = tokentest.NewResolver()
		fungibles []*tokentest.Fungible
	)
	for _, alias := range []string{registry.Crowns, registry.USDC} {
		addr, err := r.AddressOf(chainID, alias)
		if err != nil {
			return nil, nil, err
		}
		f := tokentest.NewFungible()
		tokens.AddFungible(addr, f)
		fungibles = append(fungibles, f)
	}
	addr, err := r.AddressOf(chainID, registry.Invest)
	if err != nil {
		return nil, nil, err
	}
	tokens.AddClaimToken(addr, tokentest.NewClaimToken())

	addr, err = r.AddressOf(chainID, registry.Gift)
	if err != nil {
		return nil, nil, err
	}
	tokens.AddGiftMinter(addr, tokentest.NewGiftMinter())
	return tokens, fungibles, nil
}
