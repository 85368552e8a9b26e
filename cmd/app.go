package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"boost-swap/config"
	"boost-swap/pkg/asset"
	"boost-swap/pkg/boost"
	"boost-swap/pkg/client"
	"boost-swap/pkg/deposit"
	"boost-swap/pkg/leg/atomic"
	"boost-swap/pkg/leg/dex"
	"boost-swap/pkg/log"
	"boost-swap/pkg/poll"
	"boost-swap/pkg/runner"
	"boost-swap/pkg/store"
	"boost-swap/pkg/swap"
)

// app wires the provider, its legs and the swap store from configuration
type app struct {
	cfg      *config.Config
	network  swap.Network
	provider *boost.Provider
	store    *store.Storage
	deposits *deposit.Manager
}

func newApp(cfg *config.Config) (*app, error) {
	deposits := deposit.NewManager(cfg.Deposit)

	agents := make(map[swap.Network]atomic.Agent)
	if cfg.Agent.Mainnet != "" {
		agents[swap.Mainnet] = client.NewAgentClient(cfg.Agent.Mainnet, cfg.Agent.Timeout)
	}
	if cfg.Agent.Testnet != "" {
		agents[swap.Testnet] = client.NewAgentClient(cfg.Agent.Testnet, cfg.Agent.Timeout)
	}

	var atomicOpts []atomic.Option
	for _, chain := range deposits.EVMChains() {
		rpc, err := deposits.EVMClient(chain)
		if err != nil {
			log.Warn("claim confirmations fall back to the agent", "chain", chain, "err", err)
			continue
		}
		atomicOpts = append(atomicOpts, atomic.WithReceiptReader(chain, rpc, deposits.Confirmations(chain)))
	}
	legOne := atomic.New(agents, atomicOpts...)

	// 1Click only routes on mainnet
	routers := map[swap.Network]dex.Router{
		swap.Mainnet: client.NewOneClickClient(cfg.OneClick.JWTToken),
	}
	var dexOpts []dex.Option
	for chain, address := range cfg.Wallet.Addresses {
		dexOpts = append(dexOpts, dex.WithAccount(chain, address))
	}
	legTwo := dex.New(routers, deposits, dexOpts...)

	provider, err := boost.New(legOne, legTwo, boost.WithHandoffPolling(poll.Options{
		Interval:    cfg.Poll.Handoff,
		Jitter:      cfg.Poll.Jitter,
		MaxAttempts: cfg.Poll.MaxAttempts,
	}))
	if err != nil {
		deposits.Close()
		return nil, fmt.Errorf("failed to build provider: %w", err)
	}

	swaps, err := store.NewStorage(cfg.StorePath)
	if err != nil {
		deposits.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		network:  swap.Network(cfg.Network),
		provider: provider,
		store:    swaps,
		deposits: deposits,
	}, nil
}

func mustApp() *app {
	a, err := newApp(cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	return a
}

func (a *app) close() {
	a.deposits.Close()
}

func (a *app) runner(observer runner.Observer) *runner.Runner {
	return runner.New(a.provider, a.store,
		runner.WithInterval(a.cfg.Poll.Interval),
		runner.WithObserver(observer),
	)
}

// account returns the configured wallet address on the chain of an asset
func (a *app) account(code string) string {
	c, err := asset.ChainOf(code)
	if err != nil {
		return ""
	}
	return a.cfg.Wallet.Addresses[c.Name]
}

// feePrices reads the configured fee prices of the chain paying for an
// asset's transactions
func (a *app) feePrices(code string) (swap.FeePrices, error) {
	c, err := asset.ChainOf(code)
	if err != nil {
		return nil, err
	}

	configured, ok := a.cfg.FeePrices[c.Name]
	if !ok {
		return nil, fmt.Errorf("fee prices not configured for %s", c.Name)
	}

	prices := make(swap.FeePrices, len(configured))
	for level, raw := range configured {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s fee price for %s: %w", level, c.Name, err)
		}
		prices[level] = price
	}
	return prices, nil
}

func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
