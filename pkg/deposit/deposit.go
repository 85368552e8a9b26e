package deposit

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"boost-swap/config"
	"boost-swap/pkg/asset"
)

// Depositor sends a chain's native asset to a deposit address
type Depositor interface {
	// SendDeposit transfers amount, in human units, and returns the tx hash
	SendDeposit(ctx context.Context, address string, amount decimal.Decimal) (string, error)
	// Address is the sending account
	Address() string
}

// Manager creates and caches depositors and RPC clients per chain
type Manager struct {
	config config.DepositConfig

	mu         sync.Mutex
	depositors map[string]Depositor
	clients    map[string]*ethclient.Client
}

// NewManager creates a new deposit manager
func NewManager(cfg config.DepositConfig) *Manager {
	return &Manager{
		config:     cfg,
		depositors: make(map[string]Depositor),
		clients:    make(map[string]*ethclient.Client),
	}
}

// ForChain returns the depositor for a chain name
func (m *Manager) ForChain(chain string) (Depositor, error) {
	c, err := asset.ChainByName(chain)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.depositors[c.Name]; ok {
		return d, nil
	}

	var d Depositor
	switch c.Kind {
	case asset.KindEVM:
		client, err := m.evmClientLocked(c.Name)
		if err != nil {
			return nil, err
		}
		d, err = NewEVMDepositor(client, m.config.EVM.Networks[c.Name])
		if err != nil {
			return nil, fmt.Errorf("failed to create %s depositor: %w", c.Name, err)
		}
	case asset.KindSolana:
		d, err = NewSolanaDepositor(m.config.Solana)
		if err != nil {
			return nil, fmt.Errorf("failed to create solana depositor: %w", err)
		}
	default:
		return nil, fmt.Errorf("auto-deposit not supported for chain: %s", c.Name)
	}

	m.depositors[c.Name] = d
	return d, nil
}

// EVMClient returns a shared RPC client for an EVM chain
func (m *Manager) EVMClient(chain string) (*ethclient.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evmClientLocked(chain)
}

func (m *Manager) evmClientLocked(chain string) (*ethclient.Client, error) {
	if client, ok := m.clients[chain]; ok {
		return client, nil
	}

	network, exists := m.config.EVM.Networks[chain]
	if !exists {
		return nil, fmt.Errorf("network %s not configured", chain)
	}
	if network.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for network %s", chain)
	}

	client, err := ethclient.Dial(network.RPCUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	m.clients[chain] = client
	return client, nil
}

// Confirmations returns the configured confirmation threshold of an EVM
// chain, at least 1
func (m *Manager) Confirmations(chain string) uint64 {
	if n := m.config.EVM.Networks[chain].Confirmations; n > 0 {
		return n
	}
	return 1
}

// EVMChains lists the EVM chains with an RPC endpoint
func (m *Manager) EVMChains() []string {
	chains := make([]string, 0, len(m.config.EVM.Networks))
	for name, network := range m.config.EVM.Networks {
		if network.RPCUrl != "" {
			chains = append(chains, name)
		}
	}
	return chains
}

// Close releases RPC connections
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, client := range m.clients {
		client.Close()
		delete(m.clients, name)
	}
	m.depositors = make(map[string]Depositor)
}
