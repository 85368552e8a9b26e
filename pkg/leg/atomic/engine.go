// Package atomic swaps a native asset for another native asset through a
// market maker agent using hash time locked escrows on both chains.
package atomic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"boost-swap/pkg/asset"
	"boost-swap/pkg/client"
	"boost-swap/pkg/log"
	"boost-swap/pkg/swap"
)

// Fields stored in Swap.Extra
const (
	FieldOrderID                 = "orderId"
	FieldExpiresAt               = "expiresAt"
	FieldFromCounterPartyAddress = "fromCounterPartyAddress"
	FieldToCounterPartyAddress   = "toCounterPartyAddress"
	FieldFromFundHash            = "fromFundHash"
	FieldToFundHash              = "toFundHash"
	FieldToClaimHash             = "toClaimHash"
	FieldFromRefundHash          = "fromRefundHash"
	FieldClaimConfirmations      = "claimConfirmations"
)

// Agent is the market maker API
type Agent interface {
	GetMarketInfo(ctx context.Context) ([]client.MarketInfo, error)
	CreateOrder(ctx context.Context, from, to string, fromAmount decimal.Decimal) (*client.Order, error)
	GetOrder(ctx context.Context, id string) (*client.Order, error)
}

// ReceiptReader reads transaction receipts. ethclient.Client implements it.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

type receiptSource struct {
	reader        ReceiptReader
	confirmations uint64
}

// Engine is the atomic swap leg
type Engine struct {
	agents   map[swap.Network]Agent
	receipts map[string]receiptSource
	now      func() time.Time
}

// Option customises an Engine
type Option func(*Engine)

// WithReceiptReader confirms claims on chain through reader instead of
// trusting the agent
func WithReceiptReader(chain string, reader ReceiptReader, confirmations uint64) Option {
	return func(e *Engine) {
		if confirmations == 0 {
			confirmations = 1
		}
		e.receipts[chain] = receiptSource{reader: reader, confirmations: confirmations}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates the engine with one agent per network
func New(agents map[swap.Network]Agent, opts ...Option) *Engine {
	e := &Engine{
		agents:   agents,
		receipts: make(map[string]receiptSource),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) agent(network swap.Network) (Agent, error) {
	a, ok := e.agents[network]
	if !ok || a == nil {
		return nil, fmt.Errorf("no agent configured for %s", network)
	}
	return a, nil
}

// Statuses returns the atomic swap statuses
func (e *Engine) Statuses() swap.StatusTable {
	return statuses
}

// TxTypes returns the atomic swap transaction types
func (e *Engine) TxTypes() swap.TxTypes {
	return txTypes
}

// GetQuote prices amount (human units) of from at the agent's rate. It
// returns nil when the agent has no such market or the amount is out of
// its bounds.
func (e *Engine) GetQuote(ctx context.Context, network swap.Network, from, to string, amount decimal.Decimal) (*swap.Quote, error) {
	if asset.IsToken(from) || asset.IsToken(to) {
		return nil, nil
	}

	agent, err := e.agent(network)
	if err != nil {
		return nil, err
	}

	markets, err := agent.GetMarketInfo(ctx)
	if err != nil {
		return nil, err
	}

	var market *client.MarketInfo
	for i := range markets {
		if markets[i].From == from && markets[i].To == to {
			market = &markets[i]
			break
		}
	}
	if market == nil {
		return nil, nil
	}
	if amount.LessThan(market.Min) || (market.Max.IsPositive() && amount.GreaterThan(market.Max)) {
		log.Debug("amount outside market bounds", "from", from, "to", to, "amount", amount, "min", market.Min, "max", market.Max)
		return nil, nil
	}

	fromAmount, err := asset.CurrencyToUnit(from, amount)
	if err != nil {
		return nil, err
	}
	toAmount, err := asset.CurrencyToUnit(to, amount.Mul(market.Rate))
	if err != nil {
		return nil, err
	}

	return &swap.Quote{
		From:       from,
		To:         to,
		FromAmount: fromAmount,
		ToAmount:   toAmount,
	}, nil
}

// NewSwap opens an order with the agent
func (e *Engine) NewSwap(ctx context.Context, network swap.Network, walletID string, quote swap.Quote) (*swap.Swap, error) {
	agent, err := e.agent(network)
	if err != nil {
		return nil, err
	}

	order, err := agent.CreateOrder(ctx, quote.From, quote.To, quote.FromAmount)
	if err != nil {
		return nil, err
	}

	toAmount := quote.ToAmount
	if order.ToAmount.IsPositive() {
		toAmount = order.ToAmount
	}

	s := &swap.Swap{
		ID:            uuid.New().String(),
		Status:        StatusInitiated,
		From:          quote.From,
		To:            quote.To,
		FromAmount:    quote.FromAmount,
		ToAmount:      toAmount,
		FromAccountID: quote.FromAccountID,
		ToAccountID:   quote.ToAccountID,
		Network:       network,
		WalletID:      walletID,
		StartTime:     e.now(),
		Extra:         orderFields(order),
	}
	s.Extra[FieldOrderID] = order.ID
	if order.ExpiresAt > 0 {
		s.Extra[FieldExpiresAt] = strconv.FormatInt(order.ExpiresAt, 10)
	}
	s.Extra[FieldFromCounterPartyAddress] = order.FromCounterPartyAddress
	s.Extra[FieldToCounterPartyAddress] = order.ToCounterPartyAddress

	log.Info("atomic swap order created", "swap", s.ID, "order", order.ID, "from", s.From, "to", s.To)
	return s, nil
}

// PerformNextSwapAction moves the swap forward according to the agent's view
// of the order
func (e *Engine) PerformNextSwapAction(ctx context.Context, store swap.Store, network swap.Network, walletID string, s *swap.Swap) (*swap.Update, error) {
	if statuses.IsTerminal(s.Status) || !statuses.Has(s.Status) {
		return nil, nil
	}
	if s.Status == StatusWaitingForClaimConfirmations {
		return e.WaitForClaimConfirmations(ctx, s, network, walletID)
	}

	agent, err := e.agent(network)
	if err != nil {
		return nil, err
	}
	orderID := s.Field(FieldOrderID)
	if orderID == "" {
		return nil, fmt.Errorf("swap %s has no agent order", s.ID)
	}

	order, err := agent.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next := e.nextStatus(s, order)
	if next == "" || !forward(s.Status, next) {
		return nil, nil
	}

	u := &swap.Update{Status: next, Fields: orderFields(order)}
	if next == StatusReadyToClaim && order.ToAmount.IsPositive() && !order.ToAmount.Equal(s.ToAmount) {
		amount := order.ToAmount
		u.ToAmount = &amount
	}
	if statuses.IsTerminal(next) {
		end := e.now()
		u.EndTime = &end
	}
	return u, nil
}

func (e *Engine) nextStatus(s *swap.Swap, order *client.Order) string {
	expired := order.Expired(e.now())

	switch order.Status {
	case client.OrderQuoteExpired:
		if s.Status == StatusInitiated {
			return StatusQuoteExpired
		}
	case client.OrderAgentRefunded:
		if rank[s.Status] < rank[StatusWaitingForClaimConfirmations] {
			return StatusWaitingForRefund
		}
	case client.OrderUserRefunded:
		return StatusRefunded
	}

	switch s.Status {
	case StatusInitiated:
		if order.FromFundHash != "" {
			return StatusInitiationReported
		}
		if expired {
			return StatusQuoteExpired
		}
	case StatusInitiationReported:
		if agentSawFunding(order.Status) {
			return StatusInitiationConfirmed
		}
	case StatusInitiationConfirmed:
		// native escrows are funded by the initiation itself
		return StatusFunded
	case StatusFunded:
		if order.ToFundHash != "" {
			return StatusConfirmCounterPartyInitiation
		}
		if expired {
			return StatusWaitingForRefund
		}
	case StatusConfirmCounterPartyInitiation:
		if agentFunded(order.Status) {
			return StatusReadyToClaim
		}
		if expired {
			return StatusWaitingForRefund
		}
	case StatusReadyToClaim:
		if order.ToClaimHash != "" {
			return StatusWaitingForClaimConfirmations
		}
		if expired {
			return StatusWaitingForRefund
		}
	case StatusWaitingForRefund:
		if expired {
			return StatusGetRefund
		}
	case StatusGetRefund:
		if order.FromRefundHash != "" {
			return StatusWaitingForRefundConfirmations
		}
	}
	return ""
}

func agentSawFunding(status string) bool {
	switch status {
	case client.OrderUserFunded, client.OrderAgentPending, client.OrderAgentFunded, client.OrderUserClaimed, client.OrderAgentClaimed:
		return true
	}
	return false
}

func agentFunded(status string) bool {
	switch status {
	case client.OrderAgentFunded, client.OrderUserClaimed, client.OrderAgentClaimed:
		return true
	}
	return false
}

// WaitForClaimConfirmations checks the claim of the destination escrow once.
// With a receipt reader for the destination chain the claim must have the
// configured number of confirmations; otherwise the agent having claimed its
// side is taken as proof.
func (e *Engine) WaitForClaimConfirmations(ctx context.Context, s *swap.Swap, network swap.Network, walletID string) (*swap.Update, error) {
	chain, err := asset.ChainOf(s.To)
	if err != nil {
		return nil, err
	}

	hash := s.Field(FieldToClaimHash)
	if source, ok := e.receipts[chain.Name]; ok && hash != "" {
		return e.confirmOnChain(ctx, source, hash)
	}

	agent, err := e.agent(network)
	if err != nil {
		return nil, err
	}
	order, err := agent.GetOrder(ctx, s.Field(FieldOrderID))
	if err != nil {
		return nil, err
	}
	if order.Status != client.OrderAgentClaimed {
		return nil, nil
	}

	end := e.now()
	return &swap.Update{Status: StatusSuccess, EndTime: &end, Fields: orderFields(order)}, nil
}

func (e *Engine) confirmOnChain(ctx context.Context, source receiptSource, hash string) (*swap.Update, error) {
	receipt, err := source.reader.TransactionReceipt(ctx, common.HexToHash(hash))
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim receipt: %w", err)
	}

	// statuses never move back; a reverted claim waits for the agent's
	// order state to report a new claim hash
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.Warn("claim transaction reverted", "hash", hash)
		return nil, nil
	}

	head, err := source.reader.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get block number: %w", err)
	}

	confirmations := confirmationsAt(receipt.BlockNumber, head)
	if confirmations < source.confirmations {
		log.Debug("claim awaiting confirmations", "hash", hash, "have", confirmations, "need", source.confirmations)
		return nil, nil
	}

	end := e.now()
	return &swap.Update{
		Status:  StatusSuccess,
		EndTime: &end,
		Fields:  map[string]string{FieldClaimConfirmations: strconv.FormatUint(confirmations, 10)},
	}, nil
}

func confirmationsAt(block *big.Int, head uint64) uint64 {
	if block == nil || head < block.Uint64() {
		return 0
	}
	return head - block.Uint64() + 1
}

func orderFields(order *client.Order) map[string]string {
	fields := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	set(FieldFromFundHash, order.FromFundHash)
	set(FieldToFundHash, order.ToFundHash)
	set(FieldToClaimHash, order.ToClaimHash)
	set(FieldFromRefundHash, order.FromRefundHash)
	return fields
}
