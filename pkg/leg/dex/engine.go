// Package dex swaps a native asset for a token on the same chain through the
// 1Click API. The engine funds the route's deposit address and follows the
// execution until the token arrives.
package dex

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"boost-swap/pkg/asset"
	"boost-swap/pkg/client"
	"boost-swap/pkg/deposit"
	"boost-swap/pkg/log"
	"boost-swap/pkg/swap"
)

// Fields stored in Swap.Extra
const (
	FieldDepositAddress    = "depositAddress"
	FieldDepositMemo       = "depositMemo"
	FieldSwapTxHash        = "swapTxHash"
	FieldDestinationTxHash = "destinationTxHash"
)

// Execution states reported by the 1Click API
const (
	executionSuccess   = "SUCCESS"
	executionCompleted = "COMPLETED"
	executionFailed    = "FAILED"
	executionRefunded  = "REFUNDED"
)

// Router prices and tracks routes. client.OneClickClient implements it.
type Router interface {
	Quote(ctx context.Context, req client.RouteRequest) (*client.Route, error)
	Status(ctx context.Context, depositAddress string) (*client.RouteStatus, error)
	SubmitDeposit(ctx context.Context, depositAddress, txHash string) error
}

// Depositors resolves the signer of a chain. deposit.Manager implements it.
type Depositors interface {
	ForChain(chain string) (deposit.Depositor, error)
}

// Engine is the DEX swap leg
type Engine struct {
	routers    map[swap.Network]Router
	depositors Depositors
	accounts   map[string]string
}

// Option customises an Engine
type Option func(*Engine)

// WithAccount sets the address receiving swaps on chain when the swap does
// not name one
func WithAccount(chain, address string) Option {
	return func(e *Engine) {
		if address != "" {
			e.accounts[chain] = address
		}
	}
}

// New creates the engine
func New(routers map[swap.Network]Router, depositors Depositors, opts ...Option) *Engine {
	e := &Engine{
		routers:    routers,
		depositors: depositors,
		accounts:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) router(network swap.Network) (Router, error) {
	r, ok := e.routers[network]
	if !ok || r == nil {
		return nil, fmt.Errorf("no DEX router configured for %s", network)
	}
	return r, nil
}

// account picks the address for chain: the swap's own, then a configured
// one, then the chain's signer
func (e *Engine) account(chain, preferred string) (string, error) {
	if preferred != "" {
		return preferred, nil
	}
	if address, ok := e.accounts[chain]; ok {
		return address, nil
	}
	if e.depositors != nil {
		if d, err := e.depositors.ForChain(chain); err == nil {
			return d.Address(), nil
		}
	}
	return "", fmt.Errorf("no account configured for %s", chain)
}

// Statuses returns the DEX swap statuses
func (e *Engine) Statuses() swap.StatusTable {
	return statuses
}

// TxTypes returns the DEX swap transaction types
func (e *Engine) TxTypes() swap.TxTypes {
	return txTypes
}

// GetQuote prices a dry route. Pairs on different chains and tokens the API
// does not list have no route.
func (e *Engine) GetQuote(ctx context.Context, network swap.Network, from, to string, amount decimal.Decimal) (*swap.Quote, error) {
	fromAsset, err := asset.Get(from)
	if err != nil {
		return nil, nil
	}
	toAsset, err := asset.Get(to)
	if err != nil || fromAsset.Chain != toAsset.Chain {
		return nil, nil
	}

	router, err := e.router(network)
	if err != nil {
		return nil, err
	}
	recipient, err := e.account(fromAsset.Chain, "")
	if err != nil {
		return nil, err
	}

	fromAmount, err := asset.CurrencyToUnit(from, amount)
	if err != nil {
		return nil, err
	}

	route, err := router.Quote(ctx, routeRequest(fromAsset, toAsset, fromAmount, recipient, true))
	if errors.Is(err, client.ErrTokenNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	toAmount, err := formattedToUnits(to, route.AmountOutFormatted)
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

// EstimateFees prices the transfer funding the deposit address
func (e *Engine) EstimateFees(ctx context.Context, req swap.FeeRequest) (swap.FeeVector, error) {
	if req.TxType != swap.TxSwap {
		return nil, fmt.Errorf("unsupported transaction type %s", req.TxType)
	}

	chain, err := asset.ChainOf(req.Quote.From)
	if err != nil {
		return nil, err
	}

	var size int64
	switch chain.Kind {
	case asset.KindEVM:
		size = 21000
	case asset.KindSolana:
		size = 1
	default:
		return nil, fmt.Errorf("no DEX route on %s", chain.Name)
	}

	fees := make(swap.FeeVector, len(req.FeePrices))
	for level, price := range req.FeePrices {
		fees[level] = decimal.NewFromInt(size).Mul(price).Shift(-chain.FeeDecimals)
	}
	return fees, nil
}

// PerformNextSwapAction funds the route once and then follows its execution
func (e *Engine) PerformNextSwapAction(ctx context.Context, store swap.Store, network swap.Network, walletID string, s *swap.Swap) (*swap.Update, error) {
	switch s.Status {
	case StatusWaitingForApproveConfirmations:
		// native assets need no allowance
		return &swap.Update{Status: StatusApproveConfirmed}, nil
	case StatusApproveConfirmed:
		return e.sendSwap(ctx, store, network, s)
	case StatusWaitingForSwapConfirmations:
		return e.waitForSwapConfirmations(ctx, network, s)
	}
	return nil, nil
}

func (e *Engine) sendSwap(ctx context.Context, store swap.Store, network swap.Network, s *swap.Swap) (*swap.Update, error) {
	// already funded by an earlier attempt that did not get to persist the
	// status change
	if s.Field(FieldSwapTxHash) != "" {
		return &swap.Update{Status: StatusWaitingForSwapConfirmations}, nil
	}

	fromAsset, err := asset.Get(s.From)
	if err != nil {
		return nil, err
	}
	toAsset, err := asset.Get(s.To)
	if err != nil {
		return nil, err
	}

	router, err := e.router(network)
	if err != nil {
		return nil, err
	}
	if e.depositors == nil {
		return nil, fmt.Errorf("no depositors configured")
	}
	depositor, err := e.depositors.ForChain(fromAsset.Chain)
	if err != nil {
		return nil, err
	}
	recipient, err := e.account(toAsset.Chain, s.FromAccountID)
	if err != nil {
		return nil, err
	}

	route, err := router.Quote(ctx, routeRequest(fromAsset, toAsset, s.FromAmount, recipient, false))
	if err != nil {
		return nil, err
	}
	if route.DepositAddress == "" {
		return nil, fmt.Errorf("route for %s has no deposit address", s.ID)
	}

	amount, err := asset.UnitToCurrency(s.From, s.FromAmount)
	if err != nil {
		return nil, err
	}

	txHash, err := depositor.SendDeposit(ctx, route.DepositAddress, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to fund deposit address: %w", err)
	}

	fields := map[string]string{
		FieldDepositAddress: route.DepositAddress,
		FieldSwapTxHash:     txHash,
	}
	if route.DepositMemo != "" {
		fields[FieldDepositMemo] = route.DepositMemo
	}

	// Funds are gone at this point, keep the hash before anything else fails
	if store != nil {
		if _, err := store.Apply(s.ID, &swap.Update{Fields: fields}); err != nil {
			log.Error("failed to persist deposit", "swap", s.ID, "tx", txHash, "err", err)
		}
	}

	if err := router.SubmitDeposit(ctx, route.DepositAddress, txHash); err != nil {
		log.Warn("failed to submit deposit transaction", "swap", s.ID, "tx", txHash, "err", err)
	}

	log.Info("dex swap funded", "swap", s.ID, "deposit_address", route.DepositAddress, "tx", txHash)
	return &swap.Update{Status: StatusWaitingForSwapConfirmations, Fields: fields}, nil
}

func (e *Engine) waitForSwapConfirmations(ctx context.Context, network swap.Network, s *swap.Swap) (*swap.Update, error) {
	depositAddress := s.Field(FieldDepositAddress)
	if depositAddress == "" {
		return nil, fmt.Errorf("swap %s has no deposit address", s.ID)
	}

	router, err := e.router(network)
	if err != nil {
		return nil, err
	}

	status, err := router.Status(ctx, depositAddress)
	if err != nil {
		return nil, err
	}

	switch status.Status {
	case executionSuccess, executionCompleted:
		u := &swap.Update{Status: StatusSuccess}
		if !status.UpdatedAt.IsZero() {
			end := status.UpdatedAt
			u.EndTime = &end
		}
		if status.AmountOutFormatted != "" {
			toAmount, err := formattedToUnits(s.To, status.AmountOutFormatted)
			if err != nil {
				return nil, err
			}
			u.ToAmount = &toAmount
		}
		if status.DestinationTxHash != "" {
			u.Fields = map[string]string{FieldDestinationTxHash: status.DestinationTxHash}
		}
		return u, nil
	case executionFailed, executionRefunded:
		log.Warn("dex swap did not execute", "swap", s.ID, "status", status.Status)
		u := &swap.Update{Status: StatusFailed}
		if !status.UpdatedAt.IsZero() {
			end := status.UpdatedAt
			u.EndTime = &end
		}
		return u, nil
	}

	log.Debug("dex swap in progress", "swap", s.ID, "status", status.Status)
	return nil, nil
}

func routeRequest(from, to asset.Asset, fromAmount decimal.Decimal, recipient string, dry bool) client.RouteRequest {
	fromChain, _ := asset.ChainOf(from.Code)
	toChain, _ := asset.ChainOf(to.Code)
	return client.RouteRequest{
		FromSymbol: from.Symbol,
		FromChain:  fromChain.OneClickChain,
		ToSymbol:   to.Symbol,
		ToChain:    toChain.OneClickChain,
		Amount:     fromAmount.String(),
		Recipient:  recipient,
		RefundTo:   recipient,
		Dry:        dry,
	}
}

func formattedToUnits(code, formatted string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(formatted)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", formatted, err)
	}
	return asset.CurrencyToUnit(code, amount)
}
