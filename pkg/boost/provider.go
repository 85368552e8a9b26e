package boost

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"boost-swap/pkg/asset"
	"boost-swap/pkg/poll"
	"boost-swap/pkg/swap"
)

const (
	// ProviderName tags swaps created by this provider
	ProviderName = "boost"

	// SlippageBps is the slippage tolerance applied to the DEX leg (3%)
	SlippageBps = 300

	// TotalSteps is the resolution of the composite progress indicator
	TotalSteps = 5
)

// LegOne is the atomic swap engine delivering the bridge asset
type LegOne interface {
	swap.Quoter
	swap.Initiator
	swap.FeeEstimator
	swap.SwapDriver
	swap.ClaimWaiter
	swap.Describer
}

// LegTwo is the DEX engine spending the bridge asset into the final token
type LegTwo interface {
	swap.Quoter
	swap.FeeEstimator
	swap.SwapDriver
	swap.Describer
}

// Provider composes an atomic swap and a DEX swap into one native to token
// swap
type Provider struct {
	legOne LegOne
	legTwo LegTwo

	statuses       swap.StatusTable
	legOneStatuses swap.StatusTable
	legTwoStatuses swap.StatusTable
	txTypes        swap.TxTypes

	handoff poll.Options
	now     func() time.Time
}

// Option customises a Provider
type Option func(*Provider)

// WithHandoffPolling sets how long one call waits for the atomic leg's claim
// to confirm
func WithHandoffPolling(opts poll.Options) Option {
	return func(p *Provider) {
		p.handoff = opts
	}
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// New builds the provider and its status registry
func New(legOne LegOne, legTwo LegTwo, opts ...Option) (*Provider, error) {
	statuses, err := Statuses(legOne, legTwo)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		legOne:         legOne,
		legTwo:         legTwo,
		statuses:       statuses,
		legOneStatuses: legOne.Statuses(),
		legTwoStatuses: legTwo.Statuses(),
		txTypes:        TxTypes(legOne, legTwo),
		handoff:        poll.DefaultOptions(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// GetSupportedPairs returns nothing: the composite route is only reachable
// through direct quote requests
func (p *Provider) GetSupportedPairs(ctx context.Context, network swap.Network) ([]swap.Pair, error) {
	return []swap.Pair{}, nil
}

// GetQuote prices from -> bridge on the atomic leg, then bridge -> to on the
// DEX leg. It returns nil without calling any engine unless from is native,
// to is a token and amount is positive.
func (p *Provider) GetQuote(ctx context.Context, network swap.Network, from, to string, amount decimal.Decimal) (*swap.Quote, error) {
	if asset.IsToken(from) || !asset.IsToken(to) || !amount.IsPositive() {
		return nil, nil
	}

	bridgeAsset, err := asset.NativeOf(to)
	if err != nil {
		return nil, nil
	}

	quote, err := p.legOne.GetQuote(ctx, network, from, bridgeAsset, amount)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, nil
	}

	bridgeAssetQuantity, err := asset.UnitToCurrency(bridgeAsset, quote.ToAmount)
	if err != nil {
		return nil, err
	}

	finalQuote, err := p.legTwo.GetQuote(ctx, network, bridgeAsset, to, bridgeAssetQuantity)
	if err != nil {
		return nil, err
	}
	if finalQuote == nil {
		return nil, nil
	}

	return &swap.Quote{
		From:              from,
		To:                to,
		FromAmount:        quote.FromAmount,
		ToAmount:          finalQuote.ToAmount,
		BridgeAsset:       bridgeAsset,
		BridgeAssetAmount: quote.ToAmount,
	}, nil
}

// NewSwap initiates the atomic leg for the bridge asset and returns the swap
// record in composite shape
func (p *Provider) NewSwap(ctx context.Context, network swap.Network, walletID string, quote swap.Quote) (*swap.Swap, error) {
	result, err := p.legOne.NewSwap(ctx, network, walletID, swap.LegOneQuote(quote))
	if err != nil {
		return nil, err
	}

	s := result.Clone()
	s.Provider = ProviderName
	s.From = quote.From
	s.To = quote.To
	s.FromAmount = quote.FromAmount
	s.ToAmount = quote.ToAmount
	s.BridgeAsset = quote.BridgeAsset
	s.BridgeAssetAmount = result.ToAmount
	s.FromAccountID = quote.FromAccountID
	s.ToAccountID = quote.ToAccountID
	s.Slippage = SlippageBps
	if s.Network == "" {
		s.Network = network
	}
	if s.WalletID == "" {
		s.WalletID = walletID
	}

	return s, nil
}

// EstimateFees always estimates the atomic leg. When a token claim is being
// estimated the DEX swap that immediately follows is added on top.
func (p *Provider) EstimateFees(ctx context.Context, req swap.FeeRequest) (swap.FeeVector, error) {
	legOneReq := req
	legOneReq.Quote = swap.LegOneQuote(req.Quote)

	legOneFees, err := p.legOne.EstimateFees(ctx, legOneReq)
	if err != nil {
		return nil, err
	}

	if !asset.IsToken(req.Asset) || req.TxType != p.txTypes[string(swap.TxSwapClaim)] {
		return legOneFees, nil
	}

	legTwoReq := req
	legTwoReq.TxType = p.txTypes[string(swap.TxSwap)]
	legTwoReq.Quote = swap.LegTwoQuote(req.Quote, SlippageBps)

	legTwoFees, err := p.legTwo.EstimateFees(ctx, legTwoReq)
	if err != nil {
		return nil, err
	}

	return legOneFees.Add(legTwoFees), nil
}

// Statuses returns the composite status registry
func (p *Provider) Statuses() swap.StatusTable {
	return p.statuses
}

// TxTypes returns the composite transaction type table
func (p *Provider) TxTypes() swap.TxTypes {
	return p.txTypes
}

// TotalSteps returns the number of progress steps
func (p *Provider) TotalSteps() int {
	return TotalSteps
}

// FromTxType classifies the activity entry of the source side
func (p *Provider) FromTxType() swap.TxType {
	return p.txTypes[string(swap.TxSwapInitiation)]
}

// ToTxType classifies the activity entry of the destination side
func (p *Provider) ToTxType() swap.TxType {
	return p.txTypes[string(swap.TxSwap)]
}
