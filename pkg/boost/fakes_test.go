package boost

import (
	"context"

	"github.com/shopspring/decimal"

	"boost-swap/pkg/swap"
)

type quoteCall struct {
	from, to string
	amount   decimal.Decimal
}

type fakeLegOne struct {
	quote     *swap.Quote
	quoteErr  error
	newSwap   *swap.Swap
	fees      swap.FeeVector
	update    *swap.Update
	actionErr error
	claim     []*swap.Update // consumed one per call, nil once exhausted
	claimErr  error

	quoteCalls  []quoteCall
	newSwapCall []swap.Quote
	feeCalls    []swap.FeeRequest
	actionCalls []*swap.Swap
	claimCalls  int
}

func (f *fakeLegOne) GetQuote(ctx context.Context, network swap.Network, from, to string, amount decimal.Decimal) (*swap.Quote, error) {
	f.quoteCalls = append(f.quoteCalls, quoteCall{from, to, amount})
	return f.quote, f.quoteErr
}

func (f *fakeLegOne) NewSwap(ctx context.Context, network swap.Network, walletID string, quote swap.Quote) (*swap.Swap, error) {
	f.newSwapCall = append(f.newSwapCall, quote)
	return f.newSwap, nil
}

func (f *fakeLegOne) EstimateFees(ctx context.Context, req swap.FeeRequest) (swap.FeeVector, error) {
	f.feeCalls = append(f.feeCalls, req)
	return f.fees, nil
}

func (f *fakeLegOne) PerformNextSwapAction(ctx context.Context, store swap.Store, network swap.Network, walletID string, s *swap.Swap) (*swap.Update, error) {
	f.actionCalls = append(f.actionCalls, s)
	return f.update, f.actionErr
}

func (f *fakeLegOne) WaitForClaimConfirmations(ctx context.Context, s *swap.Swap, network swap.Network, walletID string) (*swap.Update, error) {
	f.claimCalls++
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if len(f.claim) == 0 {
		return nil, nil
	}
	u := f.claim[0]
	f.claim = f.claim[1:]
	return u, nil
}

func (f *fakeLegOne) Statuses() swap.StatusTable {
	return swap.StatusTable{
		"INITIATED":                        {Step: 0, Label: "Locking {from}"},
		"FUNDED":                           {Step: 1, Label: "Locking {to}"},
		"CONFIRM_COUNTER_PARTY_INITIATION": {Step: 1, Label: "Locking {to}"},
		"READY_TO_CLAIM":                   {Step: 2, Label: "Claiming {to}"},
		"WAITING_FOR_CLAIM_CONFIRMATIONS":  {Step: 2, Label: "Claiming {to}"},
		"REFUNDED":                         {Step: 3, Label: "Refunded", Terminal: true, Failed: true},
		"SUCCESS":                          {Step: 3, Label: "Completed", Terminal: true},
	}
}

func (f *fakeLegOne) TxTypes() swap.TxTypes {
	return swap.TxTypes{
		string(swap.TxSwapInitiation): swap.TxSwapInitiation,
		string(swap.TxSwapClaim):      swap.TxSwapClaim,
	}
}

type fakeLegTwo struct {
	quote     *swap.Quote
	quoteErr  error
	fees      swap.FeeVector
	update    *swap.Update
	actionErr error

	quoteCalls  []quoteCall
	feeCalls    []swap.FeeRequest
	actionCalls []*swap.Swap
}

func (f *fakeLegTwo) GetQuote(ctx context.Context, network swap.Network, from, to string, amount decimal.Decimal) (*swap.Quote, error) {
	f.quoteCalls = append(f.quoteCalls, quoteCall{from, to, amount})
	return f.quote, f.quoteErr
}

func (f *fakeLegTwo) EstimateFees(ctx context.Context, req swap.FeeRequest) (swap.FeeVector, error) {
	f.feeCalls = append(f.feeCalls, req)
	return f.fees, nil
}

func (f *fakeLegTwo) PerformNextSwapAction(ctx context.Context, store swap.Store, network swap.Network, walletID string, s *swap.Swap) (*swap.Update, error) {
	f.actionCalls = append(f.actionCalls, s)
	return f.update, f.actionErr
}

func (f *fakeLegTwo) Statuses() swap.StatusTable {
	return swap.StatusTable{
		"WAITING_FOR_APPROVE_CONFIRMATIONS": {Step: 0, Label: "Approving {from}"},
		"APPROVE_CONFIRMED":                 {Step: 1, Label: "Swapping {from}"},
		"WAITING_FOR_SWAP_CONFIRMATIONS":    {Step: 1, Label: "Swapping {from}"},
		"SUCCESS":                           {Step: 2, Label: "Completed", Terminal: true},
		"FAILED":                            {Step: 2, Label: "Swap Failed", Terminal: true, Failed: true},
	}
}

func (f *fakeLegTwo) TxTypes() swap.TxTypes {
	return swap.TxTypes{string(swap.TxSwap): swap.TxSwap}
}
