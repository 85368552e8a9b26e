package swap

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quoter prices a pair. A nil quote with a nil error means there is no route.
// The amount is a human quantity of the from asset.
type Quoter interface {
	GetQuote(ctx context.Context, network Network, from, to string, amount decimal.Decimal) (*Quote, error)
}

// Initiator turns a quote into a live swap
type Initiator interface {
	NewSwap(ctx context.Context, network Network, walletID string, quote Quote) (*Swap, error)
}

// FeeEstimator estimates the fees of one transaction type
type FeeEstimator interface {
	EstimateFees(ctx context.Context, req FeeRequest) (FeeVector, error)
}

// SwapDriver advances a swap by at most one step. A nil update means nothing
// changed and the caller should poll again later.
type SwapDriver interface {
	PerformNextSwapAction(ctx context.Context, store Store, network Network, walletID string, s *Swap) (*Update, error)
}

// ClaimWaiter reports once the claim of an atomic swap is confirmed. A nil
// update means not yet.
type ClaimWaiter interface {
	WaitForClaimConfirmations(ctx context.Context, s *Swap, network Network, walletID string) (*Update, error)
}

// Describer exposes an engine's static tables
type Describer interface {
	Statuses() StatusTable
	TxTypes() TxTypes
}

// Store gives engines access to the persisted swap records
type Store interface {
	Get(id string) (*Swap, error)
	Apply(id string, u *Update) (*Swap, error)
}
