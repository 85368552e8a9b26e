package swap

import (
	"time"

	"github.com/shopspring/decimal"
)

// Network selects mainnet or testnet deployments of every engine
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// Status keys shared by more than one engine
const (
	StatusSuccess                      = "SUCCESS"
	StatusWaitingForClaimConfirmations = "WAITING_FOR_CLAIM_CONFIRMATIONS"
	StatusApproveConfirmed             = "APPROVE_CONFIRMED"
)

// TxType identifies a kind of on-chain transaction made during a swap
type TxType string

const (
	TxSwapInitiation TxType = "SWAP_INITIATION"
	TxSwapClaim      TxType = "SWAP_CLAIM"
	TxSwap           TxType = "SWAP"
)

// TxTypes maps table names to transaction types
type TxTypes map[string]TxType

// Quote is the result of matching supply and demand for a pair. Amounts are
// in smallest units of their asset.
type Quote struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	FromAmount decimal.Decimal `json:"from_amount"`
	ToAmount   decimal.Decimal `json:"to_amount"`

	// Set only on composite quotes
	BridgeAsset       string          `json:"bridge_asset,omitempty"`
	BridgeAssetAmount decimal.Decimal `json:"bridge_asset_amount"`

	// Optional routing hints from the caller
	FromAccountID string `json:"from_account_id,omitempty"`
	ToAccountID   string `json:"to_account_id,omitempty"`
	Slippage      int    `json:"slippage,omitempty"` // basis points
}

// Swap tracks one in-flight swap
type Swap struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Status   string `json:"status"`

	From       string          `json:"from"`
	To         string          `json:"to"`
	FromAmount decimal.Decimal `json:"from_amount"`
	ToAmount   decimal.Decimal `json:"to_amount"`

	BridgeAsset       string          `json:"bridge_asset,omitempty"`
	BridgeAssetAmount decimal.Decimal `json:"bridge_asset_amount"`

	Slippage      int    `json:"slippage"` // basis points
	FromAccountID string `json:"from_account_id,omitempty"`
	ToAccountID   string `json:"to_account_id,omitempty"`

	Network   Network    `json:"network"`
	WalletID  string     `json:"wallet_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Engine specific fields (order ids, escrow addresses, tx hashes).
	// Opaque to the orchestrator.
	Extra map[string]string `json:"extra,omitempty"`
}

// Update is a partial change to a Swap produced by one continuation step
type Update struct {
	Status   string            `json:"status,omitempty"`
	EndTime  *time.Time        `json:"end_time,omitempty"`
	ToAmount *decimal.Decimal  `json:"to_amount,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`

	BridgeAssetAmount *decimal.Decimal `json:"bridge_asset_amount,omitempty"`
}

// Apply merges an update into the swap in place. A nil update is a no-op.
func (s *Swap) Apply(u *Update) {
	if u == nil {
		return
	}
	if u.Status != "" {
		s.Status = u.Status
	}
	if u.EndTime != nil {
		end := *u.EndTime
		s.EndTime = &end
	}
	if u.ToAmount != nil {
		s.ToAmount = *u.ToAmount
	}
	if u.BridgeAssetAmount != nil {
		s.BridgeAssetAmount = *u.BridgeAssetAmount
	}
	if len(u.Fields) > 0 && s.Extra == nil {
		s.Extra = make(map[string]string, len(u.Fields))
	}
	for k, v := range u.Fields {
		s.Extra[k] = v
	}
}

// Clone returns a deep copy
func (s *Swap) Clone() *Swap {
	c := *s
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	if s.Extra != nil {
		c.Extra = make(map[string]string, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// Quote returns the quote fields of the swap
func (s *Swap) Quote() Quote {
	return Quote{
		From:              s.From,
		To:                s.To,
		FromAmount:        s.FromAmount,
		ToAmount:          s.ToAmount,
		BridgeAsset:       s.BridgeAsset,
		BridgeAssetAmount: s.BridgeAssetAmount,
		FromAccountID:     s.FromAccountID,
		ToAccountID:       s.ToAccountID,
		Slippage:          s.Slippage,
	}
}

// Field returns an engine specific field or ""
func (s *Swap) Field(key string) string {
	if s.Extra == nil {
		return ""
	}
	return s.Extra[key]
}

// Pair is a tradeable pair advertised by a provider
type Pair struct {
	From string `json:"from"`
	To   string `json:"to"`
}
