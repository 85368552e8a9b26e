package types

import "github.com/shopspring/decimal"

// SwapRequest represents a user's swap command
type SwapRequest struct {
	Amount      decimal.Decimal // human units of From
	From        string
	To          string
	FromAccount string
	ToAccount   string
}

// QuoteDisplay holds formatted quote information for display
type QuoteDisplay struct {
	FromAmount   string
	From         string
	ToAmount     string
	To           string
	BridgeAmount string
	BridgeAsset  string
	Rate         string
}
