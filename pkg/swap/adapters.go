package swap

// A composite swap carries three assets: From, BridgeAsset and To. The
// functions below reshape it for each leg engine, which only knows about a
// plain two-asset swap.

// LegOneQuote reshapes a composite quote for the atomic leg: it delivers the
// bridge asset instead of the final token.
func LegOneQuote(q Quote) Quote {
	q.To = q.BridgeAsset
	q.ToAmount = q.BridgeAssetAmount
	return q
}

// LegTwoQuote reshapes a composite quote for the DEX leg: it spends the
// bridge asset from the account that received it.
func LegTwoQuote(q Quote, slippage int) Quote {
	q.From = q.BridgeAsset
	q.FromAmount = q.BridgeAssetAmount
	q.FromAccountID = q.ToAccountID
	q.Slippage = slippage
	return q
}

// ToLegOne returns a copy of the swap in the atomic leg's shape
func ToLegOne(s *Swap, slippage int) *Swap {
	c := s.Clone()
	c.To = s.BridgeAsset
	c.ToAmount = s.BridgeAssetAmount
	c.Slippage = slippage
	return c
}

// ToLegTwo returns a copy of the swap in the DEX leg's shape
func ToLegTwo(s *Swap, slippage int) *Swap {
	c := s.Clone()
	c.From = s.BridgeAsset
	c.FromAmount = s.BridgeAssetAmount
	c.FromAccountID = s.ToAccountID
	c.Slippage = slippage
	return c
}

// FromLegOne maps an update produced on the atomic leg's shape back onto the
// composite swap: the leg's delivered amount is the bridge amount.
func FromLegOne(u *Update) *Update {
	if u == nil || u.ToAmount == nil {
		return u
	}
	c := *u
	c.BridgeAssetAmount = c.ToAmount
	c.ToAmount = nil
	return &c
}
