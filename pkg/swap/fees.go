package swap

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Fee levels used by every engine
const (
	FeeSlow    = "slow"
	FeeAverage = "average"
	FeeFast    = "fast"
)

// FeeVector maps a fee level to an amount in the human units of the asset
// paying the fee
type FeeVector map[string]decimal.Decimal

// FeePrices maps a fee level to a price in the chain's fee unit (gwei,
// sat/vB, ...)
type FeePrices map[string]decimal.Decimal

// FeeRequest carries the arguments of a fee estimate
type FeeRequest struct {
	Network   Network
	WalletID  string
	Asset     string
	TxType    TxType
	Quote     Quote
	FeePrices FeePrices
	Max       bool
}

// Add sums two vectors key-wise. A key missing on either side counts as zero.
func (v FeeVector) Add(other FeeVector) FeeVector {
	total := make(FeeVector, len(v)+len(other))
	for k, amount := range v {
		total[k] = amount
	}
	for k, amount := range other {
		if existing, ok := total[k]; ok {
			total[k] = existing.Add(amount)
		} else {
			total[k] = amount
		}
	}
	return total
}

// Levels returns the keys in a stable order
func (v FeeVector) Levels() []string {
	order := map[string]int{FeeSlow: 0, FeeAverage: 1, FeeFast: 2}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, iok := order[keys[i]]
		oj, jok := order[keys[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
