package asset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownAsset is returned when an asset code is not in the table
var ErrUnknownAsset = errors.New("unknown asset")

// Type classifies how an asset lives on its chain
type Type string

const (
	TypeNative Type = "native" // Pays its own transaction costs
	TypeERC20  Type = "erc20"  // EVM token, needs the chain's native asset for gas
	TypeSPL    Type = "spl"    // Solana token, needs SOL for fees
)

// ChainKind groups chains that share a transaction model
type ChainKind string

const (
	KindUTXO   ChainKind = "utxo"
	KindEVM    ChainKind = "evm"
	KindSolana ChainKind = "solana"
)

// Chain describes a blockchain the wallet can transact on
type Chain struct {
	Name          string    // Canonical name, e.g. "ethereum"
	Kind          ChainKind // Transaction model
	NativeAsset   string    // Code of the asset paying fees
	OneClickChain string    // Blockchain identifier used by the 1Click API
	FeeUnit       string    // Display unit of fee prices
	FeeDecimals   int32     // Decimals between the fee price unit and the native asset
}

// Asset describes a single tradeable asset
type Asset struct {
	Code     string `json:"code"`               // Wallet-wide unique code, e.g. "DAI"
	Name     string `json:"name"`               // Human readable name
	Symbol   string `json:"symbol"`             // Ticker as known by external APIs
	Chain    string `json:"chain"`              // Chain name
	Type     Type   `json:"type"`               // native or token standard
	Decimals int32  `json:"decimals"`           // Smallest unit exponent
	Contract string `json:"contract,omitempty"` // Token contract or mint
}

var chains = map[string]Chain{
	"bitcoin":  {Name: "bitcoin", Kind: KindUTXO, NativeAsset: "BTC", OneClickChain: "btc", FeeUnit: "sat/vB", FeeDecimals: 8},
	"ethereum": {Name: "ethereum", Kind: KindEVM, NativeAsset: "ETH", OneClickChain: "eth", FeeUnit: "gwei", FeeDecimals: 9},
	"polygon":  {Name: "polygon", Kind: KindEVM, NativeAsset: "MATIC", OneClickChain: "pol", FeeUnit: "gwei", FeeDecimals: 9},
	"bsc":      {Name: "bsc", Kind: KindEVM, NativeAsset: "BNB", OneClickChain: "bsc", FeeUnit: "gwei", FeeDecimals: 9},
	"solana":   {Name: "solana", Kind: KindSolana, NativeAsset: "SOL", OneClickChain: "sol", FeeUnit: "lamports", FeeDecimals: 9},
}

var assets = map[string]Asset{
	"BTC":   {Code: "BTC", Name: "Bitcoin", Symbol: "BTC", Chain: "bitcoin", Type: TypeNative, Decimals: 8},
	"ETH":   {Code: "ETH", Name: "Ether", Symbol: "ETH", Chain: "ethereum", Type: TypeNative, Decimals: 18},
	"DAI":   {Code: "DAI", Name: "Dai Stablecoin", Symbol: "DAI", Chain: "ethereum", Type: TypeERC20, Decimals: 18, Contract: "0x6B175474E89094C44Da98b954EedeAC495271d0F"},
	"USDC":  {Code: "USDC", Name: "USD Coin", Symbol: "USDC", Chain: "ethereum", Type: TypeERC20, Decimals: 6, Contract: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
	"USDT":  {Code: "USDT", Name: "Tether USD", Symbol: "USDT", Chain: "ethereum", Type: TypeERC20, Decimals: 6, Contract: "0xdAC17F958D2ee523a2206206994597C13D831ec7"},
	"WBTC":  {Code: "WBTC", Name: "Wrapped Bitcoin", Symbol: "WBTC", Chain: "ethereum", Type: TypeERC20, Decimals: 8, Contract: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"},
	"UNI":   {Code: "UNI", Name: "Uniswap", Symbol: "UNI", Chain: "ethereum", Type: TypeERC20, Decimals: 18, Contract: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"},
	"MATIC": {Code: "MATIC", Name: "Polygon", Symbol: "POL", Chain: "polygon", Type: TypeNative, Decimals: 18},
	"PUSDC": {Code: "PUSDC", Name: "USD Coin (Polygon)", Symbol: "USDC", Chain: "polygon", Type: TypeERC20, Decimals: 6, Contract: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359"},
	"BNB":   {Code: "BNB", Name: "BNB", Symbol: "BNB", Chain: "bsc", Type: TypeNative, Decimals: 18},
	"BUSD":  {Code: "BUSD", Name: "Binance USD", Symbol: "BUSD", Chain: "bsc", Type: TypeERC20, Decimals: 18, Contract: "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56"},
	"SOL":   {Code: "SOL", Name: "Solana", Symbol: "SOL", Chain: "solana", Type: TypeNative, Decimals: 9},
	"SUSDC": {Code: "SUSDC", Name: "USD Coin (Solana)", Symbol: "USDC", Chain: "solana", Type: TypeSPL, Decimals: 6, Contract: "EPjFWbd5AcxtX6cRsaBZHKJ1rmYJd1o2fHTVUHW4GqCa"},
}

// Get returns the asset for a code
func Get(code string) (Asset, error) {
	a, ok := assets[strings.ToUpper(code)]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnknownAsset, code)
	}
	return a, nil
}

// ChainOf returns the chain an asset lives on
func ChainOf(code string) (Chain, error) {
	a, err := Get(code)
	if err != nil {
		return Chain{}, err
	}
	c, ok := chains[a.Chain]
	if !ok {
		return Chain{}, fmt.Errorf("asset %s references unknown chain %s", a.Code, a.Chain)
	}
	return c, nil
}

// ChainByName returns a chain by its canonical name
func ChainByName(name string) (Chain, error) {
	c, ok := chains[strings.ToLower(name)]
	if !ok {
		return Chain{}, fmt.Errorf("unknown chain %s", name)
	}
	return c, nil
}

// IsToken reports whether an asset needs a host native asset to pay fees.
// Unknown codes are not tokens.
func IsToken(code string) bool {
	a, err := Get(code)
	if err != nil {
		return false
	}
	return a.Type != TypeNative
}

// NativeOf returns the native counterpart of an asset. A native asset is its
// own counterpart.
func NativeOf(code string) (string, error) {
	c, err := ChainOf(code)
	if err != nil {
		return "", err
	}
	return c.NativeAsset, nil
}

// UnitToCurrency converts an amount in smallest units into a human quantity
func UnitToCurrency(code string, units decimal.Decimal) (decimal.Decimal, error) {
	a, err := Get(code)
	if err != nil {
		return decimal.Zero, err
	}
	return units.Shift(-a.Decimals), nil
}

// CurrencyToUnit converts a human quantity into smallest units, truncating
// anything below one unit
func CurrencyToUnit(code string, amount decimal.Decimal) (decimal.Decimal, error) {
	a, err := Get(code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Shift(a.Decimals).Truncate(0), nil
}

// List returns all assets sorted by code
func List() []Asset {
	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Chains returns all known chains sorted by name
func Chains() []Chain {
	out := make([]Chain, 0, len(chains))
	for _, c := range chains {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
