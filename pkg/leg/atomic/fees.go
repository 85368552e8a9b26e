package atomic

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"boost-swap/pkg/asset"
	"boost-swap/pkg/swap"
)

// Transaction sizes per chain kind, in the chain's fee size unit: vbytes on
// UTXO chains, gas on EVM chains, signatures on Solana
var txSizes = map[asset.ChainKind]map[swap.TxType]int64{
	asset.KindUTXO: {
		swap.TxSwapInitiation: 370,
		swap.TxSwapClaim:      143,
	},
	asset.KindEVM: {
		swap.TxSwapInitiation: 165000,
		swap.TxSwapClaim:      45000,
	},
	asset.KindSolana: {
		swap.TxSwapInitiation: 2,
		swap.TxSwapClaim:      1,
	},
}

// EstimateFees prices the initiation on the from chain or the claim on the to
// chain. Amounts are in the chain's native asset.
func (e *Engine) EstimateFees(ctx context.Context, req swap.FeeRequest) (swap.FeeVector, error) {
	var code string
	switch req.TxType {
	case swap.TxSwapInitiation:
		code = req.Quote.From
	case swap.TxSwapClaim:
		code = req.Quote.To
	default:
		return nil, fmt.Errorf("unsupported transaction type %s", req.TxType)
	}

	chain, err := asset.ChainOf(code)
	if err != nil {
		return nil, err
	}

	size, ok := txSizes[chain.Kind][req.TxType]
	if !ok {
		return nil, fmt.Errorf("no %s size for %s", req.TxType, chain.Name)
	}

	return feeVector(size, chain, req.FeePrices), nil
}

func feeVector(size int64, chain asset.Chain, prices swap.FeePrices) swap.FeeVector {
	fees := make(swap.FeeVector, len(prices))
	for level, price := range prices {
		fees[level] = decimal.NewFromInt(size).Mul(price).Shift(-chain.FeeDecimals)
	}
	return fees
}
