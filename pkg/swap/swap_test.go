package swap

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func boostSwap() *Swap {
	return &Swap{
		ID:                "swap-1",
		Status:            "FUNDED",
		From:              "BTC",
		To:                "DAI",
		FromAmount:        d("100000000"),
		ToAmount:          d("3000000000"),
		BridgeAsset:       "ETH",
		BridgeAssetAmount: d("3000000000000000000"),
		FromAccountID:     "btc-account",
		ToAccountID:       "eth-account",
		Extra:             map[string]string{"orderId": "o-1"},
	}
}

func TestToLegOne(t *testing.T) {
	s := boostSwap()
	leg := ToLegOne(s, 300)

	assert.Equal(t, "BTC", leg.From)
	assert.Equal(t, "ETH", leg.To)
	assert.True(t, leg.ToAmount.Equal(s.BridgeAssetAmount))
	assert.Equal(t, 300, leg.Slippage)
	assert.Equal(t, "o-1", leg.Field("orderId"))

	// the original is untouched
	assert.Equal(t, "DAI", s.To)
	leg.Extra["orderId"] = "changed"
	assert.Equal(t, "o-1", s.Field("orderId"))
}

func TestToLegTwo(t *testing.T) {
	s := boostSwap()
	leg := ToLegTwo(s, 300)

	assert.Equal(t, "ETH", leg.From)
	assert.Equal(t, "DAI", leg.To)
	assert.True(t, leg.FromAmount.Equal(s.BridgeAssetAmount))
	assert.Equal(t, "eth-account", leg.FromAccountID)
	assert.Equal(t, 300, leg.Slippage)
	assert.Equal(t, "BTC", s.From)
}

func TestLegQuotes(t *testing.T) {
	q := boostSwap().Quote()

	one := LegOneQuote(q)
	assert.Equal(t, "ETH", one.To)
	assert.True(t, one.ToAmount.Equal(q.BridgeAssetAmount))

	two := LegTwoQuote(q, 300)
	assert.Equal(t, "ETH", two.From)
	assert.True(t, two.FromAmount.Equal(q.BridgeAssetAmount))
	assert.Equal(t, "eth-account", two.FromAccountID)
	assert.Equal(t, 300, two.Slippage)
}

func TestApply(t *testing.T) {
	s := &Swap{Status: "INITIATED"}
	s.Apply(nil)
	assert.Equal(t, "INITIATED", s.Status)

	end := time.Unix(1700000000, 0)
	amount := d("42")
	s.Apply(&Update{
		Status:   "SUCCESS",
		EndTime:  &end,
		ToAmount: &amount,
		Fields:   map[string]string{"swapTxHash": "0xabc"},
	})

	assert.Equal(t, "SUCCESS", s.Status)
	require.NotNil(t, s.EndTime)
	assert.True(t, s.EndTime.Equal(end))
	assert.True(t, s.ToAmount.Equal(amount))
	assert.Equal(t, "0xabc", s.Field("swapTxHash"))
}

func TestFeeVectorAdd(t *testing.T) {
	one := FeeVector{FeeSlow: d("0.001"), FeeAverage: d("0.002"), FeeFast: d("0.003")}
	two := FeeVector{FeeSlow: d("0.01"), FeeFast: d("0.03"), "instant": d("0.5")}

	total := one.Add(two)

	assert.Equal(t, "0.011", total[FeeSlow].String())
	assert.Equal(t, "0.002", total[FeeAverage].String())
	assert.Equal(t, "0.033", total[FeeFast].String())
	assert.Equal(t, "0.5", total["instant"].String())
	assert.Equal(t, []string{FeeSlow, FeeAverage, FeeFast, "instant"}, total.Levels())

	// operands are not modified
	assert.Equal(t, "0.001", one[FeeSlow].String())
	assert.Len(t, one, 3)
}

func TestBuildRegistry(t *testing.T) {
	first := StatusTable{
		"A":       {Step: 0, Label: "first A"},
		"SUCCESS": {Step: 1, Label: "Completed", Terminal: true},
	}
	second := StatusTable{
		"B":       {Step: 0, Label: "second B"},
		"SUCCESS": {Step: 2, Label: "Done", Terminal: true},
	}

	table, err := BuildRegistry(
		[]Layer{{Name: "first", Statuses: first}, {Name: "second", Statuses: second}},
		map[string]Override{
			"SUCCESS": {Base: "first", Edit: func(d StatusDescriptor) StatusDescriptor {
				d.Step = 5
				return d
			}},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, "first A", table["A"].Label)
	assert.Equal(t, "second B", table["B"].Label)
	assert.Equal(t, "Completed", table["SUCCESS"].Label)
	assert.Equal(t, 5, table["SUCCESS"].Step)
	assert.True(t, table.IsTerminal("SUCCESS"))
	assert.Equal(t, []string{"A", "B", "SUCCESS"}, table.Keys())
}

func TestBuildRegistryRejectsUnknownOverride(t *testing.T) {
	_, err := BuildRegistry(
		[]Layer{{Name: "first", Statuses: StatusTable{"A": {}}}},
		map[string]Override{"TYPO": {Base: "first"}},
	)
	assert.Error(t, err)

	_, err = BuildRegistry(
		[]Layer{{Name: "first", Statuses: StatusTable{"A": {}}}},
		map[string]Override{"A": {Base: "missing"}},
	)
	assert.Error(t, err)
}

func TestRenderLabel(t *testing.T) {
	s := boostSwap()
	assert.Equal(t, "Swapping ETH for DAI", RenderLabel("Swapping {bridgeAsset} for {to}", s))
	assert.Equal(t, "Locking BTC", RenderLabel("Locking {from}", s))
}

func TestFromLegOne(t *testing.T) {
	assert.Nil(t, FromLegOne(nil))

	plain := &Update{Status: "FUNDED"}
	assert.Same(t, plain, FromLegOne(plain))

	received := d("2990000000000000000")
	mapped := FromLegOne(&Update{Status: "READY_TO_CLAIM", ToAmount: &received})
	assert.Nil(t, mapped.ToAmount)
	require.NotNil(t, mapped.BridgeAssetAmount)
	assert.True(t, mapped.BridgeAssetAmount.Equal(received))

	s := boostSwap()
	s.Apply(mapped)
	assert.Equal(t, "3000000000", s.ToAmount.String())
	assert.True(t, s.BridgeAssetAmount.Equal(received))
}
