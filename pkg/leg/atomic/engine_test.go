package atomic

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boost-swap/pkg/client"
	"boost-swap/pkg/swap"
)

var now = time.Unix(1700000000, 0)

type fakeAgent struct {
	markets    []client.MarketInfo
	order      client.Order
	err        error
	orderCalls int
}

func (a *fakeAgent) GetMarketInfo(ctx context.Context) ([]client.MarketInfo, error) {
	return a.markets, a.err
}

func (a *fakeAgent) CreateOrder(ctx context.Context, from, to string, fromAmount decimal.Decimal) (*client.Order, error) {
	if a.err != nil {
		return nil, a.err
	}
	o := a.order
	o.From, o.To, o.FromAmount = from, to, fromAmount
	return &o, nil
}

func (a *fakeAgent) GetOrder(ctx context.Context, id string) (*client.Order, error) {
	a.orderCalls++
	if a.err != nil {
		return nil, a.err
	}
	o := a.order
	return &o, nil
}

type fakeReceipts struct {
	receipt *types.Receipt
	err     error
	head    uint64
}

func (r *fakeReceipts) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return r.receipt, r.err
}

func (r *fakeReceipts) BlockNumber(ctx context.Context) (uint64, error) {
	return r.head, nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newEngine(agent *fakeAgent, opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return New(map[swap.Network]Agent{swap.Mainnet: agent}, opts...)
}

func btcEthMarket() []client.MarketInfo {
	return []client.MarketInfo{{From: "BTC", To: "ETH", Rate: d("30"), Min: d("0.001"), Max: d("2")}}
}

func TestGetQuote(t *testing.T) {
	e := newEngine(&fakeAgent{markets: btcEthMarket()})

	q, err := e.GetQuote(context.Background(), swap.Mainnet, "BTC", "ETH", d("1"))
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "100000000", q.FromAmount.String())
	assert.Equal(t, "30000000000000000000", q.ToAmount.String())
}

func TestGetQuoteNoRoute(t *testing.T) {
	agent := &fakeAgent{markets: btcEthMarket()}
	e := newEngine(agent)
	ctx := context.Background()

	for name, tc := range map[string]struct {
		from, to string
		amount   string
	}{
		"unknown market": {"BTC", "SOL", "1"},
		"below min":      {"BTC", "ETH", "0.0001"},
		"above max":      {"BTC", "ETH", "3"},
		"token":          {"BTC", "DAI", "1"},
	} {
		t.Run(name, func(t *testing.T) {
			q, err := e.GetQuote(ctx, swap.Mainnet, tc.from, tc.to, d(tc.amount))
			assert.NoError(t, err)
			assert.Nil(t, q)
		})
	}

	_, err := e.GetQuote(ctx, swap.Testnet, "BTC", "ETH", d("1"))
	assert.Error(t, err)
}

func TestGetQuoteError(t *testing.T) {
	agentErr := errors.New("agent down")
	e := newEngine(&fakeAgent{err: agentErr})

	_, err := e.GetQuote(context.Background(), swap.Mainnet, "BTC", "ETH", d("1"))
	assert.ErrorIs(t, err, agentErr)
}

func TestNewSwap(t *testing.T) {
	agent := &fakeAgent{order: client.Order{
		ID:                      "order-1",
		ToAmount:                d("29900000000000000000"),
		ExpiresAt:               now.Add(time.Hour).UnixMilli(),
		FromCounterPartyAddress: "bc1agent",
		ToCounterPartyAddress:   "0xagent",
	}}
	e := newEngine(agent)

	s, err := e.NewSwap(context.Background(), swap.Mainnet, "wallet-1", swap.Quote{
		From: "BTC", To: "ETH", FromAmount: d("100000000"), ToAmount: d("30000000000000000000"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StatusInitiated, s.Status)
	assert.Equal(t, "29900000000000000000", s.ToAmount.String())
	assert.Equal(t, "order-1", s.Field(FieldOrderID))
	assert.Equal(t, "0xagent", s.Field(FieldToCounterPartyAddress))
	assert.Equal(t, "wallet-1", s.WalletID)
	assert.True(t, s.StartTime.Equal(now))
}

func TestPerformNextSwapAction(t *testing.T) {
	future := now.Add(time.Hour).UnixMilli()
	past := now.Add(-time.Hour).UnixMilli()

	tests := []struct {
		name   string
		status string
		order  client.Order
		want   string
	}{
		{"waiting for user funds", StatusInitiated, client.Order{Status: client.OrderQuote, ExpiresAt: future}, ""},
		{"user funds reported", StatusInitiated, client.Order{Status: client.OrderUserFundedUnverified, FromFundHash: "fund", ExpiresAt: future}, StatusInitiationReported},
		{"quote expired", StatusInitiated, client.Order{Status: client.OrderQuote, ExpiresAt: past}, StatusQuoteExpired},
		{"agent reports expiry", StatusInitiated, client.Order{Status: client.OrderQuoteExpired}, StatusQuoteExpired},
		{"agent verified funds", StatusInitiationReported, client.Order{Status: client.OrderUserFunded}, StatusInitiationConfirmed},
		{"unverified funds", StatusInitiationReported, client.Order{Status: client.OrderUserFundedUnverified}, ""},
		{"native escrow funded", StatusInitiationConfirmed, client.Order{Status: client.OrderUserFunded}, StatusFunded},
		{"agent funding seen", StatusFunded, client.Order{Status: client.OrderAgentPending, ToFundHash: "0xfund", ExpiresAt: future}, StatusConfirmCounterPartyInitiation},
		{"agent not funded", StatusFunded, client.Order{Status: client.OrderUserFunded, ExpiresAt: future}, ""},
		{"agent never funded", StatusFunded, client.Order{Status: client.OrderUserFunded, ExpiresAt: past}, StatusWaitingForRefund},
		{"agent funding confirmed", StatusConfirmCounterPartyInitiation, client.Order{Status: client.OrderAgentFunded, ToFundHash: "0xfund", ExpiresAt: future}, StatusReadyToClaim},
		{"claim broadcast", StatusReadyToClaim, client.Order{Status: client.OrderAgentFunded, ToClaimHash: "0xclaim", ExpiresAt: future}, StatusWaitingForClaimConfirmations},
		{"agent refunded", StatusReadyToClaim, client.Order{Status: client.OrderAgentRefunded}, StatusWaitingForRefund},
		{"refund window open", StatusWaitingForRefund, client.Order{Status: client.OrderAgentRefunded, ExpiresAt: past}, StatusGetRefund},
		{"refund broadcast", StatusGetRefund, client.Order{Status: client.OrderAgentRefunded, FromRefundHash: "refund"}, StatusWaitingForRefundConfirmations},
		{"refund confirmed", StatusWaitingForRefundConfirmations, client.Order{Status: client.OrderUserRefunded}, StatusRefunded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(&fakeAgent{order: tt.order})
			s := &swap.Swap{ID: "s", Status: tt.status, To: "ETH", Extra: map[string]string{FieldOrderID: "order-1"}}

			u, err := e.PerformNextSwapAction(context.Background(), nil, swap.Mainnet, "w", s)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, u)
				return
			}
			require.NotNil(t, u)
			assert.Equal(t, tt.want, u.Status)
			assert.Equal(t, statuses.IsTerminal(tt.want), u.EndTime != nil)
		})
	}
}

func TestPerformNextSwapActionCarriesOrderData(t *testing.T) {
	e := newEngine(&fakeAgent{order: client.Order{
		Status:     client.OrderAgentFunded,
		ToFundHash: "0xfund",
		ToAmount:   d("29000000000000000000"),
	}})
	s := &swap.Swap{ID: "s", Status: StatusConfirmCounterPartyInitiation, To: "ETH", ToAmount: d("30000000000000000000"), Extra: map[string]string{FieldOrderID: "order-1"}}

	u, err := e.PerformNextSwapAction(context.Background(), nil, swap.Mainnet, "w", s)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, StatusReadyToClaim, u.Status)
	assert.Equal(t, "0xfund", u.Fields[FieldToFundHash])
	require.NotNil(t, u.ToAmount)
	assert.Equal(t, "29000000000000000000", u.ToAmount.String())
}

func TestPerformNextSwapActionSkips(t *testing.T) {
	agent := &fakeAgent{}
	e := newEngine(agent)
	ctx := context.Background()

	for _, status := range []string{StatusSuccess, StatusRefunded, StatusQuoteExpired, "APPROVE_CONFIRMED"} {
		u, err := e.PerformNextSwapAction(ctx, nil, swap.Mainnet, "w", &swap.Swap{Status: status})
		assert.NoError(t, err)
		assert.Nil(t, u)
	}
	assert.Zero(t, agent.orderCalls)

	_, err := e.PerformNextSwapAction(ctx, nil, swap.Mainnet, "w", &swap.Swap{ID: "s", Status: StatusFunded})
	assert.Error(t, err)
}

func TestWaitForClaimConfirmationsOnChain(t *testing.T) {
	claimed := &swap.Swap{ID: "s", Status: StatusWaitingForClaimConfirmations, To: "ETH", Extra: map[string]string{FieldOrderID: "order-1", FieldToClaimHash: "0xclaim"}}
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(100)}
	ctx := context.Background()

	t.Run("pending", func(t *testing.T) {
		e := newEngine(&fakeAgent{}, WithReceiptReader("ethereum", &fakeReceipts{err: ethereum.NotFound}, 3))
		u, err := e.WaitForClaimConfirmations(ctx, claimed, swap.Mainnet, "w")
		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("not enough confirmations", func(t *testing.T) {
		e := newEngine(&fakeAgent{}, WithReceiptReader("ethereum", &fakeReceipts{receipt: receipt, head: 101}, 3))
		u, err := e.WaitForClaimConfirmations(ctx, claimed, swap.Mainnet, "w")
		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("confirmed", func(t *testing.T) {
		e := newEngine(&fakeAgent{}, WithReceiptReader("ethereum", &fakeReceipts{receipt: receipt, head: 102}, 3))
		u, err := e.WaitForClaimConfirmations(ctx, claimed, swap.Mainnet, "w")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, StatusSuccess, u.Status)
		assert.Equal(t, "3", u.Fields[FieldClaimConfirmations])
		require.NotNil(t, u.EndTime)
		assert.True(t, u.EndTime.Equal(now))
	})

	t.Run("reverted", func(t *testing.T) {
		reverted := &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(100)}
		e := newEngine(&fakeAgent{}, WithReceiptReader("ethereum", &fakeReceipts{receipt: reverted, head: 200}, 1))
		u, err := e.WaitForClaimConfirmations(ctx, claimed, swap.Mainnet, "w")
		require.NoError(t, err)
		// never steps back to READY_TO_CLAIM
		assert.Nil(t, u)
		assert.Equal(t, StatusWaitingForClaimConfirmations, claimed.Status)
	})

	t.Run("rpc error", func(t *testing.T) {
		rpcErr := errors.New("connection refused")
		e := newEngine(&fakeAgent{}, WithReceiptReader("ethereum", &fakeReceipts{err: rpcErr}, 1))
		_, err := e.WaitForClaimConfirmations(ctx, claimed, swap.Mainnet, "w")
		assert.ErrorIs(t, err, rpcErr)
	})
}

func TestWaitForClaimConfirmationsFallsBackToAgent(t *testing.T) {
	s := &swap.Swap{ID: "s", Status: StatusWaitingForClaimConfirmations, To: "ETH", Extra: map[string]string{FieldOrderID: "order-1"}}
	ctx := context.Background()

	e := newEngine(&fakeAgent{order: client.Order{Status: client.OrderUserClaimed}})
	u, err := e.WaitForClaimConfirmations(ctx, s, swap.Mainnet, "w")
	assert.NoError(t, err)
	assert.Nil(t, u)

	e = newEngine(&fakeAgent{order: client.Order{Status: client.OrderAgentClaimed}})
	u, err = e.WaitForClaimConfirmations(ctx, s, swap.Mainnet, "w")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, StatusSuccess, u.Status)

	// driven through the regular step as well
	u, err = e.PerformNextSwapAction(ctx, nil, swap.Mainnet, "w", s)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, StatusSuccess, u.Status)
}

func TestEstimateFees(t *testing.T) {
	e := newEngine(&fakeAgent{})
	ctx := context.Background()
	quote := swap.Quote{From: "BTC", To: "ETH"}

	fees, err := e.EstimateFees(ctx, swap.FeeRequest{
		TxType:    swap.TxSwapInitiation,
		Quote:     quote,
		FeePrices: swap.FeePrices{swap.FeeSlow: d("10"), swap.FeeFast: d("20")},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.000037", fees[swap.FeeSlow].String())
	assert.Equal(t, "0.000074", fees[swap.FeeFast].String())

	fees, err = e.EstimateFees(ctx, swap.FeeRequest{
		TxType:    swap.TxSwapClaim,
		Quote:     quote,
		FeePrices: swap.FeePrices{swap.FeeAverage: d("20")},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.0009", fees[swap.FeeAverage].String())

	_, err = e.EstimateFees(ctx, swap.FeeRequest{TxType: swap.TxSwap, Quote: quote})
	assert.Error(t, err)
}

func TestStatusTable(t *testing.T) {
	e := newEngine(&fakeAgent{})
	table := e.Statuses()

	for key := range table {
		_, ok := rank[key]
		assert.True(t, ok, "status %s has no rank", key)
	}
	for _, key := range []string{StatusSuccess, StatusRefunded, StatusQuoteExpired} {
		assert.True(t, table.IsTerminal(key))
	}
	assert.False(t, table.IsTerminal(StatusFunded))
	assert.Len(t, e.TxTypes(), 2)

	s := &swap.Swap{From: "BTC", To: "ETH", ToAmount: d("1500000000000000000")}
	assert.Equal(t, "Counterparty sent 1.5 ETH to escrow", table[StatusConfirmCounterPartyInitiation].Notification(s).Message)
}
