package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAgentServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/swap/marketinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"from":"BTC","to":"ETH","rate":"30","min":"0.001","max":"2","minConf":1,"status":"ACTIVE"}]`))
	})
	mux.HandleFunc("/api/swap/order", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "BTC", req["from"])
		assert.Equal(t, "ETH", req["to"])
		assert.Equal(t, "100000000", req["fromAmount"])

		w.Write([]byte(`{"id":"order-1","from":"BTC","to":"ETH","fromAmount":"100000000","toAmount":"30000000000000000000","status":"QUOTE","expiresAt":1700000000000}`))
	})
	mux.HandleFunc("/api/swap/order/order-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"order-1","status":"AGENT_FUNDED","toFundHash":"0xfund"}`))
	})
	mux.HandleFunc("/api/swap/order/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"order not found"}`))
	})

	return httptest.NewServer(mux)
}

func TestAgentClient(t *testing.T) {
	srv := newAgentServer(t)
	defer srv.Close()

	c := NewAgentClient(srv.URL+"/", 5*time.Second)
	ctx := context.Background()

	markets, err := c.GetMarketInfo(ctx)
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "30", markets[0].Rate.String())
	assert.Equal(t, "0.001", markets[0].Min.String())

	order, err := c.CreateOrder(ctx, "BTC", "ETH", decimal.NewFromInt(100000000))
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "30000000000000000000", order.ToAmount.String())
	assert.True(t, order.Expired(time.UnixMilli(1700000000000)))
	assert.False(t, order.Expired(time.UnixMilli(1699999999999)))

	order, err = c.GetOrder(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, OrderAgentFunded, order.Status)
	assert.Equal(t, "0xfund", order.ToFundHash)
}

func TestAgentClientError(t *testing.T) {
	srv := newAgentServer(t)
	defer srv.Close()

	c := NewAgentClient(srv.URL, 5*time.Second)

	_, err := c.GetOrder(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "order not found")
}
