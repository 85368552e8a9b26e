package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Order states reported by a market maker agent
const (
	OrderQuote                = "QUOTE"
	OrderUserFundedUnverified = "USER_FUNDED_UNVERIFIED"
	OrderUserFunded           = "USER_FUNDED"
	OrderAgentPending         = "AGENT_PENDING"
	OrderAgentFunded          = "AGENT_FUNDED"
	OrderUserClaimed          = "USER_CLAIMED"
	OrderAgentClaimed         = "AGENT_CLAIMED"
	OrderAgentRefunded        = "AGENT_REFUNDED"
	OrderUserRefunded         = "USER_REFUNDED"
	OrderQuoteExpired         = "QUOTE_EXPIRED"
)

// MarketInfo is one market advertised by an agent. Min and Max bound the
// from amount in human units.
type MarketInfo struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Rate    decimal.Decimal `json:"rate"`
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	MinConf int             `json:"minConf"`
	Status  string          `json:"status"`
}

// Order is an agent's view of an atomic swap. Amounts are in smallest units.
type Order struct {
	ID         string          `json:"id"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	FromAmount decimal.Decimal `json:"fromAmount"`
	ToAmount   decimal.Decimal `json:"toAmount"`
	Rate       decimal.Decimal `json:"rate"`
	Status     string          `json:"status"`
	ExpiresAt  int64           `json:"expiresAt"` // unix milliseconds
	MinConf    int             `json:"minConf"`

	FromCounterPartyAddress string `json:"fromCounterPartyAddress"`
	ToCounterPartyAddress   string `json:"toCounterPartyAddress"`

	FromFundHash   string `json:"fromFundHash,omitempty"`
	ToFundHash     string `json:"toFundHash,omitempty"`
	ToClaimHash    string `json:"toClaimHash,omitempty"`
	FromClaimHash  string `json:"fromClaimHash,omitempty"`
	FromRefundHash string `json:"fromRefundHash,omitempty"`
	ToRefundHash   string `json:"toRefundHash,omitempty"`
}

// Expired reports whether the order's quote has lapsed at now
func (o *Order) Expired(now time.Time) bool {
	return o.ExpiresAt > 0 && now.UnixMilli() >= o.ExpiresAt
}

type createOrderRequest struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	FromAmount decimal.Decimal `json:"fromAmount"`
}

// AgentClient talks to a market maker agent's REST API
type AgentClient struct {
	baseURL string
	client  *resty.Client
}

// NewAgentClient creates a client for the agent at baseURL
func NewAgentClient(baseURL string, timeout time.Duration) *AgentClient {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &AgentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// GetMarketInfo lists the agent's markets
func (c *AgentClient) GetMarketInfo(ctx context.Context) ([]MarketInfo, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.baseURL + "/api/swap/marketinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to get market info: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, agentError(resp)
	}

	var markets []MarketInfo
	if err := json.Unmarshal(resp.Body(), &markets); err != nil {
		return nil, fmt.Errorf("failed to decode market info: %w", err)
	}

	return markets, nil
}

// CreateOrder opens an order selling fromAmount (smallest units) of from
func (c *AgentClient) CreateOrder(ctx context.Context, from, to string, fromAmount decimal.Decimal) (*Order, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(createOrderRequest{From: from, To: to, FromAmount: fromAmount}).
		Post(c.baseURL + "/api/swap/order")
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return nil, agentError(resp)
	}

	var order Order
	if err := json.Unmarshal(resp.Body(), &order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}

	return &order, nil
}

// GetOrder fetches the current state of an order
func (c *AgentClient) GetOrder(ctx context.Context, id string) (*Order, error) {
	resp, err := c.client.R().SetContext(ctx).Get(fmt.Sprintf("%s/api/swap/order/%s", c.baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	if resp.StatusCode() != 200 {
		return nil, agentError(resp)
	}

	var order Order
	if err := json.Unmarshal(resp.Body(), &order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}

	return &order, nil
}

func agentError(resp *resty.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		return fmt.Errorf("agent returned status %d: %s", resp.StatusCode(), body.Error)
	}
	return fmt.Errorf("agent returned status %d", resp.StatusCode())
}
