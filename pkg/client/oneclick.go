package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
)

// ErrTokenNotFound is returned when the API does not list a token
var ErrTokenNotFound = errors.New("token not found")

// Slippage tolerance sent with every quote request, in basis points
const quoteSlippageBps = 300

// RouteRequest asks the 1Click API for a route between two tokens
type RouteRequest struct {
	FromSymbol string
	FromChain  string
	ToSymbol   string
	ToChain    string
	Amount     string // smallest units of the from token
	Recipient  string
	RefundTo   string
	Dry        bool // price only, no deposit address
}

// Route is a priced route, with a deposit address unless it was a dry run
type Route struct {
	DepositAddress     string
	DepositMemo        string
	AmountInFormatted  string
	AmountOutFormatted string
	TimeEstimate       float64
}

// RouteStatus is the execution state of a route
type RouteStatus struct {
	Status             string
	AmountOutFormatted string
	DestinationTxHash  string
	UpdatedAt          time.Time
}

// OneClickClient wraps the 1Click SDK
type OneClickClient struct {
	client   *oneclick.APIClient
	jwtToken string
}

// NewOneClickClient creates a new 1Click API client
func NewOneClickClient(jwtToken string) *OneClickClient {
	config := oneclick.NewConfiguration()

	return &OneClickClient{
		client:   oneclick.NewAPIClient(config),
		jwtToken: jwtToken,
	}
}

func (c *OneClickClient) auth(ctx context.Context) context.Context {
	return context.WithValue(ctx, oneclick.ContextAccessToken, c.jwtToken)
}

// GetSupportedTokens retrieves all supported tokens
func (c *OneClickClient) GetSupportedTokens(ctx context.Context) ([]oneclick.TokenResponse, error) {
	resp, httpResp, err := c.client.OneClickAPI.GetTokens(c.auth(ctx)).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	return resp, nil
}

// FindTokenOnChain searches for a token by symbol on a specific chain
func (c *OneClickClient) FindTokenOnChain(ctx context.Context, symbol, chain string) (*oneclick.TokenResponse, error) {
	tokens, err := c.GetSupportedTokens(ctx)
	if err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(symbol)
	chain = strings.ToLower(chain)

	for _, token := range tokens {
		if strings.ToUpper(token.GetSymbol()) == symbol &&
			strings.ToLower(token.GetBlockchain()) == chain {
			return &token, nil
		}
	}

	return nil, fmt.Errorf("%w: '%s' on chain '%s'", ErrTokenNotFound, symbol, chain)
}

// Quote prices a route. Dry requests do not reserve a deposit address.
func (c *OneClickClient) Quote(ctx context.Context, req RouteRequest) (*Route, error) {
	sourceToken, err := c.FindTokenOnChain(ctx, req.FromSymbol, req.FromChain)
	if err != nil {
		return nil, fmt.Errorf("source token error: %w", err)
	}
	destToken, err := c.FindTokenOnChain(ctx, req.ToSymbol, req.ToChain)
	if err != nil {
		return nil, fmt.Errorf("destination token error: %w", err)
	}

	if req.Recipient == "" {
		return nil, fmt.Errorf("recipient address is required")
	}
	refundTo := req.RefundTo
	if refundTo == "" {
		refundTo = req.Recipient
	}

	// Routes stay valid for 24 hours
	deadline := time.Now().Add(24 * time.Hour)

	quoteReq := oneclick.NewQuoteRequest(
		req.Dry,                  // dry
		"EXACT_INPUT",            // swapType
		quoteSlippageBps,         // slippageTolerance
		sourceToken.GetAssetId(), // originAsset
		"ORIGIN_CHAIN",           // depositType
		destToken.GetAssetId(),   // destinationAsset
		req.Amount,               // amount in smallest unit
		refundTo,                 // refundTo
		"ORIGIN_CHAIN",           // refundType
		req.Recipient,            // recipient
		"DESTINATION_CHAIN",      // recipientType
		deadline,                 // deadline
	)

	resp, httpResp, err := c.client.OneClickAPI.GetQuote(c.auth(ctx)).QuoteRequest(*quoteReq).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty quote response")
	}

	quote := resp.GetQuote()
	route := &Route{
		DepositAddress:     quote.GetDepositAddress(),
		AmountInFormatted:  quote.GetAmountInFormatted(),
		AmountOutFormatted: quote.GetAmountOutFormatted(),
		TimeEstimate:       float64(quote.GetTimeEstimate()),
	}
	if quote.HasDepositMemo() {
		route.DepositMemo = quote.GetDepositMemo()
	}

	return route, nil
}

// Status checks the execution status of a route by its deposit address
func (c *OneClickClient) Status(ctx context.Context, depositAddress string) (*RouteStatus, error) {
	resp, httpResp, err := c.client.OneClickAPI.GetExecutionStatus(c.auth(ctx)).DepositAddress(depositAddress).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	details := resp.GetSwapDetails()
	status := &RouteStatus{
		Status:    strings.ToUpper(resp.GetStatus()),
		UpdatedAt: resp.GetUpdatedAt(),
	}
	if details.HasAmountOutFormatted() {
		status.AmountOutFormatted = details.GetAmountOutFormatted()
	}
	if txs := details.GetDestinationChainTxHashes(); len(txs) > 0 {
		status.DestinationTxHash = txs[0].GetHash()
	}

	return status, nil
}

// SubmitDeposit reports the deposit transaction hash to speed up detection
func (c *OneClickClient) SubmitDeposit(ctx context.Context, depositAddress, txHash string) error {
	req := oneclick.NewSubmitDepositTxRequest(depositAddress, txHash)

	_, httpResp, err := c.client.OneClickAPI.SubmitDepositTx(c.auth(ctx)).SubmitDepositTxRequest(*req).Execute()
	if err != nil {
		return fmt.Errorf("failed to submit deposit: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 && httpResp.StatusCode != 201 {
		return fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	return nil
}
