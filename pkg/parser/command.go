package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"boost-swap/pkg/asset"
	"boost-swap/pkg/types"
)

// Pattern: <amount> <source_token> TO <dest_token>
var swapPattern = regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 BTC to DAI"
//   - "0.5 BTC to USDC"
func ParseSwapCommand(command string) (*types.SwapRequest, error) {
	command = strings.TrimSpace(strings.ToUpper(command))
	command = strings.TrimPrefix(command, "SWAP ")

	matches := swapPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <asset> to <token>' (e.g., 'swap 1 BTC to DAI')")
	}

	amount, err := decimal.NewFromString(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", matches[1], err)
	}

	return &types.SwapRequest{
		Amount: amount,
		From:   NormalizeAssetCode(matches[2]),
		To:     NormalizeAssetCode(matches[3]),
	}, nil
}

// ValidateSwapRequest checks that a request names known assets and a
// positive amount
func ValidateSwapRequest(req *types.SwapRequest) error {
	if !req.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	if req.From == "" {
		return fmt.Errorf("source asset is required")
	}
	if req.To == "" {
		return fmt.Errorf("destination asset is required")
	}
	if _, err := asset.Get(req.From); err != nil {
		return err
	}
	if _, err := asset.Get(req.To); err != nil {
		return err
	}
	return nil
}

// NormalizeAssetCode maps common aliases to wallet asset codes
func NormalizeAssetCode(code string) string {
	code = strings.TrimSpace(strings.ToUpper(code))

	aliases := map[string]string{
		"WETH": "ETH",
		"WSOL": "SOL",
		"POL":  "MATIC",
		"XBT":  "BTC",
	}

	if normalized, exists := aliases[code]; exists {
		return normalized
	}

	return code
}
