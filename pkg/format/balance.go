package format

import (
	"github.com/shopspring/decimal"

	"boost-swap/pkg/asset"
)

// ValueDecimals is the number of decimals shown for balances
const ValueDecimals = 6

// PrettyBalance renders an amount given in smallest units as a short human
// readable quantity, rounding down. Unknown assets are rendered unconverted.
func PrettyBalance(units decimal.Decimal, code string) string {
	amount, err := asset.UnitToCurrency(code, units)
	if err != nil {
		return units.String()
	}
	return amount.RoundDown(ValueDecimals).String()
}

// Amount renders an amount in smallest units together with its asset code
func Amount(units decimal.Decimal, code string) string {
	return PrettyBalance(units, code) + " " + code
}
