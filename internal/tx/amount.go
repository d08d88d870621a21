package tx

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atelis/pisweep/internal/config"
)

// ForwardAmount derives the payment amount for a forward from the amount
// being moved: a fee buffer of max(FeeBufferMin, amount*FeeBufferFraction)
// is withheld and the result rounded to the ledger's 6-decimal precision.
// Returns ErrAmountTooSmall when nothing would remain to forward.
func ForwardAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	buffer := decimal.Max(config.FeeBufferMin, amount.Mul(config.FeeBufferFraction))

	forward := amount.Sub(buffer).Round(config.AmountPrecision)
	if forward.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s after %s fee buffer",
			config.ErrAmountTooSmall, amount.String(), buffer.String())
	}

	return forward, nil
}
