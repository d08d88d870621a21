// Package reserve computes the spendable balance of an account after the
// ledger's reserve requirements.
package reserve

import (
	"github.com/shopspring/decimal"

	"github.com/atelis/pisweep/internal/models"
)

// Config holds the network's reserve rules.
type Config struct {
	// BaseReserve is the per-slot minimum balance (0.5 on Pi mainnet).
	BaseReserve decimal.Decimal
	// AccountEntries is the number of base reserves a bare account holds.
	AccountEntries int
}

// Spendable returns the balance available for payment after reserves:
//
//	reserve   = AccountEntries*BaseReserve + (signers-1 + subentries)*BaseReserve
//	spendable = max(0, total - reserve)
//
// The master key is one of the reported signers but does not consume a
// reserve slot, hence the -1. Result is never negative.
func Spendable(snap models.AccountSnapshot, cfg Config) decimal.Decimal {
	spendable := snap.TotalNative.Sub(Reserved(snap, cfg))
	if spendable.Sign() < 0 {
		return decimal.Zero
	}
	return spendable
}

// Reserved returns the total reserve requirement for the snapshot.
func Reserved(snap models.AccountSnapshot, cfg Config) decimal.Decimal {
	slots := cfg.AccountEntries

	extra := snap.NumSigners - 1 + snap.NumSubentries
	if extra > 0 {
		slots += extra
	}

	return cfg.BaseReserve.Mul(decimal.NewFromInt(int64(slots)))
}
