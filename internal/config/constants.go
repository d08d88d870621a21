package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reserves
const (
	// AccountReserveEntries is the number of base reserves a bare account
	// must hold (2 base reserves of 0.5 = 1.0 minimum on Pi mainnet).
	AccountReserveEntries = 2
)

// Amounts. These are policy values, not tunables.
var (
	// DustThreshold is the minimum spendable balance worth forwarding.
	DustThreshold = decimal.RequireFromString("0.01")

	// FeeBufferMin and FeeBufferFraction define the fee buffer withheld from
	// every forward: max(FeeBufferMin, amount * FeeBufferFraction).
	FeeBufferMin      = decimal.RequireFromString("0.01")
	FeeBufferFraction = decimal.RequireFromString("0.05")

	// SponsorFullSendCutover: below this spendable balance a configured fee
	// sponsor covers fees and the entire balance is forwarded.
	SponsorFullSendCutover = decimal.RequireFromString("0.02")

	// LowSponsorBalance triggers a startup warning when the sponsor account
	// cannot plausibly cover fees.
	LowSponsorBalance = decimal.RequireFromString("0.1")
)

// AmountPrecision is the ledger's native decimal precision for payments.
const AmountPrecision = 6

// Transaction fees and validity windows. Fees scale with operation count;
// two-operation transactions also get a longer validity window to absorb
// build/broadcast latency.
const (
	BaseFeeForward      = 100_000
	BaseFeeClaimOnly    = 200_000
	BaseFeeClaimForward = 300_000

	TxTimeoutForward      = 30 // seconds
	TxTimeoutClaimOnly    = 10
	TxTimeoutClaimForward = 15
)

// Scheduling
const (
	// StrikeThreshold: at or under this remaining time a locked balance is
	// claimed immediately.
	StrikeThreshold = 500 * time.Millisecond

	// ArmedHorizon: inside this window the scheduler reports readiness.
	ArmedHorizon = 30 * time.Second

	PollFast          = 1 * time.Second
	PollFastHorizon   = 10 * time.Second
	PollMedium        = 5 * time.Second
	PollMediumHorizon = 60 * time.Second
	PollSlow          = 30 * time.Second

	FailureBackoff = 30 * time.Second
)

// Claim confirmation polling after a claim-only fallback.
const (
	ClaimConfirmAttempts = 5
	ClaimConfirmInterval = 1 * time.Second
)

// Horizon transport
const (
	ReadTimeout      = 30 * time.Second
	ClaimInfoTimeout = 5 * time.Second
	SubmitTimeout    = 30 * time.Second
	RateLimitHorizon = 10 // requests per second
)

// Server
const (
	ServerReadTimeout  = 30 * time.Second
	ServerWriteTimeout = 60 * time.Second
)

// Logging
const (
	LogFilePattern = "pisweep-%s.log" // %s = YYYY-MM-DD
	LogMaxAgeDays  = 30
)

// Database
const (
	DBBusyTimeout = 5000 // milliseconds
)
