package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is the account state read fresh from the ledger on every
// poll. It is never cached across cycles.
type AccountSnapshot struct {
	AccountID     string
	Sequence      int64
	TotalNative   decimal.Decimal
	NumSubentries int
	NumSigners    int
}

// LockedBalance is one claimable-balance record held for the monitored
// account. UnlockTime is nil when the record carries no absolute-time
// predicate; such balances are reported but never scheduled.
type LockedBalance struct {
	BalanceID  string
	Amount     decimal.Decimal
	UnlockTime *time.Time
}

// MonitorState classifies the scheduler's view of the monitored account.
type MonitorState string

const (
	StateIdle     MonitorState = "IDLE"
	StateWatching MonitorState = "WATCHING"
	StateArmed    MonitorState = "ARMED"
	StateStriking MonitorState = "STRIKING"
)

// Transaction kinds recorded in the submission journal.
const (
	TxKindForward          = "forward"
	TxKindSponsoredForward = "sponsored_forward"
	TxKindClaimForward     = "claim_forward"
	TxKindClaimOnly        = "claim_only"
)

// SubmitResult reports the outcome of one transaction submission.
type SubmitResult struct {
	Successful  bool
	DryRun      bool
	Hash        string
	ResultCodes []string
}

// Submission is one journal entry for a submitted (or dry-run) transaction.
type Submission struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	TxHash      string `json:"txHash,omitempty"`
	Amount      string `json:"amount,omitempty"`
	BalanceID   string `json:"balanceId,omitempty"`
	Successful  bool   `json:"successful"`
	DryRun      bool   `json:"dryRun"`
	ResultCodes string `json:"resultCodes,omitempty"`
	SubmittedAt string `json:"submittedAt"`
}
