package tx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/atelis/pisweep/internal/config"
	"github.com/atelis/pisweep/internal/horizon"
	"github.com/atelis/pisweep/internal/models"
	"github.com/atelis/pisweep/internal/reserve"
)

// Clock lets tests inject synthetic time into confirmation polling.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration)
}

// Sweeper moves funds off the monitored account: it forwards spendable
// balances to the safe destination and claims unlocking balances, forwarding
// them atomically in the same transaction when the amount is known.
type Sweeper struct {
	ledger     *horizon.Client
	asm        *Assembler
	sub        *Submitter
	primary    *keypair.Full
	sponsor    *keypair.Full // nil when no fee sponsor is configured
	reserveCfg reserve.Config
	clock      Clock
}

// NewSweeper creates a sweeper. sponsor may be nil.
func NewSweeper(ledger *horizon.Client, asm *Assembler, sub *Submitter, primary, sponsor *keypair.Full, reserveCfg reserve.Config, clock Clock) *Sweeper {
	slog.Info("sweeper created",
		"publicKey", primary.Address(),
		"sponsored", sponsor != nil,
	)

	return &Sweeper{
		ledger:     ledger,
		asm:        asm,
		sub:        sub,
		primary:    primary,
		sponsor:    sponsor,
		reserveCfg: reserveCfg,
		clock:      clock,
	}
}

// ForwardAll sends the account's spendable balance to the safe destination.
// The balance is re-read here so the amount reflects the ledger at send
// time, never a prior cycle.
func (s *Sweeper) ForwardAll(ctx context.Context) error {
	snap := s.ledger.AccountSnapshot(ctx, s.primary.Address())
	spendable := reserve.Spendable(snap, s.reserveCfg)

	slog.Info("balance summary",
		"total", snap.TotalNative.String(),
		"reserved", reserve.Reserved(snap, s.reserveCfg).String(),
		"spendable", spendable.String(),
	)

	if spendable.Cmp(config.DustThreshold) <= 0 {
		slog.Info("no spendable funds after reserves and fees")
		return nil
	}

	var (
		amount  decimal.Decimal
		kind    string
		sponsor *keypair.Full
	)

	if s.sponsor != nil && spendable.Cmp(config.SponsorFullSendCutover) < 0 {
		// Balance too low to self-fund fees: the sponsor covers them and
		// the entire spendable amount is forwarded.
		amount = spendable
		kind = models.TxKindSponsoredForward
		sponsor = s.sponsor
		slog.Info("using fee sponsor, forwarding full spendable balance",
			"amount", amount.String(),
		)
	} else {
		forward, err := ForwardAmount(spendable)
		if errors.Is(err, config.ErrAmountTooSmall) {
			slog.Warn("spendable balance too small to forward", "spendable", spendable.String())
			return nil
		}
		if err != nil {
			return err
		}
		amount = forward
		kind = models.TxKindForward
		sponsor = s.sponsor
		slog.Info("forwarding spendable funds",
			"amount", amount.String(),
			"withheld", spendable.Sub(amount).String(),
		)
	}

	account, err := s.ledger.LoadAccount(ctx, s.primary.Address())
	if err != nil {
		return fmt.Errorf("load account for forward: %w", err)
	}
	source := txnbuild.NewSimpleAccount(account.AccountID, account.Sequence)

	signed, err := s.asm.Forward(&source, amount, s.primary, sponsor)
	if err != nil {
		return fmt.Errorf("assemble forward: %w", err)
	}

	if _, err := s.sub.Submit(ctx, signed, kind, amount.StringFixed(config.AmountPrecision), ""); err != nil {
		return fmt.Errorf("submit forward: %w", err)
	}

	return nil
}

// ClaimAndForward claims one unlocking balance. When the claimable amount is
// known the claim and forward run in one atomic transaction; otherwise it
// falls back to claim-only and forwards after the claim is confirmed.
func (s *Sweeper) ClaimAndForward(ctx context.Context, lb models.LockedBalance) error {
	// Spendable before the claim, for confirmation polling in the fallback.
	before := reserve.Spendable(s.ledger.AccountSnapshot(ctx, s.primary.Address()), s.reserveCfg)

	amount, err := s.ledger.ClaimableAmount(ctx, lb.BalanceID)
	known := err == nil && amount.Sign() > 0
	if err != nil {
		slog.Warn("could not fetch claimable amount, proceeding with claim-only fallback",
			"balanceID", lb.BalanceID,
			"error", err,
		)
	}

	account, err := s.ledger.LoadAccount(ctx, s.primary.Address())
	if err != nil {
		return fmt.Errorf("load account for claim: %w", err)
	}
	source := txnbuild.NewSimpleAccount(account.AccountID, account.Sequence)

	if known {
		forward, err := ForwardAmount(amount)
		if errors.Is(err, config.ErrAmountTooSmall) {
			slog.Warn("claim amount too small to forward after fees",
				"balanceID", lb.BalanceID,
				"amount", amount.String(),
			)
			return nil
		}
		if err != nil {
			return err
		}

		slog.Info("claiming and forwarding atomically",
			"balanceID", lb.BalanceID,
			"claimAmount", amount.String(),
			"forwardAmount", forward.String(),
		)

		signed, err := s.asm.ClaimForward(&source, lb.BalanceID, forward, s.primary, s.sponsor)
		if err != nil {
			return fmt.Errorf("assemble claim+forward: %w", err)
		}

		result, err := s.sub.Submit(ctx, signed, models.TxKindClaimForward, forward.StringFixed(config.AmountPrecision), lb.BalanceID)
		if err != nil {
			// The balance stays claimable until consumed; a later cycle
			// retries it.
			return fmt.Errorf("%w: balance %s: %s", config.ErrClaimFailed, lb.BalanceID, err)
		}

		slog.Info("claim and forward succeeded",
			"balanceID", lb.BalanceID,
			"hash", result.Hash,
			"forwarded", forward.String(),
		)
		return nil
	}

	slog.Info("claiming without known amount", "balanceID", lb.BalanceID)

	signed, err := s.asm.ClaimOnly(&source, lb.BalanceID, s.primary, s.sponsor)
	if err != nil {
		return fmt.Errorf("assemble claim: %w", err)
	}

	result, err := s.sub.Submit(ctx, signed, models.TxKindClaimOnly, "", lb.BalanceID)
	if err != nil {
		return fmt.Errorf("%w: balance %s: %s", config.ErrClaimFailed, lb.BalanceID, err)
	}
	if result.DryRun {
		return nil
	}

	return s.forwardAfterClaim(ctx, before)
}

// forwardAfterClaim polls until the claimed funds show up in the spendable
// balance, then forwards them. If they never appear inside the window the
// next scheduler cycle's forward-all picks them up.
func (s *Sweeper) forwardAfterClaim(ctx context.Context, before decimal.Decimal) error {
	for attempt := 1; attempt <= config.ClaimConfirmAttempts; attempt++ {
		s.clock.Sleep(ctx, config.ClaimConfirmInterval)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		spendable := reserve.Spendable(s.ledger.AccountSnapshot(ctx, s.primary.Address()), s.reserveCfg)
		if spendable.GreaterThan(before) {
			slog.Info("claimed funds confirmed, forwarding",
				"attempt", attempt,
				"spendable", spendable.String(),
			)
			return s.ForwardAll(ctx)
		}

		slog.Debug("claimed funds not yet visible",
			"attempt", attempt,
			"spendable", spendable.String(),
		)
	}

	slog.Warn("claimed funds not visible after confirmation polling, deferring to next cycle",
		"attempts", config.ClaimConfirmAttempts,
	)
	return nil
}
