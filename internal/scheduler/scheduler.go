package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelis/pisweep/internal/config"
	"github.com/atelis/pisweep/internal/models"
	"github.com/atelis/pisweep/internal/reserve"
)

// Ledger is the read side of the monitored account. Both reads are lenient:
// a transport failure degrades to zero/empty ("no information this cycle").
type Ledger interface {
	AccountSnapshot(ctx context.Context, accountID string) models.AccountSnapshot
	LockedBalances(ctx context.Context, claimant string) []models.LockedBalance
}

// Forwarder executes fund movements decided by the scheduler.
type Forwarder interface {
	ForwardAll(ctx context.Context) error
	ClaimAndForward(ctx context.Context, lb models.LockedBalance) error
}

// Scheduler is the adaptive control loop: once per cycle it reads the
// account fresh, forwards spendable funds, strikes on unlocking balances,
// and tightens its polling cadence as the soonest unlock approaches.
// Nothing is carried between cycles except the cycle counter; every decision
// is recomputed from live ledger state.
type Scheduler struct {
	ledger     Ledger
	forwarder  Forwarder
	clock      Clock
	status     *StatusStore
	reserveCfg reserve.Config

	accountID   string
	destination string
	dryRun      bool

	cycles int64
}

// New creates a scheduler for one account. status may be nil.
func New(ledger Ledger, forwarder Forwarder, clock Clock, status *StatusStore, reserveCfg reserve.Config, accountID, destination string, dryRun bool) *Scheduler {
	slog.Info("scheduler created",
		"publicKey", accountID,
		"destination", destination,
		"dryRun", dryRun,
	)

	return &Scheduler{
		ledger:      ledger,
		forwarder:   forwarder,
		clock:       clock,
		status:      status,
		reserveCfg:  reserveCfg,
		accountID:   accountID,
		destination: destination,
		dryRun:      dryRun,
	}
}

// Run executes cycles until ctx is cancelled. A cycle never terminates the
// loop: failures are logged and followed by a fixed backoff.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("monitor loop started", "publicKey", s.accountID)

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("monitor loop stopping", "reason", err)
			return err
		}

		interval := s.Cycle(ctx)
		s.clock.Sleep(ctx, interval)
	}
}

// Cycle runs one poll-decide-act iteration and returns the sleep interval
// until the next one.
func (s *Scheduler) Cycle(ctx context.Context) time.Duration {
	s.cycles++
	now := s.clock.Now()
	cycleFailed := false
	lastErr := ""

	// Spendable funds are never left idle, even while locks are pending.
	snap := s.ledger.AccountSnapshot(ctx, s.accountID)
	spendable := reserve.Spendable(snap, s.reserveCfg)
	if spendable.GreaterThan(config.DustThreshold) {
		slog.Info("spendable funds available, forwarding",
			"spendable", spendable.String(),
		)
		if err := s.forwarder.ForwardAll(ctx); err != nil {
			slog.Error("forward-all failed", "error", err)
			cycleFailed = true
			lastErr = err.Error()
		}
	}

	locked := s.ledger.LockedBalances(ctx, s.accountID)

	totalLocked := decimal.Zero
	for _, lb := range locked {
		totalLocked = totalLocked.Add(lb.Amount)
	}
	if len(locked) > 0 {
		slog.Info("monitoring locked balances",
			"count", len(locked),
			"totalLocked", totalLocked.String(),
		)
	}

	state := models.StateIdle
	var soonest *time.Time

	for _, lb := range locked {
		if lb.UnlockTime == nil {
			// No absolute deadline: reported, never scheduled.
			slog.Debug("locked balance without deadline",
				"balanceID", lb.BalanceID,
				"amount", lb.Amount.String(),
			)
			continue
		}

		delta := lb.UnlockTime.Sub(now)

		if delta <= config.StrikeThreshold {
			state = models.StateStriking
			slog.Info("unlock imminent, striking",
				"balanceID", lb.BalanceID,
				"amount", lb.Amount.String(),
				"remaining", Format(delta),
			)
			// Each claim attempt is independent and best-effort; a failure
			// must not stop the remaining balances from being tried.
			if err := s.forwarder.ClaimAndForward(ctx, lb); err != nil {
				slog.Error("claim attempt failed",
					"balanceID", lb.BalanceID,
					"error", err,
				)
				cycleFailed = true
				lastErr = err.Error()
			}
			continue
		}

		if delta <= config.ArmedHorizon {
			if state != models.StateStriking {
				state = models.StateArmed
			}
			slog.Info("ready to claim soon",
				"balanceID", lb.BalanceID,
				"amount", lb.Amount.String(),
				"remaining", Format(delta),
			)
		} else {
			if state == models.StateIdle {
				state = models.StateWatching
			}
			slog.Info("locked balance tracked",
				"balanceID", lb.BalanceID,
				"amount", lb.Amount.String(),
				"unlocksAt", lb.UnlockTime.Format(time.RFC3339),
				"remaining", Format(delta),
			)
		}

		if soonest == nil || lb.UnlockTime.Before(*soonest) {
			soonest = lb.UnlockTime
		}
	}

	interval := s.nextInterval(soonest, now)

	if cycleFailed {
		slog.Warn("cycle had errors, backing off", "backoff", config.FailureBackoff)
		interval = config.FailureBackoff
	}

	s.publish(now, state, spendable, totalLocked, locked, soonest, interval, lastErr)

	return interval
}

// nextInterval selects the sleep until the next cycle: the closer the
// soonest unlock, the tighter the poll. Distant or absent locks still poll
// every 30s so newly appearing balances are discovered promptly.
func (s *Scheduler) nextInterval(soonest *time.Time, now time.Time) time.Duration {
	if soonest == nil {
		slog.Debug("no scheduled unlocks, polling at baseline")
		return config.PollSlow
	}

	remaining := soonest.Sub(now)
	switch {
	case remaining <= config.PollFastHorizon:
		slog.Info("lightning mode: polling every second",
			"untilUnlock", Format(remaining),
		)
		return config.PollFast
	case remaining <= config.PollMediumHorizon:
		slog.Info("speed mode: polling every 5s",
			"untilUnlock", Format(remaining),
		)
		return config.PollMedium
	default:
		slog.Info("next unlock distant, polling for new transfers every 30s",
			"untilUnlock", Format(remaining),
		)
		return config.PollSlow
	}
}

func (s *Scheduler) publish(now time.Time, state models.MonitorState, spendable, totalLocked decimal.Decimal, locked []models.LockedBalance, soonest *time.Time, interval time.Duration, lastErr string) {
	if s.status == nil {
		return
	}

	views := make([]LockedView, 0, len(locked))
	for _, lb := range locked {
		view := LockedView{
			BalanceID: lb.BalanceID,
			Amount:    lb.Amount.String(),
		}
		if lb.UnlockTime != nil {
			view.UnlockTime = lb.UnlockTime
			view.Remaining = Format(lb.UnlockTime.Sub(now))
		}
		views = append(views, view)
	}

	s.status.Set(Status{
		State:           state,
		PublicKey:       s.accountID,
		Destination:     s.destination,
		DryRun:          s.dryRun,
		Spendable:       spendable.String(),
		TotalLocked:     totalLocked.String(),
		Locked:          views,
		SoonestUnlock:   soonest,
		NextPollSeconds: interval.Seconds(),
		CycleCount:      s.cycles,
		LastCycleAt:     now,
		LastError:       lastErr,
	})
}
