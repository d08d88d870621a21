package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stellar/go/keypair"

	"github.com/atelis/pisweep/internal/api"
	"github.com/atelis/pisweep/internal/config"
	"github.com/atelis/pisweep/internal/horizon"
	"github.com/atelis/pisweep/internal/journal"
	"github.com/atelis/pisweep/internal/logging"
	"github.com/atelis/pisweep/internal/reserve"
	"github.com/atelis/pisweep/internal/scheduler"
	"github.com/atelis/pisweep/internal/tx"
	"github.com/atelis/pisweep/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	slog.Info("pisweep starting",
		"horizon", cfg.HorizonURL,
		"safeAddress", cfg.SafeAddress,
		"dryRun", cfg.DryRun,
		"port", cfg.Port,
	)

	db, err := journal.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open journal database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	limiter := horizon.NewRateLimiter("horizon", config.RateLimitHorizon)
	ledger := horizon.NewClient(cfg.HorizonURL, limiter)

	reserveCfg := reserve.Config{
		BaseReserve:    cfg.BaseReserveAmount(),
		AccountEntries: config.AccountReserveEntries,
	}

	primary, sponsor, err := loadKeys(credentials(cfg), ledger, reserveCfg)
	if err != nil {
		slog.Error("failed to set up wallet keys", "error", err)
		os.Exit(1)
	}

	slog.Info("wallet ready",
		"publicKey", primary.Address(),
		"sponsorConfigured", sponsor != nil,
	)

	asm := tx.NewAssembler(cfg.NetworkPassphrase, cfg.SafeAddress)
	sub := tx.NewSubmitter(tx.NewHorizonSubmitClient(cfg.HorizonURL), db, cfg.NetworkPassphrase, cfg.DryRun)

	clock := scheduler.SystemClock{}
	sweeper := tx.NewSweeper(ledger, asm, sub, primary, sponsor, reserveCfg, clock)

	status := scheduler.NewStatusStore()
	sched := scheduler.New(ledger, sweeper, clock, status, reserveCfg,
		primary.Address(), cfg.SafeAddress, cfg.DryRun)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(cfg, status, db),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
	}

	go func() {
		slog.Info("status API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("status API server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("scheduler stopped with error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("status API shutdown error", "error", err)
	}

	slog.Info("pisweep stopped")
}

// credentials picks the phrase source: mnemonic files when configured,
// otherwise interactive terminal prompts.
func credentials(cfg *config.Config) wallet.CredentialProvider {
	if cfg.MnemonicFile != "" {
		return &wallet.FileCredentials{
			PrimaryPath: cfg.MnemonicFile,
			SponsorPath: cfg.SponsorMnemonicFile,
		}
	}
	return wallet.NewTerminalCredentials()
}

// loadKeys derives the primary and optional sponsor keypairs. A bad primary
// phrase aborts startup; a bad sponsor phrase degrades to running without a
// sponsor.
func loadKeys(creds wallet.CredentialProvider, ledger *horizon.Client, reserveCfg reserve.Config) (*keypair.Full, *keypair.Full, error) {
	phrase, err := creds.PrimaryMnemonic()
	if err != nil {
		return nil, nil, fmt.Errorf("read primary phrase: %w", err)
	}

	primary, err := wallet.KeypairFromMnemonic(phrase)
	if err != nil {
		return nil, nil, fmt.Errorf("derive primary keypair: %w", err)
	}

	sponsorPhrase, err := creds.SponsorMnemonic()
	if err != nil {
		slog.Warn("could not read sponsor phrase, continuing without sponsor", "error", err)
		return primary, nil, nil
	}
	if sponsorPhrase == "" {
		slog.Info("no fee sponsor configured, source wallet pays fees")
		return primary, nil, nil
	}

	sponsor, err := wallet.KeypairFromMnemonic(sponsorPhrase)
	if err != nil {
		slog.Warn("invalid sponsor phrase, continuing without sponsor", "error", err)
		return primary, nil, nil
	}

	// Preflight: a sponsor that cannot pay fees is worse than none.
	ctx, cancel := context.WithTimeout(context.Background(), config.ReadTimeout)
	defer cancel()
	spendable := reserve.Spendable(ledger.AccountSnapshot(ctx, sponsor.Address()), reserveCfg)
	if spendable.Cmp(config.LowSponsorBalance) < 0 {
		slog.Warn("fee sponsor has low balance, may not be able to pay fees",
			"sponsor", sponsor.Address(),
			"spendable", spendable.String(),
		)
	}

	slog.Info("fee sponsor ready",
		"sponsor", sponsor.Address(),
		"spendable", spendable.String(),
	)

	return primary, sponsor, nil
}
