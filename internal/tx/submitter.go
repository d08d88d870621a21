package tx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"

	"github.com/atelis/pisweep/internal/config"
	"github.com/atelis/pisweep/internal/models"
)

// submitClient is the slice of the Horizon SDK client the submitter needs.
type submitClient interface {
	SubmitTransaction(tx *txnbuild.Transaction) (hProtocol.Transaction, error)
}

// Recorder persists submission outcomes for operator reporting. The
// scheduler never reads these records back.
type Recorder interface {
	RecordSubmission(ctx context.Context, sub models.Submission) error
}

// Submitter submits signed transactions, honouring dry-run mode: in dry run
// the transaction is assembled and signed but never leaves the process.
type Submitter struct {
	client            submitClient
	recorder          Recorder
	networkPassphrase string
	dryRun            bool
}

// NewSubmitter creates a submitter. recorder may be nil.
func NewSubmitter(client submitClient, recorder Recorder, networkPassphrase string, dryRun bool) *Submitter {
	slog.Info("submitter created", "dryRun", dryRun)

	return &Submitter{
		client:            client,
		recorder:          recorder,
		networkPassphrase: networkPassphrase,
		dryRun:            dryRun,
	}
}

// NewHorizonSubmitClient builds the SDK client used for submissions.
func NewHorizonSubmitClient(horizonURL string) *horizonclient.Client {
	return &horizonclient.Client{
		HorizonURL: horizonURL,
		HTTP:       &http.Client{Timeout: config.SubmitTimeout},
	}
}

// Submit sends the signed transaction (or logs it in dry-run mode) and
// records the outcome. amount and balanceID are journal metadata and may be
// empty.
func (s *Submitter) Submit(ctx context.Context, signed *txnbuild.Transaction, kind, amount, balanceID string) (models.SubmitResult, error) {
	if s.dryRun {
		xdr, err := signed.Base64()
		if err != nil {
			return models.SubmitResult{}, fmt.Errorf("encode transaction for dry run: %w", err)
		}

		slog.Info("DRY RUN: transaction assembled and signed, not submitted",
			"kind", kind,
			"amount", amount,
			"xdrPrefix", truncate(xdr, 50),
		)

		result := models.SubmitResult{DryRun: true}
		s.record(ctx, result, kind, amount, balanceID)
		return result, nil
	}

	resp, err := s.client.SubmitTransaction(signed)
	if err != nil {
		codes := extractResultCodes(err)
		result := models.SubmitResult{ResultCodes: codes}
		s.record(ctx, result, kind, amount, balanceID)

		return result, fmt.Errorf("%w: %s: %s", config.ErrSubmitFailed, strings.Join(codes, ","), err)
	}

	result := models.SubmitResult{
		Successful: resp.Successful,
		Hash:       resp.Hash,
	}
	s.record(ctx, result, kind, amount, balanceID)

	if !resp.Successful {
		return result, fmt.Errorf("%w: transaction %s not successful", config.ErrSubmitFailed, resp.Hash)
	}

	slog.Info("transaction submitted",
		"kind", kind,
		"hash", resp.Hash,
		"amount", amount,
	)

	return result, nil
}

func (s *Submitter) record(ctx context.Context, result models.SubmitResult, kind, amount, balanceID string) {
	if s.recorder == nil {
		return
	}

	sub := models.Submission{
		Kind:        kind,
		TxHash:      result.Hash,
		Amount:      amount,
		BalanceID:   balanceID,
		Successful:  result.Successful,
		DryRun:      result.DryRun,
		ResultCodes: strings.Join(result.ResultCodes, ","),
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.recorder.RecordSubmission(ctx, sub); err != nil {
		slog.Error("failed to record submission",
			"kind", kind,
			"hash", result.Hash,
			"error", err,
		)
	}
}

// extractResultCodes pulls ledger result codes out of a Horizon error, if
// present. Returns nil for plain transport errors.
func extractResultCodes(err error) []string {
	var herr *horizonclient.Error
	if !errors.As(err, &herr) {
		return nil
	}

	codes, cerr := herr.ResultCodes()
	if cerr != nil || codes == nil {
		return nil
	}

	out := []string{codes.TransactionCode}
	if codes.InnerTransactionCode != "" {
		out = append(out, codes.InnerTransactionCode)
	}
	out = append(out, codes.OperationCodes...)
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
