package tx

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"

	"github.com/atelis/pisweep/internal/config"
	"github.com/atelis/pisweep/internal/models"
)

type fakeSubmitClient struct {
	submitted   []*txnbuild.Transaction
	resp        hProtocol.Transaction
	err         error
	afterSubmit func()
}

func (f *fakeSubmitClient) SubmitTransaction(tx *txnbuild.Transaction) (hProtocol.Transaction, error) {
	f.submitted = append(f.submitted, tx)
	if f.afterSubmit != nil {
		f.afterSubmit()
	}
	return f.resp, f.err
}

type fakeRecorder struct {
	records []models.Submission
}

func (f *fakeRecorder) RecordSubmission(_ context.Context, sub models.Submission) error {
	f.records = append(f.records, sub)
	return nil
}

func signedForwardTx(t *testing.T) *txnbuild.Transaction {
	t.Helper()
	asm, account, primary := testAssembler(t)
	signed, err := asm.Forward(account, decimal.RequireFromString("1"), primary, nil)
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	return signed
}

func TestSubmit_DryRunNeverReachesNetwork(t *testing.T) {
	client := &fakeSubmitClient{}
	recorder := &fakeRecorder{}
	sub := NewSubmitter(client, recorder, testPassphrase, true)

	result, err := sub.Submit(context.Background(), signedForwardTx(t), models.TxKindForward, "1.000000", "")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if !result.DryRun {
		t.Error("result.DryRun = false, want true")
	}
	if len(client.submitted) != 0 {
		t.Errorf("client received %d transactions, want 0", len(client.submitted))
	}
	if len(recorder.records) != 1 {
		t.Fatalf("recorder received %d records, want 1", len(recorder.records))
	}
	if !recorder.records[0].DryRun {
		t.Error("recorded submission not marked dry run")
	}
}

func TestSubmit_Success(t *testing.T) {
	client := &fakeSubmitClient{
		resp: hProtocol.Transaction{Successful: true, Hash: "deadbeef"},
	}
	recorder := &fakeRecorder{}
	sub := NewSubmitter(client, recorder, testPassphrase, false)

	result, err := sub.Submit(context.Background(), signedForwardTx(t), models.TxKindForward, "1.000000", "")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if result.Hash != "deadbeef" {
		t.Errorf("result.Hash = %q, want %q", result.Hash, "deadbeef")
	}
	if len(client.submitted) != 1 {
		t.Errorf("client received %d transactions, want 1", len(client.submitted))
	}
	if len(recorder.records) != 1 || !recorder.records[0].Successful {
		t.Errorf("recorded submission = %+v, want one successful record", recorder.records)
	}
}

func TestSubmit_TransportError(t *testing.T) {
	client := &fakeSubmitClient{err: errors.New("connection refused")}
	recorder := &fakeRecorder{}
	sub := NewSubmitter(client, recorder, testPassphrase, false)

	_, err := sub.Submit(context.Background(), signedForwardTx(t), models.TxKindForward, "1.000000", "")
	if !errors.Is(err, config.ErrSubmitFailed) {
		t.Fatalf("Submit() error = %v, want ErrSubmitFailed", err)
	}

	if len(recorder.records) != 1 {
		t.Fatalf("recorder received %d records, want 1", len(recorder.records))
	}
	if recorder.records[0].Successful {
		t.Error("failed submission recorded as successful")
	}
}

func TestSubmit_LedgerRejection(t *testing.T) {
	client := &fakeSubmitClient{
		resp: hProtocol.Transaction{Successful: false, Hash: "cafebabe"},
	}
	sub := NewSubmitter(client, nil, testPassphrase, false)

	result, err := sub.Submit(context.Background(), signedForwardTx(t), models.TxKindForward, "1.000000", "")
	if !errors.Is(err, config.ErrSubmitFailed) {
		t.Fatalf("Submit() error = %v, want ErrSubmitFailed", err)
	}
	if result.Hash != "cafebabe" {
		t.Errorf("result.Hash = %q, want %q", result.Hash, "cafebabe")
	}
}

func TestExtractResultCodes_PlainError(t *testing.T) {
	if codes := extractResultCodes(errors.New("timeout")); codes != nil {
		t.Errorf("extractResultCodes() = %v, want nil", codes)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is longer", 7, "this is..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
