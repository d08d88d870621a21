package tx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/atelis/pisweep/internal/config"
)

const (
	testPassphrase = "Pi Network"
	testBalanceID  = "00000000929b20b72e5890ab51c24f1cc46fa01c4f318d8d33367d24dd614cfdf5491072"
)

func testAssembler(t *testing.T) (*Assembler, *txnbuild.SimpleAccount, *keypair.Full) {
	t.Helper()
	primary := keypair.MustRandom()
	destination := keypair.MustRandom().Address()
	account := txnbuild.NewSimpleAccount(primary.Address(), 100)
	return NewAssembler(testPassphrase, destination), &account, primary
}

func TestAssemblerForward(t *testing.T) {
	asm, account, primary := testAssembler(t)

	signed, err := asm.Forward(account, decimal.RequireFromString("0.95"), primary, nil)
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}

	ops := signed.Operations()
	if len(ops) != 1 {
		t.Fatalf("len(operations) = %d, want 1", len(ops))
	}
	payment, ok := ops[0].(*txnbuild.Payment)
	if !ok {
		t.Fatalf("operation is %T, want *txnbuild.Payment", ops[0])
	}
	if payment.Amount != "0.950000" {
		t.Errorf("payment amount = %q, want %q", payment.Amount, "0.950000")
	}

	if signed.BaseFee() != config.BaseFeeForward {
		t.Errorf("base fee = %d, want %d", signed.BaseFee(), config.BaseFeeForward)
	}
	if got := len(signed.Signatures()); got != 1 {
		t.Errorf("signature count = %d, want 1", got)
	}
}

func TestAssemblerForward_Sponsored(t *testing.T) {
	asm, account, primary := testAssembler(t)
	sponsor := keypair.MustRandom()

	signed, err := asm.Forward(account, decimal.RequireFromString("0.015"), primary, sponsor)
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}

	if got := len(signed.Signatures()); got != 2 {
		t.Errorf("signature count = %d, want 2", got)
	}
}

func TestAssemblerClaimForward(t *testing.T) {
	asm, account, primary := testAssembler(t)

	signed, err := asm.ClaimForward(account, testBalanceID, decimal.RequireFromString("9.5"), primary, nil)
	if err != nil {
		t.Fatalf("ClaimForward() error = %v", err)
	}

	ops := signed.Operations()
	if len(ops) != 2 {
		t.Fatalf("len(operations) = %d, want 2", len(ops))
	}
	if _, ok := ops[0].(*txnbuild.ClaimClaimableBalance); !ok {
		t.Errorf("first operation is %T, want *txnbuild.ClaimClaimableBalance", ops[0])
	}
	payment, ok := ops[1].(*txnbuild.Payment)
	if !ok {
		t.Fatalf("second operation is %T, want *txnbuild.Payment", ops[1])
	}
	if payment.Amount != "9.500000" {
		t.Errorf("payment amount = %q, want %q", payment.Amount, "9.500000")
	}

	if signed.BaseFee() != config.BaseFeeClaimForward {
		t.Errorf("base fee = %d, want %d", signed.BaseFee(), config.BaseFeeClaimForward)
	}
}

func TestAssemblerClaimOnly(t *testing.T) {
	asm, account, primary := testAssembler(t)

	signed, err := asm.ClaimOnly(account, testBalanceID, primary, nil)
	if err != nil {
		t.Fatalf("ClaimOnly() error = %v", err)
	}

	ops := signed.Operations()
	if len(ops) != 1 {
		t.Fatalf("len(operations) = %d, want 1", len(ops))
	}
	if _, ok := ops[0].(*txnbuild.ClaimClaimableBalance); !ok {
		t.Errorf("operation is %T, want *txnbuild.ClaimClaimableBalance", ops[0])
	}

	if signed.BaseFee() != config.BaseFeeClaimOnly {
		t.Errorf("base fee = %d, want %d", signed.BaseFee(), config.BaseFeeClaimOnly)
	}
}

func TestAssembler_SequenceIncrements(t *testing.T) {
	asm, account, primary := testAssembler(t)

	if _, err := asm.Forward(account, decimal.RequireFromString("1"), primary, nil); err != nil {
		t.Fatalf("Forward() error = %v", err)
	}

	if account.Sequence != 101 {
		t.Errorf("account sequence = %d, want 101", account.Sequence)
	}
}
