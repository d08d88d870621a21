package tx

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/atelis/pisweep/internal/config"
)

// Assembler builds and signs the transaction shapes the sweeper submits.
// Transactions leave here fully signed; the primary key always signs, and a
// sponsor key (when present) co-signs to cover fees without changing
// operation semantics.
type Assembler struct {
	networkPassphrase string
	destination       string
}

// NewAssembler creates an assembler targeting the fixed safe destination.
func NewAssembler(networkPassphrase, destination string) *Assembler {
	slog.Info("transaction assembler created", "destination", destination)

	return &Assembler{
		networkPassphrase: networkPassphrase,
		destination:       destination,
	}
}

// Forward builds a single-payment transaction to the safe destination.
// Sponsored forwards are built identically; only the signer set differs.
func (a *Assembler) Forward(account *txnbuild.SimpleAccount, amount decimal.Decimal, primary, sponsor *keypair.Full) (*txnbuild.Transaction, error) {
	ops := []txnbuild.Operation{
		&txnbuild.Payment{
			Destination: a.destination,
			Amount:      amount.StringFixed(config.AmountPrecision),
			Asset:       txnbuild.NativeAsset{},
		},
	}

	return a.build(account, ops, config.BaseFeeForward, config.TxTimeoutForward, primary, sponsor)
}

// ClaimForward builds the atomic claim+payment transaction: the claim and
// the forward of the derived amount succeed or fail together, so the primary
// key never sits on claimed-but-unforwarded funds.
func (a *Assembler) ClaimForward(account *txnbuild.SimpleAccount, balanceID string, forwardAmount decimal.Decimal, primary, sponsor *keypair.Full) (*txnbuild.Transaction, error) {
	ops := []txnbuild.Operation{
		&txnbuild.ClaimClaimableBalance{BalanceID: balanceID},
		&txnbuild.Payment{
			Destination: a.destination,
			Amount:      forwardAmount.StringFixed(config.AmountPrecision),
			Asset:       txnbuild.NativeAsset{},
		},
	}

	return a.build(account, ops, config.BaseFeeClaimForward, config.TxTimeoutClaimForward, primary, sponsor)
}

// ClaimOnly builds the fallback claim transaction used when the claimable
// amount could not be determined in advance. The caller forwards separately
// once the claim is confirmed.
func (a *Assembler) ClaimOnly(account *txnbuild.SimpleAccount, balanceID string, primary, sponsor *keypair.Full) (*txnbuild.Transaction, error) {
	ops := []txnbuild.Operation{
		&txnbuild.ClaimClaimableBalance{BalanceID: balanceID},
	}

	return a.build(account, ops, config.BaseFeeClaimOnly, config.TxTimeoutClaimOnly, primary, sponsor)
}

func (a *Assembler) build(account *txnbuild.SimpleAccount, ops []txnbuild.Operation, baseFee int64, timeoutSeconds int64, primary, sponsor *keypair.Full) (*txnbuild.Transaction, error) {
	built, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        account,
		IncrementSequenceNum: true,
		Operations:           ops,
		BaseFee:              baseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(timeoutSeconds),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	signers := []*keypair.Full{primary}
	if sponsor != nil {
		signers = append(signers, sponsor)
	}

	signed, err := built.Sign(a.networkPassphrase, signers...)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	slog.Debug("transaction assembled",
		"operations", len(ops),
		"baseFee", baseFee,
		"timeoutSeconds", timeoutSeconds,
		"sponsored", sponsor != nil,
	)

	return signed, nil
}
