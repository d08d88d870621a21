package wallet

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/stellar/go/exp/crypto/derivation"
	"github.com/stellar/go/keypair"
	"github.com/tyler-smith/go-bip39"
)

// DerivationPath is the SLIP-0010 Ed25519 path used by Pi Network wallets.
const DerivationPath = "m/44'/314159'/0'"

// ValidateMnemonic validates a BIP-39 mnemonic phrase (must be 24 words).
func ValidateMnemonic(mnemonic string) error {
	if !bip39.IsMnemonicValid(mnemonic) {
		return fmt.Errorf("validate mnemonic: %w", ErrInvalidMnemonic)
	}

	words := strings.Fields(mnemonic)
	if len(words) != 24 {
		return fmt.Errorf("expected 24-word mnemonic, got %d words: %w", len(words), ErrInvalidMnemonic)
	}

	slog.Debug("mnemonic validated", "wordCount", len(words))
	return nil
}

// KeypairFromMnemonic derives the account keypair from a 24-word recovery
// phrase: BIP-39 seed (empty passphrase), then SLIP-0010 Ed25519 derivation
// at DerivationPath.
func KeypairFromMnemonic(mnemonic string) (*keypair.Full, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("mnemonic to seed: %w", ErrInvalidMnemonic)
	}

	key, err := derivation.DeriveForPath(DerivationPath, seed)
	if err != nil {
		return nil, fmt.Errorf("%w: derive %s: %s", ErrDerivation, DerivationPath, err)
	}

	kp, err := keypair.FromRawSeed(key.RawSeed())
	if err != nil {
		return nil, fmt.Errorf("%w: keypair from raw seed: %s", ErrDerivation, err)
	}

	slog.Debug("keypair derived", "publicKey", kp.Address())
	return kp, nil
}
