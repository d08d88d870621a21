package wallet

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// CredentialProvider supplies the recovery phrases at startup. The scheduler
// never touches this; it only sees derived keypairs. A second implementation
// can be injected for headless or test invocation.
type CredentialProvider interface {
	// PrimaryMnemonic returns the recovery phrase for the monitored wallet.
	PrimaryMnemonic() (string, error)
	// SponsorMnemonic returns the fee-sponsor phrase, or "" when no sponsor
	// is configured.
	SponsorMnemonic() (string, error)
}

// TerminalCredentials prompts for phrases on an interactive terminal.
type TerminalCredentials struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminalCredentials prompts on stdin/stdout.
func NewTerminalCredentials() *TerminalCredentials {
	return &TerminalCredentials{In: os.Stdin, Out: os.Stdout}
}

func (t *TerminalCredentials) PrimaryMnemonic() (string, error) {
	return t.prompt("Enter your 24-word recovery phrase: ")
}

func (t *TerminalCredentials) SponsorMnemonic() (string, error) {
	return t.prompt("Enter fee sponsor 24-word phrase (or Enter to skip): ")
}

func (t *TerminalCredentials) prompt(msg string) (string, error) {
	if _, err := fmt.Fprint(t.Out, msg); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read phrase: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// FileCredentials reads phrases from configured files. The sponsor path may
// be empty, in which case no sponsor is used.
type FileCredentials struct {
	PrimaryPath string
	SponsorPath string
}

func (f *FileCredentials) PrimaryMnemonic() (string, error) {
	return readMnemonicFile(f.PrimaryPath)
}

func (f *FileCredentials) SponsorMnemonic() (string, error) {
	if f.SponsorPath == "" {
		return "", nil
	}
	return readMnemonicFile(f.SponsorPath)
}

// readMnemonicFile reads a mnemonic from a file, trims whitespace, and validates it.
func readMnemonicFile(path string) (string, error) {
	slog.Info("reading mnemonic from file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read mnemonic file %q: %w", path, err)
	}

	mnemonic := strings.TrimSpace(string(data))
	if mnemonic == "" {
		return "", fmt.Errorf("mnemonic file %q is empty: %w", path, ErrInvalidMnemonic)
	}

	if err := ValidateMnemonic(mnemonic); err != nil {
		return "", fmt.Errorf("mnemonic file %q: %w", path, err)
	}

	return mnemonic, nil
}
