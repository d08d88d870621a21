package wallet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMnemonicFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phrase.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write mnemonic file: %v", err)
	}
	return path
}

func TestFileCredentials(t *testing.T) {
	creds := &FileCredentials{
		PrimaryPath: writeMnemonicFile(t, testMnemonic+"\n"),
	}

	got, err := creds.PrimaryMnemonic()
	if err != nil {
		t.Fatalf("PrimaryMnemonic() error = %v", err)
	}
	if got != testMnemonic {
		t.Errorf("PrimaryMnemonic() = %q, want trimmed phrase", got)
	}

	// No sponsor path configured means no sponsor, not an error.
	sponsor, err := creds.SponsorMnemonic()
	if err != nil {
		t.Fatalf("SponsorMnemonic() error = %v", err)
	}
	if sponsor != "" {
		t.Errorf("SponsorMnemonic() = %q, want empty", sponsor)
	}
}

func TestFileCredentials_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", "   \n"},
		{"invalid phrase", "not a real recovery phrase\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := &FileCredentials{PrimaryPath: writeMnemonicFile(t, tt.content)}

			if _, err := creds.PrimaryMnemonic(); !errors.Is(err, ErrInvalidMnemonic) {
				t.Fatalf("PrimaryMnemonic() error = %v, want ErrInvalidMnemonic", err)
			}
		})
	}
}

func TestFileCredentials_MissingFile(t *testing.T) {
	creds := &FileCredentials{PrimaryPath: filepath.Join(t.TempDir(), "nope.txt")}

	if _, err := creds.PrimaryMnemonic(); err == nil {
		t.Fatal("PrimaryMnemonic() expected error for missing file")
	}
}

func TestTerminalCredentials(t *testing.T) {
	var out bytes.Buffer
	creds := &TerminalCredentials{
		In:  strings.NewReader(testMnemonic + "\n"),
		Out: &out,
	}

	got, err := creds.PrimaryMnemonic()
	if err != nil {
		t.Fatalf("PrimaryMnemonic() error = %v", err)
	}
	if got != testMnemonic {
		t.Errorf("PrimaryMnemonic() = %q, want entered phrase", got)
	}
	if !strings.Contains(out.String(), "recovery phrase") {
		t.Errorf("prompt = %q, want a recovery phrase prompt", out.String())
	}
}

func TestTerminalCredentials_SkipSponsor(t *testing.T) {
	creds := &TerminalCredentials{
		In:  strings.NewReader("\n"),
		Out: &bytes.Buffer{},
	}

	got, err := creds.SponsorMnemonic()
	if err != nil {
		t.Fatalf("SponsorMnemonic() error = %v", err)
	}
	if got != "" {
		t.Errorf("SponsorMnemonic() = %q, want empty for skipped sponsor", got)
	}
}
