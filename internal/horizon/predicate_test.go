package horizon

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/atelis/pisweep/internal/config"
)

const deadline = "2026-09-01T12:00:00Z"

func mustPredicate(t *testing.T, raw string) *Predicate {
	t.Helper()
	var p Predicate
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal predicate: %v", err)
	}
	return &p
}

func TestUnlockDeadline(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		wantNone bool
	}{
		{
			name: "negated before (locked until)",
			raw:  `{"not":{"abs_before":"` + deadline + `"}}`,
			want: deadline,
		},
		{
			name: "direct before without negation",
			raw:  `{"abs_before":"` + deadline + `"}`,
			want: deadline,
		},
		{
			name: "conjunction with negated before",
			raw:  `{"and":[{"unconditional":true},{"not":{"abs_before":"` + deadline + `"}}]}`,
			want: deadline,
		},
		{
			name: "nested conjunction",
			raw:  `{"and":[{"and":[{"not":{"abs_before":"` + deadline + `"}}]}]}`,
			want: deadline,
		},
		{
			name: "conjunction takes first match",
			raw: `{"and":[{"not":{"abs_before":"` + deadline + `"}},` +
				`{"not":{"abs_before":"2030-01-01T00:00:00Z"}}]}`,
			want: deadline,
		},
		{
			name:     "unconditional",
			raw:      `{"unconditional":true}`,
			wantNone: true,
		},
		{
			name:     "disjunction yields no deadline",
			raw:      `{"or":[{"not":{"abs_before":"` + deadline + `"}},{"unconditional":true}]}`,
			wantNone: true,
		},
		{
			name:     "empty predicate",
			raw:      `{}`,
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mustPredicate(t, tt.raw).UnlockDeadline()

			if tt.wantNone {
				if ok {
					t.Fatalf("UnlockDeadline() = %q, want none", got)
				}
				return
			}
			if !ok {
				t.Fatal("UnlockDeadline() found nothing, want deadline")
			}
			if got != tt.want {
				t.Errorf("UnlockDeadline() = %q, want %q", got, tt.want)
			}
		})
	}
}

// The conjunction form must extract the same instant as the plain negated
// form.
func TestUnlockDeadline_ShapeInvariance(t *testing.T) {
	plain := mustPredicate(t, `{"not":{"abs_before":"`+deadline+`"}}`)
	conj := mustPredicate(t, `{"and":[{"not":{"abs_before":"`+deadline+`"}},{"unconditional":true}]}`)

	a, okA := plain.UnlockDeadline()
	b, okB := conj.UnlockDeadline()
	if !okA || !okB {
		t.Fatal("both shapes should yield a deadline")
	}
	if a != b {
		t.Errorf("plain = %q, conjunction = %q, want identical", a, b)
	}
}

func TestUnlockDeadline_NilReceiver(t *testing.T) {
	var p *Predicate
	if _, ok := p.UnlockDeadline(); ok {
		t.Fatal("nil predicate should have no deadline")
	}
}

func TestParseDeadline(t *testing.T) {
	got, err := ParseDeadline(deadline)
	if err != nil {
		t.Fatalf("ParseDeadline(%q) error = %v", deadline, err)
	}

	want := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDeadline(%q) = %v, want %v", deadline, got, want)
	}
}

func TestParseDeadline_Unparsable(t *testing.T) {
	tests := []string{"", "not-a-time", "2026-13-45T99:00:00Z", "1700000000"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseDeadline(raw)
			if err == nil {
				t.Fatalf("ParseDeadline(%q) expected error", raw)
			}
			if !errors.Is(err, config.ErrUnparsablePredicate) {
				t.Errorf("ParseDeadline(%q) error = %v, want ErrUnparsablePredicate", raw, err)
			}
		})
	}
}
