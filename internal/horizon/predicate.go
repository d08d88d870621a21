package horizon

import (
	"fmt"
	"time"

	"github.com/atelis/pisweep/internal/config"
)

// Predicate is the JSON form of a claimant's claim predicate as returned by
// the Horizon claimable-balances endpoints. It is a tagged variant: exactly
// one of the fields is normally populated at each level.
type Predicate struct {
	Unconditional bool        `json:"unconditional,omitempty"`
	AbsBefore     string      `json:"abs_before,omitempty"`
	Not           *Predicate  `json:"not,omitempty"`
	And           []Predicate `json:"and,omitempty"`
	Or            []Predicate `json:"or,omitempty"`
}

// UnlockDeadline extracts the absolute deadline from a predicate tree, in
// order of precedence:
//
//  1. a negated "before" condition — the common "locked until" shape
//  2. a direct "before" condition without negation
//  3. a conjunction, applying rule 1 to each branch (descending into nested
//     conjunctions) and taking the first match
//
// Returns ("", false) when the predicate carries no absolute deadline.
func (p *Predicate) UnlockDeadline() (string, bool) {
	if p == nil {
		return "", false
	}
	if p.Not != nil && p.Not.AbsBefore != "" {
		return p.Not.AbsBefore, true
	}
	if p.AbsBefore != "" {
		return p.AbsBefore, true
	}
	for i := range p.And {
		if deadline, ok := p.And[i].negatedDeadline(); ok {
			return deadline, true
		}
	}
	return "", false
}

// negatedDeadline applies the "locked until" rule to one conjunction branch.
func (p *Predicate) negatedDeadline() (string, bool) {
	if p.Not != nil && p.Not.AbsBefore != "" {
		return p.Not.AbsBefore, true
	}
	for i := range p.And {
		if deadline, ok := p.And[i].negatedDeadline(); ok {
			return deadline, true
		}
	}
	return "", false
}

// ParseDeadline parses an abs_before timestamp into a UTC instant.
func ParseDeadline(deadline string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, deadline)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %s", config.ErrUnparsablePredicate, deadline, err)
	}
	return t.UTC(), nil
}
