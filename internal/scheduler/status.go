package scheduler

import (
	"sync"
	"time"

	"github.com/atelis/pisweep/internal/models"
)

// LockedView is one locked balance as reported over the status API.
type LockedView struct {
	BalanceID  string     `json:"balanceId"`
	Amount     string     `json:"amount"`
	UnlockTime *time.Time `json:"unlockTime,omitempty"`
	Remaining  string     `json:"remaining,omitempty"`
}

// Status is a point-in-time snapshot of the monitor for operator reporting.
type Status struct {
	State           models.MonitorState `json:"state"`
	PublicKey       string              `json:"publicKey"`
	Destination     string              `json:"destination"`
	DryRun          bool                `json:"dryRun"`
	Spendable       string              `json:"spendable"`
	TotalLocked     string              `json:"totalLocked"`
	Locked          []LockedView        `json:"locked"`
	SoonestUnlock   *time.Time          `json:"soonestUnlock,omitempty"`
	NextPollSeconds float64             `json:"nextPollSeconds"`
	CycleCount      int64               `json:"cycleCount"`
	LastCycleAt     time.Time           `json:"lastCycleAt"`
	LastError       string              `json:"lastError,omitempty"`
}

// StatusStore holds the latest Status for concurrent readers (the HTTP API).
// The scheduler is the only writer.
type StatusStore struct {
	mu  sync.RWMutex
	cur Status
}

// NewStatusStore creates an empty store.
func NewStatusStore() *StatusStore {
	return &StatusStore{}
}

// Set replaces the current status.
func (s *StatusStore) Set(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = st
}

// Get returns the most recently published status.
func (s *StatusStore) Get() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}
