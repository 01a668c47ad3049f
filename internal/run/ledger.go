// Package run keeps the per-run invocation ledger: an ordered, append-only
// record of every capability invocation inside one logical run.
package run

import (
	"sync"

	"github.com/google/uuid"

	"caprun/internal/domain"
)

// Ledger records completed invocations in order. It is cleared when a run
// starts and never shared across runs; duplicate calls stay visible.
type Ledger struct {
	mu      sync.Mutex
	runID   string
	entries []domain.InvocationRecord
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// StartRun clears the ledger and returns the new run's id.
func (l *Ledger) StartRun() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runID = uuid.NewString()
	l.entries = nil
	return l.runID
}

func (l *Ledger) RunID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runID
}

// Record appends one entry in invocation order.
func (l *Ledger) Record(entry domain.InvocationRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns the run's records as an ordered copy.
func (l *Ledger) Entries() []domain.InvocationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.InvocationRecord, len(l.entries))
	copy(out, l.entries)
	return out
}
