package memory

import (
	"context"
	"sync"

	"github.com/dtroode/regbot/internal/model"
)

var _ model.SubmissionLedger = (*SubmissionLedger)(nil)

// SubmissionLedger is the in-process ledger used for single-replica
// deployments and tests.
type SubmissionLedger struct {
	mu      sync.Mutex
	entries map[model.SubmissionKey]model.SubmissionStatus
}

func NewSubmissionLedger() *SubmissionLedger {
	return &SubmissionLedger{entries: make(map[model.SubmissionKey]model.SubmissionStatus)}
}

func (l *SubmissionLedger) Reserve(_ context.Context, key model.SubmissionKey) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[key]; ok {
		return false, nil
	}
	l.entries[key] = model.SubmissionPending
	return true, nil
}

func (l *SubmissionLedger) Finish(_ context.Context, key model.SubmissionKey, status model.SubmissionStatus, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[key]; !ok {
		return model.ErrNotFound
	}
	l.entries[key] = status
	return nil
}

// Status returns the recorded status of key.
func (l *SubmissionLedger) Status(key model.SubmissionKey) (model.SubmissionStatus, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.entries[key]
	return s, ok
}
