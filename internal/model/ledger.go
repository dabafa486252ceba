package model

import (
	"context"
	"fmt"
	"time"
)

// SubmissionLedgerTTL bounds how long ledger entries are kept by expiring backends.
const SubmissionLedgerTTL = time.Hour * 24 * 7

// SubmissionKey identifies one submission attempt: a user's session generation.
type SubmissionKey struct {
	UserID     int64
	Generation uint64
}

func (k SubmissionKey) String() string {
	return fmt.Sprintf("%d:%d", k.UserID, k.Generation)
}

// SubmissionStatus is the final outcome recorded for a submission key.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionSucceeded SubmissionStatus = "succeeded"
	SubmissionRejected  SubmissionStatus = "rejected"
	SubmissionFailed    SubmissionStatus = "failed"
)

// SubmissionLedger guarantees a submission key is processed at most once.
type SubmissionLedger interface {
	// Reserve claims the key. It returns false when the key was already claimed.
	Reserve(ctx context.Context, key SubmissionKey) (bool, error)
	// Finish records the outcome of a reserved key.
	Finish(ctx context.Context, key SubmissionKey, status SubmissionStatus, detail string) error
}
