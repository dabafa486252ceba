package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/regbot/internal/model"
)

const submissionKeyPrefix = "regbot:submission:"

var _ model.SubmissionLedger = (*SubmissionLedger)(nil)

// redisAPI is the subset of the go-redis client the ledger uses.
type redisAPI interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	SetXX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// SubmissionLedger keeps submission keys in redis so the at-most-once
// guarantee outlives a bot restart for the configured TTL.
type SubmissionLedger struct {
	client redisAPI
	ttl    time.Duration
}

func NewSubmissionLedger(client *redis.Client, ttl time.Duration) *SubmissionLedger {
	return newSubmissionLedger(client, ttl)
}

func newSubmissionLedger(client redisAPI, ttl time.Duration) *SubmissionLedger {
	if ttl <= 0 {
		ttl = model.SubmissionLedgerTTL
	}
	return &SubmissionLedger{client: client, ttl: ttl}
}

// Reserve claims the key with SETNX.
func (l *SubmissionLedger) Reserve(ctx context.Context, key model.SubmissionKey) (bool, error) {
	ok, err := l.client.SetNX(ctx, submissionKeyPrefix+key.String(), string(model.SubmissionPending), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve submission: %w", err)
	}
	return ok, nil
}

// Finish overwrites the status of an already reserved key.
func (l *SubmissionLedger) Finish(ctx context.Context, key model.SubmissionKey, status model.SubmissionStatus, detail string) error {
	value := string(status)
	if detail != "" {
		value += ":" + detail
	}

	ok, err := l.client.SetXX(ctx, submissionKeyPrefix+key.String(), value, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to finish submission: %w", err)
	}
	if !ok {
		return model.ErrNotFound
	}
	return nil
}
