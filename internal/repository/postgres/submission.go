package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/regbot/internal/model"
)

var _ model.SubmissionLedger = (*SubmissionRepository)(nil)

// execer is the part of the pool the repository needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// SubmissionRepository is the postgres-backed submission ledger.
type SubmissionRepository struct {
	db execer
}

func NewSubmissionRepository(db *Connection) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Reserve inserts a pending row; a unique violation on the key means the
// submission was already claimed.
func (r *SubmissionRepository) Reserve(ctx context.Context, key model.SubmissionKey) (bool, error) {
	const query = `
        INSERT INTO submissions (id, idempotency_key, user_id, generation, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        ON CONFLICT (idempotency_key) DO NOTHING
    `

	tag, err := r.db.Exec(ctx, query,
		uuid.New(), key.String(), key.UserID, int64(key.Generation), model.SubmissionPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to reserve submission: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *SubmissionRepository) Finish(ctx context.Context, key model.SubmissionKey, status model.SubmissionStatus, detail string) error {
	const query = `
        UPDATE submissions SET status = $2, detail = $3, updated_at = NOW()
        WHERE idempotency_key = $1
    `

	tag, err := r.db.Exec(ctx, query, key.String(), status, detail)
	if err != nil {
		return fmt.Errorf("failed to finish submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
