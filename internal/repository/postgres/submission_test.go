package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/regbot/internal/model"
)

type mockExecer struct {
	mock.Mock
}

func (m *mockExecer) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func TestNewSubmissionRepository(t *testing.T) {
	db := &Connection{}
	repo := NewSubmissionRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestSubmissionRepository_Reserve(t *testing.T) {
	key := model.SubmissionKey{UserID: 42, Generation: 2}

	tests := []struct {
		name    string
		tag     string
		execErr error
		want    bool
		wantErr bool
	}{
		{name: "first reservation", tag: "INSERT 0 1", want: true},
		{name: "key already claimed", tag: "INSERT 0 0", want: false},
		{name: "database error", execErr: errors.New("conn reset"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mockExecer{}
			db.On("Exec", mock.Anything, mock.Anything, mock.MatchedBy(func(args []any) bool {
				return len(args) == 5 && args[1] == "42:2" && args[2] == int64(42) && args[3] == int64(2)
			})).Return(pgconn.NewCommandTag(tt.tag), tt.execErr)

			repo := &SubmissionRepository{db: db}
			got, err := repo.Reserve(context.Background(), key)
			if tt.wantErr {
				assert.ErrorContains(t, err, "failed to reserve submission")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			db.AssertExpectations(t)
		})
	}
}

func TestSubmissionRepository_Finish(t *testing.T) {
	key := model.SubmissionKey{UserID: 42, Generation: 2}

	t.Run("updates row", func(t *testing.T) {
		db := &mockExecer{}
		db.On("Exec", mock.Anything, mock.Anything, []any{"42:2", model.SubmissionSucceeded, ""}).
			Return(pgconn.NewCommandTag("UPDATE 1"), nil)

		repo := &SubmissionRepository{db: db}
		require.NoError(t, repo.Finish(context.Background(), key, model.SubmissionSucceeded, ""))
		db.AssertExpectations(t)
	})

	t.Run("unknown key", func(t *testing.T) {
		db := &mockExecer{}
		db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
			Return(pgconn.NewCommandTag("UPDATE 0"), nil)

		repo := &SubmissionRepository{db: db}
		err := repo.Finish(context.Background(), key, model.SubmissionFailed, "timeout")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
