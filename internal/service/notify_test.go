package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/regbot/internal/metrics"
	"github.com/dtroode/regbot/internal/model"
	"github.com/dtroode/regbot/internal/testutil"
)

func TestDispatcher_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("one observer failing does not stop the others", func(t *testing.T) {
		messenger := testutil.NewMessenger()
		messenger.Fail[2] = errors.New("bot was blocked by the user")

		d := NewDispatcher(messenger, []int64{1, 2, 3}, "https://example.com/admin.html", metrics.NewNoop(), testutil.MakeNoopLogger())
		outcomes := d.Notify(ctx, model.RegistrationCompleted{UserID: 42, Name: "Ivanov Ivan"})

		require.Len(t, outcomes, 3)
		assert.NoError(t, outcomes[0].Err)
		assert.Error(t, outcomes[1].Err)
		assert.Equal(t, int64(2), outcomes[1].ObserverID)
		assert.NoError(t, outcomes[2].Err)

		assert.Len(t, messenger.Prompts(1), 1)
		assert.Len(t, messenger.Prompts(3), 1)

		p := messenger.Last(3)
		assert.Contains(t, p.Text, "Ivanov Ivan")
		assert.Contains(t, p.Text, "`42`")
		assert.True(t, p.Markdown)
		require.NotNil(t, p.Keyboard)
		assert.Equal(t, "https://example.com/admin.html", p.Keyboard.Rows[0][0].URL)
	})

	t.Run("markdown in names is neutralised", func(t *testing.T) {
		messenger := testutil.NewMessenger()
		d := NewDispatcher(messenger, []int64{1}, "", metrics.NewNoop(), testutil.MakeNoopLogger())

		d.Notify(ctx, model.RegistrationCompleted{UserID: 42, Name: "*bold_name*"})

		p := messenger.Last(1)
		assert.Contains(t, p.Text, "*boldname*")
		assert.Nil(t, p.Keyboard)
	})

	t.Run("no observers", func(t *testing.T) {
		d := NewDispatcher(testutil.NewMessenger(), nil, "", metrics.NewNoop(), testutil.MakeNoopLogger())
		assert.Empty(t, d.Notify(ctx, model.RegistrationCompleted{UserID: 42}))
	})
}
