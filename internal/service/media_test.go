package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/regbot/internal/metrics"
	"github.com/dtroode/regbot/internal/mocks"
	"github.com/dtroode/regbot/internal/model"
	"github.com/dtroode/regbot/internal/testutil"
)

func TestMedia_Collect(t *testing.T) {
	ctx := context.Background()

	t.Run("photo stored under user slot key", func(t *testing.T) {
		fetcher := &mocks.FileFetcher{}
		storage := &mocks.Storage{}
		fetcher.On("Fetch", mock.Anything, "tok-1").Return([]byte("jpeg"), nil)
		storage.On("Upload", mock.Anything, "42/passport_main.jpg", mock.Anything, int64(4), "image/jpeg").Return(nil)

		m := NewMedia(fetcher, storage, metrics.NewNoop(), testutil.MakeNoopLogger())
		path, err := m.Collect(ctx, 42, model.MediaRef{Slot: model.SlotPassportMain, Token: "tok-1", Kind: model.ContentPhoto})

		require.NoError(t, err)
		assert.Equal(t, "42/passport_main.jpg", path)
		fetcher.AssertExpectations(t)
		storage.AssertExpectations(t)
	})

	t.Run("video note stored as mp4", func(t *testing.T) {
		fetcher := &mocks.FileFetcher{}
		storage := &mocks.Storage{}
		fetcher.On("Fetch", mock.Anything, "vn").Return([]byte("mp4data"), nil)
		storage.On("Upload", mock.Anything, "42/video_note.mp4", mock.Anything, int64(7), "video/mp4").Return(nil)

		m := NewMedia(fetcher, storage, metrics.NewNoop(), testutil.MakeNoopLogger())
		path, err := m.Collect(ctx, 42, model.MediaRef{Slot: model.SlotVideoNote, Token: "vn", Kind: model.ContentVideo})

		require.NoError(t, err)
		assert.Equal(t, "42/video_note.mp4", path)
	})

	t.Run("already uploaded ref is not fetched", func(t *testing.T) {
		fetcher := &mocks.FileFetcher{}
		storage := &mocks.Storage{}

		m := NewMedia(fetcher, storage, metrics.NewNoop(), testutil.MakeNoopLogger())
		path, err := m.Collect(ctx, 42, model.MediaRef{Slot: model.SlotPassportReg, Path: "42/passport_reg.jpg"})

		require.NoError(t, err)
		assert.Equal(t, "42/passport_reg.jpg", path)
		fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("fetch error becomes transport fault", func(t *testing.T) {
		fetcher := &mocks.FileFetcher{}
		storage := &mocks.Storage{}
		fetcher.On("Fetch", mock.Anything, "tok").Return(nil, errors.New("connection reset"))

		m := NewMedia(fetcher, storage, metrics.NewNoop(), testutil.MakeNoopLogger())
		_, err := m.Collect(ctx, 42, model.MediaRef{Slot: model.SlotDriverLicense, Token: "tok", Kind: model.ContentPhoto})

		assert.ErrorIs(t, err, model.ErrTransport)
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found is kept", func(t *testing.T) {
		fetcher := &mocks.FileFetcher{}
		fetcher.On("Fetch", mock.Anything, "gone").Return(nil, model.NewMediaNotFound("gone"))

		m := NewMedia(fetcher, &mocks.Storage{}, metrics.NewNoop(), testutil.MakeNoopLogger())
		_, err := m.Fetch(ctx, "gone")

		assert.ErrorIs(t, err, model.ErrMediaNotFound)
		assert.NotErrorIs(t, err, model.ErrTransport)
	})

	t.Run("upload error becomes storage fault", func(t *testing.T) {
		fetcher := &mocks.FileFetcher{}
		storage := &mocks.Storage{}
		fetcher.On("Fetch", mock.Anything, "tok").Return([]byte("x"), nil)
		storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))

		m := NewMedia(fetcher, storage, metrics.NewNoop(), testutil.MakeNoopLogger())
		_, err := m.Collect(ctx, 42, model.MediaRef{Slot: model.SlotPatentFront, Token: "tok", Kind: model.ContentPhoto})

		assert.ErrorIs(t, err, model.ErrStorage)
		assert.ErrorContains(t, err, "failed to collect patent_front")
	})
}
