package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/regbot/internal/metrics"
	"github.com/dtroode/regbot/internal/mocks"
	"github.com/dtroode/regbot/internal/model"
	"github.com/dtroode/regbot/internal/repository/memory"
	"github.com/dtroode/regbot/internal/testutil"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Notify(ctx context.Context, event model.RegistrationCompleted) []model.DeliveryOutcome {
	args := m.Called(ctx, event)
	outcomes, _ := args.Get(0).([]model.DeliveryOutcome)
	return outcomes
}

func completedSession() model.Session {
	s := model.NewSession(42, 1)
	s.Answers[model.AnswerPhone] = "+79991234567"
	s.Answers[model.AnswerTelegramUserID] = "42"
	s.Answers[model.AnswerName] = "Ivanov Ivan"
	s.Answers[model.AnswerBirthDate] = "15.05.1990"
	s.Answers[model.AnswerCity] = "Москва"
	s.Answers[model.AnswerCitizenship] = "ru"
	s.Answers[model.AnswerEmergencyPhone] = "+7 999 123 45 67"
	_ = s.SetFlags(false, false)
	s.Media[model.SlotPassportMain] = model.MediaRef{Slot: model.SlotPassportMain, Token: "pm", Kind: model.ContentPhoto}
	s.Media[model.SlotPassportReg] = model.MediaRef{Slot: model.SlotPassportReg, Token: "pr", Kind: model.ContentPhoto}
	s.Media[model.SlotVideoNote] = model.MediaRef{Slot: model.SlotVideoNote, Token: "vn", Kind: model.ContentVideo}
	s.Step = model.StepCompleted
	return *s
}

func newMediaMocks() (*mocks.FileFetcher, *mocks.Storage) {
	fetcher := &mocks.FileFetcher{}
	storage := &mocks.Storage{}
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return([]byte("data"), nil)
	storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return fetcher, storage
}

func newTestSubmission(fetcher *mocks.FileFetcher, storage *mocks.Storage, registrar model.Registrar, ledger model.SubmissionLedger, notifier Notifier) *Submission {
	m := metrics.NewNoop()
	log := testutil.MakeNoopLogger()
	return NewSubmission(NewMedia(fetcher, storage, m, log), registrar, ledger, notifier, 2, m, log)
}

func TestSubmission_Submit_Success(t *testing.T) {
	ctx := context.Background()
	fetcher, storage := newMediaMocks()
	registrar := &mocks.Registrar{}
	notifier := &notifierMock{}
	ledger := memory.NewSubmissionLedger()
	session := completedSession()

	var got model.Record
	registrar.On("Register", mock.Anything, session.Key(), mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(model.Record) }).
		Return(nil).Once()
	notifier.On("Notify", mock.Anything, model.RegistrationCompleted{UserID: 42, Name: "Ivanov Ivan"}).Return(nil).Once()

	res, err := newTestSubmission(fetcher, storage, registrar, ledger, notifier).Submit(ctx, session)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.SubmissionID)
	assert.Empty(t, res.FailedSlots)
	assert.Equal(t, map[model.Slot]string{
		model.SlotPassportMain: "42/passport_main.jpg",
		model.SlotPassportReg:  "42/passport_reg.jpg",
		model.SlotVideoNote:    "42/video_note.mp4",
	}, got.Media)
	assert.Equal(t, "Ivanov Ivan", got.Fields[model.AnswerName])
	assert.NotContains(t, got.FormData(), "patent_required")
	assert.NotContains(t, got.FormData(), "driver_license_storage_path")

	status, ok := ledger.Status(session.Key())
	require.True(t, ok)
	assert.Equal(t, model.SubmissionSucceeded, status)
	registrar.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSubmission_Submit_Idempotent(t *testing.T) {
	ctx := context.Background()
	fetcher, storage := newMediaMocks()
	registrar := &mocks.Registrar{}
	notifier := &notifierMock{}
	registrar.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	s := newTestSubmission(fetcher, storage, registrar, memory.NewSubmissionLedger(), notifier)
	session := completedSession()

	_, err := s.Submit(ctx, session)
	require.NoError(t, err)

	_, err = s.Submit(ctx, session)
	assert.ErrorIs(t, err, model.ErrAlreadySubmitted)

	registrar.AssertNumberOfCalls(t, "Register", 1)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
	fetcher.AssertNumberOfCalls(t, "Fetch", 3)
}

func TestSubmission_Submit_PartialUpload(t *testing.T) {
	ctx := context.Background()
	fetcher := &mocks.FileFetcher{}
	storage := &mocks.Storage{}
	registrar := &mocks.Registrar{}
	notifier := &notifierMock{}

	fetcher.On("Fetch", mock.Anything, "pm").Return([]byte("data"), nil)
	fetcher.On("Fetch", mock.Anything, "dl").Return(nil, model.NewTransportFault(errors.New("i/o timeout")))
	storage.On("Upload", mock.Anything, "42/passport_main.jpg", mock.Anything, mock.Anything, "image/jpeg").Return(nil)

	session := model.NewSession(42, 1)
	session.Answers[model.AnswerName] = "Ivanov Ivan"
	session.Media[model.SlotPassportMain] = model.MediaRef{Slot: model.SlotPassportMain, Token: "pm", Kind: model.ContentPhoto}
	session.Media[model.SlotDriverLicense] = model.MediaRef{Slot: model.SlotDriverLicense, Token: "dl", Kind: model.ContentPhoto}

	var got model.Record
	registrar.On("Register", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(model.Record) }).
		Return(nil).Once()
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	res, err := newTestSubmission(fetcher, storage, registrar, memory.NewSubmissionLedger(), notifier).Submit(ctx, *session)
	require.NoError(t, err)

	assert.Equal(t, map[model.Slot]string{model.SlotPassportMain: "42/passport_main.jpg"}, got.Media)
	assert.Equal(t, []model.Slot{model.SlotDriverLicense}, res.FailedSlots)
	registrar.AssertExpectations(t)
}

func TestSubmission_Submit_Failures(t *testing.T) {
	tests := []struct {
		name       string
		registrErr error
		wantKind   error
		wantStatus model.SubmissionStatus
	}{
		{
			name:       "remote rejected",
			registrErr: model.NewRemoteRejected("Пользователь уже зарегистрирован"),
			wantKind:   model.ErrRemoteRejected,
			wantStatus: model.SubmissionRejected,
		},
		{
			name:       "transport",
			registrErr: model.NewTransportFault(errors.New("status 502")),
			wantKind:   model.ErrTransport,
			wantStatus: model.SubmissionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher, storage := newMediaMocks()
			registrar := &mocks.Registrar{}
			notifier := &notifierMock{}
			ledger := memory.NewSubmissionLedger()
			registrar.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(tt.registrErr)

			session := completedSession()
			_, err := newTestSubmission(fetcher, storage, registrar, ledger, notifier).Submit(context.Background(), session)

			assert.ErrorIs(t, err, tt.wantKind)
			notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
			status, _ := ledger.Status(session.Key())
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestSubmission_Submit_LedgerError(t *testing.T) {
	ledger := &mocks.SubmissionLedger{}
	ledger.On("Reserve", mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	registrar := &mocks.Registrar{}
	fetcher, storage := newMediaMocks()

	_, err := newTestSubmission(fetcher, storage, registrar, ledger, &notifierMock{}).Submit(context.Background(), completedSession())

	assert.ErrorContains(t, err, "failed to reserve submission")
	registrar.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestSubmission_Submit_FinishErrorIsLogged(t *testing.T) {
	ledger := &mocks.SubmissionLedger{}
	ledger.On("Reserve", mock.Anything, mock.Anything).Return(true, nil)
	ledger.On("Finish", mock.Anything, mock.Anything, model.SubmissionSucceeded, "").Return(errors.New("redis down"))
	registrar := &mocks.Registrar{}
	registrar.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	notifier := &notifierMock{}
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	fetcher, storage := newMediaMocks()

	_, err := newTestSubmission(fetcher, storage, registrar, ledger, notifier).Submit(context.Background(), completedSession())

	assert.NoError(t, err)
	ledger.AssertExpectations(t)
}
