package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dtroode/regbot/internal/model"
)

// fakeAPI implements botAPI in memory.
type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
	fileURL  string
	fileErr  error
	updates  chan tgbotapi.Update
	stopped  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 128)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(string) (string, error) {
	return f.fileURL, f.fileErr
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

type call struct {
	method string
	userID int64
	arg    string
	event  model.Event
}

// recordingHandler records calls in order.
type recordingHandler struct {
	mu      sync.Mutex
	calls   []call
	panicOn string

	// blockUser's Handle waits on release before recording.
	blockUser int64
	release   chan struct{}
}

func (h *recordingHandler) Start(_ context.Context, userID int64, firstName, mode string) error {
	h.record(call{method: "start", userID: userID, arg: firstName + "|" + mode})
	return nil
}

func (h *recordingHandler) Cancel(_ context.Context, userID int64) error {
	h.record(call{method: "cancel", userID: userID})
	return nil
}

func (h *recordingHandler) Handle(_ context.Context, userID int64, ev model.Event) error {
	if h.panicOn != "" && ev.Text == h.panicOn {
		panic("boom")
	}
	if h.release != nil && userID == h.blockUser {
		<-h.release
	}
	h.record(call{method: "handle", userID: userID, event: ev})
	return nil
}

func (h *recordingHandler) record(c call) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, c)
}

func (h *recordingHandler) snapshot() []call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]call(nil), h.calls...)
}
