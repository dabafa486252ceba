package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/semaphore"

	"github.com/dtroode/regbot/internal/logger"
	"github.com/dtroode/regbot/internal/model"
)

const (
	commandStart  = "start"
	commandCancel = "cancel"

	defaultConcurrency = 100
	maxPendingPerUser  = 64
)

// Handler is the conversation the bot feeds.
type Handler interface {
	Start(ctx context.Context, userID int64, firstName, mode string) error
	Cancel(ctx context.Context, userID int64) error
	Handle(ctx context.Context, userID int64, ev model.Event) error
}

// inbox holds the updates of one user waiting for its drain goroutine.
type inbox struct {
	pending []tgbotapi.Update
}

// Bot polls updates and dispatches them to the handler. Every user with
// pending updates gets its own goroutine, so updates of one user are handled
// in arrival order and a slow user never delays another. At most concurrency
// users are handled at once.
type Bot struct {
	api         botAPI
	handler     Handler
	pollTimeout int
	concurrency int
	sem         *semaphore.Weighted
	logger      *logger.Logger

	mu      sync.Mutex
	inboxes map[int64]*inbox
	wg      sync.WaitGroup
}

func NewBot(api botAPI, handler Handler, pollTimeout, concurrency int, logger *logger.Logger) *Bot {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Bot{
		api:         api,
		handler:     handler,
		pollTimeout: pollTimeout,
		concurrency: concurrency,
		sem:         semaphore.NewWeighted(int64(concurrency)),
		logger:      logger,
		inboxes:     make(map[int64]*inbox),
	}
}

// Run polls until ctx is done, then waits for in-flight updates to finish.
// Handlers run detached from ctx so a started submission is never cut short.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	work := context.WithoutCancel(ctx)

	b.logger.Info("bot started", "concurrency", b.concurrency)

	defer func() {
		b.wg.Wait()
		b.logger.Info("bot stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			userID, ok := senderID(update)
			if !ok {
				continue
			}
			b.enqueue(work, userID, update)
		}
	}
}

// enqueue never blocks: it appends to the user's inbox and starts a drain
// goroutine when none is running.
func (b *Bot) enqueue(ctx context.Context, userID int64, update tgbotapi.Update) {
	b.mu.Lock()
	box, running := b.inboxes[userID]
	if !running {
		box = &inbox{}
		b.inboxes[userID] = box
	}
	if len(box.pending) >= maxPendingPerUser {
		b.mu.Unlock()
		b.logger.Warn("user inbox full, update dropped", "user_id", userID, "update_id", update.UpdateID)
		return
	}
	box.pending = append(box.pending, update)
	b.mu.Unlock()

	if running {
		return
	}
	b.wg.Add(1)
	go b.drain(ctx, userID, box)
}

func (b *Bot) drain(ctx context.Context, userID int64, box *inbox) {
	defer b.wg.Done()

	for {
		b.mu.Lock()
		if len(box.pending) == 0 {
			delete(b.inboxes, userID)
			b.mu.Unlock()
			return
		}
		update := box.pending[0]
		box.pending = box.pending[1:]
		b.mu.Unlock()

		if err := b.sem.Acquire(ctx, 1); err != nil {
			b.logger.Error("failed to acquire handler slot", "user_id", userID, "error", err)
			continue
		}
		b.process(ctx, update)
		b.sem.Release(1)
	}
}

// process handles one update; a panic is logged and never stops the user's goroutine.
func (b *Bot) process(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while handling update", "update_id", update.UpdateID, "panic", fmt.Sprint(r))
		}
	}()

	if err := b.dispatch(ctx, update); err != nil {
		b.logger.Error("failed to handle update", "update_id", update.UpdateID, "error", err)
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) error {
	if cb := update.CallbackQuery; cb != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.logger.Warn("failed to answer callback", "error", err)
		}
		return b.handler.Handle(ctx, cb.From.ID, model.ButtonPressed(cb.Data))
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	userID := msg.From.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case commandStart:
			return b.handler.Start(ctx, userID, msg.From.FirstName, msg.CommandArguments())
		case commandCancel:
			return b.handler.Cancel(ctx, userID)
		default:
			b.logger.Debug("unknown command ignored", "user_id", userID, "command", msg.Command())
			return nil
		}
	}

	ev, ok := eventFromMessage(msg)
	if !ok {
		b.logger.Debug("unsupported message ignored", "user_id", userID)
		return nil
	}
	return b.handler.Handle(ctx, userID, ev)
}

func senderID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID, true
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	default:
		return 0, false
	}
}

// eventFromMessage maps an inbound message to a conversation event. Photos
// resolve to their largest size.
func eventFromMessage(msg *tgbotapi.Message) (model.Event, bool) {
	switch {
	case msg.Contact != nil:
		return model.ContactShared(msg.Contact.PhoneNumber, msg.Contact.UserID), true
	case len(msg.Photo) > 0:
		return model.PhotoReceived(msg.Photo[len(msg.Photo)-1].FileID), true
	case msg.VideoNote != nil:
		return model.VideoNoteReceived(msg.VideoNote.FileID), true
	case msg.Video != nil:
		return model.VideoReceived(msg.Video.FileID), true
	case msg.Document != nil:
		return model.DocumentReceived(msg.Document.FileID), true
	case msg.Text != "":
		return model.TextInput(msg.Text), true
	default:
		return model.Event{}, false
	}
}
