package testutil

import (
	"context"
	"sync"

	"github.com/dtroode/regbot/internal/model"
)

// Messenger records every prompt sent per chat. Chats listed in Fail get the
// configured error instead.
type Messenger struct {
	mu   sync.Mutex
	Sent map[int64][]model.Prompt
	Fail map[int64]error
}

func NewMessenger() *Messenger {
	return &Messenger{
		Sent: make(map[int64][]model.Prompt),
		Fail: make(map[int64]error),
	}
}

func (m *Messenger) Send(_ context.Context, chatID int64, prompt model.Prompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.Fail[chatID]; ok {
		return err
	}
	m.Sent[chatID] = append(m.Sent[chatID], prompt)
	return nil
}

// Prompts returns a copy of the prompts sent to chatID.
func (m *Messenger) Prompts(chatID int64) []model.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]model.Prompt(nil), m.Sent[chatID]...)
}

// Last returns the last prompt sent to chatID.
func (m *Messenger) Last(chatID int64) model.Prompt {
	prompts := m.Prompts(chatID)
	if len(prompts) == 0 {
		return model.Prompt{}
	}
	return prompts[len(prompts)-1]
}

// Reset forgets recorded prompts.
func (m *Messenger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sent = make(map[int64][]model.Prompt)
}
