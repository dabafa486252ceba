// Package fsm drives the per-user registration conversation.
package fsm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dtroode/regbot/internal/logger"
	"github.com/dtroode/regbot/internal/metrics"
	"github.com/dtroode/regbot/internal/model"
)

// ModeRegister is the start argument that opens the registration flow.
const ModeRegister = "register"

// Submitter commits a completed session.
type Submitter interface {
	Submit(ctx context.Context, session model.Session) (model.SubmitResult, error)
}

// Assets are the static files and links shown around the flow.
type Assets struct {
	AgreementPath  string
	AppendixPath   string
	GuideVideoPath string
	AppURL         string
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the clock used for age checks.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithFileCheck overrides how asset presence is checked.
func WithFileCheck(exists func(path string) bool) Option {
	return func(m *Machine) {
		m.fileExists = exists
	}
}

// Machine is the registration state machine. All methods serialize per user
// and are safe for concurrent use across users.
type Machine struct {
	store      *Store
	messenger  model.Messenger
	submitter  Submitter
	assets     Assets
	steps      map[model.Step]stepDef
	now        func() time.Time
	fileExists func(path string) bool
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

func NewMachine(
	store *Store,
	messenger model.Messenger,
	submitter Submitter,
	assets Assets,
	metrics *metrics.Metrics,
	logger *logger.Logger,
	opts ...Option,
) *Machine {
	m := &Machine{
		store:      store,
		messenger:  messenger,
		submitter:  submitter,
		assets:     assets,
		now:        time.Now,
		fileExists: fileExists,
		metrics:    metrics,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.steps = m.buildSteps()
	return m
}

// Start handles the start command. The register mode replaces any session
// with a fresh one; every other mode clears the session and greets the user.
func (m *Machine) Start(ctx context.Context, userID int64, firstName, mode string) error {
	unlock := m.store.Lock(userID)
	defer unlock()
	defer m.trackSessions()

	if mode != ModeRegister {
		m.store.Delete(userID)
		return m.send(ctx, userID, welcomePrompt(firstName, m.assets.AppURL))
	}

	if !m.fileExists(m.assets.AgreementPath) || !m.fileExists(m.assets.AppendixPath) {
		m.store.Delete(userID)
		m.logger.Error("agreement documents not found",
			"agreement", m.assets.AgreementPath, "appendix", m.assets.AppendixPath)
		return m.send(ctx, userID, model.Prompt{Text: textAssetsMissing})
	}

	session := m.store.Start(userID)
	m.logger.Info("registration started", "user_id", userID, "generation", session.Generation)

	return m.send(ctx, userID, m.steps[model.StepAgreement].prompt(session))
}

// Cancel drops the user's session.
func (m *Machine) Cancel(ctx context.Context, userID int64) error {
	unlock := m.store.Lock(userID)
	defer unlock()
	defer m.trackSessions()

	if !m.store.Delete(userID) {
		return m.send(ctx, userID, model.Prompt{Text: textNothingToDo})
	}

	m.logger.Info("registration cancelled", "user_id", userID)
	return m.send(ctx, userID, withKeyboard(model.Prompt{Text: textCancelled}, &model.Keyboard{Remove: true}))
}

// Step returns the user's current step.
func (m *Machine) Step(userID int64) (model.Step, bool) {
	unlock := m.store.Lock(userID)
	defer unlock()

	s, ok := m.store.Get(userID)
	if !ok {
		return "", false
	}
	return s.Step, true
}

// Handle feeds one event into the user's session. Events for users without a
// session are ignored. The user's lock is held until the event, including a
// final submission, is fully processed.
func (m *Machine) Handle(ctx context.Context, userID int64, ev model.Event) error {
	unlock := m.store.Lock(userID)
	defer unlock()
	defer m.trackSessions()

	session, ok := m.store.Get(userID)
	if !ok {
		m.logger.Debug("event without session ignored", "user_id", userID, "kind", ev.Kind)
		return nil
	}

	m.metrics.ObserveEvent(string(session.Step), ev.Kind.String())

	def := m.steps[session.Step]
	h, ok := def.handlers[ev.Kind]
	if !ok {
		return m.send(ctx, userID, def.fallback(session))
	}

	work := session.Clone()
	res, err := h(&work, ev)
	if err != nil {
		m.logger.Error("step handler failed", "user_id", userID, "step", session.Step, "error", err)
		return m.send(ctx, userID, model.Prompt{Text: textInternalError})
	}

	return m.apply(ctx, session, work, res)
}

func (m *Machine) apply(ctx context.Context, session *model.Session, work model.Session, res result) error {
	userID := session.UserID

	if res.abort {
		m.store.Delete(userID)
		m.logger.Info("registration aborted", "user_id", userID, "step", session.Step)
		return m.send(ctx, userID, m.reply(session, res))
	}

	if res.next == "" {
		return m.send(ctx, userID, m.reply(session, res))
	}

	if err := m.transition(&work, res.next); err != nil {
		m.logger.Error("transition rejected", "user_id", userID, "error", err)
		return m.send(ctx, userID, model.Prompt{Text: textInternalError})
	}
	*session = work

	if session.Step == model.StepCompleted {
		return m.complete(ctx, session)
	}

	return m.send(ctx, userID, withAck(res.ack, m.steps[session.Step].prompt(session)))
}

// transition moves s along a defined edge only.
func (m *Machine) transition(s *model.Session, next model.Step) error {
	def, ok := m.steps[s.Step]
	if !ok || !def.allows(next) {
		return fmt.Errorf("%w: %s -> %s", model.ErrUndefinedEdge, s.Step, next)
	}
	s.Step = next
	return nil
}

func (m *Machine) reply(session *model.Session, res result) model.Prompt {
	if res.reply != nil {
		return *res.reply
	}
	return m.steps[session.Step].fallback(session)
}

// complete submits the session and reports the outcome. The session is
// removed whatever the outcome. Submission is not cancelled with ctx.
func (m *Machine) complete(ctx context.Context, session *model.Session) error {
	userID := session.UserID
	defer m.store.Delete(userID)

	if err := m.send(ctx, userID, m.steps[model.StepCompleted].prompt(session)); err != nil {
		m.logger.Warn("failed to send progress message", "user_id", userID, "error", err)
	}

	_, err := m.submitter.Submit(context.WithoutCancel(ctx), session.Clone())
	switch {
	case err == nil:
		if err := m.send(ctx, userID, markdown(textRegistered)); err != nil {
			return err
		}
		return m.send(ctx, userID, guidePrompt(m.assets, m.fileExists(m.assets.GuideVideoPath)))
	case errors.Is(err, model.ErrAlreadySubmitted):
		return m.send(ctx, userID, model.Prompt{Text: textAlreadySubmitted})
	case errors.Is(err, model.ErrRemoteRejected):
		return m.send(ctx, userID, rejectedPrompt(model.FaultMessage(err)))
	default:
		m.logger.Error("submission failed", "user_id", userID, "error", err)
		return m.send(ctx, userID, model.Prompt{Text: textSubmitFailed})
	}
}

func (m *Machine) send(ctx context.Context, userID int64, p model.Prompt) error {
	if err := m.messenger.Send(ctx, userID, p); err != nil {
		return fmt.Errorf("failed to send prompt: %w", err)
	}
	return nil
}

func (m *Machine) trackSessions() {
	m.metrics.Sessions.Set(float64(m.store.Len()))
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
