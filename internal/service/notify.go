package service

import (
	"context"
	"fmt"

	"github.com/dtroode/regbot/internal/logger"
	"github.com/dtroode/regbot/internal/metrics"
	"github.com/dtroode/regbot/internal/model"
)

// Dispatcher fans a completed registration out to the configured observers.
type Dispatcher struct {
	messenger model.Messenger
	observers []int64
	panelURL  string
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewDispatcher(
	messenger model.Messenger,
	observers []int64,
	panelURL string,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		observers: observers,
		panelURL:  panelURL,
		metrics:   metrics,
		logger:    logger,
	}
}

// Notify delivers event to every observer. A failed delivery is recorded in
// its outcome and never stops the others.
func (d *Dispatcher) Notify(ctx context.Context, event model.RegistrationCompleted) []model.DeliveryOutcome {
	if len(d.observers) == 0 {
		d.logger.Warn("no observers configured, registration notification skipped", "user_id", event.UserID)
		return nil
	}

	prompt := d.prompt(event)
	outcomes := make([]model.DeliveryOutcome, 0, len(d.observers))
	for _, id := range d.observers {
		err := d.messenger.Send(ctx, id, prompt)
		d.metrics.ObserveNotification(err)
		if err != nil {
			d.logger.Error("failed to notify observer", "observer_id", id, "user_id", event.UserID, "error", err)
		} else {
			d.logger.Info("observer notified", "observer_id", id, "user_id", event.UserID)
		}
		outcomes = append(outcomes, model.DeliveryOutcome{ObserverID: id, Err: err})
	}

	return outcomes
}

func (d *Dispatcher) prompt(event model.RegistrationCompleted) model.Prompt {
	p := model.Prompt{
		Text: fmt.Sprintf(
			"🔔 *Новая заявка на верификацию!*\n\n"+
				"Пользователь: *%s*\n"+
				"ID пользователя: `%d`\n\n"+
				"Пожалуйста, проверьте анкету в панели администратора.",
			model.PlainText(event.Name), event.UserID,
		),
		Markdown: true,
	}
	if d.panelURL != "" {
		p.Keyboard = &model.Keyboard{Rows: [][]model.Button{{
			{Label: "➡️ Открыть админ-панель", URL: d.panelURL},
		}}}
	}
	return p
}
