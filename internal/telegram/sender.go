package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dtroode/regbot/internal/model"
)

var _ model.Messenger = (*Sender)(nil)

// Sender delivers prompts as Telegram messages.
type Sender struct {
	api botAPI
}

func NewSender(api botAPI) *Sender {
	return &Sender{api: api}
}

// Send posts the prompt's attachments in order, then its text. The keyboard
// goes with the text, or with the last attachment when there is no text.
func (s *Sender) Send(ctx context.Context, chatID int64, prompt model.Prompt) error {
	for i, att := range prompt.Attachments {
		if err := ctx.Err(); err != nil {
			return err
		}

		var kb *model.Keyboard
		if prompt.Text == "" && i == len(prompt.Attachments)-1 {
			kb = prompt.Keyboard
		}
		if _, err := s.api.Send(attachmentConfig(chatID, att, prompt.Markdown, kb)); err != nil {
			return fmt.Errorf("failed to send attachment %s: %w", att.Path, err)
		}
	}

	if prompt.Text == "" {
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, prompt.Text)
	if prompt.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	msg.ReplyMarkup = replyMarkup(prompt.Keyboard)

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func attachmentConfig(chatID int64, att model.Attachment, markdown bool, kb *model.Keyboard) tgbotapi.Chattable {
	file := tgbotapi.FilePath(att.Path)
	parseMode := ""
	if markdown && att.Caption != "" {
		parseMode = tgbotapi.ModeMarkdown
	}

	switch att.Kind {
	case model.AttachmentVideo:
		cfg := tgbotapi.NewVideo(chatID, file)
		cfg.Caption = att.Caption
		cfg.ParseMode = parseMode
		cfg.ReplyMarkup = replyMarkup(kb)
		return cfg
	default:
		cfg := tgbotapi.NewDocument(chatID, file)
		cfg.Caption = att.Caption
		cfg.ParseMode = parseMode
		cfg.ReplyMarkup = replyMarkup(kb)
		return cfg
	}
}

// replyMarkup converts kb; it returns an untyped nil for no keyboard.
func replyMarkup(kb *model.Keyboard) interface{} {
	switch {
	case kb == nil:
		return nil
	case kb.Remove:
		return tgbotapi.NewRemoveKeyboard(true)
	case kb.RequestContact != "":
		markup := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(kb.RequestContact)),
		)
		markup.ResizeKeyboard = true
		markup.OneTimeKeyboard = true
		return markup
	case len(kb.Rows) > 0:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
		for _, r := range kb.Rows {
			row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
			for _, b := range r {
				if b.URL != "" {
					row = append(row, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
				} else {
					row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Token))
				}
			}
			rows = append(rows, row)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	default:
		return nil
	}
}
