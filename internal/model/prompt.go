package model

import (
	"context"
	"strings"
)

// Messenger delivers prompts to a chat.
type Messenger interface {
	Send(ctx context.Context, chatID int64, prompt Prompt) error
}

var markdownStripper = strings.NewReplacer("*", "", "_", "", "`", "", "[", "")

// PlainText removes the Markdown control characters from user-supplied text
// so it can be embedded in a Markdown prompt.
func PlainText(s string) string {
	return markdownStripper.Replace(s)
}

// Prompt is one outgoing message with optional keyboard and attachments.
type Prompt struct {
	Text        string
	Markdown    bool
	Attachments []Attachment
	Keyboard    *Keyboard
}

// AttachmentKind enumerates files sent alongside a prompt.
type AttachmentKind int

const (
	AttachmentDocument AttachmentKind = iota
	AttachmentVideo
)

// Attachment is a local file sent before the prompt text.
type Attachment struct {
	Kind    AttachmentKind
	Path    string
	Caption string
}

// Keyboard describes the reply markup of a prompt.
type Keyboard struct {
	// Inline buttons, row by row.
	Rows [][]Button
	// RequestContact shows a reply keyboard with a single contact-share button.
	RequestContact string
	// Remove hides a previously shown reply keyboard.
	Remove bool
}

// Button is an inline button carrying either a callback token or a URL.
type Button struct {
	Label string
	Token string
	URL   string
}
