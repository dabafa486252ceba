package model

// EventKind enumerates inbound user input kinds.
type EventKind int

const (
	EventText EventKind = iota
	EventContact
	EventPhoto
	EventVideo
	EventVideoNote
	EventDocument
	EventButton
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventContact:
		return "contact"
	case EventPhoto:
		return "photo"
	case EventVideo:
		return "video"
	case EventVideoNote:
		return "video_note"
	case EventDocument:
		return "document"
	case EventButton:
		return "button"
	default:
		return "unknown"
	}
}

// Event is a single inbound input from a user.
type Event struct {
	Kind EventKind
	// Text is set for EventText.
	Text string
	// Phone and ContactOwnerID are set for EventContact.
	Phone          string
	ContactOwnerID int64
	// FileToken is the transport's opaque download token for media events.
	FileToken string
	// Token is the button payload for EventButton.
	Token string
}

func TextInput(text string) Event {
	return Event{Kind: EventText, Text: text}
}

func ContactShared(phone string, ownerID int64) Event {
	return Event{Kind: EventContact, Phone: phone, ContactOwnerID: ownerID}
}

func PhotoReceived(token string) Event {
	return Event{Kind: EventPhoto, FileToken: token}
}

func VideoReceived(token string) Event {
	return Event{Kind: EventVideo, FileToken: token}
}

func VideoNoteReceived(token string) Event {
	return Event{Kind: EventVideoNote, FileToken: token}
}

func DocumentReceived(token string) Event {
	return Event{Kind: EventDocument, FileToken: token}
}

func ButtonPressed(token string) Event {
	return Event{Kind: EventButton, Token: token}
}
