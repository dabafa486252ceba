package model

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Slot is a named attachment point for one document or media item.
type Slot string

const (
	SlotPassportMain  Slot = "passport_main"
	SlotPassportReg   Slot = "passport_reg"
	SlotPatentFront   Slot = "patent_front"
	SlotPatentBack    Slot = "patent_back"
	SlotPatentReceipt Slot = "patent_receipt"
	SlotDriverLicense Slot = "driver_license"
	SlotVideoNote     Slot = "video_note"
)

// ContentKind is the media type of a slot's content.
type ContentKind string

const (
	ContentPhoto ContentKind = "photo"
	ContentVideo ContentKind = "video"
)

// Extension returns the storage file extension for the kind.
func (k ContentKind) Extension() string {
	if k == ContentVideo {
		return "mp4"
	}
	return "jpg"
}

// MIMEType returns the upload content type for the kind.
func (k ContentKind) MIMEType() string {
	if k == ContentVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}

// MediaRef points at slot content, either still remote (Token) or uploaded (Path).
type MediaRef struct {
	Slot  Slot
	Token string
	Kind  ContentKind
	Path  string
}

// Pending reports whether the content still has to be uploaded.
func (m MediaRef) Pending() bool {
	return m.Path == "" && m.Token != ""
}

// MediaKey builds the object storage key for a user's slot.
func MediaKey(userID int64, slot Slot, kind ContentKind) string {
	return fmt.Sprintf("%d/%s.%s", userID, slot, kind.Extension())
}

// Record is the upload-resolved projection of a completed session.
type Record struct {
	UserID int64
	Fields map[string]string
	Media  map[Slot]string
}

// FormData flattens the record into the registration API form payload.
func (r Record) FormData() map[string]string {
	data := make(map[string]string, len(r.Fields)+len(r.Media))
	for k, v := range r.Fields {
		data[k] = v
	}
	for slot, path := range r.Media {
		data[string(slot)+"_storage_path"] = path
	}
	return data
}

// Registrar submits a record to the downstream registration API.
type Registrar interface {
	Register(ctx context.Context, key SubmissionKey, record Record) error
}

// SubmitResult describes an accepted submission.
type SubmitResult struct {
	SubmissionID uuid.UUID
	Record       Record
	// FailedSlots lists slots that could not be uploaded and were omitted.
	FailedSlots []Slot
}
