package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadySubmitted = errors.New("submission already processed")
	ErrFlagsAlreadySet  = errors.New("derived flags already set")
	ErrUndefinedEdge    = errors.New("transition is not defined")
)

// FaultKind classifies failures by how they are recovered.
type FaultKind string

const (
	FaultValidation     FaultKind = "validation"
	FaultPolicyAbort    FaultKind = "policy_abort"
	FaultTransport      FaultKind = "transport"
	FaultRemoteRejected FaultKind = "remote_rejected"
	FaultPartialMedia   FaultKind = "partial_media"
	FaultStorage        FaultKind = "storage"
	FaultNotFound       FaultKind = "not_found"
)

// Kind sentinels usable with errors.Is.
var (
	ErrValidation     = &Fault{Kind: FaultValidation}
	ErrPolicyAbort    = &Fault{Kind: FaultPolicyAbort}
	ErrTransport      = &Fault{Kind: FaultTransport}
	ErrRemoteRejected = &Fault{Kind: FaultRemoteRejected}
	ErrPartialMedia   = &Fault{Kind: FaultPartialMedia}
	ErrStorage        = &Fault{Kind: FaultStorage}
	ErrMediaNotFound  = &Fault{Kind: FaultNotFound}
)

// Fault is a classified failure. Message is safe to show to the user for
// validation and remote rejection faults.
type Fault struct {
	Kind    FaultKind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	switch {
	case f.Message != "" && f.Err != nil:
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	case f.Message != "":
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	case f.Err != nil:
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	default:
		return string(f.Kind)
	}
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Is matches the bare kind sentinels (ErrValidation, ErrTransport, ...).
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	return ok && t.Kind == f.Kind && t.Message == "" && t.Err == nil
}

func NewValidationFault(message string) *Fault {
	return &Fault{Kind: FaultValidation, Message: message}
}

func NewPolicyAbort(message string) *Fault {
	return &Fault{Kind: FaultPolicyAbort, Message: message}
}

func NewTransportFault(err error) *Fault {
	return &Fault{Kind: FaultTransport, Err: err}
}

func NewRemoteRejected(reason string) *Fault {
	return &Fault{Kind: FaultRemoteRejected, Message: reason}
}

func NewPartialMediaFault(slot Slot, err error) *Fault {
	return &Fault{Kind: FaultPartialMedia, Message: string(slot), Err: err}
}

func NewStorageFault(err error) *Fault {
	return &Fault{Kind: FaultStorage, Err: err}
}

func NewMediaNotFound(token string) *Fault {
	return &Fault{Kind: FaultNotFound, Message: token}
}

// FaultMessage returns the user-facing message of a fault, if any.
func FaultMessage(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Message
	}
	return ""
}
