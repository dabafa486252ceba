package model

// RegistrationCompleted is the event fanned out to observers after a
// successful submission.
type RegistrationCompleted struct {
	UserID int64
	Name   string
}

// DeliveryOutcome is the result of notifying one observer.
type DeliveryOutcome struct {
	ObserverID int64
	Err        error
}
