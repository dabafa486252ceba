package model

// Step identifies the active node of the registration conversation.
type Step string

const (
	StepAgreement         Step = "awaiting_agreement"
	StepPhone             Step = "awaiting_phone"
	StepName              Step = "awaiting_name"
	StepBirthDate         Step = "awaiting_birth_date"
	StepCity              Step = "awaiting_city"
	StepCountry           Step = "awaiting_country"
	StepOtherCountry      Step = "awaiting_other_country"
	StepPrimaryDocument   Step = "awaiting_primary_document"
	StepSecondaryDocument Step = "awaiting_secondary_document"
	StepPatentFront       Step = "awaiting_patent_front"
	StepPatentBack        Step = "awaiting_patent_back"
	StepPatentReceipt     Step = "awaiting_patent_receipt"
	StepDriverLicense     Step = "awaiting_driver_license"
	StepEmergencyPhone    Step = "awaiting_emergency_phone"
	StepVideoNote         Step = "awaiting_video_note"
	StepCompleted         Step = "completed"
)

// Answer keys stored in Session.Answers.
const (
	AnswerPhone          = "phone"
	AnswerTelegramUserID = "telegram_user_id"
	AnswerName           = "name"
	AnswerBirthDate      = "birth_date"
	AnswerCity           = "city"
	AnswerCitizenship    = "citizenship"
	AnswerEmergencyPhone = "emergency_phone"
)

// Flags are derived from the citizenship answer and read by later steps.
type Flags struct {
	Set                      bool
	PatentRequired           bool
	RegistrationPageOptional bool
}

// Session is the state of one registration attempt of one user.
type Session struct {
	UserID     int64
	Generation uint64
	Step       Step
	Answers    map[string]string
	Media      map[Slot]MediaRef
	Flags      Flags
}

// NewSession creates a session positioned at the agreement step.
func NewSession(userID int64, generation uint64) *Session {
	return &Session{
		UserID:     userID,
		Generation: generation,
		Step:       StepAgreement,
		Answers:    make(map[string]string),
		Media:      make(map[Slot]MediaRef),
	}
}

// SetFlags stores derived flags. Flags are write-once per session.
func (s *Session) SetFlags(patentRequired, registrationPageOptional bool) error {
	if s.Flags.Set {
		return ErrFlagsAlreadySet
	}
	s.Flags = Flags{
		Set:                      true,
		PatentRequired:           patentRequired,
		RegistrationPageOptional: registrationPageOptional,
	}
	return nil
}

// Key returns the idempotency key of the session's submission.
func (s *Session) Key() SubmissionKey {
	return SubmissionKey{UserID: s.UserID, Generation: s.Generation}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *Session) Clone() Session {
	c := *s
	c.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	c.Media = make(map[Slot]MediaRef, len(s.Media))
	for k, v := range s.Media {
		c.Media[k] = v
	}
	return c
}
