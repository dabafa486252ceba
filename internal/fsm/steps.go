package fsm

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dtroode/regbot/internal/model"
	"github.com/dtroode/regbot/internal/validate"
)

// result is what a step handler decided for one event.
//
// A zero result keeps the step and re-sends the step's fallback prompt.
type result struct {
	// next is the step to move to; empty keeps the current step.
	next model.Step
	// ack prefixes the next step's prompt.
	ack string
	// reply replaces the fallback prompt when the step is kept.
	reply *model.Prompt
	// abort ends the session after sending reply.
	abort bool
}

func stay(p model.Prompt) result {
	return result{reply: &p}
}

func advance(next model.Step, ack string) result {
	return result{next: next, ack: ack}
}

// handler processes one event kind of one step. It may mutate the working
// copy of the session it is given; the copy is committed only if the result
// is applied.
type handler func(s *model.Session, ev model.Event) (result, error)

// stepDef is the static definition of one conversation node.
type stepDef struct {
	prompt   func(s *model.Session) model.Prompt
	fallback func(s *model.Session) model.Prompt
	handlers map[model.EventKind]handler
	edges    []model.Step
}

func (d stepDef) allows(next model.Step) bool {
	for _, e := range d.edges {
		if e == next {
			return true
		}
	}
	return false
}

func static(p model.Prompt) func(*model.Session) model.Prompt {
	return func(*model.Session) model.Prompt { return p }
}

func (m *Machine) buildSteps() map[model.Step]stepDef {
	photoFallback := func(prompt func(*model.Session) model.Prompt) func(*model.Session) model.Prompt {
		return func(s *model.Session) model.Prompt {
			return withAck(textPhotoRequired, prompt(s))
		}
	}
	optionalFallback := static(withKeyboard(model.Prompt{Text: textOptionalPhoto}, skipKeyboard(labelSkip)))

	steps := map[model.Step]stepDef{
		model.StepAgreement: {
			prompt:   static(agreementPrompt(m.assets)),
			fallback: static(model.Prompt{Text: textAgreementFallback}),
			handlers: map[model.EventKind]handler{
				model.EventButton: func(s *model.Session, ev model.Event) (result, error) {
					if ev.Token != TokenAgree {
						return result{}, nil
					}
					return advance(model.StepPhone, ackAgreement), nil
				},
			},
			edges: []model.Step{model.StepPhone},
		},
		model.StepPhone: {
			prompt:   static(withKeyboard(markdown(textPhone), contactKeyboard())),
			fallback: static(withKeyboard(markdown(textPhoneFallback), contactKeyboard())),
			handlers: map[model.EventKind]handler{
				model.EventContact: handlePhone,
			},
			edges: []model.Step{model.StepName},
		},
		model.StepName: {
			prompt:   static(withKeyboard(markdown(textName), &model.Keyboard{Remove: true})),
			fallback: static(markdown(textName)),
			handlers: map[model.EventKind]handler{
				model.EventText: textAnswer(model.AnswerName, textNameEmpty, model.StepBirthDate, ackName),
			},
			edges: []model.Step{model.StepBirthDate},
		},
		model.StepBirthDate: {
			prompt:   static(markdown(textBirthDate)),
			fallback: static(markdown(textBirthDate)),
			handlers: map[model.EventKind]handler{
				model.EventText: m.handleBirthDate,
			},
			edges: []model.Step{model.StepCity},
		},
		model.StepCity: {
			prompt:   static(withKeyboard(markdown(textCity), optionKeyboard(validate.Cities, cityIcons))),
			fallback: static(withKeyboard(markdown(textCity), optionKeyboard(validate.Cities, cityIcons))),
			handlers: map[model.EventKind]handler{
				model.EventButton: handleCity,
			},
			edges: []model.Step{model.StepCountry},
		},
		model.StepCountry: {
			prompt:   static(withKeyboard(markdown(textCountry), optionKeyboard(validate.Countries, countryIcons))),
			fallback: static(withKeyboard(markdown(textCountry), optionKeyboard(validate.Countries, countryIcons))),
			handlers: map[model.EventKind]handler{
				model.EventButton: handleCountry,
			},
			edges: []model.Step{model.StepOtherCountry, model.StepPrimaryDocument},
		},
		model.StepOtherCountry: {
			prompt:   static(markdown(textOtherCountry)),
			fallback: static(markdown(textOtherCountry)),
			handlers: map[model.EventKind]handler{
				model.EventText: handleOtherCountry,
			},
			edges: []model.Step{model.StepPrimaryDocument},
		},
		model.StepPrimaryDocument: {
			prompt:   primaryDocumentPrompt,
			fallback: photoFallback(primaryDocumentPrompt),
			handlers: map[model.EventKind]handler{
				model.EventPhoto: photo(model.SlotPassportMain, func(*model.Session) model.Step { return model.StepSecondaryDocument }),
			},
			edges: []model.Step{model.StepSecondaryDocument},
		},
		model.StepSecondaryDocument: {
			prompt:   secondaryDocumentPrompt,
			fallback: photoFallback(secondaryDocumentPrompt),
			handlers: map[model.EventKind]handler{
				model.EventPhoto:  photo(model.SlotPassportReg, afterSecondaryDocument),
				model.EventText:   skipSecondaryDocument,
				model.EventButton: skipSecondaryDocument,
			},
			edges: []model.Step{model.StepPatentFront, model.StepDriverLicense},
		},
		model.StepPatentFront: {
			prompt:   static(withKeyboard(markdown(textPatentFront), skipKeyboard(labelSkip))),
			fallback: optionalFallback,
			handlers: optionalPhoto(model.SlotPatentFront, model.StepPatentBack),
			edges:    []model.Step{model.StepPatentBack},
		},
		model.StepPatentBack: {
			prompt:   static(withKeyboard(markdown(textPatentBack), skipKeyboard(labelSkip))),
			fallback: optionalFallback,
			handlers: optionalPhoto(model.SlotPatentBack, model.StepPatentReceipt),
			edges:    []model.Step{model.StepPatentReceipt},
		},
		model.StepPatentReceipt: {
			prompt:   static(withKeyboard(markdown(textPatentReceipt), skipKeyboard(labelSkip))),
			fallback: optionalFallback,
			handlers: optionalPhoto(model.SlotPatentReceipt, model.StepDriverLicense),
			edges:    []model.Step{model.StepDriverLicense},
		},
		model.StepDriverLicense: {
			prompt:   static(withKeyboard(markdown(textDriverLicense), skipKeyboard(labelSkipNext))),
			fallback: optionalFallback,
			handlers: optionalPhoto(model.SlotDriverLicense, model.StepEmergencyPhone),
			edges:    []model.Step{model.StepEmergencyPhone},
		},
		model.StepEmergencyPhone: {
			prompt:   static(markdown(textEmergencyPhone)),
			fallback: static(markdown(textEmergencyPhone)),
			handlers: map[model.EventKind]handler{
				model.EventText: textAnswer(model.AnswerEmergencyPhone, textEmergencyEmpty, model.StepVideoNote, ackEmergencyPhone),
			},
			edges: []model.Step{model.StepVideoNote},
		},
		model.StepVideoNote: {
			prompt:   static(markdown(textVideoNote)),
			fallback: static(markdown(textVideoNote)),
			handlers: map[model.EventKind]handler{
				model.EventVideoNote: media(model.SlotVideoNote, model.ContentVideo, func(*model.Session) model.Step { return model.StepCompleted }),
				model.EventVideo: func(*model.Session, model.Event) (result, error) {
					return stay(markdown(textVideoNotCircle)), nil
				},
			},
			edges: []model.Step{model.StepCompleted},
		},
		model.StepCompleted: {
			prompt:   static(markdown(textProcessing)),
			fallback: static(model.Prompt{Text: textAlreadySubmitted}),
		},
	}

	return steps
}

// handlePhone accepts only the sender's own contact.
func handlePhone(s *model.Session, ev model.Event) (result, error) {
	if ev.ContactOwnerID != s.UserID {
		return stay(withKeyboard(model.Prompt{Text: textForeignContact}, contactKeyboard())), nil
	}

	phone, err := validate.Phone(ev.Phone)
	if err != nil {
		return stay(withKeyboard(model.Prompt{Text: textPhoneInvalid}, contactKeyboard())), nil
	}

	s.Answers[model.AnswerPhone] = phone
	s.Answers[model.AnswerTelegramUserID] = strconv.FormatInt(s.UserID, 10)
	return advance(model.StepName, ackPhone), nil
}

// textAnswer stores trimmed, non-empty text under key.
func textAnswer(key, emptyText string, next model.Step, ack string) handler {
	return func(s *model.Session, ev model.Event) (result, error) {
		value, err := validate.NonEmpty(ev.Text)
		if err != nil {
			return stay(markdown(emptyText)), nil
		}
		s.Answers[key] = value
		return advance(next, ack), nil
	}
}

func (m *Machine) handleBirthDate(s *model.Session, ev model.Event) (result, error) {
	date, age, err := validate.BirthDate(ev.Text, m.now())
	switch {
	case errors.Is(err, validate.ErrUnderage):
		p := markdown(textBirthDateUnderage)
		return result{reply: &p, abort: true}, nil
	case errors.Is(err, validate.ErrDateInvalid):
		return stay(markdown(textBirthDateInvalid)), nil
	case err != nil:
		return stay(markdown(textBirthDateFormat)), nil
	}

	s.Answers[model.AnswerBirthDate] = date
	return advance(model.StepCity, fmt.Sprintf(ackBirthDate, age)), nil
}

func handleCity(s *model.Session, ev model.Event) (result, error) {
	city, err := validate.City(ev.Token)
	if err != nil {
		return stay(withKeyboard(model.Prompt{Text: textWrongChoice}, optionKeyboard(validate.Cities, cityIcons))), nil
	}

	s.Answers[model.AnswerCity] = city.Label
	return advance(model.StepCountry, fmt.Sprintf(ackCity, model.PlainText(city.Label))), nil
}

// handleCountry derives the document flags. Countries outside the enumerated
// set get the strictest document set before their name is even typed.
func handleCountry(s *model.Session, ev model.Event) (result, error) {
	country, err := validate.Country(ev.Token)
	if err != nil {
		return stay(withKeyboard(model.Prompt{Text: textWrongChoice}, optionKeyboard(validate.Countries, countryIcons))), nil
	}

	if err := s.SetFlags(validate.CountryFlags(country.Code)); err != nil {
		return result{}, fmt.Errorf("failed to set flags: %w", err)
	}

	if country.Code == validate.OtherCountry {
		return advance(model.StepOtherCountry, ""), nil
	}

	s.Answers[model.AnswerCitizenship] = country.Code
	return advance(model.StepPrimaryDocument, fmt.Sprintf(ackCountry, model.PlainText(country.Label))), nil
}

func handleOtherCountry(s *model.Session, ev model.Event) (result, error) {
	name, err := validate.NonEmpty(ev.Text)
	if err != nil {
		return stay(markdown(textOtherCountryEmpty)), nil
	}

	s.Answers[model.AnswerCitizenship] = name
	return advance(model.StepPrimaryDocument, fmt.Sprintf(ackCountry, model.PlainText(name))), nil
}

func primaryDocumentPrompt(s *model.Session) model.Prompt {
	if s.Flags.RegistrationPageOptional {
		return markdown(textPrimaryForeign)
	}
	return markdown(textPrimaryDomestic)
}

func secondaryDocumentPrompt(s *model.Session) model.Prompt {
	if s.Flags.RegistrationPageOptional {
		return withKeyboard(markdown(textSecondaryForeign), skipKeyboard(labelSkip))
	}
	return markdown(textSecondaryDomestic)
}

func afterSecondaryDocument(s *model.Session) model.Step {
	if s.Flags.PatentRequired {
		return model.StepPatentFront
	}
	return model.StepDriverLicense
}

// skipSecondaryDocument treats text or the skip button as "no registration
// page" unless the citizenship makes the page mandatory.
func skipSecondaryDocument(s *model.Session, ev model.Event) (result, error) {
	if ev.Kind == model.EventButton && ev.Token != TokenSkip {
		return result{}, nil
	}
	if !s.Flags.RegistrationPageOptional {
		return stay(markdown(textSecondaryMandatory)), nil
	}
	return advance(afterSecondaryDocument(s), ackSkipped), nil
}

func photo(slot model.Slot, next func(*model.Session) model.Step) handler {
	return media(slot, model.ContentPhoto, next)
}

func media(slot model.Slot, kind model.ContentKind, next func(*model.Session) model.Step) handler {
	return func(s *model.Session, ev model.Event) (result, error) {
		s.Media[slot] = model.MediaRef{Slot: slot, Token: ev.FileToken, Kind: kind}
		return advance(next(s), ackPhoto), nil
	}
}

// optionalPhoto accepts a photo or the skip button. Anything else re-prompts.
func optionalPhoto(slot model.Slot, next model.Step) map[model.EventKind]handler {
	return map[model.EventKind]handler{
		model.EventPhoto: photo(slot, func(*model.Session) model.Step { return next }),
		model.EventButton: func(s *model.Session, ev model.Event) (result, error) {
			if ev.Token != TokenSkip {
				return result{}, nil
			}
			return advance(next, ackSkipped), nil
		},
	}
}
