// Package validate holds pure validators for single registration answers.
package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/dtroode/regbot/internal/model"
)

// AdultAge is the minimum age allowed to register.
const AdultAge = 18

// BirthDateLayout is the accepted birth date format (DD.MM.YYYY).
const BirthDateLayout = "02.01.2006"

var (
	ErrDateFormat     = model.NewValidationFault("birth date must match DD.MM.YYYY")
	ErrDateInvalid    = model.NewValidationFault("birth date does not exist")
	ErrUnderage       = model.NewPolicyAbort("user is younger than 18")
	ErrEmpty          = model.NewValidationFault("value is empty")
	ErrPhoneFormat    = model.NewValidationFault("phone number is malformed")
	ErrUnknownCity    = model.NewValidationFault("unknown city")
	ErrUnknownCountry = model.NewValidationFault("unknown country")
)

var (
	birthDatePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	phonePattern     = regexp.MustCompile(`^\+?\d{10,15}$`)
	phoneNoise       = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// BirthDate parses raw as DD.MM.YYYY and returns the normalized date string
// and the age in whole years at today. Under-age input yields ErrUnderage
// together with the computed age.
func BirthDate(raw string, today time.Time) (string, int, error) {
	s := strings.TrimSpace(raw)
	if !birthDatePattern.MatchString(s) {
		return "", 0, ErrDateFormat
	}

	birth, err := time.Parse(BirthDateLayout, s)
	if err != nil {
		return "", 0, ErrDateInvalid
	}
	if birth.After(today) {
		return "", 0, ErrDateInvalid
	}

	age := Age(birth, today)
	if age < AdultAge {
		return "", age, ErrUnderage
	}

	return s, age, nil
}

// Age returns the number of whole years between birth and today.
func Age(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// NonEmpty trims raw and rejects blank input.
func NonEmpty(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmpty
	}
	return s, nil
}

// Phone normalizes a shared contact's phone number to +digits.
func Phone(raw string) (string, error) {
	s := phoneNoise.Replace(strings.TrimSpace(raw))
	if !phonePattern.MatchString(s) {
		return "", ErrPhoneFormat
	}
	if !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	return s, nil
}
