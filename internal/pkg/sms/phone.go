package sms

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidPhoneNumber is returned when a phone number cannot be parsed or validated.
var ErrInvalidPhoneNumber = errors.New("sms: invalid phone number")

// NormalizePhone parses an international phone number and returns it in E.164
// form. The input must carry a leading '+'; no default region is assumed.
func NormalizePhone(input string) (string, error) {
	input = strings.TrimSpace(input)

	plus := 0
	for _, r := range input {
		switch {
		case r == '+':
			plus++
		case r >= '0' && r <= '9', r == ' ', r == '-', r == '(', r == ')', r == '.':
		default:
			return "", ErrInvalidPhoneNumber
		}
	}
	if plus != 1 || !strings.HasPrefix(input, "+") {
		return "", ErrInvalidPhoneNumber
	}

	num, err := phonenumbers.Parse(input, "")
	if err != nil {
		return "", ErrInvalidPhoneNumber
	}

	// Test ranges such as +1500555xxxx are possible but not assigned, so only
	// the shape is checked here and assignment is left to the gateway.
	if !phonenumbers.IsPossibleNumber(num) {
		return "", ErrInvalidPhoneNumber
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
