package usecase

import (
	"strings"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
)

type emailRecipient struct {
	Recipient string `validate:"email"`
}

// recipientFor checks raw against the address format of channel and returns
// the canonical key records are stored under.
func (s *Usecase) recipientFor(channel entity.Channel, raw string) (string, error) {
	switch channel {
	case entity.ChannelSMS:
		phone, err := sms.NormalizePhone(raw)
		if err != nil {
			return "", goerror.NewInvalidInput(nil, "recipient", "recipient must be an international phone number")
		}
		return phone, nil

	case entity.ChannelEmail:
		email := strings.ToLower(strings.TrimSpace(raw))
		if err := s.validator.Validate(emailRecipient{Recipient: email}); err != nil {
			return "", goerror.NewInvalidInput(err)
		}
		return email, nil

	default:
		return strings.TrimSpace(raw), nil
	}
}

// canonicalRecipient maps raw to the key Send stored it under without knowing
// the channel. Unparseable input is only trimmed, so it simply finds nothing.
func canonicalRecipient(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "@") {
		return strings.ToLower(raw)
	}

	if phone, err := sms.NormalizePhone(raw); err == nil {
		return phone
	}

	return raw
}
