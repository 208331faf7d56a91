package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type ResetAttemptsInput struct {
	Recipient string `validate:"required,min=5,max=254"`
}

// ResetAttempts clears the send window of a recipient.
func (s *Usecase) ResetAttempts(ctx context.Context, in ResetAttemptsInput) error {
	ctx, span := s.startSpan(ctx, "ResetAttempts")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	recipient := canonicalRecipient(in.Recipient)
	if err := s.store.ResetSendAttempts(ctx, recipient); err != nil {
		slog.ErrorContext(ctx, "failed to reset send attempts", "recipient", recipient, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
