package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type VerifyInput struct {
	Recipient string `validate:"required,min=5,max=254"`
	Code      string `validate:"required,digits,min=4,max=10"`
}

// Verify reports whether code is the live code of recipient and consumes it
// on success. A wrong, expired or missing code is a false result, not an error.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (ok bool, err error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	result := "invalid"
	defer func() {
		if err != nil {
			result = "error"
		}
		s.verifyCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("result", result),
			attribute.String("store", s.store.Name().String()),
		))
	}()

	if err := s.validator.Validate(in); err != nil {
		return false, goerror.NewInvalidInput(err)
	}

	recipient := canonicalRecipient(in.Recipient)

	lookup, err := s.store.Get(ctx, recipient)
	if errors.Is(err, goerror.ErrNotFound) {
		result = "not_found"
		return false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get otp record", "recipient", recipient, "error", err)
		return false, goerror.NewServer(err)
	}

	if lookup.Expired {
		result = "expired"
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(lookup.Code), []byte(in.Code)) != 1 {
		s.countFailure(ctx, recipient)
		return false, nil
	}

	if err := s.store.Delete(ctx, recipient); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp record", "recipient", recipient, "error", err)
		return false, goerror.NewServer(err)
	}

	result = "verified"
	return true, nil
}

// countFailure drops the record once it has taken MaxVerifyAttempts wrong
// guesses. Zero means unlimited.
func (s *Usecase) countFailure(ctx context.Context, recipient string) {
	if s.policy.MaxVerifyAttempts <= 0 {
		return
	}

	n, err := s.store.IncrementVerifyFailures(ctx, recipient)
	if errors.Is(err, goerror.ErrNotFound) {
		return
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to count otp verify failure", "recipient", recipient, "error", err)
		return
	}

	if n < int64(s.policy.MaxVerifyAttempts) {
		return
	}

	slog.WarnContext(ctx, "otp verify attempts exhausted, code revoked", "recipient", recipient, "failures", n)
	if err := s.store.Delete(ctx, recipient); err != nil {
		slog.WarnContext(ctx, "failed to revoke otp record", "recipient", recipient, "error", err)
	}
}
