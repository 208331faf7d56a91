package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type SendInput struct {
	Recipient string `validate:"required,min=5,max=254"`
	Channel   string `validate:"required"`
}

func (s *Usecase) Send(ctx context.Context, in SendInput) error {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	channel := entity.ChannelFromString(in.Channel)
	prov, ok := s.providers[channel]
	if !ok {
		slog.WarnContext(ctx, "otp send for unsupported channel", "channel", in.Channel)
		return goerror.NewBusiness("Unsupported channel", goerror.CodeUnsupportedChannel)
	}

	recipient, err := s.recipientFor(channel, in.Recipient)
	if err != nil {
		return err
	}

	span.SetAttributes(
		attribute.String("otp.channel", channel.String()),
		attribute.String("otp.delivery_mode", prov.Mode().String()),
	)

	if s.policy.EnforceBeforeDelivery {
		if err := s.countSend(ctx, recipient); err != nil {
			s.recordSend(ctx, channel, prov, err)
			return err
		}
	}

	rec, err := s.liveOrNewRecord(ctx, recipient)
	if err != nil {
		s.recordSend(ctx, channel, prov, err)
		return err
	}

	dctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	err = prov.SendOTP(dctx, entity.Delivery{
		Channel:   channel,
		Recipient: recipient,
		Code:      rec.Code,
		ExpiresAt: rec.ExpiresAt,
	})
	cancel()
	if err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp", "channel", channel.String(), "recipient", recipient, "error", err)
		err = goerror.NewServer(err)
		s.recordSend(ctx, channel, prov, err)
		return err
	}

	if !s.policy.EnforceBeforeDelivery {
		if err := s.countSend(ctx, recipient); err != nil {
			s.recordSend(ctx, channel, prov, err)
			return err
		}
	}

	s.recordSend(ctx, channel, prov, nil)

	return nil
}

// liveOrNewRecord reuses the unexpired code of recipient so a resend delivers
// the same code, or generates and stores a fresh one.
func (s *Usecase) liveOrNewRecord(ctx context.Context, recipient string) (entity.Record, error) {
	lookup, err := s.store.Get(ctx, recipient)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to get otp record", "recipient", recipient, "error", err)
		return entity.Record{}, goerror.NewServer(err)
	}
	if err == nil && !lookup.Expired {
		return lookup.Record, nil
	}

	code, err := s.generator.Generate(s.policy.CodeLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp", "error", err)
		return entity.Record{}, goerror.NewServer(err)
	}

	now := s.clock.Now()
	rec := entity.Record{
		Recipient: recipient,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.policy.ttl()),
	}

	if err := s.store.Save(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to save otp record", "recipient", recipient, "error", err)
		return entity.Record{}, goerror.NewServer(err)
	}

	return rec, nil
}

func (s *Usecase) countSend(ctx context.Context, recipient string) error {
	n, err := s.store.IncrementSendAttempts(ctx, recipient, s.policy.window())
	if err != nil {
		slog.ErrorContext(ctx, "failed to increment send attempts", "recipient", recipient, "error", err)
		return goerror.NewServer(err)
	}

	if n > s.policy.RateLimitMax {
		slog.WarnContext(ctx, "otp send rate limited", "recipient", recipient, "attempts", n, "max", s.policy.RateLimitMax)
		return ErrRateLimited
	}

	return nil
}

func (s *Usecase) recordSend(ctx context.Context, channel entity.Channel, prov Provider, err error) {
	result := "sent"
	switch {
	case errors.Is(err, ErrRateLimited):
		result = "rate_limited"
	case err != nil:
		result = "failed"
	}

	s.sendCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel.String()),
		attribute.String("mode", prov.Mode().String()),
		attribute.String("result", result),
		attribute.String("store", s.store.Name().String()),
	))
}
