package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
)

// SMS delivers codes through an SMS gateway client.
type SMS struct {
	client sms.SMS
	ins    instrument.Instrumentation
}

func NewSMS(client sms.SMS, ins instrument.Instrumentation) *SMS {
	return &SMS{client: client, ins: ins}
}

func (p *SMS) Mode() entity.DeliveryMode {
	return entity.DeliveryModeLive
}

func (p *SMS) SendOTP(ctx context.Context, d entity.Delivery) (err error) {
	ctx, span := startSpan(ctx, p.ins, "SMS.SendOTP", entity.ChannelSMS.String())
	defer func() { endSpan(span, err) }()

	res, err := p.client.Send(ctx, d.Recipient, d.Message())
	if err != nil {
		return fmt.Errorf("deliver sms: %w", err)
	}

	slog.DebugContext(ctx, "otp sms accepted by gateway", "message_id", res.MessageID, "status", res.Status)

	return nil
}
