package provider

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

// Log stands in for a channel whose credentials are not configured. It never
// contacts anyone and only writes the delivery to the log.
type Log struct {
	channel entity.Channel
}

// NewLog logs a startup warning for channel and returns its log-only provider.
func NewLog(ctx context.Context, channel entity.Channel) *Log {
	slog.WarnContext(ctx, "otp provider credentials missing, running in log-only mode", "channel", channel.String())
	return &Log{channel: channel}
}

func (p *Log) Mode() entity.DeliveryMode {
	return entity.DeliveryModeLog
}

func (p *Log) SendOTP(ctx context.Context, d entity.Delivery) error {
	slog.InfoContext(ctx, "otp delivery in log-only mode",
		"channel", p.channel.String(),
		"recipient", d.Recipient,
		"code", d.Code,
	)
	return nil
}
