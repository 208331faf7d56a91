package provider

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
)

const DefaultEmailSubject = "Your verification code"

var emailHTML = template.Must(template.New("otp_email").Parse(
	`<!doctype html><html><body>` +
		`<p>Your verification code is <strong>{{.Code}}</strong></p>` +
		`<p>It expires at {{.ExpiresAt.UTC.Format "15:04 MST"}}.</p>` +
		`</body></html>`,
))

// Email delivers codes through a mail transport.
type Email struct {
	client  mail.Mail
	from    string
	subject string
	ins     instrument.Instrumentation
}

func NewEmail(client mail.Mail, from, subject string, ins instrument.Instrumentation) *Email {
	if subject == "" {
		subject = DefaultEmailSubject
	}

	return &Email{client: client, from: from, subject: subject, ins: ins}
}

func (p *Email) Mode() entity.DeliveryMode {
	return entity.DeliveryModeLive
}

func (p *Email) SendOTP(ctx context.Context, d entity.Delivery) (err error) {
	ctx, span := startSpan(ctx, p.ins, "Email.SendOTP", entity.ChannelEmail.String())
	defer func() { endSpan(span, err) }()

	var html bytes.Buffer
	if err := emailHTML.Execute(&html, d); err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	err = p.client.Send(ctx, mail.Message{
		From:     p.from,
		To:       []string{d.Recipient},
		Subject:  p.subject,
		TextBody: d.Message(),
		HTMLBody: html.String(),
	})
	if err != nil {
		return fmt.Errorf("deliver email: %w", err)
	}

	return nil
}
