package mail

import (
	"context"
	"io"
)

// Message represents an email payload.
type Message struct {
	// From overrides the configured default sender.
	From string
	// To lists required recipients.
	To []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is an optional HTML alternative of TextBody.
	HTMLBody string
}

// Mail abstracts an email transport.
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying transport.
	Send(ctx context.Context, msg Message) error
}
