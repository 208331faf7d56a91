package sms

import (
	"context"
	"time"
)

// DefaultTimeout bounds every gateway call made by the clients in this package.
const DefaultTimeout = 10 * time.Second

// SendResult holds the outcome of a gateway Send call.
type SendResult struct {
	MessageID string
	Status    string
}

// SMS sends a text message to a phone number.
type SMS interface {
	Send(ctx context.Context, to, body string) (*SendResult, error)
}
