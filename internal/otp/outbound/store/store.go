package store

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

// Backend is a single OTP record and counter store. Every method reports an
// absent record with goerror.ErrNotFound.
type Backend interface {
	Name() entity.StoreBackend
	Ping(ctx context.Context) error
	Save(ctx context.Context, rec entity.Record) error
	Get(ctx context.Context, recipient string) (*entity.Lookup, error)
	Delete(ctx context.Context, recipient string) error
	// IncrementSendAttempts bumps the send counter of recipient and returns the
	// new value. A counter older than window starts again at 1.
	IncrementSendAttempts(ctx context.Context, recipient string, window time.Duration) (int64, error)
	ResetSendAttempts(ctx context.Context, recipient string) error
	// IncrementVerifyFailures counts a wrong code against the live record of
	// recipient. The count is dropped together with the record.
	IncrementVerifyFailures(ctx context.Context, recipient string) (int64, error)
}
