package usecase

import (
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
)

// Policy holds the OTP and rate limit settings. It is read once at startup
// and fixed for the lifetime of the process.
type Policy struct {
	TTLSeconds        int   `validate:"gte=60,lte=3600"`
	CodeLength        int   `validate:"gte=4,lte=10"`
	MaxVerifyAttempts int   `validate:"gte=0"`
	RateLimitWindowMs int64 `validate:"gte=1000"`
	RateLimitMax      int64 `validate:"gte=1"`
	// EnforceBeforeDelivery counts a send before anything is delivered, so a
	// rejected request never reaches the provider. When false the counter is
	// bumped only after a successful delivery.
	EnforceBeforeDelivery bool
}

func PolicyFromConfig(cfg config.Config) Policy {
	return Policy{
		TTLSeconds:            cfg.GetInt("otp.ttl_seconds"),
		CodeLength:            cfg.GetInt("otp.length"),
		MaxVerifyAttempts:     cfg.GetInt("otp.max_verify_attempts"),
		RateLimitWindowMs:     cfg.GetInt64("rate_limit.window_ms"),
		RateLimitMax:          cfg.GetInt64("rate_limit.max_attempts"),
		EnforceBeforeDelivery: cfg.GetBool("rate_limit.enforce_before_delivery"),
	}
}

func (p Policy) ttl() time.Duration {
	return time.Duration(p.TTLSeconds) * time.Second
}

func (p Policy) window() time.Duration {
	return time.Duration(p.RateLimitWindowMs) * time.Millisecond
}
