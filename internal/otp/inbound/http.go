package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	Send(ctx context.Context, in usecase.SendInput) error
	Verify(ctx context.Context, in usecase.VerifyInput) (bool, error)
	ResetAttempts(ctx context.Context, in usecase.ResetAttemptsInput) error
	Health(ctx context.Context) usecase.HealthOutput
}

// RegisterHTTPEndpoint mounts the OTP routes. The reset route clears a
// recipient's send window and is only mounted when withReset is true.
func RegisterHTTPEndpoint(r *router.Router, uc uc, withReset bool) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/health", end.Health)

	r.POST("/otp/send", end.Send)
	r.POST("/otp/verify", end.Verify)

	if withReset {
		r.POST("/otp/reset-attempts", end.ResetAttempts)
	}
}
