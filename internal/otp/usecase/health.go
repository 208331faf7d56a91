package usecase

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

type HealthOutput struct {
	Status string
	Store  entity.StoreBackend
}

func (s *Usecase) Health(context.Context) HealthOutput {
	return HealthOutput{Status: "ok", Store: s.store.Name()}
}
