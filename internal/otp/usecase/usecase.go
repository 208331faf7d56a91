package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const deliveryTimeout = 10 * time.Second

// ErrRateLimited is returned by Send when a recipient exceeded its send budget.
var ErrRateLimited = goerror.NewBusiness("Too many OTP requests, try again later", goerror.CodeTooManyRequest)

type repoStore interface {
	Name() entity.StoreBackend
	Save(ctx context.Context, rec entity.Record) error
	Get(ctx context.Context, recipient string) (*entity.Lookup, error)
	Delete(ctx context.Context, recipient string) error
	IncrementSendAttempts(ctx context.Context, recipient string, window time.Duration) (int64, error)
	ResetSendAttempts(ctx context.Context, recipient string) error
	IncrementVerifyFailures(ctx context.Context, recipient string) (int64, error)
}

// Provider hands a code to its recipient over one channel.
type Provider interface {
	SendOTP(ctx context.Context, d entity.Delivery) error
	Mode() entity.DeliveryMode
}

type Usecase struct {
	store     repoStore
	providers map[entity.Channel]Provider
	generator otp.Generator
	validator validator.Validator
	clock     clock.Clocker
	ins       instrument.Instrumentation
	policy    Policy

	sendCounter   metric.Int64Counter
	verifyCounter metric.Int64Counter
}

type Dependency struct {
	Store     repoStore
	Providers map[entity.Channel]Provider
	Generator otp.Generator
	Validator validator.Validator
	Clock     clock.Clocker
	Policy    Policy

	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("otp.usecase")

	sendCounter, err := meter.Int64Counter("otp.send", metric.WithDescription("OTP send requests by result"))
	if err != nil {
		sendCounter = metricnoop.Int64Counter{}
	}

	verifyCounter, err := meter.Int64Counter("otp.verify", metric.WithDescription("OTP verify requests by result"))
	if err != nil {
		verifyCounter = metricnoop.Int64Counter{}
	}

	return &Usecase{
		store:         dep.Store,
		providers:     dep.Providers,
		generator:     dep.Generator,
		validator:     dep.Validator,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		policy:        dep.Policy,
		sendCounter:   sendCounter,
		verifyCounter: verifyCounter,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}
