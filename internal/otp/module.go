package otp

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/inbound"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/provider"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/store"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	pkgotp "github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

// Dependency is what the OTP module needs from the application. CacheConn,
// Mail and SMS are optional: a missing client puts the matching part in its
// fallback mode.
type Dependency struct {
	Ctx        context.Context
	Config     config.Config              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Generator  pkgotp.Generator           `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`

	CacheConn redis.UniversalClient
	Mail      mail.Mail
	SMS       sms.SMS
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}
	if dep.Ctx == nil {
		dep.Ctx = context.Background()
	}

	policy := usecase.PolicyFromConfig(dep.Config)
	if err := dep.Validator.Validate(policy); err != nil {
		return err
	}

	st := newStore(dep)
	if !st.Disabled() {
		dep.Goroutine.Go(dep.Ctx, "otp-store-monitor", st.Monitor)
	}

	providers := newProviders(dep)
	channels := lo.Map(lo.Keys(providers), func(c entity.Channel, _ int) string { return c.String() })
	slices.Sort(channels)

	uc := usecase.New(usecase.Dependency{
		Store:      st,
		Providers:  providers,
		Generator:  dep.Generator,
		Validator:  dep.Validator,
		Clock:      dep.Clock,
		Policy:     policy,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetBool("otp.reset_endpoint_enabled"))

	slog.InfoContext(dep.Ctx, "otp module ready",
		"channels", channels,
		"store", st.Name(),
		"ttl_seconds", policy.TTLSeconds,
		"rate_limit_max", policy.RateLimitMax,
		"rate_limit_window_ms", policy.RateLimitWindowMs,
	)

	return nil
}

func newStore(dep Dependency) *store.Failover {
	var primary store.Backend
	if dep.CacheConn != nil {
		primary = store.NewRedis(dep.CacheConn, dep.Config.GetString("store.key_prefix"), dep.Clock, dep.Instrument)
	}

	return store.NewFailover(dep.Ctx, primary, store.NewMemory(dep.Clock), store.FailoverConfig{
		ConnectAttempts: uint64(max(dep.Config.GetInt("store.connect_attempts"), 0)),
		BaseDelay:       time.Duration(dep.Config.GetInt64("store.connect_base_delay_ms")) * time.Millisecond,
		MaxDelay:        time.Duration(dep.Config.GetInt64("store.connect_max_delay_ms")) * time.Millisecond,
		PingTimeout:     dep.Config.GetSecond("store.ping_timeout_seconds"),
		MonitorInterval: dep.Config.GetSecond("store.monitor_interval_seconds"),
	}, dep.Instrument)
}

// newProviders resolves the provider of every channel once. A channel without
// a configured client falls back to log-only delivery.
func newProviders(dep Dependency) map[entity.Channel]usecase.Provider {
	providers := make(map[entity.Channel]usecase.Provider, 2)

	if dep.SMS != nil {
		providers[entity.ChannelSMS] = provider.NewSMS(dep.SMS, dep.Instrument)
	} else {
		providers[entity.ChannelSMS] = provider.NewLog(dep.Ctx, entity.ChannelSMS)
	}

	if dep.Mail != nil {
		providers[entity.ChannelEmail] = provider.NewEmail(dep.Mail,
			dep.Config.GetString("mail.from"),
			dep.Config.GetString("mail.subject"),
			dep.Instrument,
		)
	} else {
		providers[entity.ChannelEmail] = provider.NewLog(dep.Ctx, entity.ChannelEmail)
	}

	return providers
}
