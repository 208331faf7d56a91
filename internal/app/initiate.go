package app

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

func (a *App) initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}

	cfg, err := config.NewViper(path, config.WithDefaults(defaultConfig), config.WithEnvAliases(envAliases))
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
	a.onClose("config", func(context.Context) error { return cfg.Close() })
}

func (a *App) initInstrument() {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
	a.onClose("instrument", ins.Shutdown)
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.generator = otp.NewNumeric()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator
}

// initCache only builds the client. Reachability is decided by the OTP store,
// which falls back to memory when Redis cannot be reached.
func (a *App) initCache() {
	url := strings.TrimSpace(a.config.GetString("store.backend_url"))
	if url == "" {
		slog.Warn("store.backend_url is empty, otp records are kept in memory only")
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	client := redis.NewClient(opt)
	a.cacheConn = client
	a.onClose("redis", func(context.Context) error { return client.Close() })
}

func (a *App) initMail() {
	username := a.config.GetString("mail.smtp.username")
	password := a.config.GetString("mail.smtp.password")
	if username == "" || password == "" {
		return
	}

	client, err := mail.NewSMTP(mail.SMTPConfig{
		Host:     a.config.GetString("mail.smtp.host"),
		Port:     a.config.GetInt("mail.smtp.port"),
		Username: username,
		Password: password,
		From:     a.config.GetString("mail.from"),
		Secure:   a.config.GetBool("mail.smtp.secure"),
		Timeout:  a.config.GetSecond("mail.smtp.timeout_seconds"),
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err)
		os.Exit(1)
	}

	a.mail = client
	a.onClose("mail", func(context.Context) error { return client.Close() })
}

func (a *App) initSMS() {
	switch driver := strings.ToLower(strings.TrimSpace(a.config.GetString("sms.driver"))); driver {
	case "sns":
		region := a.config.GetString("sms.sns.region")
		if region == "" {
			return
		}

		client, err := sms.NewSNSFromRegion(a.ctx, region)
		if err != nil {
			slog.Error("failed to init sms sns", "error", err)
			os.Exit(1)
		}
		a.sms = client

	case "textbee":
		client, err := sms.NewTextBee(sms.TextBeeConfig{
			APIKey:   a.config.GetString("sms.textbee.api_key"),
			DeviceID: a.config.GetString("sms.textbee.device_id"),
			BaseURL:  a.config.GetString("sms.textbee.base_url"),
		})
		if err != nil {
			return
		}
		a.sms = client

	default:
		slog.Error("unknown sms driver", "driver", driver)
		os.Exit(1)
	}
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.http.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", router.HeaderCorrelationID, router.HeaderRequestID},
		ExposedHeaders: []string{router.HeaderCorrelationID},
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              net.JoinHostPort(a.config.GetString("app.http.host"), strconv.Itoa(a.config.GetInt("app.http.port"))),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.http.idle_timeout_seconds"),
	}
}
