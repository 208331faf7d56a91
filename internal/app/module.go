package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpgate/internal/otp"
)

func (a *App) initModules() {
	if err := otp.New(otp.Dependency{
		Ctx:        a.ctx,
		Config:     a.config,
		Router:     a.router,
		Goroutine:  a.goroutine,
		Validator:  a.validator,
		Clock:      a.clock,
		Generator:  a.generator,
		Instrument: a.ins,
		CacheConn:  a.cacheConn,
		Mail:       a.mail,
		SMS:        a.sms,
	}); err != nil {
		slog.Error("failed to init module otp", "error", err)
		os.Exit(1)
	}
}
