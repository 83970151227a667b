package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/aptcrew/rollbook/apps/api/echo/handlers"
	"github.com/aptcrew/rollbook/apps/api/echo/helpers"
	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/attendance"
	"github.com/aptcrew/rollbook/core/finance"
	"github.com/aptcrew/rollbook/core/instrument"
	"github.com/aptcrew/rollbook/core/roster"
	"github.com/aptcrew/rollbook/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Logger        core.Logger
		UserSvc       user.Service
		RosterSvc     *roster.Service
		AttendanceSvc *attendance.Service
		InstrumentSvc *instrument.Service
		FinanceSvc    *finance.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = helpers.NewAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := helpers.ConfigureAuth(
		core.Conf.AppName,
		core.Conf.SecretKey,
		core.Conf.Server.JWTExpirationDelta,
		core.Conf.Server.JWTRefreshExpirationDelta,
	)

	handlers.RegisterUserAPI(v1, jwt, s.opts.UserSvc)
	handlers.RegisterRosterAPI(v1, jwt, s.opts.RosterSvc)
	handlers.RegisterAttendanceAPI(v1, jwt, s.opts.AttendanceSvc, s.opts.RosterSvc)
	handlers.RegisterInstrumentAPI(v1, jwt, s.opts.InstrumentSvc)
	handlers.RegisterFinanceAPI(v1, jwt, s.opts.FinanceSvc, s.opts.RosterSvc)
}

func (s *server) Start() error {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// ShutdownSignal receives OS signals and internal shutdown requests.
func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown triggers a graceful shutdown on unrecoverable errors.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Rollbook API!")
}
