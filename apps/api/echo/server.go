package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/analytics"
	"github.com/haid/charityconnect/core/donor"
	"github.com/haid/charityconnect/core/needy"
	"github.com/haid/charityconnect/core/notify"
)

type (
	ServerDeps struct {
		Conf         *core.Config
		Logger       core.Logger
		DonorSvc     *donor.Service
		NeedySvc     *needy.Service
		AnalyticsSvc *analytics.Service
		NotifySvc    *notify.Service
		Validate     *validator.Validate
		Translator   ut.Translator
		// Storage names the backing store reported by the health check.
		Storage string
	}

	Server struct {
		app       *echo.Echo
		deps      ServerDeps
		errors    chan error
		shutdown  chan os.Signal
		startedAt time.Time
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		app:       echo.New(),
		deps:      deps,
		errors:    make(chan error, 1),
		shutdown:  make(chan os.Signal, 1),
		startedAt: time.Now(),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.Server.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowCredentials: true,
	}))
	s.app.Use(securityHeaders())
	s.app.Use(middleware.BodyLimit("10M"))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	if conf.Server.RateLimit > 0 {
		api.Use(rateLimiter(conf.Server.RateLimit, conf.Server.RateBurst))
	}

	registerDonationAPI(api, s.deps.DonorSvc, s.deps.Validate)
	registerNeedyAPI(api, s.deps.NeedySvc, s.deps.Validate)
	registerAnalyticsAPI(api, s.deps.AnalyticsSvc)
	registerAdminAPI(api, adminDeps{
		donorSvc:  s.deps.DonorSvc,
		needySvc:  s.deps.NeedySvc,
		notifySvc: s.deps.NotifySvc,
		env:       conf.Env,
		storage:   s.deps.Storage,
		startedAt: s.startedAt,
	})
}

// Start listens on the configured address; errors are reported on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the app to shut down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to HAID CharityConnect API!")
}
