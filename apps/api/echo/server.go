package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/dig"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/podcast"
	"github.com/astravon/portal/core/post"
	"github.com/astravon/portal/core/school"
	"github.com/astravon/portal/core/session"
	"github.com/astravon/portal/core/user"
	"github.com/astravon/portal/services/realtime"
	uploadsvc "github.com/astravon/portal/services/upload"
)

type (
	Deps struct {
		dig.In

		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		Guard          session.Guard
		Hub            *realtime.Hub
		Uploader       uploadsvc.Uploader
		UserSvc        user.Service
		PostSvc        post.Service
		SchoolSvc      *school.Service
		PodcastSvc     *podcast.Service
		DisableReqLogs bool `optional:"true"`
	}

	Server struct {
		deps     Deps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps Deps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORS())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/postHub", echo.WrapHandler(s.deps.Hub))
	if disk, ok := s.deps.Uploader.(*uploadsvc.DiskUploader); ok {
		s.app.Static("/media", disk.Dir())
	}

	g := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))
	authed := []echo.MiddlewareFunc{jwt, requireCapability(s.deps.Guard, session.Authenticated)}
	adminOnly := []echo.MiddlewareFunc{jwt, requireCapability(s.deps.Guard, session.AdminOnly)}

	registerUserAPI(g, authed, s.deps)
	registerPostAPI(g, authed, s.deps)
	registerSchoolAPI(g, adminOnly, s.deps)
	registerPodcastAPI(g, adminOnly, s.deps)
	registerUploadAPI(g, adminOnly, s.deps)
}

// Start listens on the configured address; failures other than a requested stop go to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

// Shutdown disconnects the realtime peers then stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	s.deps.Hub.Close()
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
