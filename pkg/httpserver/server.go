// Package httpserver runs a fiber app with bounded bodies, JSON errors and graceful shutdown.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const (
	_defaultAddr            = ":80"
	_defaultReadTimeout     = 5 * time.Second
	_defaultWriteTimeout    = 5 * time.Second
	_defaultShutdownTimeout = 3 * time.Second
	_defaultBodyLimit       = 64 * 1024
)

// Server owns the fiber app. Routes are attached to App between New and Start.
type Server struct {
	App *fiber.App

	listeners errgroup.Group
	notify    chan error

	address         string
	prefork         bool
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	bodyLimit       int
	errorHandler    fiber.ErrorHandler

	logger logger.Interface
}

func New(l logger.Interface, opts ...Option) *Server {
	s := &Server{
		notify:          make(chan error, 1),
		address:         _defaultAddr,
		readTimeout:     _defaultReadTimeout,
		writeTimeout:    _defaultWriteTimeout,
		shutdownTimeout: _defaultShutdownTimeout,
		bodyLimit:       _defaultBodyLimit,
		errorHandler:    JSONErrorHandler,
		logger:          l,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.App = fiber.New(fiber.Config{
		Prefork:               s.prefork,
		ReadTimeout:           s.readTimeout,
		WriteTimeout:          s.writeTimeout,
		BodyLimit:             s.bodyLimit,
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
		JSONDecoder:           json.Unmarshal,
		JSONEncoder:           json.Marshal,
	})

	return s
}

// errorBody mirrors the API's error responses so fiber's own failures
// (body too large, unknown method) look the same to clients.
type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// JSONErrorHandler answers errors that reach fiber unhandled.
// Anything that is not a *fiber.Error is reported as a 500 without details.
func JSONErrorHandler(ctx *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	return ctx.Status(code).JSON(errorBody{Error: msg, Status: code})
}

// Start serves in the background. A listen failure is reported once on Notify.
func (s *Server) Start() {
	s.listeners.Go(s.serve)

	s.logger.Info("restapi server - Server - Started, addr=%s prefork=%t", s.address, s.prefork)
}

func (s *Server) serve() error {
	err := s.App.Listen(s.address)
	if err != nil {
		s.notify <- err
	}
	close(s.notify)

	return err
}

func (s *Server) Notify() <-chan error {
	return s.notify
}

// Shutdown stops accepting connections and waits for in-flight requests
// up to the shutdown timeout.
func (s *Server) Shutdown() error {
	var errList []error

	if err := s.App.ShutdownWithTimeout(s.shutdownTimeout); err != nil {
		s.logger.Error(err, "restapi server - Server - Shutdown - s.App.ShutdownWithTimeout")

		errList = append(errList, err)
	}

	// the listen error was already delivered through Notify
	_ = s.listeners.Wait()

	s.logger.Info("restapi server - Server - Shutdown")

	return errors.Join(errList...)
}
