package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/server/middleware"
)

// Server is the HTTP server: a gin engine wrapped in transport middleware and
// served over HTTP/1.1 and h2c.
type Server struct {
	engine     *gin.Engine
	middleware []middleware.Middleware
	config     Config
	log        *logger.Logger

	setup     []func(ctx context.Context) error
	setupDone bool

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// New creates a Server. No middleware or routes are installed yet.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()

	// Set Gin mode based on global zerolog level.
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("Ignoring invalid trusted proxies", logger.Fields(logger.FieldError, err.Error()))
	}

	return &Server{
		engine: engine,
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Use appends transport middleware. The first added is the outermost.
func (s *Server) Use(mw ...middleware.Middleware) {
	s.middleware = append(s.middleware, mw...)
}

// ApplyMiddleware installs the standard transport stack: recovery,
// request id, CORS, body-size limit and request logging.
func (s *Server) ApplyMiddleware() {
	s.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(&s.config.CORS),
		middleware.BodySizeLimit(s.config.MaxBodySize),
		middleware.RequestLogger(s.log),
	)
}

// BeforeStart registers fn to run once, on the first Start, before the port
// is bound. Routes that depend on started components are mounted here.
func (s *Server) BeforeStart(fn func(ctx context.Context) error) {
	s.setup = append(s.setup, fn)
}

// Handler returns the full handler: transport middleware around the engine,
// wrapped for h2c.
func (s *Server) Handler() http.Handler {
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(s.config.IdleTimeout) * time.Second,
	}
	return h2c.NewHandler(middleware.Chain(s.middleware...)(s.engine), h2s)
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.setupDone {
		for _, fn := range s.setup {
			if err := fn(ctx); err != nil {
				return fmt.Errorf("server setup: %w", err)
			}
		}
		s.setupDone = true
	}

	addr := s.config.Addr()
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       time.Duration(s.config.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(s.config.IdleTimeout) * time.Second,
	}
	s.httpServer, s.listener = srv, listener

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server within the configured deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer, s.listener = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address while running, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr()
}

// Running reports whether the server is serving.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpServer != nil
}
