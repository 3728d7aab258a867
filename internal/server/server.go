// Package server exposes the interview service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-interviewer/internal/api"
	"ai-interviewer/internal/config"
	"ai-interviewer/internal/logging"
)

const (
	headerRequestID = "X-Request-ID"
	headerSessionID = "X-Session-ID"
)

// Service is the interview backend the handlers call.
type Service interface {
	Start(ctx context.Context, req api.StartRequest) (*api.Reply, error)
	Chat(ctx context.Context, req api.ChatRequest) (*api.Reply, error)
	Speak(ctx context.Context, req api.SpeakRequest) ([]byte, error)
	Report(ctx context.Context, id api.InterviewID) (filename, content string, err error)
	Ping(ctx context.Context) error
}

// Recorder receives per-request measurements.
type Recorder interface {
	RecordHTTP(method, route string, status int, durationSeconds float64)
}

// Options wires a Server.
type Options struct {
	Service   Service
	Recorder  Recorder
	Gatherer  prometheus.Gatherer
	Config    *config.ServerConfig
	Logger    zerolog.Logger
	RateLimit *RateLimiter
}

type Server struct {
	service  Service
	recorder Recorder
	limiter  *RateLimiter
	cfg      *config.ServerConfig
	logger   zerolog.Logger
	engine   *gin.Engine
}

// New builds the router. A nil RateLimit disables limiting.
func New(opts Options) *Server {
	s := &Server{
		service:  opts.Service,
		recorder: opts.Recorder,
		limiter:  opts.RateLimit,
		cfg:      opts.Config,
		logger:   logging.WithComponent(opts.Logger, "http"),
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.engine = s.routes(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes(metricsHandler http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(metricsHandler))

	apiGroup := r.Group("/api")
	if s.limiter != nil {
		apiGroup.Use(s.rateLimit())
	}
	{
		apiGroup.POST("/start", s.start)
		apiGroup.POST("/chat", s.chat)
		apiGroup.POST("/speak", s.speak)
		apiGroup.GET("/report/:interview_id", s.report)
	}
	return r
}

// requestLogger tags each request with an id and logs it once finished.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(headerRequestID, requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		if s.recorder != nil {
			s.recorder.RecordHTTP(c.Request.Method, route, status, elapsed.Seconds())
		}

		event := s.logger.Info()
		if status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("requestId", requestID).
			Str("sessionId", c.GetHeader(headerSessionID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", elapsed).
			Msg("http")
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.IsAllowed(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "Too many requests"})
			return
		}
		c.Next()
	}
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.GetServerAddr(),
		Handler:      s.engine,
		IdleTimeout:  time.Minute,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	if s.limiter != nil {
		go s.limiter.RunCleanup(ctx, s.cfg.RateLimit.Window)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
