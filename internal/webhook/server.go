// Package webhook exposes the HTTP surface of the bot: the platform
// verification handshake, the event webhook, and the health and metrics
// endpoints.
package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"pagebot/internal/bot"
	"pagebot/internal/config"
	"pagebot/internal/database"
	"pagebot/internal/logger"
)

// Server is the webhook HTTP server.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     database.Store
	processor *bot.Processor
	engine    *gin.Engine
	httpSrv   *http.Server
}

// NewServer builds the gin engine and registers all routes.
func NewServer(cfg *config.Config, log *slog.Logger, store database.Store, processor *bot.Processor) *Server {
	if log == nil {
		log = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), logger.Middleware(log))

	s := &Server{
		cfg:       cfg,
		logger:    log.With("component", "webhook"),
		store:     store,
		processor: processor,
		engine:    engine,
	}

	engine.GET("/webhook", s.handleVerification)
	engine.POST("/webhook", s.handleEvents)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.httpSrv = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the context is cancelled, then shuts down gracefully
// within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Webhook server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		s.logger.Info("Shutting down webhook server")
		return s.httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
