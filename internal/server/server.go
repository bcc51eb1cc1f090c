package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alkime/voicememo/internal/config"
	"github.com/alkime/voicememo/internal/memo"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// Recorder is the recorder core the server drives.
type Recorder interface {
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) (memo.SavedRecording, error)
	Play(ctx context.Context, index int) error
	Snapshot() memo.Snapshot
}

// Notices exposes the most recent notice raised by the recorder.
type Notices interface {
	Last() (memo.Notice, bool)
}

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	logger   *slog.Logger
	router   *gin.Engine
	recorder Recorder
	notices  Notices
	dir      string
}

// New creates a new Server instance serving the recordings in dir.
func New(cfg *config.Config, logger *slog.Logger, recorder Recorder, notices Notices, dir string) *Server {
	// Set Gin mode based on environment
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	server := &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		recorder: recorder,
		notices:  notices,
		dir:      dir,
	}

	// Setup middleware and routes
	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server
}

// Router returns the underlying handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the HTTP server and shuts it down when ctx is cancelled.
func Run(ctx context.Context, s *Server) error {
	srv := &http.Server{
		Addr:    "127.0.0.1:" + s.config.Port,
		Handler: s.router,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", srv.Addr)
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
		s.logger.Info("Server shutting down")
		return srv.Shutdown(context.WithoutCancel(ctx))
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Browsable listing of the recordings directory
	s.router.Use(static.Serve("/files", static.LocalFile(s.dir, true)))

	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/state", s.handleState)
		api.GET("/recordings", s.handleRecordings)
		api.POST("/session/start", s.handleStart)
		api.POST("/session/stop", s.handleStop)
		api.POST("/recordings/:index/play", s.handlePlay)
		api.GET("/recordings/:index/audio", s.handleAudio)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "voicememo",
	})
}
