// Package server exposes the turn pipeline and the tale catalog over
// HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tale-server/internal/config"
	"tale-server/internal/story"
	"tale-server/internal/tale"
)

// TurnEngine runs one story turn. Satisfied by story.Engine.
type TurnEngine interface {
	Run(ctx context.Context, req story.TurnRequest) (*story.TurnResponse, error)
}

// Server wires the router, handlers, and middleware.
type Server struct {
	engine TurnEngine
	tales  *tale.Table
	log    *zap.Logger
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, engine TurnEngine, tales *tale.Table, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	s := &Server{
		engine: engine,
		tales:  tales,
		log:    log,
		router: router,
	}
	s.registerRoutes()

	s.http = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/tales", s.handleListTales)
		api.GET("/tales/:title", s.handleGetTale)
		api.POST("/generate-tale", s.handleGenerateTale)
	}
}

// Run serves until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router; used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
