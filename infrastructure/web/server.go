package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the HTTP-layer settings.
type RouterConfig struct {
	// UploadDir is served read-only at /uploads so generated videos can be
	// fetched directly.
	UploadDir string
	// MaxMultipartMemory bounds how much of a parsed form gin keeps in
	// memory before spilling to temp files.
	MaxMultipartMemory int64
	// AllowedOrigins restricts CORS. Empty allows any origin.
	AllowedOrigins []string
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(cfg RouterConfig, handler *Handler, metrics *Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	if cfg.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = cfg.MaxMultipartMemory
	}

	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.POST("/upload", handler.Upload)
		api.GET("/storage", handler.Storage)
	}

	router.Static("/uploads", cfg.UploadDir)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "HEAD", "OPTIONS"}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Server hosts the API over HTTP with graceful shutdown.
type Server struct {
	http   *http.Server
	logger *log.Logger
}

// NewServer creates a Server listening on the given port.
func NewServer(port int, router *gin.Engine, logger *log.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to grace before forcing the listener closed.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
