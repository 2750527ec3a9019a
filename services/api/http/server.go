package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/02loveslollipop/library-occupancy/services/api/config"
	"github.com/02loveslollipop/library-occupancy/services/api/metrics"
	"github.com/02loveslollipop/library-occupancy/services/api/occupancy"
	"github.com/02loveslollipop/library-occupancy/services/api/rooms"
)

// SnapshotReader exposes the cached snapshot.
type SnapshotReader interface {
	Load() (occupancy.Snapshot, bool)
}

// SnapshotRefresher computes a fresh snapshot on demand.
type SnapshotRefresher interface {
	RefreshShared(ctx context.Context) (occupancy.Snapshot, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) (time.Time, error)
}

// Deps are the collaborators the handlers read from.
type Deps struct {
	Snapshots SnapshotReader
	Refresher SnapshotRefresher
	DB        Pinger
	Rooms     *rooms.Directory
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg    config.Config
	deps   Deps
	log    *zap.Logger
	engine *gin.Engine
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Rooms == nil {
		deps.Rooms = rooms.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(deps.Logger))
	engine.Use(metricsMiddleware(deps.Metrics))
	engine.Use(corsMiddleware())

	server := &Server{
		cfg:    cfg,
		deps:   deps,
		log:    deps.Logger.With(zap.String("component", "http")),
		engine: engine,
	}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Serve starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.log.Info("REST API listening", zap.String("addr", srv.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return ctx.Err()
	}
}

// String names the server in supervisor logs.
func (s *Server) String() string {
	return "http-server"
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	protected := s.engine.Group("")
	if s.cfg.BearerToken != "" {
		protected.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}
	if s.deps.Gatherer != nil {
		protected.GET("/metrics", gin.WrapH(metrics.Handler(s.deps.Gatherer)))
	}

	api := protected.Group("/api")
	{
		api.GET("/occupancy", s.handleOccupancy)
		api.GET("/test", s.handleDBTest)
	}

	s.registerV1Routes(api)
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
