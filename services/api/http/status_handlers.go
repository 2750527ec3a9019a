package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleHealth reports liveness and whether a snapshot is cached.
// GET /healthz
func (s *Server) handleHealth(c *gin.Context) {
	state := "pending"
	if s.deps.Snapshots != nil {
		if _, ok := s.deps.Snapshots.Load(); ok {
			state = "ready"
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "snapshot": state})
}

// handleDBTest returns the database clock.
// GET /api/test
func (s *Server) handleDBTest(c *gin.Context) {
	if s.deps.DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database connection failed"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	now, err := s.deps.DB.Ping(ctx)
	if err != nil {
		s.log.Error("database ping failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database connection failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"time": now.UTC().Format(time.RFC3339Nano)})
}
