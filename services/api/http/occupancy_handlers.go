package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/02loveslollipop/library-occupancy/services/api/occupancy"
)

const errOccupancyUnavailable = "occupancy data not yet available"

// handleOccupancy returns the cached snapshot, or 503 until one exists.
// GET /api/occupancy
func (s *Server) handleOccupancy(c *gin.Context) {
	snap, ok := s.currentSnapshot(c.Request.Context())
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errOccupancyUnavailable})
		return
	}
	c.JSON(http.StatusOK, occupancy.ToPayload(snap))
}

func (s *Server) currentSnapshot(ctx context.Context) (occupancy.Snapshot, bool) {
	if s.cfg.RefreshOnRead && s.deps.Refresher != nil {
		snap, err := s.deps.Refresher.RefreshShared(ctx)
		if err != nil {
			s.log.Warn("on-read refresh failed", zap.Error(err))
			return occupancy.Snapshot{}, false
		}
		return snap, true
	}
	if s.deps.Snapshots == nil {
		return occupancy.Snapshot{}, false
	}
	return s.deps.Snapshots.Load()
}
