package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/library-occupancy/services/api/occupancy"
)

// handleV1RealtimeNow returns the cached snapshot with its computation metadata
// GET /api/v1/realtime/now
func (s *Server) handleV1RealtimeNow(c *gin.Context) {
	snap, ok := s.currentSnapshot(c.Request.Context())
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errOccupancyUnavailable})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": occupancy.ToPayload(snap),
		"meta": gin.H{
			"computed_at":   occupancy.FormatTimestamp(snap.ComputedAt),
			"entries_count": len(snap.History),
		},
	})
}

// handleV1RealtimeHistory returns the most recent readings of the snapshot, oldest first
// GET /api/v1/realtime/history?last_n=5
func (s *Server) handleV1RealtimeHistory(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("last_n"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_n"})
			return
		}
		limit = parsed
	}

	snap, ok := s.currentSnapshot(c.Request.Context())
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errOccupancyUnavailable})
		return
	}

	history := occupancy.ToPayload(snap).History
	if limit > 0 && limit < len(history) {
		history = history[len(history)-limit:]
	}

	c.JSON(http.StatusOK, gin.H{
		"data": history,
		"meta": gin.H{
			"count": len(history),
		},
	})
}
