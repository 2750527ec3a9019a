package http

import "github.com/gin-gonic/gin"

// registerV1Routes sets up the versioned API structure
// Groups: /api/v1/core, /api/v1/realtime
func (s *Server) registerV1Routes(api *gin.RouterGroup) {
	v1 := api.Group("/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header

	// Core endpoints - room directory
	core := v1.Group("/core")
	{
		core.GET("/rooms", s.handleV1ListRooms)
		core.GET("/rooms/:id", s.handleV1GetRoom)
	}

	// Realtime endpoints - cached occupancy snapshot
	realtime := v1.Group("/realtime")
	{
		realtime.GET("/now", s.handleV1RealtimeNow)
		realtime.GET("/history", s.handleV1RealtimeHistory)
	}
}

func apiVersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-API-Version", "v1")
		c.Next()
	}
}
