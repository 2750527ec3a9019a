package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// handleV1ListRooms returns the room directory
// GET /api/v1/core/rooms?category=Gruppenräume
func (s *Server) handleV1ListRooms(c *gin.Context) {
	list := s.deps.Rooms.List(c.Query("category"))

	c.JSON(http.StatusOK, gin.H{
		"data": list,
		"meta": gin.H{
			"count": len(list),
		},
	})
}

// handleV1GetRoom returns details for a specific room
// GET /api/v1/core/rooms/:id
func (s *Server) handleV1GetRoom(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	room, ok := s.deps.Rooms.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": room,
	})
}
