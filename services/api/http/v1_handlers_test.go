package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/library-occupancy/services/api/config"
	"github.com/02loveslollipop/library-occupancy/services/api/db"
	"github.com/02loveslollipop/library-occupancy/services/api/occupancy"
	"github.com/02loveslollipop/library-occupancy/services/api/rooms"
)

func TestV1ListRooms(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	rr := env.get(t, "/api/v1/core/rooms?category="+rooms.CategorySideBench)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "v1", rr.Header().Get("X-API-Version"))

	var body struct {
		Data []rooms.Room `json:"data"`
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Meta.Count)
	assert.Len(t, body.Data, 5)
}

func TestV1GetRoom(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	rr := env.get(t, "/api/v1/core/rooms/1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"id":1,"name":"Lesesaal 1","capacity":50,"category":"Lesesäle"}}`, rr.Body.String())

	assert.Equal(t, http.StatusBadRequest, env.get(t, "/api/v1/core/rooms/abc").Code)
	assert.Equal(t, http.StatusNotFound, env.get(t, "/api/v1/core/rooms/404").Code)
}

func TestV1RealtimeNow(t *testing.T) {
	env := newTestEnv(t, config.Config{}, rowsResult(scenarioRows))

	assert.Equal(t, http.StatusServiceUnavailable, env.get(t, "/api/v1/realtime/now").Code)

	require.NoError(t, env.refresher.Refresh(context.Background()))
	rr := env.get(t, "/api/v1/realtime/now")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data occupancy.Payload `json:"data"`
		Meta struct {
			ComputedAt   string `json:"computed_at"`
			EntriesCount int    `json:"entries_count"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 6.0, body.Data.AveragePersons)
	assert.Equal(t, "2024-01-01T10:00:30.000Z", body.Meta.ComputedAt)
	assert.Equal(t, 2, body.Meta.EntriesCount)
}

func TestV1RealtimeHistoryLastN(t *testing.T) {
	env := newTestEnv(t, config.Config{}, rowsResult([]db.RawReading{
		{Persons: 3, Timestamp: "2024-01-01T12:00:00Z"},
		{Persons: 2, Timestamp: "2024-01-01T11:00:00Z"},
		{Persons: 1, Timestamp: "2024-01-01T10:00:00Z"},
	}))
	require.NoError(t, env.refresher.Refresh(context.Background()))

	rr := env.get(t, "/api/v1/realtime/history?last_n=2")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"data": [
			{"persons": 2, "timestamp": "2024-01-01T11:00:00.000Z"},
			{"persons": 3, "timestamp": "2024-01-01T12:00:00.000Z"}
		],
		"meta": {"count": 2}
	}`, rr.Body.String())

	assert.Equal(t, http.StatusBadRequest, env.get(t, "/api/v1/realtime/history?last_n=0").Code)
}
