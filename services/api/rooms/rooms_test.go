package rooms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListReturnsCopy(t *testing.T) {
	d := Default()

	all := d.List("")
	require.Len(t, all, 15)
	all[0].Name = "changed"

	assert.Equal(t, "Lesesaal 1", d.List("")[0].Name)
}

func TestListFiltersByCategory(t *testing.T) {
	groups := Default().List(CategoryGroupRoom)

	require.Len(t, groups, 5)
	for _, r := range groups {
		assert.Equal(t, CategoryGroupRoom, r.Category)
	}
}

func TestGet(t *testing.T) {
	room, ok := Default().Get(9)
	require.True(t, ok)
	assert.Equal(t, "Gruppenraum D", room.Name)
	assert.Equal(t, 12, room.Capacity)

	_, ok = Default().Get(99)
	assert.False(t, ok)
}
