package rooms

// Room is an entry of the static room directory.
type Room struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Category string `json:"category"`
}

// Categories used by the directory.
const (
	CategoryReadingRoom = "Lesesäle"
	CategoryGroupRoom   = "Gruppenräume"
	CategorySideBench   = "Seitenbänke"
)

var directory = []Room{
	{ID: 1, Name: "Lesesaal 1", Capacity: 50, Category: CategoryReadingRoom},
	{ID: 2, Name: "Lesesaal 2", Capacity: 40, Category: CategoryReadingRoom},
	{ID: 3, Name: "Lesesaal 3", Capacity: 40, Category: CategoryReadingRoom},
	{ID: 4, Name: "Lesesaal 4", Capacity: 50, Category: CategoryReadingRoom},
	{ID: 5, Name: "Lesesaal 5", Capacity: 50, Category: CategoryReadingRoom},

	{ID: 6, Name: "Gruppenraum A", Capacity: 10, Category: CategoryGroupRoom},
	{ID: 7, Name: "Gruppenraum B", Capacity: 10, Category: CategoryGroupRoom},
	{ID: 8, Name: "Gruppenraum C", Capacity: 10, Category: CategoryGroupRoom},
	{ID: 9, Name: "Gruppenraum D", Capacity: 12, Category: CategoryGroupRoom},
	{ID: 10, Name: "Gruppenraum E", Capacity: 10, Category: CategoryGroupRoom},

	{ID: 11, Name: "Seitenbank 1", Capacity: 4, Category: CategorySideBench},
	{ID: 12, Name: "Seitenbank 2", Capacity: 4, Category: CategorySideBench},
	{ID: 13, Name: "Seitenbank 3", Capacity: 4, Category: CategorySideBench},
	{ID: 14, Name: "Seitenbank 4", Capacity: 4, Category: CategorySideBench},
	{ID: 15, Name: "Seitenbank 5", Capacity: 4, Category: CategorySideBench},
}

// Directory is a read-only view over the room list.
type Directory struct {
	rooms []Room
}

// Default returns the built-in campus directory.
func Default() *Directory {
	return &Directory{rooms: directory}
}

// List returns a copy of all rooms, optionally filtered by category.
func (d *Directory) List(category string) []Room {
	out := make([]Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		if category != "" && r.Category != category {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Get looks up a room by id.
func (d *Directory) Get(id int) (Room, bool) {
	for _, r := range d.rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}
