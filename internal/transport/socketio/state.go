package socketio

import (
	"github.com/convergence-jukebox/backend/internal/domain/catalog"
)

// buildState resolves the currently-playing marker location against the
// catalog into the state map the front-end renders. An empty or unknown
// location yields a stopped state.
func buildState(c *catalog.Catalog, location string) map[string]interface{} {
	state := map[string]interface{}{
		"status":   "stop",
		"uri":      "",
		"title":    "",
		"artist":   "",
		"album":    "",
		"year":     "",
		"genre":    "",
		"duration": "",
	}
	if location == "" {
		return state
	}

	song, ok := c.FindByLocation(location)
	if !ok {
		// The marker can outlive a catalog rebuild; report the raw path so
		// the display shows something rather than nothing.
		state["status"] = "play"
		state["uri"] = location
		return state
	}

	state["status"] = "play"
	state["uri"] = song.Location
	state["index"] = song.Index
	state["title"] = song.Title
	state["artist"] = song.Artist
	state["album"] = song.Album
	state["year"] = song.Year
	state["genre"] = song.Genre
	state["duration"] = song.Duration
	return state
}
