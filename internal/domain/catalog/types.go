package catalog

import "time"

// SongRecord is one catalog entry. Index is assigned sequentially at build
// time in scan order and is stable for the life of the catalog file. The
// JSON field names match the on-disk master song list format.
type SongRecord struct {
	Index    int    `json:"number"`
	Location string `json:"location"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Year     string `json:"year"`
	Genre    string `json:"comment"`
	Duration string `json:"duration"`
}

// Catalog is the immutable-after-load ordered list of songs.
type Catalog struct {
	songs []SongRecord
}

// New creates a catalog from a list of records.
func New(songs []SongRecord) *Catalog {
	return &Catalog{songs: songs}
}

// Get returns the record at index, or false when the index is out of range.
func (c *Catalog) Get(index int) (SongRecord, bool) {
	if index < 0 || index >= len(c.songs) {
		return SongRecord{}, false
	}
	return c.songs[index], true
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.songs)
}

// Songs returns the records in index order. Callers must not mutate the
// returned slice.
func (c *Catalog) Songs() []SongRecord {
	return c.songs
}

// FindByLocation returns the record whose file path equals location.
func (c *Catalog) FindByLocation(location string) (SongRecord, bool) {
	for _, s := range c.songs {
		if s.Location == location {
			return s, true
		}
	}
	return SongRecord{}, false
}

// Metadata is the tag data extracted from one media file by a TagReader.
type Metadata struct {
	Title    string
	Artist   string
	Album    string
	Year     string
	Comment  string
	Duration time.Duration
}

// TagReader extracts metadata from a media file on disk.
type TagReader interface {
	Read(path string) (Metadata, error)
}
