package store

import (
	"os"
	"strings"

	"github.com/spf13/afero"
)

// MarkerStore persists the currently-playing file path as plain text so any
// observer can poll it without coupling to the engine.
type MarkerStore struct {
	fs   afero.Fs
	path string
}

// NewMarkerStore creates a marker store backed by path.
func NewMarkerStore(fs afero.Fs, path string) *MarkerStore {
	return &MarkerStore{fs: fs, path: path}
}

// Write records location as the currently playing file.
func (s *MarkerStore) Write(location string) error {
	return writeFileAtomic(s.fs, s.path, []byte(location))
}

// Read returns the recorded location, or "" when the marker is absent.
func (s *MarkerStore) Read() (string, error) {
	data, err := readFileRetry(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Path returns the backing file path.
func (s *MarkerStore) Path() string {
	return s.path
}
