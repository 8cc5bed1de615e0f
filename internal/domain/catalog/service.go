// Package catalog builds and persists the master song list: a stable,
// indexable list of playable songs scanned from the music directory.
package catalog

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/convergence-jukebox/backend/internal/infra/store"
)

// Service scans the music directory and manages the persisted catalog and
// its file-count fingerprint.
type Service struct {
	fs       afero.Fs
	reader   TagReader
	musicDir string

	catalogPath string
	checkPath   string
}

// NewService creates a catalog service. catalogPath holds the song list,
// checkPath the file-count fingerprint from the last build.
func NewService(fs afero.Fs, reader TagReader, musicDir, catalogPath, checkPath string) *Service {
	return &Service{
		fs:          fs,
		reader:      reader,
		musicDir:    musicDir,
		catalogPath: catalogPath,
		checkPath:   checkPath,
	}
}

// Open returns the catalog, reusing the persisted one when the music
// directory still holds the same number of files, and rebuilding from
// scratch otherwise. A rebuilt catalog is persisted before returning.
func (s *Service) Open() (*Catalog, error) {
	if c, ok := s.LoadIfFresh(); ok {
		log.Info().Int("songs", c.Len()).Msg("Music database matches current files, reusing")
		return c, nil
	}

	log.Info().Msg("Music database missing or stale, regenerating from scratch")
	c, err := s.Build()
	if err != nil {
		return nil, err
	}
	if err := s.Persist(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Build scans the music directory for MP3 files, extracts metadata, and
// assigns sequential indices in scan order. Files whose tags cannot be read
// are skipped. Zero files discovered, or zero files surviving extraction,
// fails the build.
func (s *Service) Build() (*Catalog, error) {
	files, err := s.listMusicFiles()
	if err != nil {
		return nil, fmt.Errorf("scan music directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no MP3 files found in %s", s.musicDir)
	}

	log.Info().Int("files", len(files)).Str("dir", s.musicDir).Msg("Extracting metadata")

	songs := make([]SongRecord, 0, len(files))
	for _, path := range files {
		meta, err := s.reader.Read(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Metadata extraction failed, skipping file")
			continue
		}
		songs = append(songs, SongRecord{
			Index:    len(songs),
			Location: path,
			Title:    meta.Title,
			Artist:   meta.Artist,
			Album:    meta.Album,
			Year:     meta.Year,
			Genre:    meta.Comment,
			Duration: FormatDuration(meta.Duration),
		})
	}

	if len(songs) == 0 {
		return nil, fmt.Errorf("no valid metadata extracted from %d files", len(files))
	}

	log.Info().Int("songs", len(songs)).Msg("Catalog built")
	return New(songs), nil
}

// LoadIfFresh returns the persisted catalog when the live file count in the
// music directory exactly matches the stored fingerprint. Any mismatch or
// read failure signals stale.
func (s *Service) LoadIfFresh() (*Catalog, bool) {
	files, err := s.listMusicFiles()
	if err != nil {
		log.Error().Err(err).Msg("Failed to count music files")
		return nil, false
	}

	var stored int
	if err := store.ReadJSON(s.fs, s.checkPath, &stored); err != nil {
		log.Debug().Err(err).Msg("No usable catalog fingerprint")
		return nil, false
	}
	if stored != len(files) {
		log.Info().Int("stored", stored).Int("current", len(files)).Msg("Catalog fingerprint mismatch")
		return nil, false
	}

	var songs []SongRecord
	if err := store.ReadJSON(s.fs, s.catalogPath, &songs); err != nil {
		log.Error().Err(err).Msg("Failed to load persisted catalog")
		return nil, false
	}
	if len(songs) == 0 {
		return nil, false
	}
	return New(songs), true
}

// Persist writes the catalog and its file-count fingerprint.
func (s *Service) Persist(c *Catalog) error {
	if err := store.WriteJSON(s.fs, s.catalogPath, c.Songs()); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	if err := store.WriteJSON(s.fs, s.checkPath, c.Len()); err != nil {
		return fmt.Errorf("persist catalog fingerprint: %w", err)
	}
	log.Info().Int("songs", c.Len()).Str("path", s.catalogPath).Msg("Catalog persisted")
	return nil
}

func (s *Service) listMusicFiles() ([]string, error) {
	files, err := afero.Glob(s.fs, filepath.Join(s.musicDir, "*.mp3"))
	if err != nil {
		return nil, err
	}
	// Glob order is fs-dependent; sort so indices are reproducible.
	sort.Strings(files)
	return files, nil
}

// FormatDuration renders a track duration as MM:SS for display.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
