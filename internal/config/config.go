// Package config loads jukebox_config.json. Missing keys fall back to
// defaults; a missing file is created with the defaults so the operator has
// something to edit.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DefaultFileName is the config file name inside the data directory.
const DefaultFileName = "jukebox_config.json"

// Config is the operator-editable configuration.
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Paths   PathsConfig   `json:"paths"`
	Console ConsoleConfig `json:"console"`
}

// LoggingConfig controls the event log.
type LoggingConfig struct {
	Enabled bool `json:"enabled"`
}

// PathsConfig names the shared on-disk artifacts, relative to the data
// directory unless absolute.
type PathsConfig struct {
	MusicDir           string `json:"music_dir"`
	LogFile            string `json:"log_file"`
	GenreFlagsFile     string `json:"genre_flags_file"`
	MasterSongList     string `json:"music_master_song_list_file"`
	MasterSongListsize string `json:"music_master_song_list_check_file"`
	PaidPlaylistFile   string `json:"paid_music_playlist_file"`
	CurrentSongFile    string `json:"current_song_playing_file"`
	StatsDBFile        string `json:"stats_db_file"`
}

// ConsoleConfig controls console output behavior.
type ConsoleConfig struct {
	Verbose bool `json:"verbose"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Enabled: true},
		Paths: PathsConfig{
			MusicDir:           "music",
			LogFile:            "log.txt",
			GenreFlagsFile:     "GenreFlagsList.txt",
			MasterSongList:     "MusicMasterSongList.txt",
			MasterSongListsize: "MusicMasterSongListCheck.txt",
			PaidPlaylistFile:   "PaidMusicPlayList.txt",
			CurrentSongFile:    "CurrentSongPlaying.txt",
			StatsDBFile:        "stats.db",
		},
		Console: ConsoleConfig{Verbose: false},
	}
}

// Load reads the config at path, merging it over the defaults. A missing
// file is created with the defaults; a malformed file logs a warning and
// yields the defaults unchanged.
func Load(fs afero.Fs, path string) Config {
	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			if out, merr := json.MarshalIndent(Default(), "", "  "); merr == nil {
				if werr := afero.WriteFile(fs, path, out, 0o644); werr != nil {
					log.Warn().Err(werr).Str("path", path).Msg("Failed to create config file")
				} else {
					log.Info().Str("path", path).Msg("Created default config file")
				}
			}
		} else {
			log.Warn().Err(err).Str("path", path).Msg("Failed to read config file, using defaults")
		}
		return cfg
	}

	// Unmarshalling over the defaults struct keeps default values for any
	// key the file omits.
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Malformed config file, using defaults")
		return Default()
	}
	return cfg
}

// Resolve joins a configured path with the data directory unless it is
// already absolute.
func Resolve(dataDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDir, path)
}
