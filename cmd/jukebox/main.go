// Package main is the entry point for the Convergence Jukebox backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/convergence-jukebox/backend/internal/config"
	"github.com/convergence-jukebox/backend/internal/domain/catalog"
	"github.com/convergence-jukebox/backend/internal/domain/engine"
	"github.com/convergence-jukebox/backend/internal/domain/genre"
	"github.com/convergence-jukebox/backend/internal/domain/selection"
	"github.com/convergence-jukebox/backend/internal/infra/audio"
	"github.com/convergence-jukebox/backend/internal/infra/eventlog"
	"github.com/convergence-jukebox/backend/internal/infra/mpd"
	"github.com/convergence-jukebox/backend/internal/infra/stats"
	"github.com/convergence-jukebox/backend/internal/infra/store"
	"github.com/convergence-jukebox/backend/internal/infra/tags"
	"github.com/convergence-jukebox/backend/internal/transport/socketio"
	"github.com/convergence-jukebox/backend/internal/version"
)

func main() {
	// Command line flags
	port := flag.String("port", "3001", "HTTP server port")
	dataDir := flag.String("data-dir", ".", "Directory holding the playlist, catalog and config files")
	musicDir := flag.String("music-dir", "", "Music directory (overrides the config file)")
	driverName := flag.String("driver", "beep", "Playback driver: beep (in-process) or mpd")
	mpdHost := flag.String("mpd-host", "localhost", "MPD host (driver=mpd)")
	mpdPort := flag.Int("mpd-port", 6600, "MPD port (driver=mpd)")
	mpdPassword := flag.String("mpd-password", "", "MPD password (driver=mpd)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Print startup banner
	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Playback Queue Coordinator")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	fs := afero.NewOsFs()

	cfg := config.Load(fs, filepath.Join(*dataDir, config.DefaultFileName))
	if *debug || cfg.Console.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if *musicDir != "" {
		cfg.Paths.MusicDir = *musicDir
	}
	musicRoot := config.Resolve(*dataDir, cfg.Paths.MusicDir)

	log.Info().
		Str("port", *port).
		Str("data_dir", *dataDir).
		Str("music_dir", musicRoot).
		Str("driver", *driverName).
		Bool("event_log", cfg.Logging.Enabled).
		Msg("Configuration")

	events := eventlog.Open(fs, config.Resolve(*dataDir, cfg.Paths.LogFile), cfg.Logging.Enabled)

	// Build or reload the song catalog
	catalogService := catalog.NewService(
		fs,
		tags.NewReader(),
		musicRoot,
		config.Resolve(*dataDir, cfg.Paths.MasterSongList),
		config.Resolve(*dataDir, cfg.Paths.MasterSongListsize),
	)
	songs, err := catalogService.Open()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open song catalog")
	}
	log.Info().Int("songs", songs.Len()).Msg("Song catalog ready")

	// Genre filter
	selectors := genre.LoadSelectors(fs, config.Resolve(*dataDir, cfg.Paths.GenreFlagsFile))
	eligible := genre.EligibleIndices(songs, selectors)
	log.Info().
		Strs("selectors", selectors.Active()).
		Int("eligible", len(eligible)).
		Msg("Random rotation pool")

	// Persistent stores
	paidStore := store.NewPaidQueueStore(fs, config.Resolve(*dataDir, cfg.Paths.PaidPlaylistFile))
	if err := paidStore.Ensure(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize paid playlist file")
	}
	markerStore := store.NewMarkerStore(fs, config.Resolve(*dataDir, cfg.Paths.CurrentSongFile))

	// Play statistics
	statsDB := stats.NewDB(config.Resolve(*dataDir, cfg.Paths.StatsDBFile))
	var statsDAO *stats.DAO
	var recorder engine.PlayRecorder
	if err := statsDB.Open(); err != nil {
		log.Error().Err(err).Msg("Failed to open stats database, play statistics disabled")
	} else {
		defer statsDB.Close()
		statsDAO = stats.NewDAO(statsDB)
		recorder = statsDAO
	}

	// Playback driver
	var driver engine.Driver
	switch *driverName {
	case "mpd":
		mpdClient := mpd.NewClient(*mpdHost, *mpdPort, *mpdPassword)
		if err := mpdClient.Connect(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MPD")
		}
		defer mpdClient.Close()
		if err := mpdClient.Ping(); err != nil {
			log.Fatal().Err(err).Msg("MPD ping failed")
		}
		log.Info().Msg("MPD connection verified")
		driver = audio.NewMPDPlayer(mpdClient)
	case "beep":
		driver = audio.NewBeepPlayer()
	default:
		log.Fatal().Str("driver", *driverName).Msg("Unknown playback driver")
	}

	// Create services
	selectionService := selection.NewService(songs, paidStore, events)
	coordinator := engine.New(songs, eligible, paidStore, markerStore, driver, events, recorder)

	// Create Socket.io server
	socketServer, err := socketio.NewServer(songs, selectionService, markerStore, statsDAO)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	// Keep the upcoming-songs display in sync as the engine consumes paid
	// selections.
	coordinator.OnPaidConsumed(func() {
		selectionService.ConsumeUpcoming()
		socketServer.BroadcastUpcoming()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Push state to clients whenever the currently-playing marker changes
	if err := socketServer.StartMarkerWatcher(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start marker watcher")
	}

	// Run the playback engine. The HTTP server keeps serving selections and
	// state even after the rotation is exhausted or the engine fails.
	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		if err := coordinator.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Playback engine stopped")
			return
		}
		log.Info().Msg("Playback engine finished: random rotation is empty")
	}()

	// Setup HTTP server
	mux := http.NewServeMux()

	// Socket.io endpoint
	mux.Handle("/socket.io/", socketServer)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		select {
		case <-engineDone:
			w.Write([]byte(`{"status":"ok","engine":"stopped"}`))
		default:
			w.Write([]byte(`{"status":"ok","engine":"running"}`))
		}
	})

	// Version endpoint
	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	// Basic state endpoint (REST fallback)
	mux.HandleFunc("/api/v1/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		json.NewEncoder(w).Encode(socketServer.CurrentState())
	})

	// Start HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", ":"+*port).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}
