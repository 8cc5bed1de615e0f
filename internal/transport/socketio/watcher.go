package socketio

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// StartMarkerWatcher watches the currently-playing marker file and
// broadcasts state to clients whenever the engine swaps it. The watch is on
// the containing directory because the marker lands via rename.
func (s *Server) StartMarkerWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	markerPath := filepath.Clean(s.marker.Path())
	if err := watcher.Add(filepath.Dir(markerPath)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		log.Info().Str("path", markerPath).Msg("Now-playing watcher started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Now-playing watcher stopped")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					log.Warn().Msg("Now-playing watcher channel closed")
					return
				}
				if filepath.Clean(event.Name) != markerPath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				log.Debug().Str("op", event.Op.String()).Msg("Now-playing marker changed")
				s.BroadcastState()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("Now-playing watcher error")
			}
		}
	}()

	return nil
}
