package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/convergence-jukebox/backend/internal/infra/mpd"
)

// pollInterval is how often the MPD driver checks whether the track has
// finished.
const pollInterval = 500 * time.Millisecond

// MPDPlayer delegates playback to a music player daemon and polls its
// status until the track stops.
type MPDPlayer struct {
	client *mpd.Client
}

// NewMPDPlayer creates a driver over an already connected MPD client.
func NewMPDPlayer(client *mpd.Client) *MPDPlayer {
	return &MPDPlayer{client: client}
}

// Play loads location as the only entry in MPD's queue, starts it, and
// blocks until MPD reports the player stopped or ctx is cancelled.
func (p *MPDPlayer) Play(ctx context.Context, location string) error {
	if err := p.client.Clear(); err != nil {
		return fmt.Errorf("clear MPD queue: %w", err)
	}
	if err := p.client.Add(location); err != nil {
		return fmt.Errorf("load %s into MPD: %w", location, err)
	}
	if err := p.client.Play(0); err != nil {
		return fmt.Errorf("start MPD playback: %w", err)
	}

	// Give MPD a beat to enter the play state before polling.
	select {
	case <-ctx.Done():
		p.stop()
		return ctx.Err()
	case <-time.After(pollInterval):
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.stop()
			return ctx.Err()
		case <-ticker.C:
			status, err := p.client.Status()
			if err != nil {
				return fmt.Errorf("poll MPD status: %w", err)
			}
			if status["state"] != "play" {
				return nil
			}
		}
	}
}

func (p *MPDPlayer) stop() {
	if err := p.client.Stop(); err != nil {
		log.Error().Err(err).Msg("Failed to stop MPD playback")
	}
}
