// Package engine owns the playback scheduling loop. The coordinator
// interleaves two queues: the operator-fed paid queue, persisted and shared
// with the selection intake, and an in-memory shuffled random rotation. Paid
// entries always drain completely before a single random track plays.
package engine

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/convergence-jukebox/backend/internal/domain/catalog"
	"github.com/convergence-jukebox/backend/internal/infra/store"
)

// Play type labels used in the event log and statistics.
const (
	PlayTypePaid   = "Paid"
	PlayTypeRandom = "Random"
)

// Driver starts playback of a file and blocks until the track finishes or
// fails. A returned error means the file could not be played to completion;
// the coordinator treats the track as consumed either way.
type Driver interface {
	Play(ctx context.Context, location string) error
}

// PlayLogger receives one entry per played song.
type PlayLogger interface {
	LogPlay(artist, title, playType string)
}

// PlayRecorder receives play events for statistics. May be nil-backed; the
// coordinator only logs recording failures.
type PlayRecorder interface {
	RecordPlay(index int, title, artist, playType string) error
}

// Coordinator runs the scheduling loop. It owns the random rotation
// outright; the paid queue is owned by its durable store and re-read before
// every decision, because the selection intake appends to it concurrently.
type Coordinator struct {
	catalog *catalog.Catalog
	paid    *store.PaidQueueStore
	marker  *store.MarkerStore
	driver  Driver
	events  PlayLogger
	stats   PlayRecorder

	random []int

	paidConsumed func()
}

// New creates a coordinator whose random rotation is a shuffle of the
// eligible catalog indices.
func New(c *catalog.Catalog, eligible []int, paid *store.PaidQueueStore, marker *store.MarkerStore, driver Driver, events PlayLogger, stats PlayRecorder) *Coordinator {
	random := make([]int, len(eligible))
	copy(random, eligible)
	rand.Shuffle(len(random), func(i, j int) {
		random[i], random[j] = random[j], random[i]
	})

	return &Coordinator{
		catalog: c,
		paid:    paid,
		marker:  marker,
		driver:  driver,
		events:  events,
		stats:   stats,
		random:  random,
	}
}

// OnPaidConsumed registers a callback invoked after each paid entry has been
// played and durably removed from the stored queue. Must be set before Run.
func (c *Coordinator) OnPaidConsumed(fn func()) {
	c.paidConsumed = fn
}

// RandomQueue returns a copy of the current rotation order.
func (c *Coordinator) RandomQueue() []int {
	out := make([]int, len(c.random))
	copy(out, c.random)
	return out
}

// Run executes the scheduling loop until the context is cancelled, the
// random rotation is exhausted (the sole terminal state), or a persistence
// error leaves the paid queue in doubt.
func (c *Coordinator) Run(ctx context.Context) error {
	log.Info().Int("rotation", len(c.random)).Msg("Jukebox engine starting")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.drainPaid(ctx); err != nil {
			return err
		}

		played, err := c.randomStep(ctx)
		if err != nil {
			return err
		}
		if !played {
			log.Info().Msg("Random rotation empty, engine stopping")
			return nil
		}
	}
}

// drainPaid plays paid selections until a fresh read of the stored queue
// comes back empty. The queue is re-read from storage before every decision
// and again after every playback, so selections made while a track plays are
// never lost.
func (c *Coordinator) drainPaid(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		queue := c.paid.Read()
		if len(queue) == 0 {
			return nil
		}

		index := queue[0]
		song, ok := c.catalog.Get(index)
		if !ok {
			log.Error().Int("index", index).Msg("Invalid song index in paid queue, discarding")
			if err := c.paid.Write(queue[1:]); err != nil {
				return fmt.Errorf("drop invalid paid entry: %w", err)
			}
			continue
		}

		c.playSong(ctx, song, PlayTypePaid)
		if err := ctx.Err(); err != nil {
			return err
		}

		// Re-read to capture selections added during playback, then remove
		// the front entry of the fresh queue. Removal is by position, not by
		// value: if the queue was externally cleared and repopulated during
		// playback this can drop an unrelated entry. Deployed installations
		// depend on this exact behavior.
		fresh := c.paid.Read()
		if len(fresh) > 0 {
			fresh = fresh[1:]
		}
		if err := c.paid.Write(fresh); err != nil {
			return fmt.Errorf("update paid queue after play: %w", err)
		}
		if c.paidConsumed != nil {
			c.paidConsumed()
		}
	}
}

// randomStep plays one track from the rotation and recycles its index to the
// back. Returns false when the rotation is empty.
func (c *Coordinator) randomStep(ctx context.Context) (bool, error) {
	if len(c.random) == 0 {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	index := c.random[0]
	song, ok := c.catalog.Get(index)
	if !ok {
		// Rotation entries come from the catalog, so this means internal
		// state is corrupt. Drop the entry and keep rotating.
		log.Error().Int("index", index).Msg("Invalid song index in random rotation, dropping")
		c.random = c.random[1:]
		return true, nil
	}

	c.playSong(ctx, song, PlayTypeRandom)
	if err := ctx.Err(); err != nil {
		return false, err
	}

	// Rotate front to back regardless of play outcome.
	c.random = append(c.random[1:], index)
	return true, nil
}

// playSong writes the now-playing marker, logs and records the play, and
// blocks on the driver. Driver failure is logged and the song counts as
// consumed so a corrupt file cannot wedge the loop.
func (c *Coordinator) playSong(ctx context.Context, song catalog.SongRecord, playType string) {
	log.Info().
		Str("type", playType).
		Str("title", song.Title).
		Str("artist", song.Artist).
		Str("album", song.Album).
		Str("duration", song.Duration).
		Msg("Now playing")

	if err := c.marker.Write(song.Location); err != nil {
		log.Error().Err(err).Msg("Failed to write currently-playing marker")
	}

	c.events.LogPlay(song.Artist, song.Title, playType)
	if c.stats != nil {
		if err := c.stats.RecordPlay(song.Index, song.Title, song.Artist, playType); err != nil {
			log.Error().Err(err).Int("index", song.Index).Msg("Failed to record play statistics")
		}
	}

	if err := c.driver.Play(ctx, song.Location); err != nil {
		log.Error().Err(err).Str("file", song.Location).Msg("Playback failed, advancing")
	}
}
