// Package audio provides the playback drivers behind the engine's Driver
// interface. Both drivers block for the real-time duration of the track:
// the engine has nothing else to do while a song plays.
package audio

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
)

// speakerRate is the output sample rate; streams at other rates are
// resampled to it.
const speakerRate = beep.SampleRate(44100)

// BeepPlayer plays MP3 files in-process through the system speaker.
type BeepPlayer struct {
	mu       sync.Mutex
	initOnce sync.Once
	initErr  error
}

// NewBeepPlayer creates an in-process MP3 player. The speaker is
// initialized lazily on the first play.
func NewBeepPlayer() *BeepPlayer {
	return &BeepPlayer{}
}

// Play decodes and plays the file at location, blocking until the track
// ends or ctx is cancelled. Cancellation clears the speaker and returns
// ctx.Err().
func (p *BeepPlayer) Play(ctx context.Context, location string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.Open(location)
	if err != nil {
		return fmt.Errorf("open audio file: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode MP3: %w", err)
	}
	defer streamer.Close()

	p.initOnce.Do(func() {
		p.initErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	if p.initErr != nil {
		return fmt.Errorf("init speaker: %w", p.initErr)
	}

	resampled := beep.Resample(4, format.SampleRate, speakerRate, streamer)

	done := make(chan struct{})
	speaker.Play(beep.Seq(resampled, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		log.Debug().Str("file", location).Msg("Playback interrupted by shutdown")
		return ctx.Err()
	}
}
