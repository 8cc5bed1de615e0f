// Package tags extracts song metadata from MP3 files: ID3v2 text frames for
// the display fields and a decode pass for the track duration.
package tags

import (
	"fmt"
	"os"
	"time"

	"github.com/bogem/id3v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/rs/zerolog/log"

	"github.com/convergence-jukebox/backend/internal/domain/catalog"
)

// Reader reads ID3 tags and durations from files on disk. The zero value is
// ready to use; ProbeDuration toggles the decode pass, which scans the whole
// file and dominates catalog build time on large libraries.
type Reader struct {
	ProbeDuration bool
}

// NewReader returns a Reader that probes durations.
func NewReader() *Reader {
	return &Reader{ProbeDuration: true}
}

// Read implements catalog.TagReader.
func (r *Reader) Read(path string) (catalog.Metadata, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return catalog.Metadata{}, fmt.Errorf("open ID3 tag: %w", err)
	}

	meta := catalog.Metadata{
		Title:   tag.Title(),
		Artist:  tag.Artist(),
		Album:   tag.Album(),
		Year:    tag.Year(),
		Comment: firstComment(tag),
	}
	if err := tag.Close(); err != nil {
		return catalog.Metadata{}, fmt.Errorf("close ID3 tag: %w", err)
	}

	if r.ProbeDuration {
		d, err := probeDuration(path)
		if err != nil {
			// Duration is display-only; a failed probe should not drop the
			// song from the catalog.
			log.Debug().Err(err).Str("file", path).Msg("Duration probe failed")
		} else {
			meta.Duration = d
		}
	}

	return meta, nil
}

// firstComment returns the text of the first comment frame. The jukebox
// stores its genre tags in the comment field.
func firstComment(tag *id3v2.Tag) string {
	frames := tag.GetFrames(tag.CommonID("Comments"))
	for _, f := range frames {
		if cf, ok := f.(id3v2.CommentFrame); ok {
			return cf.Text
		}
	}
	return ""
}

// probeDuration decodes the MP3 stream to learn its length.
func probeDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("decode MP3: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}
