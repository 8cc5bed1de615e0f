// Package genre derives the subset of catalog indices eligible for random
// rotation from the operator's genre selectors.
package genre

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/convergence-jukebox/backend/internal/domain/catalog"
	"github.com/convergence-jukebox/backend/internal/infra/store"
)

const (
	// Unset marks an empty selector slot in the genre flags file.
	Unset = "null"

	// ExclusionTag removes a song from random rotation regardless of
	// selectors. Operators place it in the song's genre/comment field.
	ExclusionTag = "norandom"

	// slots is the fixed number of selector positions.
	slots = 4
)

// Selectors holds the up-to-four operator-set genre tags. An Unset slot does
// not constrain rotation.
type Selectors [slots]string

// None returns selectors with every slot unset.
func None() Selectors {
	return Selectors{Unset, Unset, Unset, Unset}
}

// Active returns the set selector values in slot order.
func (s Selectors) Active() []string {
	var active []string
	for _, v := range s {
		if v != Unset && v != "" {
			active = append(active, v)
		}
	}
	return active
}

// LoadSelectors reads the genre flags file, creating it with all slots unset
// when absent. A malformed or short file degrades to unset slots for the
// missing positions.
func LoadSelectors(fs afero.Fs, path string) Selectors {
	sel := None()

	var raw []string
	if err := store.ReadJSON(fs, path, &raw); err != nil {
		if os.IsNotExist(err) {
			if werr := store.WriteJSON(fs, path, sel[:]); werr != nil {
				log.Error().Err(werr).Str("path", path).Msg("Failed to create genre flags file")
			} else {
				log.Info().Str("path", path).Msg("Created genre flags file")
			}
		} else {
			log.Error().Err(err).Str("path", path).Msg("Failed to load genre flags, using no selectors")
		}
		return sel
	}

	for i := 0; i < slots && i < len(raw); i++ {
		if raw[i] != "" {
			sel[i] = raw[i]
		}
	}
	return sel
}

// EligibleIndices returns the catalog indices allowed into random rotation.
// A song carrying the exclusion tag is always out. Otherwise, with no
// selectors set every song is in; with any selector set, a song is in when
// its genre field contains any one of the set selectors. Matching is
// case-sensitive substring containment on the raw field, so a multi-tag
// field like "rock 60s" matches the selector "rock".
func EligibleIndices(c *catalog.Catalog, sel Selectors) []int {
	active := sel.Active()

	var eligible []int
	for _, song := range c.Songs() {
		if strings.Contains(song.Genre, ExclusionTag) {
			continue
		}
		if len(active) == 0 {
			eligible = append(eligible, song.Index)
			continue
		}
		for _, want := range active {
			if strings.Contains(song.Genre, want) {
				eligible = append(eligible, song.Index)
				break
			}
		}
	}
	return eligible
}
