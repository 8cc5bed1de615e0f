package store

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// PaidQueueStore is the durable, cross-process source of truth for the paid
// playlist. The in-memory value is always stale: callers re-read immediately
// before every consume or append decision.
type PaidQueueStore struct {
	fs   afero.Fs
	path string
}

// NewPaidQueueStore creates a paid queue store backed by path.
func NewPaidQueueStore(fs afero.Fs, path string) *PaidQueueStore {
	return &PaidQueueStore{fs: fs, path: path}
}

// Ensure creates the queue file with an empty list when it does not exist.
func (s *PaidQueueStore) Ensure() error {
	if _, err := s.fs.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return s.Write([]int{})
}

// Read returns the stored queue. A missing, unreadable, or malformed file
// degrades to an empty queue rather than an error; entries that are not
// whole numbers are discarded.
func (s *PaidQueueStore) Read() []int {
	var raw []json.Number
	if err := ReadJSON(s.fs, s.path, &raw); err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("path", s.path).Msg("Paid queue read failed, treating as empty")
		}
		return []int{}
	}

	queue := make([]int, 0, len(raw))
	for _, n := range raw {
		v, err := n.Int64()
		if err != nil {
			log.Error().Str("entry", n.String()).Msg("Discarding non-integer paid queue entry")
			continue
		}
		queue = append(queue, int(v))
	}
	return queue
}

// Write persists the queue atomically.
func (s *PaidQueueStore) Write(queue []int) error {
	if queue == nil {
		queue = []int{}
	}
	return WriteJSON(s.fs, s.path, queue)
}

// Path returns the backing file path.
func (s *PaidQueueStore) Path() string {
	return s.path
}
