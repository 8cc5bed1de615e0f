// Package selection turns an operator's song choice into a durable paid
// queue append, exactly once per selection, with duplicate protection and a
// credit debit. It runs concurrently with the engine's drain loop; the only
// coordination between them is the shared queue store's re-read-and-swap
// discipline.
package selection

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/convergence-jukebox/backend/internal/domain/catalog"
	"github.com/convergence-jukebox/backend/internal/infra/store"
)

// Status is the outcome of an enqueue attempt.
type Status string

const (
	StatusAccepted  Status = "accepted"
	StatusDuplicate Status = "duplicate"
	StatusNotFound  Status = "notFound"
	StatusNoCredit  Status = "noCredit"
)

// Result reports an enqueue outcome. Receipt is set only on acceptance.
type Result struct {
	Status  Status `json:"status"`
	Receipt string `json:"receipt,omitempty"`
	Credits int    `json:"credits"`
}

// EventLogger receives credit events for the operator log.
type EventLogger interface {
	LogCredit(balance int)
	LogEvent(msg string)
}

// displayWidth is the character budget per field on the upcoming display.
const displayWidth = 22

// Service validates selections and appends them to the paid queue.
type Service struct {
	catalog *catalog.Catalog
	paid    *store.PaidQueueStore
	events  EventLogger

	mu       sync.Mutex
	credits  int
	upcoming []string
}

// NewService creates a selection service over the shared paid queue store.
func NewService(c *catalog.Catalog, paid *store.PaidQueueStore, events EventLogger) *Service {
	return &Service{
		catalog: c,
		paid:    paid,
		events:  events,
	}
}

// Enqueue validates index, deduplicates against the freshly read paid
// queue, and persists the append. One credit is debited on acceptance. The
// error return is reserved for storage failures; rejections come back in
// the Result status.
func (s *Service) Enqueue(index int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.credits == 0 {
		log.Info().Int("index", index).Msg("Selection rejected, no credits")
		return Result{Status: StatusNoCredit, Credits: s.credits}, nil
	}

	song, ok := s.catalog.Get(index)
	if !ok {
		log.Error().Int("index", index).Msg("Selection rejected, unknown song index")
		return Result{Status: StatusNotFound, Credits: s.credits}, nil
	}

	// Always re-read before deciding: the engine may have consumed entries
	// since any value we saw last.
	queue := s.paid.Read()
	candidate := append(append([]int(nil), queue...), index)

	seen := make(map[int]struct{}, len(candidate))
	for _, v := range candidate {
		seen[v] = struct{}{}
	}
	if len(seen) != len(candidate) {
		// Roll back: the append is never persisted.
		log.Info().Int("index", index).Str("title", song.Title).Msg("Duplicate selection rejected")
		return Result{Status: StatusDuplicate, Credits: s.credits}, nil
	}

	if err := s.paid.Write(candidate); err != nil {
		return Result{}, fmt.Errorf("persist paid selection: %w", err)
	}

	s.credits--
	s.upcoming = append(s.upcoming, upcomingEntry(song))
	receipt := uuid.New().String()

	log.Info().
		Int("index", index).
		Str("title", song.Title).
		Str("artist", song.Artist).
		Int("credits", s.credits).
		Str("receipt", receipt).
		Msg("Paid selection accepted")
	s.events.LogEvent(fmt.Sprintf("Selection Added - %s - %s", song.Artist, song.Title))

	return Result{Status: StatusAccepted, Receipt: receipt, Credits: s.credits}, nil
}

// AddCredit adds one credit and returns the new balance.
func (s *Service) AddCredit() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credits++
	s.events.LogCredit(s.credits)
	log.Info().Int("credits", s.credits).Msg("Credit added")
	return s.credits
}

// Credits returns the current credit balance.
func (s *Service) Credits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credits
}

// Upcoming returns the display strings for accepted selections, newest
// last. The consuming display shows at most ten entries.
func (s *Service) Upcoming() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.upcoming))
	copy(out, s.upcoming)
	return out
}

// ConsumeUpcoming drops the oldest upcoming entry, called when the engine
// moves past a paid selection.
func (s *Service) ConsumeUpcoming() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.upcoming) > 0 {
		s.upcoming = s.upcoming[1:]
	}
}

func upcomingEntry(song catalog.SongRecord) string {
	return truncate(song.Title, displayWidth) + " - " + truncate(song.Artist, displayWidth)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
