// Package socketio provides the Socket.io server the jukebox front-end
// talks to: catalog browsing, paid selections, credits, and now-playing
// state pushes.
package socketio

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/convergence-jukebox/backend/internal/domain/catalog"
	"github.com/convergence-jukebox/backend/internal/domain/selection"
	"github.com/convergence-jukebox/backend/internal/infra/stats"
	"github.com/convergence-jukebox/backend/internal/infra/store"
)

// upcomingVisible caps the entries pushed to the upcoming-songs display.
const upcomingVisible = 10

// Server handles Socket.io connections and events.
type Server struct {
	io        *socket.Server
	catalog   *catalog.Catalog
	selection *selection.Service
	marker    *store.MarkerStore
	stats     *stats.DAO
	mu        sync.RWMutex
	clients   map[string]*socket.Socket
}

// NewServer creates a new Socket.io server. statsDAO may be nil when the
// statistics store is disabled.
func NewServer(c *catalog.Catalog, sel *selection.Service, marker *store.MarkerStore, statsDAO *stats.DAO) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := socket.NewServer(nil, opts)

	s := &Server{
		io:        server,
		catalog:   c,
		selection: sel,
		marker:    marker,
		stats:     statsDAO,
		clients:   make(map[string]*socket.Socket),
	}

	s.setupHandlers()

	return s, nil
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())

		log.Info().Str("id", clientID).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		// Send initial state after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushState(client)
			s.pushCredits(client)
			s.pushUpcoming(client)
		}()

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		client.On("getState", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getState")
			s.pushState(client)
		})

		client.On("getCatalog", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getCatalog")
			client.Emit("pushCatalog", s.catalog.Songs())
		})

		client.On("enqueueSong", func(args ...any) {
			log.Debug().Str("id", clientID).Interface("data", args).Msg("enqueueSong")

			index := -1
			if len(args) > 0 {
				if m, ok := args[0].(map[string]interface{}); ok {
					if v, ok := m["index"].(float64); ok {
						index = int(v)
					}
				}
			}

			result, err := s.selection.Enqueue(index)
			if err != nil {
				log.Error().Err(err).Int("index", index).Msg("Enqueue failed")
				client.Emit("pushSelectionResult", map[string]interface{}{
					"status": "error",
				})
				return
			}

			client.Emit("pushSelectionResult", result)
			if result.Status == selection.StatusAccepted {
				s.BroadcastUpcoming()
				s.BroadcastCredits()
			}
		})

		client.On("addCredit", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("addCredit")
			s.selection.AddCredit()
			s.BroadcastCredits()
		})

		client.On("getCredits", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getCredits")
			s.pushCredits(client)
		})

		client.On("getUpcoming", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getUpcoming")
			s.pushUpcoming(client)
		})

		client.On("getStats", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getStats")
			if s.stats == nil {
				client.Emit("pushStats", []stats.SongStats{})
				return
			}
			top, err := s.stats.TopPlayed(25)
			if err != nil {
				log.Error().Err(err).Msg("Failed to query play statistics")
				return
			}
			if top == nil {
				top = []stats.SongStats{}
			}
			client.Emit("pushStats", top)
		})
	})
}

// pushState sends the now-playing state to a client.
func (s *Server) pushState(client *socket.Socket) {
	client.Emit("pushState", s.currentState())
}

func (s *Server) pushCredits(client *socket.Socket) {
	client.Emit("pushCredits", map[string]interface{}{
		"credits": s.selection.Credits(),
	})
}

func (s *Server) pushUpcoming(client *socket.Socket) {
	client.Emit("pushUpcoming", s.visibleUpcoming())
}

// BroadcastState sends the now-playing state to all connected clients.
func (s *Server) BroadcastState() {
	s.io.Emit("pushState", s.currentState())
}

// BroadcastCredits sends the credit balance to all connected clients.
func (s *Server) BroadcastCredits() {
	s.io.Emit("pushCredits", map[string]interface{}{
		"credits": s.selection.Credits(),
	})
}

// BroadcastUpcoming sends the upcoming-songs list to all connected clients.
func (s *Server) BroadcastUpcoming() {
	s.io.Emit("pushUpcoming", s.visibleUpcoming())
}

func (s *Server) visibleUpcoming() []string {
	up := s.selection.Upcoming()
	if len(up) > upcomingVisible {
		up = up[:upcomingVisible]
	}
	return up
}

// CurrentState returns the playback state map pushed to clients. It is also
// used by the REST fallback endpoint.
func (s *Server) CurrentState() map[string]interface{} {
	return s.currentState()
}

func (s *Server) currentState() map[string]interface{} {
	location, err := s.marker.Read()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read currently-playing marker")
	}
	return buildState(s.catalog, location)
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close closes the Socket.io server.
func (s *Server) Close() error {
	s.io.Close(nil)
	return nil
}
