// internal/handlers/server.go
package handlers

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ryojun/typestorm/internal/broadcast"
	"github.com/ryojun/typestorm/internal/game"
)

// Server bundles the broadcast hub, the instance store and the per-engine
// autoplay controllers for the HTTP/WebSocket layer.
type Server struct {
	Hub    *broadcast.Hub
	Store  *game.Store
	Logger *logrus.Logger

	mu       sync.Mutex
	autoplay map[string]*game.AutoPlay
}

func NewServer(hub *broadcast.Hub, store *game.Store, logger *logrus.Logger) *Server {
	return &Server{
		Hub:      hub,
		Store:    store,
		Logger:   logger,
		autoplay: make(map[string]*game.AutoPlay),
	}
}

// AutoPlay returns the autoplay controller for engine, creating it on first
// use. One controller exists per engine for the life of the process.
func (s *Server) AutoPlay(engine *game.Engine) *game.AutoPlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.autoplay[engine.Name()]
	if !ok {
		ap = game.NewAutoPlay(engine, s.Logger)
		s.autoplay[engine.Name()] = ap
	}
	return ap
}
