// internal/handlers/pages.go
package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// StaticHandler serves the overlay and dashboard assets. The directory is
// configurable so deployments can swap in their own frontend build.
func StaticHandler() http.Handler {
	dir := os.Getenv("STATIC_DIR")
	if dir == "" {
		dir = "web/static"
	}
	return http.FileServer(http.Dir(dir))
}

// GamesHandler lists the instantiated games.
//
// GET /api/games
func GamesHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(srv.Logger, w, map[string]any{"games": srv.Store.Names()})
	}
}

// LeaderboardHandler returns the current standings for one game, for overlay
// bootstrap and external consumers that do not hold a socket open.
//
// GET /api/games/{name}/leaderboard
func LeaderboardHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/games/")
		name, ok := strings.CutSuffix(rest, "/leaderboard")
		name = strings.Trim(name, "/")
		if !ok || name == "" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		inst, found := srv.Store.Get(name)
		if !found {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		writeJSON(srv.Logger, w, map[string]any{"leaderboard": inst.LeaderboardData()})
	}
}

func writeJSON(logger *logrus.Logger, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("failed to write JSON response: %v", err)
	}
}
