// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ryojun/typestorm/internal/auth"
	"github.com/ryojun/typestorm/internal/database"
	"github.com/ryojun/typestorm/internal/game"
)

// ControlMessage is the structure for incoming WebSocket messages. Viewers
// normally send nothing; operator UIs send the control vocabulary.
type ControlMessage struct {
	Type  string `json:"type"`
	Mode  string `json:"mode,omitempty"`
	Delay int    `json:"delay,omitempty"` // seconds, for auto_play_start
	API   string `json:"api,omitempty"`   // image backend, for generate_monster
}

var errSlowSubscriber = errors.New("subscriber channel full, event dropped")

// wsClient is one connected overlay/viewer. It implements broadcast.Handle:
// Deliver enqueues onto out and the write pump serializes onto the socket,
// so events reach the client in publish order. A full buffer drops the event
// instead of blocking the hub.
type wsClient struct {
	id  uuid.UUID
	out chan any
}

func (c *wsClient) Deliver(event any) error {
	select {
	case c.out <- event:
		return nil
	default:
		return errSlowSubscriber
	}
}

// GameWSHandler upgrades the connection for a game instance, subscribes it to
// the instance's broadcast topic and reads control messages until the client
// goes away. Mutating control messages require an operator session token
// passed as the "token" query parameter.
func GameWSHandler(logger *logrus.Logger, srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/game/ws/"), "/")
		if name == "" {
			http.Error(w, "missing game name in path (/game/ws/{name})", http.StatusBadRequest)
			return
		}

		inst, ok := srv.Store.Get(name)
		if !ok {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		operator := auth.IsOperator(r.URL.Query().Get("token"))

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("websocket accept error for game %s: %v", name, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		logger.Infof("viewer connected to game %s from %s (operator: %v)", name, r.RemoteAddr, operator)

		client := &wsClient{id: uuid.New(), out: make(chan any, 32)}
		srv.Hub.Subscribe(name, client)
		defer srv.Hub.Unsubscribe(name, client)

		// Bootstrap the overlay with the current standings before any live
		// events arrive.
		_ = client.Deliver(game.Event{
			Type:    game.EventLeaderboardUpdate,
			Payload: game.LeaderboardPayload{Leaderboard: inst.LeaderboardData()},
		})

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go writePump(ctx, c, client.out, logger)

		readControlMessages(ctx, c, inst, srv, operator, logger)

		logger.Infof("viewer %s disconnected from game %s", client.id, name)
	}
}

// readControlMessages blocks on the socket, dispatching each control message
// until the connection closes or the context is canceled.
func readControlMessages(ctx context.Context, c *websocket.Conn, inst game.Instance, srv *Server, operator bool, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("websocket closed normally for game %s", inst.Name())
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("websocket read error for game %s: %v", inst.Name(), err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg ControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid JSON on game %s control socket: %v", inst.Name(), err)
			sendWsError(ctx, c, "Invalid JSON format.")
			continue
		}

		if msg.Type == "ping" {
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})
			continue
		}

		if !operator {
			sendWsError(ctx, c, "Operator token required for control commands.")
			continue
		}

		handleControlMessage(ctx, c, inst, srv, msg, logger)
	}
}

func handleControlMessage(ctx context.Context, c *websocket.Conn, inst game.Instance, srv *Server, msg ControlMessage, logger *logrus.Logger) {
	engine, _ := inst.(*game.Engine)
	fusion, _ := inst.(*game.FusionGame)

	switch msg.Type {
	case "start_round":
		if engine == nil {
			sendWsError(ctx, c, "This game has no rounds.")
			return
		}
		go func() {
			if err := engine.StartRound(context.Background()); errors.Is(err, game.ErrRoundActive) {
				logger.Debugf("game %s: start_round ignored, round already active", engine.Name())
			}
		}()

	case "set_game_mode":
		if engine == nil {
			sendWsError(ctx, c, "This game has no modes.")
			return
		}
		if err := engine.SetMode(game.Mode(msg.Mode)); err != nil {
			sendWsError(ctx, c, err.Error())
			return
		}
		persistSettings(engine, srv, logger)

	case "reset_leaderboard":
		if engine == nil {
			sendWsError(ctx, c, "This game has no leaderboard.")
			return
		}
		engine.ResetLeaderboard()

	case "auto_play_start":
		if engine == nil {
			sendWsError(ctx, c, "This game has no rounds.")
			return
		}
		delay := msg.Delay
		if delay <= 0 {
			delay = 15
		}
		srv.AutoPlay(engine).Start(time.Duration(delay) * time.Second)
		persistSettings(engine, srv, logger)

	case "auto_play_stop":
		if engine == nil {
			sendWsError(ctx, c, "This game has no rounds.")
			return
		}
		srv.AutoPlay(engine).Stop()
		persistSettings(engine, srv, logger)

	case "generate_monster":
		if fusion == nil {
			sendWsError(ctx, c, "This game has no generator.")
			return
		}
		go fusion.Generate(context.Background(), msg.API)

	default:
		sendWsError(ctx, c, "Unknown command type: "+msg.Type)
	}
}

// persistSettings stores the engine's operator-tunable state, when a
// database is configured.
func persistSettings(engine *game.Engine, srv *Server, logger *logrus.Logger) {
	if !database.Enabled() {
		return
	}
	start, min, dec := engine.SpeedUpPolicy()
	delay := 0
	ap := srv.AutoPlay(engine)
	if ap.Running() {
		delay = int(ap.Delay() / time.Second)
	}
	s := &database.GameSettings{
		GameName:         engine.Name(),
		Mode:             string(engine.Mode()),
		AutoPlayDelaySec: delay,
		SpeedUpStartSec:  start,
		SpeedUpMinSec:    min,
		SpeedUpDecSec:    dec,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := database.SaveSettings(ctx, s); err != nil {
		logger.Warnf("failed to persist settings for game %s: %v", engine.Name(), err)
	}
}

// writePump serializes queued events onto the socket one at a time.
func writePump(ctx context.Context, c *websocket.Conn, out <-chan any, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-out:
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Errorf("failed to marshal broadcast event: %v", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// sendWsMessage marshals a message and writes it with a timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = c.Write(writeCtx, websocket.MessageText, data)
}

// sendWsError sends a structured error frame to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
