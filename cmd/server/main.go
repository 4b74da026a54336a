// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/ryojun/typestorm/internal/auth"
	"github.com/ryojun/typestorm/internal/broadcast"
	"github.com/ryojun/typestorm/internal/cache"
	"github.com/ryojun/typestorm/internal/chat"
	"github.com/ryojun/typestorm/internal/database"
	"github.com/ryojun/typestorm/internal/game"
	"github.com/ryojun/typestorm/internal/handlers"
	"github.com/ryojun/typestorm/internal/middleware"
)

const (
	typingGameName = "typing_challenge"
	fusionGameName = "monster_fusion"
)

func main() {
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	auth.Init()
	if pw := os.Getenv("OPERATOR_PASSWORD"); pw == "" {
		logger.Warn("OPERATOR_PASSWORD not set; operator login disabled")
	} else if err := auth.SetOperatorPassword(pw); err != nil {
		logger.Fatalf("failed to set operator password: %v", err)
	}

	ctx := context.Background()

	if os.Getenv("PG_HOST") != "" {
		if err := database.Connect(ctx); err != nil {
			logger.Fatalf("failed to connect to database: %v", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			logger.Fatalf("failed to ensure database schema: %v", err)
		}
		logger.Info("database connected, settings will persist")
	} else {
		logger.Info("PG_HOST not set, running without settings persistence")
	}

	if os.Getenv("REDIS_ADDR") != "" {
		if err := cache.ConnectRedis(); err != nil {
			logger.Warnf("redis unavailable, running without leaderboard mirror: %v", err)
		}
	}

	hub := broadcast.NewHub(logger)
	store := game.NewStore()

	store.RegisterFactory(typingGameName, func(name string) game.Instance {
		e := game.NewEngine(name, hub, logger)
		applyStoredSettings(ctx, e, logger)
		return e
	})
	store.RegisterFactory(fusionGameName, func(name string) game.Instance {
		return game.NewFusionGame(name, hub, logger, nil)
	})

	srv := handlers.NewServer(hub, store, logger)

	// Instantiate both games up front so the comment router and the Redis
	// mirror see them before the first viewer connects.
	router := game.NewCommentRouter()
	for _, name := range []string{typingGameName, fusionGameName} {
		inst, _ := store.Get(name)
		router.Register(inst)
		if cache.Rdb != nil {
			hub.Subscribe(name, cache.NewMirror(name, logger))
		}
	}

	if url := os.Getenv("CHAT_FEED_URL"); url != "" {
		feed := chat.NewClient(url, logger, router.Route, nil)
		go func() {
			if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("chat feed terminated: %v", err)
			}
		}()
	} else {
		logger.Warn("CHAT_FEED_URL not set, no live comments will arrive")
	}

	resumeAutoPlay(ctx, srv, store, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", handlers.LoginHandler(srv))
	mux.HandleFunc("/game/ws/", handlers.GameWSHandler(logger, srv))
	mux.HandleFunc("/api/games", handlers.GamesHandler(srv))
	mux.HandleFunc("/api/games/", handlers.LeaderboardHandler(srv))
	mux.Handle("/static/", http.StripPrefix("/static/", handlers.StaticHandler()))
	mux.Handle("/", handlers.StaticHandler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf(":%s", port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatalf("failed to listen on %s: %v", addr, err)
	}

	// No Read/WriteTimeout: the game sockets are long-lived and coder/websocket
	// takes over the connection after the upgrade.
	server := &http.Server{
		Handler:           middleware.LogMiddleware(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("server listening on %s", addr)
		errc <- server.Serve(listener)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		logger.Errorf("server error: %v", err)
	case sig := <-sigs:
		logger.Infof("received signal %s, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
}

// applyStoredSettings restores the persisted mode and timing policy onto a
// fresh engine. Missing rows and load errors leave the defaults in place.
func applyStoredSettings(ctx context.Context, e *game.Engine, logger *logrus.Logger) {
	if !database.Enabled() {
		return
	}
	s, err := database.LoadSettings(ctx, e.Name())
	if errors.Is(err, database.ErrNoSettings) {
		return
	}
	if err != nil {
		logger.Warnf("failed to load settings for game %s: %v", e.Name(), err)
		return
	}
	if err := e.SetMode(game.Mode(s.Mode)); err != nil {
		logger.Warnf("stored mode for game %s is invalid: %v", e.Name(), err)
	}
	e.ConfigureSpeedUp(s.SpeedUpStartSec, s.SpeedUpMinSec, s.SpeedUpDecSec)
}

// resumeAutoPlay restarts autoplay loops that were running when the process
// last saved settings.
func resumeAutoPlay(ctx context.Context, srv *handlers.Server, store *game.Store, logger *logrus.Logger) {
	if !database.Enabled() {
		return
	}
	inst, ok := store.Get(typingGameName)
	if !ok {
		return
	}
	engine, ok := inst.(*game.Engine)
	if !ok {
		return
	}
	s, err := database.LoadSettings(ctx, engine.Name())
	if err != nil || s.AutoPlayDelaySec <= 0 {
		return
	}
	logger.Infof("resuming autoplay for game %s with %ds delay", engine.Name(), s.AutoPlayDelaySec)
	srv.AutoPlay(engine).Start(time.Duration(s.AutoPlayDelaySec) * time.Second)
}
