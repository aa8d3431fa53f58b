package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gamehall/backend/config"
	"github.com/gamehall/backend/db"
	"github.com/gamehall/backend/game"
	"github.com/gamehall/backend/game/connectfour"
	"github.com/gamehall/backend/game/gridgame"
	"github.com/gamehall/backend/handlers"
	"github.com/gamehall/backend/history"
	"github.com/gamehall/backend/hubs"
	"github.com/gamehall/backend/jobs"
	"github.com/gamehall/backend/lobby"
	"github.com/gamehall/backend/middlewares"
	"github.com/gamehall/backend/models"
	"github.com/gamehall/backend/server"
	"github.com/gamehall/backend/websocket"
)

func main() {
	log.Println("Starting game hall backend server...")

	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.LoadConfig()
	cfg := config.AppConfig

	err = db.InitDB(cfg.DBUri)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseDB()

	if err := db.InitRedis(cfg.RedisAddr, cfg.RedisPassword); err != nil {
		log.Printf("Redis unavailable, snapshots disabled: %v", err)
	}
	defer db.CloseRedis()

	hub := websocket.NewHub()
	lobbies := lobby.NewRegistry()
	recorder := history.NewService()

	connFour := server.NewManager(models.GameTypePuissance4, connectfour.Markers, func() game.Engine {
		return connectfour.New()
	})
	grid := server.NewManager(models.GameTypeMorpion, gridgame.Markers, func() game.Engine {
		return gridgame.New()
	})

	gameHubs := hubs.New(lobbies, connFour, grid, hub, recorder,
		cfg.RematchRedirectDelay, cfg.SessionLingerDelay)

	jobs.StartLobbySweep(lobbies, cfg.LobbySweepInterval, cfg.LobbySweepAge)

	router := handlers.New(lobbies, recorder).NewRouter()

	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.CreateUpgrader()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("Error during connection upgrade:", err)
			return
		}

		websocket.HandleConnection(conn, hub, gameHubs)
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middlewares.EnableCORS(router),
	}

	log.Printf("Server is listening on port %s\n", cfg.Port)

	go func() {
		err = httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Server is shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
