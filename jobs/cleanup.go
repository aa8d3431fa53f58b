package jobs

import (
	"log"
	"time"

	"github.com/gamehall/backend/lobby"
)

// StartLobbySweep starts a periodic job that drops finished lobbies
// nobody returned to. Runs once on startup, then on every tick.
func StartLobbySweep(lobbies *lobby.Registry, interval, maxAge time.Duration) {
	go runSweep(lobbies, maxAge)

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			runSweep(lobbies, maxAge)
		}
	}()

	log.Printf("[CLEANUP] Lobby sweep started (every %v, max age %v)", interval, maxAge)
}

func runSweep(lobbies *lobby.Registry, maxAge time.Duration) {
	count := lobbies.SweepFinished(maxAge)
	if count > 0 {
		log.Printf("[CLEANUP] Swept %d stale lobbies", count)
	}
}
