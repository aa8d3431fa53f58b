// Package typerace implements the timed-progress race game. There is no
// board: each registered player reports a completion percentage and the
// podium is ranked when the race ends.
package typerace

import (
	"fmt"
	"sort"
)

// MinPlayers is the minimum participant count to start a race. A race
// against the clock alone is allowed.
const MinPlayers = 1

type Game struct {
	Host     string
	Players  []string // join order, used for stable tie-breaks
	Progress map[string]int
	Started  bool
	Text     string
}

type Standing struct {
	Player   string `json:"player"`
	Progress int    `json:"progress"`
}

func New(host string) *Game {
	return &Game{
		Host:     host,
		Progress: make(map[string]int),
	}
}

// AddPlayer registers a participant. Re-adding is a no-op.
func (g *Game) AddPlayer(name string) {
	for _, p := range g.Players {
		if p == name {
			return
		}
	}
	g.Players = append(g.Players, name)
}

func (g *Game) HasPlayer(name string) bool {
	for _, p := range g.Players {
		if p == name {
			return true
		}
	}
	return false
}

// Start validates preconditions, marks the race as running and picks the
// shared prompt text. The error message is meant to be shown to the
// caller as-is.
func (g *Game) Start() error {
	if len(g.Players) < MinPlayers {
		return fmt.Errorf("at least %d player is required to start", MinPlayers)
	}

	g.Started = true
	g.Text = pickPrompt()
	return nil
}

// SetProgress stores the latest percentage for a player, clamped to
// [0, 100], and returns the value actually stored. Values are
// last-write-wins: a client may legitimately resend a lower value
// after a correction.
func (g *Game) SetProgress(name string, pct int) int {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	g.Progress[name] = pct
	return pct
}

func (g *Game) ProgressOf(name string) int {
	return g.Progress[name]
}

// Finalize ranks all registered players by descending progress. Ties keep
// join order. The winner is the top entry, or "" when nobody registered.
func (g *Game) Finalize() (podium []Standing, winner string) {
	podium = make([]Standing, 0, len(g.Players))
	for _, p := range g.Players {
		podium = append(podium, Standing{Player: p, Progress: g.Progress[p]})
	}

	sort.SliceStable(podium, func(i, j int) bool {
		return podium[i].Progress > podium[j].Progress
	})

	if len(podium) > 0 {
		winner = podium[0].Player
	}
	return podium, winner
}
