package lobby

import (
	"sync"
	"testing"
)

func newTestLobby(max int, players ...string) *Lobby {
	l := &Lobby{ID: "l1", Name: "room", HostName: players[0], GameType: "Puissance4", MaxPlayers: max}
	l.players = append(l.players, players...)
	return l
}

func TestJoin_CheckOrder(t *testing.T) {
	// started beats full beats duplicate name
	l := newTestLobby(2, "alice", "bob")
	l.started = true
	if got := l.Join("alice"); got != JoinGameAlreadyStarted {
		t.Fatalf("started lobby: %v", got)
	}

	l = newTestLobby(2, "alice", "bob")
	if got := l.Join("alice"); got != JoinLobbyFull {
		t.Fatalf("full lobby with duplicate name: %v, want lobby_full", got)
	}

	l = newTestLobby(3, "alice", "bob")
	if got := l.Join("ALICE"); got != JoinNameAlreadyTaken {
		t.Fatalf("case-insensitive duplicate: %v", got)
	}

	if got := l.Join("carol"); got != JoinSuccess {
		t.Fatalf("join: %v", got)
	}
	if got := l.Players(); len(got) != 3 || got[2] != "carol" {
		t.Fatalf("roster %v", got)
	}
}

func TestJoin_ConcurrentNeverExceedsCapacity(t *testing.T) {
	const capacity = 4
	const contenders = 32

	l := newTestLobby(capacity, "host")

	var wg sync.WaitGroup
	results := make([]JoinResult, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.Join(string(rune('a'+i)) + "-player")
		}(i)
	}
	wg.Wait()

	joined := 0
	for _, r := range results {
		switch r {
		case JoinSuccess:
			joined++
		case JoinLobbyFull:
		default:
			t.Fatalf("unexpected result %v", r)
		}
	}

	if joined != capacity-1 {
		t.Fatalf("%d joins succeeded, want %d", joined, capacity-1)
	}
	if got := l.PlayerCount(); got != capacity {
		t.Fatalf("roster size %d, want %d", got, capacity)
	}
}

func TestVote_IdempotentAndComplete(t *testing.T) {
	l := newTestLobby(4, "alice", "bob", "carol")

	votes, total, all := l.Vote("bob")
	if all || total != 3 || len(votes) != 1 || votes[0] != "bob" {
		t.Fatalf("first vote: votes=%v total=%d all=%v", votes, total, all)
	}

	// re-voting changes nothing and never re-triggers completion
	votes, _, all = l.Vote("bob")
	if all || len(votes) != 1 {
		t.Fatalf("repeat vote: votes=%v all=%v", votes, all)
	}

	l.Vote("alice")
	votes, _, all = l.Vote("carol")
	if !all {
		t.Fatalf("final vote did not complete: votes=%v", votes)
	}

	// vote order is preserved for host selection
	want := []string{"bob", "alice", "carol"}
	got := l.Votes()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vote order %v, want %v", got, want)
		}
	}
}

func TestDecline_CountsRemaining(t *testing.T) {
	l := newTestLobby(4, "alice", "bob", "carol")

	if remaining := l.Decline("bob"); remaining != 2 {
		t.Fatalf("remaining %d, want 2", remaining)
	}
	// declining twice is not double-counted
	if remaining := l.Decline("bob"); remaining != 2 {
		t.Fatalf("repeat decline remaining %d, want 2", remaining)
	}
	if remaining := l.Decline("carol"); remaining != 1 {
		t.Fatalf("remaining %d, want 1", remaining)
	}
}

func TestResetForRematch(t *testing.T) {
	l := newTestLobby(2, "alice", "bob")
	l.Begin(SessionHandle{SessionID: l.ID, Family: "Puissance4"})
	l.SetGameOver()
	l.Vote("alice")
	l.Decline("bob")

	l.ResetForRematch()

	if l.Started() || l.GameOver() || l.Game() != nil {
		t.Fatalf("lobby not reset: started=%v over=%v", l.Started(), l.GameOver())
	}
	if len(l.Votes()) != 0 {
		t.Fatalf("votes survived reset: %v", l.Votes())
	}
	if got := l.Players(); len(got) != 2 {
		t.Fatalf("roster lost on reset: %v", got)
	}
}

func TestBegin_MakesStartedAndGameVisible(t *testing.T) {
	l := newTestLobby(2, "alice", "bob")
	l.Begin(SessionHandle{SessionID: l.ID, Family: "Morpion"})

	if !l.Started() {
		t.Fatal("lobby not started after Begin")
	}
	h, ok := l.Game().(SessionHandle)
	if !ok || h.SessionID != l.ID || h.Family != "Morpion" {
		t.Fatalf("game state %+v", l.Game())
	}
}
