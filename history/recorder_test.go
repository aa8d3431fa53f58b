package history

import (
	"testing"
	"time"
)

func TestStartLogEnd(t *testing.T) {
	s := NewService()
	s.StartGame("l1", "room", "Puissance4", []string{"alice", "bob"})
	s.LogAction("l1", "Puissance4", "alice", "PiecePlaced", "Column 3", map[string]any{"column": 3})
	s.EndGame("l1", "alice", false)

	h, ok := s.History("l1")
	if !ok {
		t.Fatal("history missing")
	}
	if h.Winner == nil || *h.Winner != "alice" || h.IsTie {
		t.Fatalf("outcome %+v", h)
	}
	if h.EndedAt == nil {
		t.Fatal("end time not set")
	}

	// GAME_START, PiecePlaced, GAME_END
	if len(h.Actions) != 3 {
		t.Fatalf("action count %d: %+v", len(h.Actions), h.Actions)
	}
	if h.Actions[1].Payload == nil || *h.Actions[1].Payload != `{"column":3}` {
		t.Fatalf("payload %v", h.Actions[1].Payload)
	}
	if h.Actions[0].PlayerName != SystemActor {
		t.Fatalf("start action actor %q", h.Actions[0].PlayerName)
	}
}

func TestEndGame_TieAndNoResult(t *testing.T) {
	s := NewService()
	s.StartGame("l1", "room", "Morpion", []string{"alice", "bob"})
	s.EndGame("l1", "", true)

	h, _ := s.History("l1")
	if !h.IsTie || h.Winner != nil {
		t.Fatalf("tie outcome %+v", h)
	}

	s.StartGame("l2", "room", "Morpion", []string{"alice", "bob"})
	s.EndGame("l2", "", false)
	h, _ = s.History("l2")
	if h.IsTie || h.Winner != nil || h.EndedAt == nil {
		t.Fatalf("abandoned outcome %+v", h)
	}

	// ending an unknown lobby is a no-op
	s.EndGame("l999", "alice", false)
	if _, ok := s.History("l999"); ok {
		t.Fatal("phantom history created by EndGame")
	}
}

func TestLogAction_CreatesMissingHistory(t *testing.T) {
	s := NewService()
	s.LogAction("late", "SpeedTyping", "alice", "Progress", "Progress: 50%", nil)

	h, ok := s.History("late")
	if !ok || len(h.Actions) != 1 {
		t.Fatalf("late history %+v ok=%v", h, ok)
	}
}

func TestStartGame_ReplacesPreviousHistory(t *testing.T) {
	s := NewService()
	s.StartGame("l1", "room", "Morpion", []string{"alice", "bob"})
	s.EndGame("l1", "alice", false)

	s.StartGame("l1", "room", "Morpion", []string{"alice", "bob"})
	h, _ := s.History("l1")
	if h.EndedAt != nil || h.Winner != nil {
		t.Fatalf("stale outcome survived restart: %+v", h)
	}
	if len(h.Actions) != 1 {
		t.Fatalf("fresh history has %d actions", len(h.Actions))
	}
}

func TestAllHistories_NewestFirst(t *testing.T) {
	s := NewService()
	s.StartGame("l1", "first", "Morpion", nil)
	time.Sleep(2 * time.Millisecond)
	s.StartGame("l2", "second", "Morpion", nil)

	all := s.AllHistories()
	if len(all) != 2 {
		t.Fatalf("history count %d", len(all))
	}
	if all[0].LobbyID != "l2" || all[1].LobbyID != "l1" {
		t.Fatalf("order %s, %s", all[0].LobbyID, all[1].LobbyID)
	}
}
