package hubs

import (
	"sync"
	"testing"

	"github.com/gamehall/backend/game"
	"github.com/gamehall/backend/game/connectfour"
	"github.com/gamehall/backend/game/gridgame"
	"github.com/gamehall/backend/lobby"
	"github.com/gamehall/backend/models"
	"github.com/gamehall/backend/server"
)

// fakeBroadcast records every send so tests can assert on the emitted
// protocol without a real transport.
type fakeBroadcast struct {
	mu     sync.Mutex
	sends  []sentEvent
	groups map[string]map[string]bool
}

type sentEvent struct {
	Target string // connID or groupID
	Group  bool
	Event  string
	Data   any
}

func newFakeBroadcast() *fakeBroadcast {
	return &fakeBroadcast{groups: make(map[string]map[string]bool)}
}

func (f *fakeBroadcast) AddToGroup(connID, groupID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groups[groupID] == nil {
		f.groups[groupID] = make(map[string]bool)
	}
	f.groups[groupID][connID] = true
}

func (f *fakeBroadcast) RemoveFromGroup(connID, groupID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.groups[groupID], connID)
}

func (f *fakeBroadcast) SendToConn(connID, event string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentEvent{Target: connID, Event: event, Data: data})
}

func (f *fakeBroadcast) SendToGroup(groupID, event string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentEvent{Target: groupID, Group: true, Event: event, Data: data})
}

func (f *fakeBroadcast) named(event string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, s := range f.sends {
		if s.Event == event {
			out = append(out, s)
		}
	}
	return out
}

type recordedEnd struct {
	LobbyID string
	Winner  string
	IsTie   bool
}

type fakeRecorder struct {
	mu      sync.Mutex
	starts  []string // lobby ids
	actions []string // action types
	ends    []recordedEnd
}

func (f *fakeRecorder) StartGame(lobbyID, lobbyName, gameType string, players []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, lobbyID)
}

func (f *fakeRecorder) LogAction(lobbyID, gameType, playerName, actionType, details string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, actionType)
}

func (f *fakeRecorder) EndGame(lobbyID, winner string, isTie bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ends = append(f.ends, recordedEnd{LobbyID: lobbyID, Winner: winner, IsTie: isTie})
}

func newTestHubs() (*Hubs, *fakeBroadcast, *fakeRecorder) {
	b := newFakeBroadcast()
	r := &fakeRecorder{}
	connFour := server.NewManager(models.GameTypePuissance4, connectfour.Markers, func() game.Engine {
		return connectfour.New()
	})
	grid := server.NewManager(models.GameTypeMorpion, gridgame.Markers, func() game.Engine {
		return gridgame.New()
	})
	h := New(lobby.NewRegistry(), connFour, grid, b, r, 0, 0)
	return h, b, r
}

func TestStartLobbyGame_Race(t *testing.T) {
	h, b, r := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeSpeedTyping, 10)
	h.Lobbies.JoinLobby(l.ID, "bob")

	h.StartLobbyGame("c1", l.ID)

	if !l.Started() {
		t.Fatal("lobby not started")
	}
	race, ok := l.Game().(lobby.RaceState)
	if !ok {
		t.Fatalf("game state %T, want race", l.Game())
	}
	if race.Text == "" || !race.HasPlayer("bob") {
		t.Fatalf("race not initialized: text=%q players=%v", race.Text, race.Players)
	}

	started := b.named(models.EvtGameStarted)
	if len(started) != 1 || !started[0].Group || started[0].Target != l.ID {
		t.Fatalf("start broadcast %v", started)
	}
	if len(r.starts) != 1 || r.starts[0] != l.ID {
		t.Fatalf("recorder starts %v", r.starts)
	}
}

func TestStartLobbyGame_BoardNeedsTwoPlayers(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypePuissance4, 2)

	h.StartLobbyGame("c1", l.ID)

	if l.Started() {
		t.Fatal("solo board lobby started")
	}
	if errs := b.named(models.EvtError); len(errs) != 1 || errs[0].Target != "c1" {
		t.Fatalf("error events %v", errs)
	}
}

func TestStartLobbyGame_BoardMarksLobby(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeMorpion, 2)
	h.Lobbies.JoinLobby(l.ID, "bob")

	h.StartLobbyGame("c1", l.ID)

	handle, ok := l.Game().(lobby.SessionHandle)
	if !ok || handle.SessionID != l.ID || handle.Family != models.GameTypeMorpion {
		t.Fatalf("game state %+v", l.Game())
	}
	if len(b.named(models.EvtGameStarted)) != 1 {
		t.Fatal("no start broadcast")
	}
}

func TestRequestRematch_AllVotesCreateNewLobby(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeMorpion, 2)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.Lobbies.StartGame(l.ID)
	l.SetGameOver()

	// the finished session is still keyed by the old lobby id
	p1 := h.Grid.CreatePlayer("alice", "c1")
	p2 := h.Grid.CreatePlayer("bob", "c2")
	h.Grid.CreateSession(l.ID, p1, p2)

	h.RequestRematch(l.ID, "bob")
	if got := b.named(models.EvtRematchVoteReceived); len(got) != 1 {
		t.Fatalf("vote broadcasts %v", got)
	}
	if _, ok := h.Lobbies.GetLobby(l.ID); !ok {
		t.Fatal("lobby removed after partial vote")
	}

	h.RequestRematch(l.ID, "alice")

	// old lobby and its session are gone
	if _, ok := h.Lobbies.GetLobby(l.ID); ok {
		t.Fatal("old lobby survived the rematch")
	}
	if _, ok := h.Grid.SessionByID(l.ID); ok {
		t.Fatal("old session survived the rematch")
	}

	// the redirect names a brand-new lobby hosted by the first voter
	redirects := b.named(models.EvtGoToRoom)
	if len(redirects) != 1 {
		t.Fatalf("redirects %v", redirects)
	}
	newID, _ := redirects[0].Data.(string)
	if newID == l.ID || newID == "" {
		t.Fatalf("redirect id %q", newID)
	}
	fresh, ok := h.Lobbies.GetLobby(newID)
	if !ok {
		t.Fatal("new lobby missing")
	}
	if fresh.HostName != "bob" {
		t.Fatalf("new host %q, want the first yes-voter", fresh.HostName)
	}
	players := fresh.Players()
	if len(players) != 2 || players[0] != "bob" || players[1] != "alice" {
		t.Fatalf("new roster %v", players)
	}
	if fresh.Started() {
		t.Fatal("new lobby started prematurely")
	}
}

func TestRequestRematch_DoubleVoteDoesNotComplete(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeMorpion, 2)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.Lobbies.StartGame(l.ID)

	h.RequestRematch(l.ID, "alice")
	h.RequestRematch(l.ID, "alice")

	if _, ok := h.Lobbies.GetLobby(l.ID); !ok {
		t.Fatal("repeat votes from one player triggered the rematch")
	}
	if len(b.named(models.EvtGoToRoom)) != 0 {
		t.Fatal("redirect sent without a full vote")
	}
}

func TestDeclineRematch_BelowMinimumReturnsToLobby(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypePuissance4, 2)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.Lobbies.StartGame(l.ID)
	l.SetGameOver()

	p1 := h.ConnFour.CreatePlayer("alice", "c1")
	p2 := h.ConnFour.CreatePlayer("bob", "c2")
	h.ConnFour.CreateSession(l.ID, p1, p2)

	h.DeclineRematch(l.ID, "bob")

	if got := b.named(models.EvtRematchDeclined); len(got) != 1 {
		t.Fatalf("decline broadcasts %v", got)
	}
	returns := b.named(models.EvtReturnToLobby)
	if len(returns) != 1 {
		t.Fatalf("return broadcasts %v", returns)
	}
	if data, _ := returns[0].Data.(map[string]any); data["reason"] != "not_enough_players" {
		t.Fatalf("return reason %v", returns[0].Data)
	}
	if _, ok := h.ConnFour.SessionByID(l.ID); ok {
		t.Fatal("session survived the decline")
	}
	// the lobby itself stays; players may start something else
	if _, ok := h.Lobbies.GetLobby(l.ID); !ok {
		t.Fatal("lobby removed on decline")
	}
}

func TestDeclineRematch_RaceToleratesDeclines(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeSpeedTyping, 10)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.Lobbies.StartGame(l.ID)

	// one racer declining still leaves enough players for a solo race
	h.DeclineRematch(l.ID, "bob")
	if len(b.named(models.EvtReturnToLobby)) != 0 {
		t.Fatal("race lobby sent back with players remaining")
	}
}

func TestReturnAllToLobby_ResetsInPlace(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeMorpion, 2)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.StartLobbyGame("c1", l.ID)
	l.SetGameOver()

	h.ReturnAllToLobby(l.ID)

	if l.Started() || l.GameOver() || l.Game() != nil {
		t.Fatal("lobby not reset")
	}
	if got := l.Players(); len(got) != 2 {
		t.Fatalf("roster %v", got)
	}
	if len(b.named(models.EvtReturnToLobby)) != 1 {
		t.Fatal("no return broadcast")
	}
}

func TestUpdateProgress(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeSpeedTyping, 10)
	h.StartLobbyGame("c1", l.ID)

	h.UpdateProgress("c1", l.ID, "alice", 42)

	got := b.named(models.EvtPlayerProgress)
	if len(got) != 1 || !got[0].Group {
		t.Fatalf("progress broadcasts %v", got)
	}
	data := got[0].Data.(map[string]any)
	if data["playerName"] != "alice" || data["progress"] != 42 {
		t.Fatalf("progress payload %v", data)
	}

	race := l.Game().(lobby.RaceState)
	if race.ProgressOf("alice") != 42 {
		t.Fatalf("stored progress %d", race.ProgressOf("alice"))
	}

	// non-members are rejected
	h.UpdateProgress("c2", l.ID, "mallory", 10)
	if errs := b.named(models.EvtError); len(errs) != 1 || errs[0].Target != "c2" {
		t.Fatalf("error events %v", errs)
	}
}

func TestUpdateProgress_RejectsBoardLobby(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeMorpion, 2)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.StartLobbyGame("c1", l.ID)

	h.UpdateProgress("c1", l.ID, "alice", 50)

	if len(b.named(models.EvtPlayerProgress)) != 0 {
		t.Fatal("progress accepted on a board lobby")
	}
	if len(b.named(models.EvtError)) != 1 {
		t.Fatal("no error reported")
	}
}

func TestFinishRace(t *testing.T) {
	h, b, r := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeSpeedTyping, 10)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.StartLobbyGame("c1", l.ID)
	h.UpdateProgress("c1", l.ID, "alice", 70)
	h.UpdateProgress("c2", l.ID, "bob", 90)

	h.FinishRace("c1", l.ID)

	if !l.GameOver() {
		t.Fatal("lobby not sealed")
	}
	ends := b.named(models.EvtRaceEnd)
	if len(ends) != 1 {
		t.Fatalf("race end broadcasts %v", ends)
	}
	data := ends[0].Data.(map[string]any)
	if data["winner"] != "bob" {
		t.Fatalf("winner %v", data["winner"])
	}
	if len(r.ends) != 1 || r.ends[0].Winner != "bob" {
		t.Fatalf("recorded ends %v", r.ends)
	}
}

func TestHandleDisconnect_SeatedBoardPlayer(t *testing.T) {
	h, b, r := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeMorpion, 2)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.Lobbies.StartGame(l.ID)

	p1 := h.Grid.CreatePlayer("alice", "c1")
	p2 := h.Grid.CreatePlayer("bob", "c2")
	h.Grid.CreateSession(l.ID, p1, p2)

	h.HandleDisconnect("c1")

	left := b.named(models.EvtGridOpponentLeft)
	if len(left) != 1 || left[0].Target != l.ID {
		t.Fatalf("opponent-left broadcasts %v", left)
	}
	if len(r.ends) != 1 || r.ends[0].Winner != "bob" {
		t.Fatalf("recorded ends %v, want a win for the remaining player", r.ends)
	}
	if _, ok := h.Grid.SessionByID(l.ID); ok {
		t.Fatal("session survived the disconnect")
	}
	if _, ok := h.Lobbies.GetLobby(l.ID); ok {
		t.Fatal("lobby survived the disconnect")
	}
}

func TestHandleDisconnect_RacerInRunningLobby(t *testing.T) {
	h, b, r := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeSpeedTyping, 10)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.JoinLobbyGroup("c1", l.ID, "alice")
	h.StartLobbyGame("c1", l.ID)

	h.HandleDisconnect("c1")

	if got := b.named(models.EvtPlayerLeft); len(got) != 1 {
		t.Fatalf("player-left broadcasts %v", got)
	}
	if _, ok := h.Lobbies.GetLobby(l.ID); ok {
		t.Fatal("abandoned race lobby survived")
	}
	if len(r.ends) != 1 || r.ends[0].Winner != "" {
		t.Fatalf("recorded ends %v", r.ends)
	}
}

func TestHandleDisconnect_IdleConnectionIsQuiet(t *testing.T) {
	h, b, _ := newTestHubs()
	h.JoinLobbyGroup("c1", "nope", "alice")

	h.HandleDisconnect("c1")

	if len(b.named(models.EvtPlayerLeft)) != 0 {
		t.Fatal("broadcast for a connection with nothing running")
	}
}

func TestHandleDisconnect_FinishedGameKeepsLobby(t *testing.T) {
	h, b, r := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypePuissance4, 2)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.Lobbies.StartGame(l.ID)

	p1 := h.ConnFour.CreatePlayer("alice", "c1")
	p2 := h.ConnFour.CreatePlayer("bob", "c2")
	sess := h.ConnFour.CreateSession(l.ID, p1, p2)

	// alice takes column 0 four times for the vertical win
	for _, mv := range []struct {
		p   *server.Player
		col int
	}{{p1, 0}, {p2, 1}, {p1, 0}, {p2, 1}, {p1, 0}, {p2, 1}, {p1, 0}} {
		if _, err := sess.ApplyMove(mv.p, game.Move{Col: mv.col}); err != nil {
			t.Fatalf("move %v: %v", mv, err)
		}
	}
	if !sess.IsFinished() {
		t.Fatal("game not finished after the winning move")
	}
	l.SetGameOver()

	// a player leaving after the outcome must not tear anything down:
	// the opponent may still be voting on a rematch
	h.HandleDisconnect("c2")

	if _, ok := h.Lobbies.GetLobby(l.ID); !ok {
		t.Fatal("lobby removed while its rematch protocol was live")
	}
	if _, ok := h.ConnFour.SessionByID(l.ID); !ok {
		t.Fatal("finished session dropped early")
	}
	if len(b.named(models.EvtOpponentLeft)) != 0 {
		t.Fatal("opponent-left broadcast for a game that was already over")
	}
	if len(r.ends) != 0 {
		t.Fatalf("recorded ends %v, want none after the real outcome", r.ends)
	}

	h.RequestRematch(l.ID, "alice")
	if got := b.named(models.EvtRematchVoteReceived); len(got) != 1 {
		t.Fatalf("vote broadcasts %v, want the remaining player's vote to land", got)
	}
}

func TestHandleDisconnect_LingeringQuickMatchSession(t *testing.T) {
	h, b, _ := newTestHubs()

	// quick-match sessions have no lobby behind their id
	p1 := h.ConnFour.CreatePlayer("alice", "c1")
	p2 := h.ConnFour.CreatePlayer("bob", "c2")
	sess := h.ConnFour.CreateSession("", p1, p2)

	for _, mv := range []struct {
		p   *server.Player
		col int
	}{{p1, 0}, {p2, 1}, {p1, 0}, {p2, 1}, {p1, 0}, {p2, 1}, {p1, 0}} {
		if _, err := sess.ApplyMove(mv.p, game.Move{Col: mv.col}); err != nil {
			t.Fatalf("move %v: %v", mv, err)
		}
	}

	h.HandleDisconnect("c2")

	if _, ok := h.ConnFour.SessionByID(sess.ID); ok {
		t.Fatal("quick-match session kept after the loser left")
	}
	if len(b.named(models.EvtOpponentLeft)) != 0 {
		t.Fatal("opponent-left broadcast for a game that was already over")
	}
}

func TestUpdateProgress_ClampsOutOfRangeValues(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeSpeedTyping, 10)
	h.StartLobbyGame("c1", l.ID)

	h.UpdateProgress("c1", l.ID, "alice", 250)

	got := b.named(models.EvtPlayerProgress)
	if len(got) != 1 {
		t.Fatalf("progress broadcasts %v", got)
	}
	data := got[0].Data.(map[string]any)
	if data["progress"] != 100 {
		t.Fatalf("broadcast progress %v, want the clamped value", data["progress"])
	}

	race := l.Game().(lobby.RaceState)
	if race.ProgressOf("alice") != 100 {
		t.Fatalf("stored progress %d", race.ProgressOf("alice"))
	}

	h.UpdateProgress("c1", l.ID, "alice", -5)
	got = b.named(models.EvtPlayerProgress)
	if len(got) != 2 {
		t.Fatalf("progress broadcasts %v", got)
	}
	if data := got[1].Data.(map[string]any); data["progress"] != 0 {
		t.Fatalf("broadcast progress %v, want 0", data["progress"])
	}
}

func TestStartLobbyGame_SecondStartIsRejected(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeSpeedTyping, 10)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.StartLobbyGame("c1", l.ID)
	h.UpdateProgress("c1", l.ID, "alice", 50)

	h.StartLobbyGame("c2", l.ID)

	if errs := b.named(models.EvtError); len(errs) != 1 || errs[0].Target != "c2" {
		t.Fatalf("error events %v", errs)
	}
	if len(b.named(models.EvtGameStarted)) != 1 {
		t.Fatal("duplicate start broadcast")
	}
	race := l.Game().(lobby.RaceState)
	if race.ProgressOf("alice") != 50 {
		t.Fatalf("progress %d, a repeat start wiped the running race", race.ProgressOf("alice"))
	}
}

func TestFindGame(t *testing.T) {
	h, b, r := newTestHubs()

	h.FindGame("c1", "alice")
	if got := b.named(models.EvtWaitingForOpponent); len(got) != 1 || got[0].Target != "c1" {
		t.Fatalf("waiting events %v", got)
	}

	// name collisions are case-insensitive
	h.FindGame("c2", "ALICE")
	if got := b.named(models.EvtUsernameTaken); len(got) != 1 || got[0].Target != "c2" {
		t.Fatalf("username-taken events %v", got)
	}

	h.FindGame("c3", "bob")
	starts := b.named(models.EvtGameStart)
	if len(starts) != 1 || !starts[0].Group {
		t.Fatalf("game-start broadcasts %v", starts)
	}
	if len(r.starts) != 1 {
		t.Fatalf("recorder starts %v", r.starts)
	}
	sess, _, _, ok := h.ConnFour.SessionForConn("c1")
	if !ok || sess.Player1.Name != "alice" || sess.Player2.Name != "bob" {
		t.Fatalf("session not seated: %v %v", sess, ok)
	}
}

func TestJoinLobbyGroup_ResyncsRunningRace(t *testing.T) {
	h, b, _ := newTestHubs()
	l := h.Lobbies.CreateLobby("room", "alice", models.GameTypeSpeedTyping, 10)
	h.Lobbies.JoinLobby(l.ID, "bob")
	h.StartLobbyGame("c1", l.ID)
	h.UpdateProgress("c1", l.ID, "alice", 30)

	h.JoinLobbyGroup("c9", l.ID, "bob")

	var resynced bool
	for _, s := range b.named(models.EvtGameStarted) {
		if !s.Group && s.Target == "c9" {
			resynced = true
		}
	}
	if !resynced {
		t.Fatal("late joiner did not get the running-race snapshot")
	}

	var gotProgress bool
	for _, s := range b.named(models.EvtPlayerProgress) {
		if !s.Group && s.Target == "c9" {
			gotProgress = true
		}
	}
	if !gotProgress {
		t.Fatal("late joiner did not get current progress")
	}
}
