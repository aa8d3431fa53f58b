package models

// Frame is the envelope of every server-to-client websocket message.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// ClientMessage is the single inbound websocket message shape; Type
// selects the handler and the other fields are read as that handler
// needs them.
type ClientMessage struct {
	Type     string `json:"type"`
	Ticket   string `json:"ticket,omitempty"`
	Username string `json:"username,omitempty"`
	Column   int    `json:"column,omitempty"`
	Row      int    `json:"row,omitempty"`
	Col      int    `json:"col,omitempty"`
	Progress int    `json:"progress,omitempty"`
}

// Inbound message types.
const (
	// quick-match Four-in-a-Row
	MsgFindGame   = "find_game"
	MsgPlacePiece = "place_piece"

	// lobby-keyed Grid-3
	MsgJoinGame  = "join_game"
	MsgPlaceMark = "place_mark"

	// lobby room and rematch protocol
	MsgJoinLobbyGroup  = "join_lobby_group"
	MsgLeaveLobbyGroup = "leave_lobby_group"
	MsgStartGame       = "start_game"
	MsgRequestRematch  = "request_rematch"
	MsgDeclineRematch  = "decline_rematch"
	MsgReturnToLobby   = "return_to_lobby"

	// race game
	MsgUpdateProgress = "update_progress"
	MsgFinishRace     = "finish_race"
)

// Outbound event names. The mixed casing is part of the wire contract
// with the existing clients: the quick-match flow and the lobby flow
// use PascalCase, the grid flow camelCase.
const (
	EvtError = "Error"

	// quick-match Four-in-a-Row
	EvtUsernameTaken      = "UsernameTaken"
	EvtPlayerJoined       = "PlayerJoined"
	EvtWaitingForOpponent = "WaitingForOpponent"
	EvtGameStart          = "GameStart"
	EvtPiecePlaced        = "PiecePlaced"
	EvtUpdateTurn         = "UpdateTurn"
	EvtGameOver           = "GameOver"
	EvtNotYourTurn        = "NotYourTurn"
	EvtInvalidMove        = "InvalidMove"
	EvtOpponentLeft       = "OpponentLeft"

	// lobby-keyed Grid-3
	EvtGridStart        = "start"
	EvtGridPiecePlaced  = "piecePlaced"
	EvtGridUpdateTurn   = "updateTurn"
	EvtGridWinner       = "winner"
	EvtGridTie          = "tieGame"
	EvtGridNotYourTurn  = "notPlayersTurn"
	EvtGridInvalidMove  = "notValidMove"
	EvtGridWaiting      = "waitingForOpponent"
	EvtGridOpponentLeft = "opponentLeft"
	EvtGridActionLogged = "ActionLogged"

	// lobby room and rematch protocol
	EvtGameStarted         = "GameStarted"
	EvtPlayerLeft          = "PlayerLeft"
	EvtRematchVoteReceived = "RematchVoteReceived"
	EvtRematchDeclined     = "RematchDeclined"
	EvtReturnToLobby       = "ReturnToLobby"
	EvtRematchStarting     = "RematchStarting"
	EvtGoToRoom            = "GoToRoom"

	// race game
	EvtPlayerProgress = "PlayerProgressUpdated"
	EvtRaceEnd        = "EndGame"
)
