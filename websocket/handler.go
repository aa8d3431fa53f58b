package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/gamehall/backend/auth"
	"github.com/gamehall/backend/config"
	"github.com/gamehall/backend/hubs"
	"github.com/gamehall/backend/models"
)

// CreateUpgrader builds the upgrader with the configured origin
// allow-list.
func CreateUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range config.AppConfig.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
}

// HandleConnection runs one connection's read loop, routing each
// message to the game hubs. Lobby-scoped messages must carry a valid
// ticket; the (lobby, player) identity always comes from the ticket,
// never from client-supplied fields.
func HandleConnection(conn *websocket.Conn, hub *Hub, h *hubs.Hubs) {
	c := hub.Register(conn)
	defer func() {
		hub.Unregister(c.ID)
		h.HandleDisconnect(c.ID)
		conn.Close()
	}()

	for {
		var msg models.ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("[WS] connection %s closed: %v", c.ID, err)
			return
		}

		route(c, hub, h, msg)
	}
}

func route(c *Connection, hub *Hub, h *hubs.Hubs, msg models.ClientMessage) {
	switch msg.Type {
	case models.MsgFindGame:
		if msg.Username == "" {
			hub.SendToConn(c.ID, models.EvtError, "A username is required")
			return
		}
		h.FindGame(c.ID, msg.Username)

	case models.MsgPlacePiece:
		h.PlacePiece(c.ID, msg.Column)

	case models.MsgPlaceMark:
		h.PlaceMark(c.ID, msg.Row, msg.Col)

	case models.MsgJoinGame:
		claims, ok := requireTicket(c, hub, msg)
		if !ok {
			return
		}
		h.JoinBoardGame(c.ID, claims.LobbyID, claims.PlayerName)

	case models.MsgJoinLobbyGroup:
		claims, ok := requireTicket(c, hub, msg)
		if !ok {
			return
		}
		h.JoinLobbyGroup(c.ID, claims.LobbyID, claims.PlayerName)

	case models.MsgLeaveLobbyGroup:
		claims, ok := requireTicket(c, hub, msg)
		if !ok {
			return
		}
		h.LeaveLobbyGroup(c.ID, claims.LobbyID)

	case models.MsgStartGame:
		claims, ok := requireTicket(c, hub, msg)
		if !ok {
			return
		}
		h.StartLobbyGame(c.ID, claims.LobbyID)

	case models.MsgRequestRematch:
		claims, ok := requireTicket(c, hub, msg)
		if !ok {
			return
		}
		h.RequestRematch(claims.LobbyID, claims.PlayerName)

	case models.MsgDeclineRematch:
		claims, ok := requireTicket(c, hub, msg)
		if !ok {
			return
		}
		h.DeclineRematch(claims.LobbyID, claims.PlayerName)

	case models.MsgReturnToLobby:
		claims, ok := requireTicket(c, hub, msg)
		if !ok {
			return
		}
		h.ReturnAllToLobby(claims.LobbyID)

	case models.MsgUpdateProgress:
		claims, ok := requireTicket(c, hub, msg)
		if !ok {
			return
		}
		h.UpdateProgress(c.ID, claims.LobbyID, claims.PlayerName, msg.Progress)

	case models.MsgFinishRace:
		claims, ok := requireTicket(c, hub, msg)
		if !ok {
			return
		}
		h.FinishRace(c.ID, claims.LobbyID)

	default:
		hub.SendToConn(c.ID, models.EvtError, "Unknown message type")
	}
}

func requireTicket(c *Connection, hub *Hub, msg models.ClientMessage) (*auth.TicketClaims, bool) {
	if msg.Ticket == "" {
		hub.SendToConn(c.ID, models.EvtError, "A lobby ticket is required")
		return nil, false
	}

	claims, err := auth.ValidateTicket(msg.Ticket)
	if err != nil {
		log.Printf("[WS] ticket validation failed: %v", err)
		hub.SendToConn(c.ID, models.EvtError, "Invalid or expired ticket")
		return nil, false
	}

	return claims, true
}
