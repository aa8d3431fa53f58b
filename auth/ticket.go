// Package auth issues the signed lobby tickets the websocket layer uses
// to bind a connection to a (lobby, player) pair. Tickets replace the
// cookie session the HTTP front end used to carry.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gamehall/backend/config"
)

// TicketClaims binds a player name to a lobby.
type TicketClaims struct {
	LobbyID    string `json:"lobby_id"`
	PlayerName string `json:"player_name"`
	jwt.RegisteredClaims
}

// GenerateTicket creates a signed ticket for a player who created or
// joined a lobby.
func GenerateTicket(lobbyID, playerName string) (string, error) {
	claims := &TicketClaims{
		LobbyID:    lobbyID,
		PlayerName: playerName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.AppConfig.TicketTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.TicketSecret))
}

// ValidateTicket parses and verifies a ticket.
func ValidateTicket(tokenString string) (*TicketClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TicketClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(config.AppConfig.TicketSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TicketClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid ticket")
}
