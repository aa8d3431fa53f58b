package db

import (
	"fmt"
	"strings"
	"time"
)

// History persistence queries. Callers treat all of these as
// best-effort: errors are logged by the history service, never
// propagated into game state.

func InsertHistory(lobbyID, lobbyName, gameType string, players []string, createdAt time.Time) error {
	if DB == nil {
		return nil
	}

	query := `
	INSERT INTO game_histories (lobby_id, lobby_name, game_type, players, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (lobby_id) DO UPDATE
	SET lobby_name = $2, game_type = $3, players = $4, created_at = $5,
	    winner = NULL, is_tie = FALSE, ended_at = NULL;
	`
	_, err := DB.Exec(query, lobbyID, lobbyName, gameType, strings.Join(players, ","), createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert history: %v", err)
	}
	return nil
}

func FinishHistory(lobbyID string, winner *string, isTie bool, endedAt time.Time) error {
	if DB == nil {
		return nil
	}

	query := `
	UPDATE game_histories
	SET winner = $2, is_tie = $3, ended_at = $4
	WHERE lobby_id = $1;
	`
	_, err := DB.Exec(query, lobbyID, winner, isTie, endedAt)
	if err != nil {
		return fmt.Errorf("failed to finish history: %v", err)
	}
	return nil
}

func InsertAction(id, lobbyID, gameType, playerName, actionType, details string, payload *string, createdAt time.Time) error {
	if DB == nil {
		return nil
	}

	query := `
	INSERT INTO game_actions (id, lobby_id, game_type, player_name, action_type, details, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := DB.Exec(query, id, lobbyID, gameType, playerName, actionType, details, payload, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert action: %v", err)
	}
	return nil
}
