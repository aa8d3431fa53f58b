package models

// Game-type tags, used as lobby configuration and as group routing keys.
const (
	GameTypePuissance4  = "Puissance4"
	GameTypeMorpion     = "Morpion"
	GameTypeSpeedTyping = "SpeedTyping"
)

// MinPlayersFor is the minimum roster needed to (re)start a game of the
// given type. The race runs solo, the board games need an opponent.
func MinPlayersFor(gameType string) int {
	if gameType == GameTypeSpeedTyping {
		return 1
	}
	return 2
}

// DefaultMaxPlayers is the lobby capacity used when the creator does
// not pick one.
func DefaultMaxPlayers(gameType string) int {
	if gameType == GameTypeSpeedTyping {
		return 10
	}
	return 2
}

// KnownGameType guards lobby creation against arbitrary tags.
func KnownGameType(gameType string) bool {
	switch gameType {
	case GameTypePuissance4, GameTypeMorpion, GameTypeSpeedTyping:
		return true
	}
	return false
}
