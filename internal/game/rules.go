// internal/game/rules.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/uno/internal/models"
)

const (
	// MinPlayers is the smallest roster a game can start with.
	MinPlayers = 2
	// MaxPlayersLimit caps any room's MaxPlayers setting.
	MaxPlayersLimit = 10
	// DefaultStartingHandSize is the number of cards dealt to each player.
	DefaultStartingHandSize = 6
	// DefaultMaxPlayers is used when a room is created without a capacity.
	DefaultMaxPlayers = 4
)

// DefaultHouseRules returns the rules used when nothing else is configured.
func DefaultHouseRules() models.HouseRules {
	return models.HouseRules{
		MaxPlayers:       DefaultMaxPlayers,
		StartingHandSize: DefaultStartingHandSize,
	}
}

// ValidateRules checks that a rules set can produce a playable game.
// The deck must be able to deal a full hand to a full room with one card
// left for the discard pile.
func ValidateRules(rules models.HouseRules) error {
	if rules.MaxPlayers < MinPlayers || rules.MaxPlayers > MaxPlayersLimit {
		return fmt.Errorf("maxPlayers must be between %d and %d", MinPlayers, MaxPlayersLimit)
	}
	if rules.StartingHandSize < 1 {
		return fmt.Errorf("startingHandSize must be positive")
	}
	if rules.MaxPlayers*rules.StartingHandSize >= DeckSize {
		return fmt.Errorf("startingHandSize %d is too large for %d players", rules.StartingHandSize, rules.MaxPlayers)
	}
	return nil
}

// MergeRules fills zero-valued numeric fields of override from base.
func MergeRules(base, override models.HouseRules) models.HouseRules {
	out := override
	if out.MaxPlayers == 0 {
		out.MaxPlayers = base.MaxPlayers
	}
	if out.StartingHandSize == 0 {
		out.StartingHandSize = base.StartingHandSize
	}
	return out
}
