// internal/models/house_rules.go
package models

// HouseRules captures the room-level configuration chosen at creation.
type HouseRules struct {
	// MaxPlayers caps the roster size.
	MaxPlayers int `json:"maxPlayers"`

	// StartingHandSize is how many cards each player is dealt.
	StartingHandSize int `json:"startingHandSize"`

	// AllowStacking lets +2/+4 be stacked. Carried as configuration only; the engine does not enforce it.
	AllowStacking bool `json:"allowStacking"`

	// AllowNumberStacking lets equal numbers be stacked. Not enforced by the engine.
	AllowNumberStacking bool `json:"allowNumberStacking"`

	// InfiniteDrawing keeps a player drawing until they can play. Not enforced by the engine.
	InfiniteDrawing bool `json:"infiniteDrawing"`
}
