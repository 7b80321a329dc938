package game

import "errors"

// Rule violations. All are returned before any state is mutated.
var (
	ErrNotYourTurn    = errors.New("not your turn")
	ErrInvalidIndex   = errors.New("invalid card index")
	ErrIllegalMove    = errors.New("cannot play this card")
	ErrInvalidState   = errors.New("action not allowed in the current phase")
	ErrDeckExhausted  = errors.New("no cards available to draw")
	ErrPlayerNotFound = errors.New("player not found in session")
)
