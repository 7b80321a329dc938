// internal/models/card.go
package models

import (
	"fmt"
	"strconv"
)

// CardColor is one of the four suits, or WILD for uncolored wild cards.
type CardColor string

const (
	ColorRed    CardColor = "RED"
	ColorBlue   CardColor = "BLUE"
	ColorGreen  CardColor = "GREEN"
	ColorYellow CardColor = "YELLOW"
	ColorWild   CardColor = "WILD"
)

// PlayableColors are the colors a wild card may be colorized to.
var PlayableColors = []CardColor{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// IsPlayable reports whether c is one of the four real colors.
func (c CardColor) IsPlayable() bool {
	switch c {
	case ColorRed, ColorBlue, ColorGreen, ColorYellow:
		return true
	}
	return false
}

// CardType identifies a card's face.
type CardType string

const (
	TypeNumber       CardType = "NUMBER"
	TypeSkip         CardType = "SKIP"
	TypeReverse      CardType = "REVERSE"
	TypeDrawTwo      CardType = "DRAW_TWO"
	TypeWild         CardType = "WILD"
	TypeWildDrawFour CardType = "WILD_DRAW_FOUR"
)

// IsWild reports whether t is WILD or WILD_DRAW_FOUR.
func (t CardType) IsWild() bool {
	return t == TypeWild || t == TypeWildDrawFour
}

// Card is a single card. Number is set only for NUMBER cards.
type Card struct {
	ID     string    `json:"id"`
	Color  CardColor `json:"color"`
	Type   CardType  `json:"type"`
	Number *int      `json:"number,omitempty"`
}

// NewNumberCard builds a NUMBER card.
func NewNumberCard(id string, color CardColor, number int) Card {
	n := number
	return Card{ID: id, Color: color, Type: TypeNumber, Number: &n}
}

// NewActionCard builds a non-number card.
func NewActionCard(id string, color CardColor, t CardType) Card {
	return Card{ID: id, Color: color, Type: t}
}

// WithColor returns a copy of the card recolored to color. Used to colorize wilds.
func (c Card) WithColor(color CardColor) Card {
	out := c
	out.Color = color
	if c.Number != nil {
		n := *c.Number
		out.Number = &n
	}
	return out
}

// NumberValue returns the card's number, or -1 when it has none.
func (c Card) NumberValue() int {
	if c.Number == nil {
		return -1
	}
	return *c.Number
}

func (c Card) String() string {
	if c.Type == TypeNumber {
		return fmt.Sprintf("%s %s", c.Color, strconv.Itoa(c.NumberValue()))
	}
	return fmt.Sprintf("%s %s", c.Color, c.Type)
}

// Direction is the walk order over the player sequence.
type Direction string

const (
	Clockwise        Direction = "CLOCKWISE"
	CounterClockwise Direction = "COUNTER_CLOCKWISE"
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Clockwise {
		return CounterClockwise
	}
	return Clockwise
}

// Phase is the GameSession state machine position.
type Phase string

const (
	PhaseWaitingTurn   Phase = "WAITING_TURN"
	PhaseChoosingColor Phase = "CHOOSING_COLOR"
	PhaseDrawingCard   Phase = "DRAWING_CARD"
	PhaseFinished      Phase = "FINISHED"
)
