package game

import (
	"fmt"

	"github.com/jason-s-yu/uno/internal/models"
)

// PlayerState is a player's hand inside one GameSession.
type PlayerState struct {
	ID             int64
	Username       string
	Avatar         string
	Hand           []models.Card
	HasDeclaredUno bool
}

// NewPlayerState snapshots a profile into a fresh, empty-handed player.
func NewPlayerState(p models.Profile) *PlayerState {
	avatar := p.Avatar
	if avatar == "" {
		avatar = models.DefaultAvatar
	}
	return &PlayerState{ID: p.ID, Username: p.Username, Avatar: avatar}
}

// CardCount is the hand size.
func (p *PlayerState) CardCount() int { return len(p.Hand) }

// AddCard appends to the hand. The UNO flag is cleared once the hand exceeds two cards.
func (p *PlayerState) AddCard(card models.Card) {
	p.Hand = append(p.Hand, card)
	p.resetUno()
}

// RemoveCard removes and returns the card at index.
func (p *PlayerState) RemoveCard(index int) (models.Card, error) {
	if index < 0 || index >= len(p.Hand) {
		return models.Card{}, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	card := p.Hand[index]
	p.Hand = append(p.Hand[:index], p.Hand[index+1:]...)
	p.resetUno()
	return card, nil
}

// DeclareUno succeeds only while holding exactly two cards.
func (p *PlayerState) DeclareUno() error {
	if len(p.Hand) != 2 {
		return fmt.Errorf("can only declare UNO with exactly 2 cards (holding %d): %w", len(p.Hand), ErrInvalidState)
	}
	p.HasDeclaredUno = true
	return nil
}

// HandCopy returns a copy of the hand safe to hand to another goroutine.
func (p *PlayerState) HandCopy() []models.Card {
	out := make([]models.Card, len(p.Hand))
	copy(out, p.Hand)
	return out
}

func (p *PlayerState) resetUno() {
	if len(p.Hand) > 2 {
		p.HasDeclaredUno = false
	}
}
