// internal/game/deck.go
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
)

// WildPoolSize is how many WILD and how many WILD_DRAW_FOUR cards a deck holds.
const WildPoolSize = 9

// DeckSize is the number of cards in a freshly built deck:
// per color one 0, two each of 1-9, two each of Skip, Reverse and Draw-Two.
const DeckSize = 4*(1+2*9+2*3) + 2*WildPoolSize

// Shuffler permutes a slice of n elements via swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

func newShuffler() Shuffler {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func cardID(color models.CardColor, t models.CardType, number, copyIdx int) string {
	id := fmt.Sprintf("%s_%s", color, t)
	if t == models.TypeNumber {
		id = fmt.Sprintf("%s_%d", id, number)
	}
	if copyIdx > 0 {
		id = fmt.Sprintf("%s_%d", id, copyIdx+1)
	}
	return id
}

// CreateDeck builds the canonical multiset and returns it shuffled.
func CreateDeck(r Shuffler) []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	for _, color := range models.PlayableColors {
		deck = append(deck, models.NewNumberCard(cardID(color, models.TypeNumber, 0, 0), color, 0))
		for n := 1; n <= 9; n++ {
			for c := 0; c < 2; c++ {
				deck = append(deck, models.NewNumberCard(cardID(color, models.TypeNumber, n, c), color, n))
			}
		}
		for _, t := range []models.CardType{models.TypeSkip, models.TypeReverse, models.TypeDrawTwo} {
			for c := 0; c < 2; c++ {
				deck = append(deck, models.NewActionCard(cardID(color, t, 0, c), color, t))
			}
		}
	}
	for i := 0; i < WildPoolSize; i++ {
		deck = append(deck,
			models.NewActionCard(fmt.Sprintf("WILD_%d", i), models.ColorWild, models.TypeWild),
			models.NewActionCard(fmt.Sprintf("WILD_DRAW_FOUR_%d", i), models.ColorWild, models.TypeWildDrawFour),
		)
	}

	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// Deck holds the draw pile and the discard pile. The top of each pile is the
// last element of its slice.
type Deck struct {
	drawPile    []models.Card
	discardPile []models.Card
	rng         Shuffler
}

// CreatePiles shuffles a fresh deck, turns its top card face up as the
// initial current card, and keeps the rest as the draw pile.
func CreatePiles(r Shuffler) *Deck {
	if r == nil {
		r = newShuffler()
	}
	full := CreateDeck(r)
	return &Deck{
		drawPile:    append([]models.Card(nil), full[1:]...),
		discardPile: []models.Card{full[0]},
		rng:         r,
	}
}

// DrawPileSize returns the number of face-down cards.
func (d *Deck) DrawPileSize() int { return len(d.drawPile) }

// DiscardPileSize returns the number of face-up cards.
func (d *Deck) DiscardPileSize() int { return len(d.discardPile) }

// Available is how many cards can still be drawn, counting those a reshuffle
// would recover. The current discard top never counts.
func (d *Deck) Available() int {
	n := len(d.drawPile)
	if len(d.discardPile) > 1 {
		n += len(d.discardPile) - 1
	}
	return n
}

// DrawCard pops the draw pile's top, reshuffling the discard pile under its
// current top back into the draw pile when the draw pile is empty.
func (d *Deck) DrawCard() (models.Card, error) {
	if len(d.drawPile) == 0 {
		d.reshuffle()
	}
	if len(d.drawPile) == 0 {
		return models.Card{}, ErrDeckExhausted
	}
	last := len(d.drawPile) - 1
	card := d.drawPile[last]
	d.drawPile = d.drawPile[:last]
	return card, nil
}

func (d *Deck) reshuffle() {
	if len(d.discardPile) <= 1 {
		return
	}
	top := d.discardPile[len(d.discardPile)-1]
	for _, c := range d.discardPile[:len(d.discardPile)-1] {
		// Wilds go back face down without the color they were played as.
		if c.Type.IsWild() {
			c = c.WithColor(models.ColorWild)
		}
		d.drawPile = append(d.drawPile, c)
	}
	d.discardPile = []models.Card{top}
	d.rng.Shuffle(len(d.drawPile), func(i, j int) {
		d.drawPile[i], d.drawPile[j] = d.drawPile[j], d.drawPile[i]
	})
}

// TopCard peeks the discard pile's top.
func (d *Deck) TopCard() (models.Card, error) {
	if len(d.discardPile) == 0 {
		return models.Card{}, fmt.Errorf("discard pile is empty: %w", ErrInvalidState)
	}
	return d.discardPile[len(d.discardPile)-1], nil
}

// PlayCard pushes card onto the discard pile, making it the current card.
func (d *Deck) PlayCard(card models.Card) {
	d.discardPile = append(d.discardPile, card)
}

// SetTopCard replaces the discard top in place.
func (d *Deck) SetTopCard(card models.Card) {
	if len(d.discardPile) == 0 {
		d.discardPile = append(d.discardPile, card)
		return
	}
	d.discardPile[len(d.discardPile)-1] = card
}
