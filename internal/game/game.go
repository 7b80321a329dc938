// internal/game/game.go
package game

import (
	"fmt"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// OnActionFunc receives every mutation applied to a session, in order.
type OnActionFunc func(action models.GameAction)

// OnGameEndFunc is invoked once when a player empties their hand.
type OnGameEndFunc func(roomID int64, winnerID int64)

// Options configures a new GameSession. Zero values fall back to defaults.
type Options struct {
	Rules     models.HouseRules
	Shuffler  Shuffler
	Clock     quartz.Clock
	OnAction  OnActionFunc
	OnGameEnd OnGameEndFunc
}

// GameSession is the rule engine for one match.
//
// GameSession does no locking of its own. Every call must be made while
// holding the owning room's lock.
type GameSession struct {
	ID     uuid.UUID
	RoomID int64

	players     map[int64]*PlayerState
	playerOrder []int64
	current     int
	direction   models.Direction
	phase       models.Phase
	chosenColor *models.CardColor
	deck        *Deck
	rules       models.HouseRules

	// colorPending is set between SetChosenColor and FinishColorSelection.
	colorPending bool
	winnerID     int64

	clock       quartz.Clock
	actionIndex int
	onAction    OnActionFunc
	onGameEnd   OnGameEndFunc
}

// NewGameSession builds a session for the given players in the given order,
// shuffles a fresh deck and deals each player a starting hand. The first
// player in order takes the first turn.
func NewGameSession(roomID int64, players []*PlayerState, opts Options) (*GameSession, error) {
	if len(players) < MinPlayers {
		return nil, fmt.Errorf("need at least %d players, have %d: %w", MinPlayers, len(players), ErrInvalidState)
	}
	rules := MergeRules(DefaultHouseRules(), opts.Rules)
	if len(players)*rules.StartingHandSize >= DeckSize {
		return nil, fmt.Errorf("cannot deal %d cards to %d players: %w", rules.StartingHandSize, len(players), ErrDeckExhausted)
	}
	clock := opts.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}

	id, _ := uuid.NewRandom()
	g := &GameSession{
		ID:          id,
		RoomID:      roomID,
		players:     make(map[int64]*PlayerState, len(players)),
		playerOrder: make([]int64, 0, len(players)),
		direction:   models.Clockwise,
		phase:       models.PhaseWaitingTurn,
		deck:        CreatePiles(opts.Shuffler),
		rules:       rules,
		clock:       clock,
		onAction:    opts.OnAction,
		onGameEnd:   opts.OnGameEnd,
	}
	for _, p := range players {
		if _, dup := g.players[p.ID]; dup {
			return nil, fmt.Errorf("duplicate player %d: %w", p.ID, ErrInvalidState)
		}
		g.players[p.ID] = p
		g.playerOrder = append(g.playerOrder, p.ID)
	}

	g.dealInitialCards()
	top, _ := g.deck.TopCard()
	g.logAction(0, "game_start", map[string]interface{}{
		"players":   g.PlayerOrder(),
		"firstCard": top,
		"handSize":  rules.StartingHandSize,
	})
	return g, nil
}

func (g *GameSession) dealInitialCards() {
	for _, id := range g.playerOrder {
		p := g.players[id]
		for i := 0; i < g.rules.StartingHandSize; i++ {
			// Size was checked against DeckSize, so the draw pile cannot run dry here.
			card, _ := g.deck.DrawCard()
			p.AddCard(card)
		}
	}
}

// CurrentPlayerID is the player whose turn it is.
func (g *GameSession) CurrentPlayerID() int64 { return g.playerOrder[g.current] }

// CurrentCard is the discard pile's top.
func (g *GameSession) CurrentCard() models.Card {
	top, _ := g.deck.TopCard()
	return top
}

// Phase returns the state machine position.
func (g *GameSession) Phase() models.Phase { return g.phase }

// Direction returns the current walk order.
func (g *GameSession) Direction() models.Direction { return g.direction }

// ChosenColor returns the active color override, if any.
func (g *GameSession) ChosenColor() (models.CardColor, bool) {
	if g.chosenColor == nil {
		return "", false
	}
	return *g.chosenColor, true
}

// Finished reports whether the session is terminal.
func (g *GameSession) Finished() bool { return g.phase == models.PhaseFinished }

// WinnerID is the player who emptied their hand; zero until Finished.
func (g *GameSession) WinnerID() int64 { return g.winnerID }

// Deck exposes the piles for inspection.
func (g *GameSession) Deck() *Deck { return g.deck }

// Rules returns the rules the session was built with.
func (g *GameSession) Rules() models.HouseRules { return g.rules }

// PlayerOrder returns a copy of the fixed turn order.
func (g *GameSession) PlayerOrder() []int64 {
	out := make([]int64, len(g.playerOrder))
	copy(out, g.playerOrder)
	return out
}

// Player returns the state for id.
func (g *GameSession) Player(id int64) (*PlayerState, bool) {
	p, ok := g.players[id]
	return p, ok
}

// HasPlayer reports whether id is part of this match.
func (g *GameSession) HasPlayer(id int64) bool {
	_, ok := g.players[id]
	return ok
}

// CanPlayCard reports whether card may be played on the current card.
func (g *GameSession) CanPlayCard(card models.Card) bool {
	if card.Type.IsWild() {
		return true
	}
	if g.chosenColor != nil {
		return card.Color == *g.chosenColor
	}
	current := g.CurrentCard()
	if card.Color == current.Color {
		return true
	}
	if card.Type != models.TypeNumber && card.Type == current.Type {
		return true
	}
	return card.Type == models.TypeNumber && current.Type == models.TypeNumber &&
		card.NumberValue() == current.NumberValue()
}

// PlayCard plays the card at index from playerID's hand. For a wild card
// played without chosenColor the session stops in CHOOSING_COLOR and the
// effect and turn advance wait for SetChosenColor.
func (g *GameSession) PlayCard(playerID int64, index int, chosenColor *models.CardColor) error {
	player, err := g.requireTurn(playerID)
	if err != nil {
		return err
	}
	if g.phase != models.PhaseWaitingTurn {
		return fmt.Errorf("cannot play in phase %s: %w", g.phase, ErrInvalidState)
	}
	if index < 0 || index >= len(player.Hand) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	card := player.Hand[index]
	if !g.CanPlayCard(card) {
		return fmt.Errorf("%w: %s on %s", ErrIllegalMove, card, g.CurrentCard())
	}
	if card.Type.IsWild() && chosenColor != nil && !chosenColor.IsPlayable() {
		return fmt.Errorf("%w: cannot choose color %q", ErrIllegalMove, *chosenColor)
	}

	if card.Type.IsWild() && chosenColor == nil {
		if _, err := player.RemoveCard(index); err != nil {
			return err
		}
		g.deck.PlayCard(card)
		g.chosenColor = nil
		g.phase = models.PhaseChoosingColor
		g.logAction(playerID, "play_card", map[string]interface{}{"card": card, "index": index, "pendingColor": true})
		return nil
	}

	// Every draw this play can trigger is checked up front so a short deck
	// fails the move instead of leaving it half applied.
	needed := g.effectDraws(card.Type)
	missedUno := len(player.Hand) == 2 && !player.HasDeclaredUno
	if missedUno {
		needed += 2
	}
	if needed > g.deck.Available() {
		return ErrDeckExhausted
	}

	if card.Type.IsWild() {
		c := *chosenColor
		g.chosenColor = &c
	} else {
		g.chosenColor = nil
	}

	if missedUno {
		g.drawInto(player, 2)
		g.logAction(playerID, "uno_penalty", map[string]interface{}{"count": 2})
	}

	played, err := player.RemoveCard(index)
	if err != nil {
		return err
	}
	if g.chosenColor != nil {
		played = played.WithColor(*g.chosenColor)
	}
	g.deck.PlayCard(played)
	g.logAction(playerID, "play_card", map[string]interface{}{"card": played, "index": index})

	g.applyCardEffect(played)

	if player.CardCount() == 0 {
		g.finish(playerID)
		return nil
	}
	// Draw effects already leave the turn on the player after the target.
	if g.effectDraws(played.Type) == 0 {
		g.moveToNextPlayer()
	}
	g.phase = models.PhaseWaitingTurn
	return nil
}

// SetChosenColor colorizes the wild card waiting on top of the discard pile
// and applies its effect. The session moves to DRAWING_CARD until
// FinishColorSelection, or to FINISHED if the wild was the player's last card.
func (g *GameSession) SetChosenColor(playerID int64, color models.CardColor) error {
	player, err := g.requireTurn(playerID)
	if err != nil {
		return err
	}
	if g.phase != models.PhaseChoosingColor {
		return fmt.Errorf("not waiting for a color choice: %w", ErrInvalidState)
	}
	if !color.IsPlayable() {
		return fmt.Errorf("%w: cannot choose color %q", ErrIllegalMove, color)
	}
	top := g.CurrentCard()
	if top.Type == models.TypeWildDrawFour && g.effectDraws(top.Type) > g.deck.Available() {
		return ErrDeckExhausted
	}

	c := color
	g.chosenColor = &c
	colored := top.WithColor(color)
	g.deck.SetTopCard(colored)
	g.logAction(playerID, "choose_color", map[string]interface{}{"color": color})

	g.applyCardEffect(colored)

	// A wild as the last card ends the game once its color is known.
	if player.CardCount() == 0 {
		g.finish(playerID)
		return nil
	}
	g.colorPending = true
	g.phase = models.PhaseDrawingCard
	return nil
}

// FinishColorSelection completes a color choice. A plain WILD advances the
// turn here; WILD_DRAW_FOUR already advanced while applying its effect.
func (g *GameSession) FinishColorSelection() error {
	if g.phase != models.PhaseDrawingCard || !g.colorPending {
		return fmt.Errorf("no color selection to finish: %w", ErrInvalidState)
	}
	g.colorPending = false
	if g.CurrentCard().Type == models.TypeWild {
		g.moveToNextPlayer()
	}
	g.phase = models.PhaseWaitingTurn
	return nil
}

// DrawCard draws one card into the current player's hand and holds the
// session in DRAWING_CARD until FinishDrawing.
func (g *GameSession) DrawCard(playerID int64) (models.Card, error) {
	player, err := g.requireTurn(playerID)
	if err != nil {
		return models.Card{}, err
	}
	if g.phase != models.PhaseWaitingTurn {
		return models.Card{}, fmt.Errorf("cannot draw in phase %s: %w", g.phase, ErrInvalidState)
	}
	card, err := g.deck.DrawCard()
	if err != nil {
		return models.Card{}, err
	}
	player.AddCard(card)
	g.phase = models.PhaseDrawingCard
	g.logAction(playerID, "draw_card", map[string]interface{}{"handSize": player.CardCount()})
	return card, nil
}

// FinishDrawing passes the turn after a draw.
func (g *GameSession) FinishDrawing(playerID int64) error {
	if _, err := g.requireTurn(playerID); err != nil {
		return err
	}
	if g.phase != models.PhaseDrawingCard || g.colorPending {
		return fmt.Errorf("not in DRAWING_CARD phase: %w", ErrInvalidState)
	}
	g.moveToNextPlayer()
	g.phase = models.PhaseWaitingTurn
	return nil
}

// SayUno declares UNO for playerID. It is not restricted to the current turn.
func (g *GameSession) SayUno(playerID int64) error {
	player, ok := g.players[playerID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrPlayerNotFound, playerID)
	}
	if g.phase == models.PhaseFinished {
		return fmt.Errorf("game is over: %w", ErrInvalidState)
	}
	if err := player.DeclareUno(); err != nil {
		return err
	}
	g.logAction(playerID, "say_uno", nil)
	return nil
}

func (g *GameSession) requireTurn(playerID int64) (*PlayerState, error) {
	if g.phase == models.PhaseFinished {
		return nil, fmt.Errorf("game is over: %w", ErrInvalidState)
	}
	if playerID != g.CurrentPlayerID() {
		return nil, ErrNotYourTurn
	}
	player, ok := g.players[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPlayerNotFound, playerID)
	}
	return player, nil
}

func (g *GameSession) effectDraws(t models.CardType) int {
	switch t {
	case models.TypeDrawTwo:
		return 2
	case models.TypeWildDrawFour:
		return 4
	}
	return 0
}

func (g *GameSession) applyCardEffect(card models.Card) {
	switch card.Type {
	case models.TypeSkip:
		g.moveToNextPlayer()
	case models.TypeReverse:
		g.direction = g.direction.Reverse()
		if len(g.playerOrder) == 2 {
			g.moveToNextPlayer()
		}
	case models.TypeDrawTwo, models.TypeWildDrawFour:
		g.moveToNextPlayer()
		target := g.players[g.CurrentPlayerID()]
		n := g.effectDraws(card.Type)
		g.drawInto(target, n)
		g.logAction(target.ID, "forced_draw", map[string]interface{}{"count": n, "by": card.Type})
		g.moveToNextPlayer()
	}
}

// drawInto deals n cards to p. Callers check Deck.Available first.
func (g *GameSession) drawInto(p *PlayerState, n int) {
	for i := 0; i < n; i++ {
		card, err := g.deck.DrawCard()
		if err != nil {
			return
		}
		p.AddCard(card)
	}
}

func (g *GameSession) moveToNextPlayer() {
	n := len(g.playerOrder)
	if g.direction == models.Clockwise {
		g.current = (g.current + 1) % n
	} else {
		g.current = (g.current - 1 + n) % n
	}
}

func (g *GameSession) finish(winnerID int64) {
	g.phase = models.PhaseFinished
	g.winnerID = winnerID
	g.logAction(winnerID, models.ActionGameEnd, map[string]interface{}{"winner": winnerID})
	if g.onGameEnd != nil {
		g.onGameEnd(g.RoomID, winnerID)
	}
}

// logAction hands a record of the mutation to the OnAction hook.
func (g *GameSession) logAction(actorID int64, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if g.onAction == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	g.onAction(models.GameAction{
		GameID:      g.ID,
		RoomID:      g.RoomID,
		ActionIndex: g.actionIndex,
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   g.clock.Now().UnixMilli(),
	})
}
