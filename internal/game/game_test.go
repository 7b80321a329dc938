// internal/game/game_test.go
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// actionCollector records the action log instead of shipping it anywhere.
type actionCollector struct {
	mu      sync.Mutex
	actions []models.GameAction
}

func (ac *actionCollector) onAction(a models.GameAction) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.actions = append(ac.actions, a)
}

func (ac *actionCollector) types() []string {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	out := make([]string, len(ac.actions))
	for i, a := range ac.actions {
		out[i] = a.ActionType
	}
	return out
}

func num(color models.CardColor, n int) models.Card {
	return models.NewNumberCard(fmt.Sprintf("t_%s_%d", color, n), color, n)
}

func act(color models.CardColor, typ models.CardType) models.Card {
	return models.NewActionCard(fmt.Sprintf("t_%s_%s", color, typ), color, typ)
}

func wild() models.Card { return act(models.ColorWild, models.TypeWild) }

func wildFour() models.Card { return act(models.ColorWild, models.TypeWildDrawFour) }

func colorPtr(c models.CardColor) *models.CardColor { return &c }

// setupTestSession builds a session with players 1..n in order.
func setupTestSession(t *testing.T, n int) (*GameSession, []int64, *actionCollector) {
	t.Helper()
	ac := &actionCollector{}
	players := make([]*PlayerState, n)
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		ids[i] = int64(i + 1)
		players[i] = NewPlayerState(models.Profile{ID: ids[i], Username: fmt.Sprintf("p%d", i+1)})
	}
	g, err := NewGameSession(7, players, Options{Shuffler: seeded(), OnAction: ac.onAction})
	require.NoError(t, err)
	return g, ids, ac
}

func setHand(g *GameSession, id int64, cards ...models.Card) {
	p := g.players[id]
	p.Hand = append([]models.Card(nil), cards...)
	p.HasDeclaredUno = false
}

func setTop(g *GameSession, card models.Card) {
	g.deck.discardPile = []models.Card{card}
	g.chosenColor = nil
}

func TestNewGameSessionDeal(t *testing.T) {
	g, ids, ac := setupTestSession(t, 2)

	for _, id := range ids {
		p, ok := g.Player(id)
		require.True(t, ok)
		assert.Equal(t, DefaultStartingHandSize, p.CardCount())
	}
	assert.Equal(t, 1, g.Deck().DiscardPileSize())
	assert.Equal(t, DeckSize-1-2*DefaultStartingHandSize, g.Deck().DrawPileSize())
	assert.Equal(t, ids[0], g.CurrentPlayerID())
	assert.Equal(t, models.PhaseWaitingTurn, g.Phase())
	assert.Equal(t, models.Clockwise, g.Direction())
	assert.Equal(t, []string{"game_start"}, ac.types())
}

func TestNewGameSessionRejectsSmallRoster(t *testing.T) {
	_, err := NewGameSession(1, []*PlayerState{NewPlayerState(models.Profile{ID: 1})}, Options{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCanPlayCard(t *testing.T) {
	g, _, _ := setupTestSession(t, 2)
	setTop(g, num(models.ColorRed, 5))

	tests := []struct {
		name string
		card models.Card
		want bool
	}{
		{"same color", num(models.ColorRed, 9), true},
		{"number match", num(models.ColorBlue, 5), true},
		{"different color and number", num(models.ColorBlue, 4), false},
		{"skip on number", act(models.ColorGreen, models.TypeSkip), false},
		{"wild", wild(), true},
		{"wild draw four", wildFour(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.CanPlayCard(tt.card))
		})
	}

	setTop(g, act(models.ColorRed, models.TypeSkip))
	assert.True(t, g.CanPlayCard(act(models.ColorGreen, models.TypeSkip)), "type match")

	setTop(g, wild().WithColor(models.ColorYellow))
	g.chosenColor = colorPtr(models.ColorYellow)
	assert.True(t, g.CanPlayCard(num(models.ColorYellow, 1)))
	assert.False(t, g.CanPlayCard(act(models.ColorRed, models.TypeSkip)))
	assert.False(t, g.CanPlayCard(num(models.ColorBlue, 1)))
}

func TestPlayCardNotYourTurnLeavesStateUnchanged(t *testing.T) {
	g, ids, ac := setupTestSession(t, 3)
	setTop(g, num(models.ColorRed, 5))
	setHand(g, ids[1], num(models.ColorRed, 1), num(models.ColorRed, 2), num(models.ColorRed, 3))

	before := g.GameStateSnapshot()
	handBefore, _ := g.HandSnapshot(ids[1])
	drawBefore := g.Deck().DrawPileSize()
	actionsBefore := len(ac.types())

	err := g.PlayCard(ids[1], 0, nil)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	handAfter, _ := g.HandSnapshot(ids[1])
	assert.Equal(t, handBefore, handAfter)
	assert.Equal(t, before, g.GameStateSnapshot())
	assert.Equal(t, drawBefore, g.Deck().DrawPileSize())
	assert.Len(t, ac.types(), actionsBefore)
}

func TestPlayCardValidation(t *testing.T) {
	g, ids, _ := setupTestSession(t, 2)
	setTop(g, num(models.ColorRed, 5))
	setHand(g, ids[0], num(models.ColorBlue, 4), num(models.ColorRed, 1), num(models.ColorRed, 2))

	assert.ErrorIs(t, g.PlayCard(ids[0], 3, nil), ErrInvalidIndex)
	assert.ErrorIs(t, g.PlayCard(ids[0], -1, nil), ErrInvalidIndex)
	assert.ErrorIs(t, g.PlayCard(ids[0], 0, nil), ErrIllegalMove)
	assert.Equal(t, ids[0], g.CurrentPlayerID())
	assert.Equal(t, 3, g.players[ids[0]].CardCount())
}

func TestPlayNumberAdvancesTurn(t *testing.T) {
	g, ids, _ := setupTestSession(t, 3)
	setTop(g, num(models.ColorRed, 5))
	setHand(g, ids[0], num(models.ColorBlue, 5), num(models.ColorRed, 1), num(models.ColorRed, 2))

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, ids[1], g.CurrentPlayerID())
	assert.Equal(t, models.PhaseWaitingTurn, g.Phase())
	assert.Equal(t, num(models.ColorBlue, 5), g.CurrentCard())
	assert.Equal(t, 2, g.players[ids[0]].CardCount())
}

func TestPlayNumberCounterClockwise(t *testing.T) {
	g, ids, _ := setupTestSession(t, 3)
	g.direction = models.CounterClockwise
	setTop(g, num(models.ColorRed, 5))
	setHand(g, ids[0], num(models.ColorRed, 7), num(models.ColorRed, 1), num(models.ColorRed, 2))

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, ids[2], g.CurrentPlayerID())
}

func TestSkipSkipsNextPlayer(t *testing.T) {
	g, ids, _ := setupTestSession(t, 3)
	setTop(g, num(models.ColorRed, 5))
	setHand(g, ids[0], act(models.ColorRed, models.TypeSkip), num(models.ColorRed, 1), num(models.ColorRed, 2))

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, ids[2], g.CurrentPlayerID())
}

func TestReverseTwoPlayersActsAsSkip(t *testing.T) {
	g, ids, _ := setupTestSession(t, 2)
	setTop(g, num(models.ColorGreen, 5))
	setHand(g, ids[0], act(models.ColorGreen, models.TypeReverse), num(models.ColorRed, 1), num(models.ColorRed, 2))

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, ids[0], g.CurrentPlayerID(), "reverse keeps the turn with two players")
	assert.Equal(t, models.CounterClockwise, g.Direction())

	g2, ids2, _ := setupTestSession(t, 2)
	setTop(g2, num(models.ColorGreen, 5))
	setHand(g2, ids2[0], act(models.ColorGreen, models.TypeSkip), num(models.ColorRed, 1), num(models.ColorRed, 2))
	require.NoError(t, g2.PlayCard(ids2[0], 0, nil))
	assert.Equal(t, g.CurrentPlayerID(), g2.CurrentPlayerID(), "same outcome as skip")
}

func TestReverseThreePlayersFlipsDirection(t *testing.T) {
	g, ids, _ := setupTestSession(t, 3)
	setTop(g, num(models.ColorGreen, 5))
	setHand(g, ids[0], act(models.ColorGreen, models.TypeReverse), num(models.ColorRed, 1), num(models.ColorRed, 2))

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, models.CounterClockwise, g.Direction())
	assert.Equal(t, ids[2], g.CurrentPlayerID())
}

func TestDrawTwoPenalizesAndSkipsTarget(t *testing.T) {
	g, ids, _ := setupTestSession(t, 3)
	setTop(g, num(models.ColorBlue, 5))
	setHand(g, ids[0], act(models.ColorBlue, models.TypeDrawTwo), num(models.ColorRed, 1), num(models.ColorRed, 2))
	target := g.players[ids[1]].CardCount()

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, target+2, g.players[ids[1]].CardCount())
	assert.Equal(t, ids[2], g.CurrentPlayerID())
}

func TestWildDrawFourWithColor(t *testing.T) {
	g, ids, _ := setupTestSession(t, 3)
	setTop(g, num(models.ColorBlue, 5))
	setHand(g, ids[0], wildFour(), num(models.ColorRed, 1), num(models.ColorRed, 2))
	target := g.players[ids[1]].CardCount()

	require.NoError(t, g.PlayCard(ids[0], 0, colorPtr(models.ColorGreen)))
	assert.Equal(t, target+4, g.players[ids[1]].CardCount())
	assert.Equal(t, ids[2], g.CurrentPlayerID())
	color, ok := g.ChosenColor()
	require.True(t, ok)
	assert.Equal(t, models.ColorGreen, color)
	assert.Equal(t, models.ColorGreen, g.CurrentCard().Color)
	assert.Equal(t, models.PhaseWaitingTurn, g.Phase())
}

func TestWildWithoutColorThenChooseColor(t *testing.T) {
	g, ids, ac := setupTestSession(t, 3)
	setTop(g, num(models.ColorRed, 5))
	setHand(g, ids[0], wild(), num(models.ColorRed, 1), num(models.ColorRed, 2))

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, models.PhaseChoosingColor, g.Phase())
	assert.Equal(t, ids[0], g.CurrentPlayerID(), "turn waits for the color")
	assert.Equal(t, models.TypeWild, g.CurrentCard().Type)
	assert.Equal(t, 2, g.players[ids[0]].CardCount())

	assert.ErrorIs(t, g.SetChosenColor(ids[1], models.ColorBlue), ErrNotYourTurn)
	assert.ErrorIs(t, g.SetChosenColor(ids[0], models.ColorWild), ErrIllegalMove)
	assert.ErrorIs(t, g.FinishColorSelection(), ErrInvalidState)

	require.NoError(t, g.SetChosenColor(ids[0], models.ColorBlue))
	assert.Equal(t, models.PhaseDrawingCard, g.Phase())
	assert.Equal(t, models.ColorBlue, g.CurrentCard().Color)

	require.NoError(t, g.FinishColorSelection())
	assert.Equal(t, models.PhaseWaitingTurn, g.Phase())
	assert.Equal(t, ids[1], g.CurrentPlayerID())
	color, ok := g.ChosenColor()
	require.True(t, ok)
	assert.Equal(t, models.ColorBlue, color)

	assert.Contains(t, ac.types(), "choose_color")
}

func TestWildDrawFourDeferredEffect(t *testing.T) {
	g, ids, _ := setupTestSession(t, 3)
	setTop(g, num(models.ColorRed, 5))
	setHand(g, ids[0], wildFour(), num(models.ColorRed, 1), num(models.ColorRed, 2))
	target := g.players[ids[1]].CardCount()

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, target, g.players[ids[1]].CardCount(), "no effect before the color")

	require.NoError(t, g.SetChosenColor(ids[0], models.ColorYellow))
	assert.Equal(t, target+4, g.players[ids[1]].CardCount())
	require.NoError(t, g.FinishColorSelection())
	assert.Equal(t, ids[2], g.CurrentPlayerID(), "turn passes the target exactly once")
}

func TestNonWildClearsChosenColor(t *testing.T) {
	g, ids, _ := setupTestSession(t, 2)
	setTop(g, wild().WithColor(models.ColorBlue))
	g.chosenColor = colorPtr(models.ColorBlue)
	setHand(g, ids[0], num(models.ColorBlue, 3), num(models.ColorRed, 1), num(models.ColorRed, 2))

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	_, ok := g.ChosenColor()
	assert.False(t, ok)
}

func TestDeferredWildClearsPreviousColor(t *testing.T) {
	g, ids, _ := setupTestSession(t, 2)
	setTop(g, wild().WithColor(models.ColorBlue))
	g.chosenColor = colorPtr(models.ColorBlue)
	setHand(g, ids[0], wild(), num(models.ColorRed, 1), num(models.ColorRed, 2))

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, models.PhaseChoosingColor, g.Phase())
	assert.Equal(t, models.ColorWild, g.CurrentCard().Color)
	_, ok := g.ChosenColor()
	assert.False(t, ok, "an uncolored wild on top carries no override")

	require.NoError(t, g.SetChosenColor(ids[0], models.ColorGreen))
	color, ok := g.ChosenColor()
	require.True(t, ok)
	assert.Equal(t, models.ColorGreen, color)
}

func TestMissedUnoPenalty(t *testing.T) {
	g, ids, ac := setupTestSession(t, 2)
	setTop(g, num(models.ColorRed, 5))
	setHand(g, ids[0], num(models.ColorRed, 1), num(models.ColorBlue, 2))

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, 3, g.players[ids[0]].CardCount(), "two penalty cards plus the one left")
	assert.Contains(t, ac.types(), "uno_penalty")
}

func TestDeclaredUnoAvoidsPenalty(t *testing.T) {
	g, ids, _ := setupTestSession(t, 2)
	setTop(g, num(models.ColorRed, 5))
	setHand(g, ids[0], num(models.ColorRed, 1), num(models.ColorBlue, 2))

	require.NoError(t, g.SayUno(ids[0]))
	assert.True(t, g.GameStateSnapshot().Players[ids[0]].HasUno)
	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.Equal(t, 1, g.players[ids[0]].CardCount())
}

func TestSayUnoOutOfTurn(t *testing.T) {
	g, ids, _ := setupTestSession(t, 2)
	setHand(g, ids[1], num(models.ColorRed, 1), num(models.ColorBlue, 2))
	require.NoError(t, g.SayUno(ids[1]))

	setHand(g, ids[0], num(models.ColorRed, 1), num(models.ColorBlue, 2), num(models.ColorBlue, 3))
	assert.ErrorIs(t, g.SayUno(ids[0]), ErrInvalidState)
	assert.ErrorIs(t, g.SayUno(99), ErrPlayerNotFound)
}

func TestLastCardFinishesGame(t *testing.T) {
	var ended []int64
	players := []*PlayerState{
		NewPlayerState(models.Profile{ID: 1, Username: "a"}),
		NewPlayerState(models.Profile{ID: 2, Username: "b"}),
	}
	g, err := NewGameSession(3, players, Options{
		Shuffler:  seeded(),
		OnGameEnd: func(roomID, winner int64) { ended = append(ended, roomID, winner) },
	})
	require.NoError(t, err)
	setTop(g, num(models.ColorRed, 5))
	setHand(g, 1, num(models.ColorRed, 8))

	require.NoError(t, g.PlayCard(1, 0, nil))
	assert.True(t, g.Finished())
	assert.Equal(t, int64(1), g.WinnerID())
	assert.Equal(t, []int64{3, 1}, ended)
	assert.Equal(t, int64(1), g.GameStateSnapshot().WinnerID)

	assert.ErrorIs(t, g.PlayCard(1, 0, nil), ErrInvalidState)
	_, err = g.DrawCard(1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestWildAsLastCardFinishesOnColorChoice(t *testing.T) {
	g, ids, ac := setupTestSession(t, 2)
	setTop(g, num(models.ColorRed, 5))
	setHand(g, ids[0], wild())

	require.NoError(t, g.PlayCard(ids[0], 0, nil))
	assert.False(t, g.Finished(), "the color is still owed")

	require.NoError(t, g.SetChosenColor(ids[0], models.ColorGreen))
	assert.True(t, g.Finished())
	assert.Equal(t, ids[0], g.WinnerID())
	assert.Equal(t, models.ColorGreen, g.CurrentCard().Color)
	assert.ErrorIs(t, g.FinishColorSelection(), ErrInvalidState)
	assert.Equal(t, models.ActionGameEnd, ac.types()[len(ac.types())-1])
}

func TestDrawAndFinishDrawing(t *testing.T) {
	g, ids, _ := setupTestSession(t, 2)
	before := g.players[ids[0]].CardCount()

	assert.ErrorIs(t, g.FinishDrawing(ids[0]), ErrInvalidState, "nothing drawn yet")
	_, err := g.DrawCard(ids[1])
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = g.DrawCard(ids[0])
	require.NoError(t, err)
	assert.Equal(t, before+1, g.players[ids[0]].CardCount())
	assert.Equal(t, models.PhaseDrawingCard, g.Phase())
	assert.Equal(t, ids[0], g.CurrentPlayerID())

	_, err = g.DrawCard(ids[0])
	assert.ErrorIs(t, err, ErrInvalidState, "one draw per turn")
	assert.ErrorIs(t, g.FinishDrawing(ids[1]), ErrNotYourTurn)

	require.NoError(t, g.FinishDrawing(ids[0]))
	assert.Equal(t, models.PhaseWaitingTurn, g.Phase())
	assert.Equal(t, ids[1], g.CurrentPlayerID())
}

func TestPlayCardDeckExhaustedIsAtomic(t *testing.T) {
	g, ids, _ := setupTestSession(t, 2)
	setTop(g, num(models.ColorBlue, 5))
	g.deck.drawPile = []models.Card{num(models.ColorGreen, 1)}
	setHand(g, ids[0], act(models.ColorBlue, models.TypeDrawTwo), num(models.ColorRed, 1), num(models.ColorRed, 2))
	targetBefore := g.players[ids[1]].CardCount()

	assert.ErrorIs(t, g.PlayCard(ids[0], 0, nil), ErrDeckExhausted)
	assert.Equal(t, 3, g.players[ids[0]].CardCount())
	assert.Equal(t, targetBefore, g.players[ids[1]].CardCount())
	assert.Equal(t, 1, g.Deck().DrawPileSize())
	assert.Equal(t, ids[0], g.CurrentPlayerID())
}

func TestSnapshotHidesHands(t *testing.T) {
	g, ids, _ := setupTestSession(t, 2)
	hand, ok := g.HandSnapshot(ids[0])
	require.True(t, ok)

	snap := g.GameStateSnapshot()
	assert.Equal(t, len(hand.Hand), snap.Players[ids[0]].CardCount)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hand")
	for _, c := range hand.Hand {
		if c.ID != snap.CurrentCard.ID {
			assert.NotContains(t, string(data), `"`+c.ID+`"`)
		}
	}
}

func TestActionTimestampsUseClock(t *testing.T) {
	mClock := quartz.NewMock(t)
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mClock.Set(start)
	ac := &actionCollector{}
	players := []*PlayerState{
		NewPlayerState(models.Profile{ID: 1}),
		NewPlayerState(models.Profile{ID: 2}),
	}
	g, err := NewGameSession(1, players, Options{Shuffler: seeded(), Clock: mClock, OnAction: ac.onAction})
	require.NoError(t, err)

	mClock.Advance(time.Second).MustWait(context.Background())
	_, err = g.DrawCard(1)
	require.NoError(t, err)

	require.Len(t, ac.actions, 2)
	assert.Equal(t, start.UnixMilli(), ac.actions[0].Timestamp)
	assert.Equal(t, start.Add(time.Second).UnixMilli(), ac.actions[1].Timestamp)
	assert.Equal(t, 2, ac.actions[1].ActionIndex)
	assert.Equal(t, g.ID, ac.actions[1].GameID)
}
