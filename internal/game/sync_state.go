// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// PlayerGameInfo is the public view of one player: counts, never cards.
type PlayerGameInfo struct {
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	CardCount int    `json:"cardCount"`
	HasUno    bool   `json:"hasUno"`
}

// GameState is the snapshot broadcast to every connection in a room.
type GameState struct {
	GameID          uuid.UUID                `json:"gameId"`
	RoomID          int64                    `json:"roomId"`
	Players         map[int64]PlayerGameInfo `json:"players"`
	PlayerOrder     []int64                  `json:"playerOrder"`
	CurrentCard     models.Card              `json:"currentCard"`
	CurrentPlayerID int64                    `json:"currentPlayerId"`
	Direction       models.Direction         `json:"direction"`
	GamePhase       models.Phase             `json:"gamePhase"`
	ChosenColor     *models.CardColor        `json:"chosenColor,omitempty"`
	DrawPileSize    int                      `json:"drawPileSize"`
	WinnerID        int64                    `json:"winnerId,omitempty"`
}

// PlayerHand is a full hand, delivered only to its owner.
type PlayerHand struct {
	PlayerID int64
	Hand     []models.Card
}

// GameStateSnapshot produces the public snapshot. Hands are reduced to counts.
func (g *GameSession) GameStateSnapshot() GameState {
	infos := make(map[int64]PlayerGameInfo, len(g.players))
	for id, p := range g.players {
		infos[id] = PlayerGameInfo{
			Username:  p.Username,
			Avatar:    p.Avatar,
			CardCount: p.CardCount(),
			HasUno:    p.HasDeclaredUno,
		}
	}
	var chosen *models.CardColor
	if g.chosenColor != nil {
		c := *g.chosenColor
		chosen = &c
	}
	return GameState{
		GameID:          g.ID,
		RoomID:          g.RoomID,
		Players:         infos,
		PlayerOrder:     g.PlayerOrder(),
		CurrentCard:     g.CurrentCard(),
		CurrentPlayerID: g.CurrentPlayerID(),
		Direction:       g.direction,
		GamePhase:       g.phase,
		ChosenColor:     chosen,
		DrawPileSize:    g.deck.DrawPileSize(),
		WinnerID:        g.winnerID,
	}
}

// HandSnapshot copies one player's hand.
func (g *GameSession) HandSnapshot(playerID int64) (PlayerHand, bool) {
	p, ok := g.players[playerID]
	if !ok {
		return PlayerHand{}, false
	}
	return PlayerHand{PlayerID: playerID, Hand: p.HandCopy()}, true
}

// AllHands copies every hand, in turn order.
func (g *GameSession) AllHands() []PlayerHand {
	out := make([]PlayerHand, 0, len(g.playerOrder))
	for _, id := range g.playerOrder {
		h, _ := g.HandSnapshot(id)
		out = append(out, h)
	}
	return out
}
