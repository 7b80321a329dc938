// internal/protocol/payloads.go
package protocol

import (
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
)

// Client to server.

type CreateRoom struct {
	Password            string `json:"password,omitempty"`
	MaxPlayers          int    `json:"maxPlayers,omitempty"`
	Username            string `json:"username,omitempty"`
	Avatar              string `json:"avatar,omitempty"`
	AllowStacking       bool   `json:"allowStacking"`
	AllowNumberStacking bool   `json:"allowNumberStacking"`
	InfiniteDrawing     bool   `json:"infiniteDrawing"`
}

// Rules returns the house rules requested at creation.
func (c CreateRoom) Rules() models.HouseRules {
	return models.HouseRules{
		MaxPlayers:          c.MaxPlayers,
		AllowStacking:       c.AllowStacking,
		AllowNumberStacking: c.AllowNumberStacking,
		InfiniteDrawing:     c.InfiniteDrawing,
	}
}

// JoinRoom targets a room by id, or by password alone when RoomID is absent.
type JoinRoom struct {
	RoomID   *int64 `json:"roomId,omitempty"`
	Password string `json:"password,omitempty"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

type LeaveRoom struct {
	RoomID int64 `json:"roomId"`
}

type StartGame struct {
	RoomID int64 `json:"roomId"`
}

type PlayCard struct {
	RoomID      int64             `json:"roomId"`
	CardIndex   int               `json:"cardIndex"`
	ChosenColor *models.CardColor `json:"chosenColor,omitempty"`
}

type DrawCard struct {
	RoomID int64 `json:"roomId"`
}

type ChooseColor struct {
	RoomID      int64            `json:"roomId"`
	ChosenColor models.CardColor `json:"chosenColor"`
}

type SayUno struct {
	RoomID int64 `json:"roomId"`
}

type Chat struct {
	RoomID int64  `json:"roomId"`
	Text   string `json:"text"`
}

type GetRooms struct{}

type Ping struct{}

// Server to client.

type CreateRoomResponse struct {
	RoomID       int64  `json:"roomId"`
	Password     string `json:"password,omitempty"`
	IsSuccessful bool   `json:"isSuccessful"`
}

type JoinRoomResponse struct {
	RoomID       int64 `json:"roomId"`
	IsSuccessful bool  `json:"isSuccessful"`
}

type Ok struct {
	Message string `json:"message"`
}

type Error struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type Pong struct {
	Message string `json:"message"`
}

type RoomsList struct {
	Rooms []models.RoomInfo `json:"rooms"`
}

type LobbyUpdate = models.LobbyState

type GameState = game.GameState

type PlayerHandUpdate struct {
	RoomID int64         `json:"roomId"`
	Hand   []models.Card `json:"hand"`
}

// ChatMessage is the relayed form of a Chat request.
type ChatMessage struct {
	RoomID    int64  `json:"roomId"`
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
