// internal/models/lobby.go
package models

// RoomStatus is the coarse lifecycle state reported to clients.
type RoomStatus string

const (
	RoomWaiting    RoomStatus = "WAITING"
	RoomInProgress RoomStatus = "IN_PROGRESS"
	RoomFinished   RoomStatus = "FINISHED"
)

// RoomInfo is one row of the room listing.
type RoomInfo struct {
	RoomID         int64      `json:"roomId"`
	HasPassword    bool       `json:"hasPassword"`
	MaxPlayers     int        `json:"maxPlayers"`
	CurrentPlayers int        `json:"currentPlayers"`
	Status         RoomStatus `json:"status"`
	CreatorName    string     `json:"creatorName"`
	Rules          HouseRules `json:"rules"`
}

// PlayerInfo is one roster entry inside a LobbyUpdate.
type PlayerInfo struct {
	UserID         int64  `json:"userId"`
	Username       string `json:"username"`
	Avatar         string `json:"avatar"`
	IsOwner        bool   `json:"isOwner"`
	CardCount      int    `json:"cardCount"`
	HasUnoDeclared bool   `json:"hasUnoDeclared"`
}

// LobbyState is the roster snapshot broadcast to a room after every roster change.
type LobbyState struct {
	RoomID     int64        `json:"roomId"`
	Players    []PlayerInfo `json:"players"`
	RoomStatus RoomStatus   `json:"roomStatus"`
	Rules      HouseRules   `json:"rules"`
}
