package models

import "github.com/google/uuid"

// GameAction captures a single engine mutation for the action log.
type GameAction struct {
	GameID      uuid.UUID              `json:"game_id"`
	RoomID      int64                  `json:"room_id"`
	ActionIndex int                    `json:"action_index"`
	ActorID     int64                  `json:"actor_id"`
	ActionType  string                 `json:"action_type"`
	Payload     map[string]interface{} `json:"payload"`
	Timestamp   int64                  `json:"timestamp"`
}

// ActionGameEnd is the action type recorded when a player empties their hand.
const ActionGameEnd = "game_end"
