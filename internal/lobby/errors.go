package lobby

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidPassword  = errors.New("invalid room password")
	ErrRoomFull         = errors.New("room is full")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrPermissionDenied = errors.New("only the room creator can do that")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNotInRoom        = errors.New("player is not in this room")
	ErrGameNotStarted   = errors.New("game has not started")
)
