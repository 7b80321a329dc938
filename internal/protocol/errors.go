// internal/protocol/errors.go
package protocol

import (
	"errors"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/lobby"
)

var (
	ErrUnknownMethod = errors.New("unknown method")
	ErrBadPayload    = errors.New("malformed payload")
)

// Wire error codes carried in Error payloads.
const (
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeInvalidPassword  = "INVALID_PASSWORD"
	CodeRoomFull         = "ROOM_FULL"
	CodeAlreadyStarted   = "ALREADY_STARTED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeNotEnoughPlayers = "NOT_ENOUGH_PLAYERS"
	CodeNotInRoom        = "NOT_IN_ROOM"
	CodeGameNotStarted   = "GAME_NOT_STARTED"
	CodeNotYourTurn      = "NOT_YOUR_TURN"
	CodeInvalidIndex     = "INVALID_INDEX"
	CodeIllegalMove      = "ILLEGAL_MOVE"
	CodeInvalidState     = "INVALID_STATE"
	CodeDeckExhausted    = "DECK_EXHAUSTED"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeUnknownMethod    = "UNKNOWN_METHOD"
	CodeBadPayload       = "BAD_PAYLOAD"
	CodeInternal         = "INTERNAL"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{lobby.ErrRoomNotFound, CodeRoomNotFound},
	{lobby.ErrInvalidPassword, CodeInvalidPassword},
	{lobby.ErrRoomFull, CodeRoomFull},
	{lobby.ErrAlreadyStarted, CodeAlreadyStarted},
	{lobby.ErrPermissionDenied, CodePermissionDenied},
	{lobby.ErrNotEnoughPlayers, CodeNotEnoughPlayers},
	{lobby.ErrNotInRoom, CodeNotInRoom},
	{lobby.ErrGameNotStarted, CodeGameNotStarted},
	{game.ErrNotYourTurn, CodeNotYourTurn},
	{game.ErrInvalidIndex, CodeInvalidIndex},
	{game.ErrIllegalMove, CodeIllegalMove},
	{game.ErrInvalidState, CodeInvalidState},
	{game.ErrDeckExhausted, CodeDeckExhausted},
	{game.ErrPlayerNotFound, CodePlayerNotFound},
	{ErrUnknownMethod, CodeUnknownMethod},
	{ErrBadPayload, CodeBadPayload},
}

// ErrorCode maps err to its wire code. Unrecognized errors are INTERNAL.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

// ErrorPayload builds the Error payload for err.
func ErrorPayload(err error) Error {
	return Error{Message: err.Error(), Code: ErrorCode(err)}
}
