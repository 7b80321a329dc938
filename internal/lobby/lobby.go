// internal/lobby/lobby.go
package lobby

import (
	"fmt"
	"sync"

	"github.com/jason-s-yu/uno/internal/auth"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
)

// Room is a group of players that can start a match together.
//
// Mu serializes every read-validate-mutate-snapshot sequence on the room and
// on its GameSession. Methods with the Unsafe suffix assume the caller holds
// Mu; callers must release it before writing to any socket.
type Room struct {
	ID    int64
	Rules models.HouseRules

	creatorID      int64
	passwordDigest string
	hasher         *auth.PasswordHasher

	// players is the roster in join order.
	players []models.Profile
	session *game.GameSession
	closed  bool

	// OnEmpty is called once the last player leaves, after Mu is released.
	// The store sets it to remove the room from the registry.
	OnEmpty func(roomID int64)

	Mu sync.Mutex
}

func newRoom(id int64, creator models.Profile, rules models.HouseRules, password string, hasher *auth.PasswordHasher) *Room {
	r := &Room{
		ID:        id,
		Rules:     rules,
		creatorID: creator.ID,
		hasher:    hasher,
		players:   []models.Profile{creator},
	}
	if password != "" {
		r.passwordDigest = hasher.Digest(password)
	}
	return r
}

// HasPassword reports whether joining by id needs a password. It never changes
// after creation so it is safe without the lock.
func (r *Room) HasPassword() bool { return r.passwordDigest != "" }

func (r *Room) matchesPassword(password string) bool {
	if !r.HasPassword() {
		return false
	}
	ok, err := r.hasher.Compare(password, r.passwordDigest)
	return err == nil && ok
}

// CreatorIDUnsafe returns the player allowed to start the game.
func (r *Room) CreatorIDUnsafe() int64 { return r.creatorID }

// GameStartedUnsafe reports whether a session exists.
func (r *Room) GameStartedUnsafe() bool { return r.session != nil }

// GameRunningUnsafe reports whether a session exists and is not finished.
func (r *Room) GameRunningUnsafe() bool { return r.session != nil && !r.session.Finished() }

// ClosedUnsafe reports whether the room was destroyed by its last player leaving.
func (r *Room) ClosedUnsafe() bool { return r.closed }

// HasPlayerUnsafe reports roster membership.
func (r *Room) HasPlayerUnsafe(playerID int64) bool {
	return r.indexOf(playerID) >= 0
}

func (r *Room) indexOf(playerID int64) int {
	for i, p := range r.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// PlayerUnsafe returns the roster profile for playerID.
func (r *Room) PlayerUnsafe(playerID int64) (models.Profile, bool) {
	if i := r.indexOf(playerID); i >= 0 {
		return r.players[i], true
	}
	return models.Profile{}, false
}

// PlayerIDsUnsafe returns the roster ids in join order.
func (r *Room) PlayerIDsUnsafe() []int64 {
	ids := make([]int64, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}

// JoinUnsafe adds profile to the roster. viaPassword means the room was
// found by its password, so the password has already been checked.
// Joining a room one is already in only refreshes the profile.
func (r *Room) JoinUnsafe(profile models.Profile, password string, viaPassword bool) error {
	if r.closed {
		return fmt.Errorf("%w: %d", ErrRoomNotFound, r.ID)
	}
	if i := r.indexOf(profile.ID); i >= 0 {
		r.players[i] = profile
		return nil
	}
	if r.GameRunningUnsafe() {
		return ErrAlreadyStarted
	}
	if r.HasPassword() && !viaPassword && !r.matchesPassword(password) {
		return ErrInvalidPassword
	}
	if len(r.players) >= r.Rules.MaxPlayers {
		return fmt.Errorf("%w: %d/%d", ErrRoomFull, len(r.players), r.Rules.MaxPlayers)
	}
	r.players = append(r.players, profile)
	return nil
}

// LeaveUnsafe removes playerID. A running game is aborted since its turn
// order can no longer be completed, and creatorship passes to the earliest
// remaining player. empty is true when the roster became empty; the room is
// then closed and the caller must run OnEmpty after releasing Mu.
func (r *Room) LeaveUnsafe(playerID int64) (empty bool, err error) {
	i := r.indexOf(playerID)
	if i < 0 {
		return false, ErrNotInRoom
	}
	r.players = append(r.players[:i], r.players[i+1:]...)
	if r.GameRunningUnsafe() {
		r.session = nil
	}
	if len(r.players) == 0 {
		r.closed = true
		r.session = nil
		return true, nil
	}
	if r.creatorID == playerID {
		r.creatorID = r.players[0].ID
	}
	return false, nil
}

// StartGameUnsafe builds a fresh GameSession from the current roster.
// Profiles are copied, so later roster edits do not reach the session.
// A finished session may be replaced for a rematch.
func (r *Room) StartGameUnsafe(requesterID int64, opts game.Options) (*game.GameSession, error) {
	if r.closed {
		return nil, fmt.Errorf("%w: %d", ErrRoomNotFound, r.ID)
	}
	if !r.HasPlayerUnsafe(requesterID) {
		return nil, ErrNotInRoom
	}
	if requesterID != r.creatorID {
		return nil, ErrPermissionDenied
	}
	if r.GameRunningUnsafe() {
		return nil, ErrAlreadyStarted
	}
	if len(r.players) < game.MinPlayers {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPlayers, len(r.players), game.MinPlayers)
	}

	states := make([]*game.PlayerState, len(r.players))
	for i, p := range r.players {
		states[i] = game.NewPlayerState(p)
	}
	opts.Rules = r.Rules
	session, err := game.NewGameSession(r.ID, states, opts)
	if err != nil {
		return nil, err
	}
	r.session = session
	return session, nil
}

// SessionUnsafe returns the room's session, running or finished.
func (r *Room) SessionUnsafe() (*game.GameSession, error) {
	if r.session == nil {
		return nil, ErrGameNotStarted
	}
	return r.session, nil
}

// StatusUnsafe derives the coarse room status.
func (r *Room) StatusUnsafe() models.RoomStatus {
	switch {
	case r.session == nil:
		return models.RoomWaiting
	case r.session.Finished():
		return models.RoomFinished
	default:
		return models.RoomInProgress
	}
}

// LobbyStateUnsafe snapshots the roster for a LOBBY_UPDATE broadcast.
func (r *Room) LobbyStateUnsafe() models.LobbyState {
	infos := make([]models.PlayerInfo, len(r.players))
	for i, p := range r.players {
		info := models.PlayerInfo{
			UserID:   p.ID,
			Username: p.Username,
			Avatar:   p.Avatar,
			IsOwner:  p.ID == r.creatorID,
		}
		if r.session != nil {
			if ps, ok := r.session.Player(p.ID); ok {
				info.CardCount = ps.CardCount()
				info.HasUnoDeclared = ps.HasDeclaredUno
			}
		}
		infos[i] = info
	}
	return models.LobbyState{
		RoomID:     r.ID,
		Players:    infos,
		RoomStatus: r.StatusUnsafe(),
		Rules:      r.Rules,
	}
}

// InfoUnsafe returns the room's row in the room listing.
func (r *Room) InfoUnsafe() models.RoomInfo {
	info := models.RoomInfo{
		RoomID:         r.ID,
		HasPassword:    r.HasPassword(),
		MaxPlayers:     r.Rules.MaxPlayers,
		CurrentPlayers: len(r.players),
		Status:         r.StatusUnsafe(),
		Rules:          r.Rules,
	}
	if i := r.indexOf(r.creatorID); i >= 0 {
		info.CreatorName = r.players[i].Username
	}
	return info
}
