// internal/lobby/lobby_store.go
package lobby

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jason-s-yu/uno/internal/auth"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
)

// RoomStore is the in-memory registry of live rooms.
// Room ids are allocated monotonically starting at 1.
type RoomStore struct {
	mu       sync.Mutex
	rooms    map[int64]*Room
	nextID   int64
	hasher   *auth.PasswordHasher
	defaults models.HouseRules
}

// NewRoomStore builds an empty registry. defaults fills any rule a creator
// leaves unset.
func NewRoomStore(hasher *auth.PasswordHasher, defaults models.HouseRules) *RoomStore {
	return &RoomStore{
		rooms:    make(map[int64]*Room),
		hasher:   hasher,
		defaults: game.MergeRules(game.DefaultHouseRules(), defaults),
	}
}

// CreateRoom registers a new room with creator as its only player.
func (s *RoomStore) CreateRoom(creator models.Profile, password string, rules models.HouseRules) (*Room, error) {
	rules = game.MergeRules(s.defaults, rules)
	if err := game.ValidateRules(rules); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	room := newRoom(s.nextID, creator, rules, password, s.hasher)
	room.OnEmpty = s.DeleteRoom
	s.rooms[room.ID] = room
	return room, nil
}

// GetRoom looks a room up by id.
func (s *RoomStore) GetRoom(id int64) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoomNotFound, id)
	}
	return r, nil
}

// FindByPassword returns the oldest joinable room protected by password.
// When every match is full or playing, the oldest match is returned so the
// join reports why it cannot be entered.
func (s *RoomStore) FindByPassword(password string) (*Room, error) {
	if password == "" {
		return nil, ErrInvalidPassword
	}
	var fallback *Room
	for _, r := range s.snapshot() {
		if !r.matchesPassword(password) {
			continue
		}
		r.Mu.Lock()
		closed := r.closed
		joinable := !closed && !r.GameRunningUnsafe() && len(r.players) < r.Rules.MaxPlayers
		r.Mu.Unlock()
		if joinable {
			return r, nil
		}
		if fallback == nil && !closed {
			fallback = r
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, ErrInvalidPassword
}

// ResolveJoin picks the room a join request targets: by id when roomID is
// set, otherwise by password. viaPassword reports which path was taken.
func (s *RoomStore) ResolveJoin(roomID *int64, password string) (room *Room, viaPassword bool, err error) {
	if roomID != nil {
		room, err = s.GetRoom(*roomID)
		return room, false, err
	}
	room, err = s.FindByPassword(password)
	return room, true, err
}

// DeleteRoom removes a room from the registry.
func (s *RoomStore) DeleteRoom(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Len is the number of live rooms.
func (s *RoomStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// ListRooms returns one RoomInfo per live room, ordered by id.
// Each room is locked only while its own row is built.
func (s *RoomStore) ListRooms() []models.RoomInfo {
	rooms := s.snapshot()
	out := make([]models.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		r.Mu.Lock()
		if !r.closed {
			out = append(out, r.InfoUnsafe())
		}
		r.Mu.Unlock()
	}
	return out
}

// snapshot copies the room set, sorted by id, so callers can lock rooms
// without holding the store lock.
func (s *RoomStore) snapshot() []*Room {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

// RoomsOf returns every live room whose roster includes playerID.
func (s *RoomStore) RoomsOf(playerID int64) []*Room {
	var out []*Room
	for _, r := range s.snapshot() {
		r.Mu.Lock()
		if r.HasPlayerUnsafe(playerID) {
			out = append(out, r)
		}
		r.Mu.Unlock()
	}
	return out
}

// Leave removes playerID from room and destroys the room if it became empty.
// notify, when set, runs while the room is still locked with the roster
// snapshot and the remaining members, so updates can be queued in order.
func (s *RoomStore) Leave(room *Room, playerID int64, notify func(state models.LobbyState, members []int64)) error {
	room.Mu.Lock()
	empty, err := room.LeaveUnsafe(playerID)
	if err != nil {
		room.Mu.Unlock()
		return err
	}
	if notify != nil {
		notify(room.LobbyStateUnsafe(), room.PlayerIDsUnsafe())
	}
	onEmpty := room.OnEmpty
	room.Mu.Unlock()

	if empty && onEmpty != nil {
		onEmpty(room.ID)
	}
	return nil
}
