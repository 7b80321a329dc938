// internal/server/dispatcher.go
package server

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/lobby"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/jason-s-yu/uno/internal/protocol"
	"github.com/sirupsen/logrus"
)

// DispatcherOptions carries the optional hooks of a Dispatcher.
type DispatcherOptions struct {
	// OnAction receives every game mutation. It runs under the room lock.
	OnAction game.OnActionFunc
	// NewShuffler seeds each new GameSession. Nil uses a time-seeded source.
	NewShuffler func() game.Shuffler
}

// Dispatcher routes decoded commands to rooms and sessions and queues the
// resulting acknowledgements and broadcasts.
//
// Every handler that touches a room holds room.Mu from validation through
// queueing its outbound messages, so one room's commands are serialized and
// its broadcasts reach each connection in order.
type Dispatcher struct {
	store  *lobby.RoomStore
	hub    *Hub
	logger *logrus.Logger
	opts   DispatcherOptions
}

func NewDispatcher(store *lobby.RoomStore, hub *Hub, logger *logrus.Logger, opts DispatcherOptions) *Dispatcher {
	return &Dispatcher{store: store, hub: hub, logger: logger, opts: opts}
}

// Hub returns the client registry.
func (d *Dispatcher) Hub() *Hub { return d.hub }

// Store returns the room registry.
func (d *Dispatcher) Store() *lobby.RoomStore { return d.store }

// Serve runs the read loop for c until read fails, then cleans up after it.
// Any read error, including a clean EOF, counts as a disconnect.
func (d *Dispatcher) Serve(c *Client, read func() (protocol.Message, error)) error {
	defer d.Disconnect(c)
	for {
		msg, err := read()
		if err != nil {
			return err
		}
		c.Touch()
		d.Handle(c, msg)
	}
}

// Handle processes one inbound message from c.
func (d *Dispatcher) Handle(c *Client, msg protocol.Message) {
	log := d.logger.WithFields(logrus.Fields{
		"client": c.ID,
		"method": msg.Method,
	})
	out := newOutbox(c.ID, msg.ID, log)

	req, err := protocol.DecodeRequest(msg)
	if err == nil {
		err = d.dispatch(c, req, out)
	}
	if err != nil {
		log.WithError(err).Debug("request rejected")
		reply, encErr := protocol.Reply(msg.ID, protocol.MethodError, protocol.ErrorPayload(err))
		if encErr != nil {
			log.WithError(encErr).Error("encode error reply")
			return
		}
		_ = c.Send(reply)
	}
}

func (d *Dispatcher) dispatch(c *Client, req protocol.Request, out *outbox) error {
	switch r := req.(type) {
	case protocol.CreateRoom:
		return d.handleCreateRoom(c, r, out)
	case protocol.JoinRoom:
		return d.handleJoinRoom(c, r, out)
	case protocol.LeaveRoom:
		return d.handleLeaveRoom(c, r, out)
	case protocol.StartGame:
		return d.handleStartGame(c, r, out)
	case protocol.PlayCard:
		return d.handlePlayCard(c, r, out)
	case protocol.DrawCard:
		return d.handleDrawCard(c, r, out)
	case protocol.ChooseColor:
		return d.handleChooseColor(c, r, out)
	case protocol.SayUno:
		return d.handleSayUno(c, r, out)
	case protocol.Chat:
		return d.handleChat(c, r, out)
	case protocol.GetRooms:
		out.reply(protocol.MethodRoomsList, protocol.RoomsList{Rooms: d.store.ListRooms()})
		out.flush(d.hub)
		return nil
	case protocol.Ping:
		out.reply(protocol.MethodPong, protocol.Pong{Message: "pong"})
		out.flush(d.hub)
		return nil
	default:
		return fmt.Errorf("%w: %T", protocol.ErrUnknownMethod, req)
	}
}

func (d *Dispatcher) handleCreateRoom(c *Client, r protocol.CreateRoom, out *outbox) error {
	profile := models.NewProfile(c.ID, r.Username, r.Avatar)
	room, err := d.store.CreateRoom(profile, r.Password, r.Rules())
	if err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrBadPayload, err)
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	out.reply(protocol.MethodRoomCreated, protocol.CreateRoomResponse{
		RoomID:       room.ID,
		Password:     r.Password,
		IsSuccessful: true,
	})
	out.lobbyUpdate(room)
	out.flush(d.hub)

	d.logger.WithFields(logrus.Fields{"client": c.ID, "room": room.ID}).Info("room created")
	return nil
}

func (d *Dispatcher) handleJoinRoom(c *Client, r protocol.JoinRoom, out *outbox) error {
	room, viaPassword, err := d.store.ResolveJoin(r.RoomID, r.Password)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	if err := room.JoinUnsafe(models.NewProfile(c.ID, r.Username, r.Avatar), r.Password, viaPassword); err != nil {
		return err
	}
	out.reply(protocol.MethodJoinRoomResponse, protocol.JoinRoomResponse{RoomID: room.ID, IsSuccessful: true})
	out.lobbyUpdate(room)
	// A member joining again mid-game gets the table state back.
	if session, err := room.SessionUnsafe(); err == nil && session.HasPlayer(c.ID) {
		out.send([]int64{c.ID}, protocol.MethodGameState, session.GameStateSnapshot())
		out.hand(session, c.ID)
	}
	out.flush(d.hub)

	d.logger.WithFields(logrus.Fields{"client": c.ID, "room": room.ID}).Info("joined room")
	return nil
}

func (d *Dispatcher) handleLeaveRoom(c *Client, r protocol.LeaveRoom, out *outbox) error {
	room, err := d.store.GetRoom(r.RoomID)
	if err != nil {
		return err
	}
	err = d.store.Leave(room, c.ID, func(state models.LobbyState, members []int64) {
		out.ok("left room")
		out.send(members, protocol.MethodLobbyUpdate, state)
		out.flush(d.hub)
	})
	if err != nil {
		return err
	}
	d.logger.WithFields(logrus.Fields{"client": c.ID, "room": room.ID}).Info("left room")
	return nil
}

func (d *Dispatcher) handleStartGame(c *Client, r protocol.StartGame, out *outbox) error {
	room, err := d.store.GetRoom(r.RoomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	opts := game.Options{
		Clock:     d.hub.Clock(),
		OnAction:  d.opts.OnAction,
		OnGameEnd: d.gameEnded,
	}
	if d.opts.NewShuffler != nil {
		opts.Shuffler = d.opts.NewShuffler()
	}
	session, err := room.StartGameUnsafe(c.ID, opts)
	if err != nil {
		return err
	}
	out.ok("game started")
	out.lobbyUpdate(room)
	out.gameState(room, session)
	out.hands(session)
	out.flush(d.hub)

	d.logger.WithFields(logrus.Fields{
		"room":    room.ID,
		"game":    session.ID,
		"players": len(session.PlayerOrder()),
	}).Info("game started")
	return nil
}

func (d *Dispatcher) handlePlayCard(c *Client, r protocol.PlayCard, out *outbox) error {
	room, err := d.store.GetRoom(r.RoomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	session, err := sessionFor(room, c.ID)
	if err != nil {
		return err
	}
	if err := session.PlayCard(c.ID, r.CardIndex, r.ChosenColor); err != nil {
		return err
	}
	out.ok("card played")
	out.gameState(room, session)
	out.hands(session)
	if session.Finished() {
		out.lobbyUpdate(room)
	}
	out.flush(d.hub)
	return nil
}

// handleDrawCard draws and passes the turn in one critical section. The
// intermediate DRAWING_CARD snapshot is queued before the final one.
func (d *Dispatcher) handleDrawCard(c *Client, r protocol.DrawCard, out *outbox) error {
	room, err := d.store.GetRoom(r.RoomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	session, err := sessionFor(room, c.ID)
	if err != nil {
		return err
	}
	if _, err := session.DrawCard(c.ID); err != nil {
		return err
	}
	out.ok("card drawn")
	out.gameState(room, session)
	out.hand(session, c.ID)
	if err := session.FinishDrawing(c.ID); err != nil {
		d.logger.WithError(err).WithField("room", room.ID).Error("finish drawing")
	}
	out.gameState(room, session)
	out.flush(d.hub)
	return nil
}

// handleChooseColor colorizes the pending wild and completes the selection
// in one critical section, queueing both snapshots.
func (d *Dispatcher) handleChooseColor(c *Client, r protocol.ChooseColor, out *outbox) error {
	room, err := d.store.GetRoom(r.RoomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	session, err := sessionFor(room, c.ID)
	if err != nil {
		return err
	}
	if err := session.SetChosenColor(c.ID, r.ChosenColor); err != nil {
		return err
	}
	out.ok("color chosen")
	out.gameState(room, session)
	if session.Finished() {
		out.hands(session)
		out.lobbyUpdate(room)
		out.flush(d.hub)
		return nil
	}
	if err := session.FinishColorSelection(); err != nil {
		d.logger.WithError(err).WithField("room", room.ID).Error("finish color selection")
	}
	out.gameState(room, session)
	out.hands(session)
	out.flush(d.hub)
	return nil
}

func (d *Dispatcher) handleSayUno(c *Client, r protocol.SayUno, out *outbox) error {
	room, err := d.store.GetRoom(r.RoomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	session, err := sessionFor(room, c.ID)
	if err != nil {
		return err
	}
	if err := session.SayUno(c.ID); err != nil {
		return err
	}
	out.ok("UNO!")
	out.gameState(room, session)
	out.flush(d.hub)
	return nil
}

func (d *Dispatcher) handleChat(c *Client, r protocol.Chat, out *outbox) error {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return fmt.Errorf("%w: empty chat message", protocol.ErrBadPayload)
	}
	room, err := d.store.GetRoom(r.RoomID)
	if err != nil {
		return err
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	profile, ok := room.PlayerUnsafe(c.ID)
	if !ok {
		return lobby.ErrNotInRoom
	}
	others := make([]int64, 0)
	for _, id := range room.PlayerIDsUnsafe() {
		if id != c.ID {
			others = append(others, id)
		}
	}
	out.ok("sent")
	out.send(others, protocol.MethodChat, protocol.ChatMessage{
		RoomID:    room.ID,
		UserID:    c.ID,
		Username:  profile.Username,
		Text:      text,
		Timestamp: d.hub.Clock().Now().UnixMilli(),
	})
	out.flush(d.hub)
	return nil
}

// Disconnect removes c from every room it is in, tells the remaining members,
// and forgets the client.
func (d *Dispatcher) Disconnect(c *Client) {
	for _, room := range d.store.RoomsOf(c.ID) {
		out := newOutbox(c.ID, 0, d.logger.WithField("client", c.ID))
		err := d.store.Leave(room, c.ID, func(state models.LobbyState, members []int64) {
			out.send(members, protocol.MethodLobbyUpdate, state)
			out.flush(d.hub)
		})
		if err != nil {
			continue
		}
		d.logger.WithFields(logrus.Fields{"client": c.ID, "room": room.ID}).Info("removed disconnected player")
	}
	d.hub.Unregister(c.ID)
	c.Close()
}

func (d *Dispatcher) gameEnded(roomID, winnerID int64) {
	d.logger.WithFields(logrus.Fields{"room": roomID, "winner": winnerID}).Info("game finished")
}

// sessionFor returns room's session for a member. Caller holds room.Mu.
func sessionFor(room *lobby.Room, playerID int64) (*game.GameSession, error) {
	if !room.HasPlayerUnsafe(playerID) {
		return nil, lobby.ErrNotInRoom
	}
	return room.SessionUnsafe()
}
