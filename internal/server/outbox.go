// internal/server/outbox.go
package server

import (
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/lobby"
	"github.com/jason-s-yu/uno/internal/protocol"
	"github.com/sirupsen/logrus"
)

type delivery struct {
	to  []int64
	msg protocol.Message
}

// outbox collects the messages one command produces so they can be queued
// together, in order, while the room lock is still held.
type outbox struct {
	replyTo int64
	sender  int64
	items   []delivery
	logger  *logrus.Entry
}

func newOutbox(sender, replyTo int64, logger *logrus.Entry) *outbox {
	return &outbox{sender: sender, replyTo: replyTo, logger: logger}
}

// reply adds a direct response to the sender.
func (o *outbox) reply(method protocol.Method, payload interface{}) {
	msg, err := protocol.Reply(o.replyTo, method, payload)
	if err != nil {
		o.logger.WithError(err).Error("encode reply")
		return
	}
	o.items = append(o.items, delivery{to: []int64{o.sender}, msg: msg})
}

func (o *outbox) ok(message string) {
	o.reply(protocol.MethodOK, protocol.Ok{Message: message})
}

// send adds a broadcast to ids.
func (o *outbox) send(ids []int64, method protocol.Method, payload interface{}) {
	if len(ids) == 0 {
		return
	}
	msg, err := protocol.NewMessage(method, payload)
	if err != nil {
		o.logger.WithError(err).Error("encode broadcast")
		return
	}
	o.items = append(o.items, delivery{to: ids, msg: msg})
}

// lobbyUpdate queues the room's roster to all its members. Caller holds room.Mu.
func (o *outbox) lobbyUpdate(room *lobby.Room) {
	o.send(room.PlayerIDsUnsafe(), protocol.MethodLobbyUpdate, room.LobbyStateUnsafe())
}

// gameState queues the public snapshot to all room members. Caller holds room.Mu.
func (o *outbox) gameState(room *lobby.Room, session *game.GameSession) {
	o.send(room.PlayerIDsUnsafe(), protocol.MethodGameState, session.GameStateSnapshot())
}

// hand queues one player's full hand to that player only.
func (o *outbox) hand(session *game.GameSession, playerID int64) {
	h, ok := session.HandSnapshot(playerID)
	if !ok {
		return
	}
	o.send([]int64{playerID}, protocol.MethodPlayerHandUpdate,
		protocol.PlayerHandUpdate{RoomID: session.RoomID, Hand: h.Hand})
}

// hands queues every player's hand to its owner.
func (o *outbox) hands(session *game.GameSession) {
	for _, h := range session.AllHands() {
		o.send([]int64{h.PlayerID}, protocol.MethodPlayerHandUpdate,
			protocol.PlayerHandUpdate{RoomID: session.RoomID, Hand: h.Hand})
	}
}

func (o *outbox) flush(hub *Hub) {
	for _, d := range o.items {
		hub.SendTo(d.to, d.msg)
	}
	o.items = nil
}
