// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/protocol"
	"github.com/jason-s-yu/uno/internal/server"
	"github.com/sirupsen/logrus"
)

// writeTimeout bounds a single frame write so a stalled peer cannot pin the
// write pump forever.
const writeTimeout = 10 * time.Second

// RoomWSHandler upgrades to a WebSocket carrying the same envelopes as the
// TCP transport, one JSON text frame per message. Each socket becomes a
// server.Client so it can share rooms with TCP players.
func RoomWSHandler(logger *logrus.Logger, d *server.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the uno subprotocol")
			return
		}
		c.SetReadLimit(protocol.MaxFrameSize)

		client := d.Hub().Register(remoteAddr)
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go client.WritePump(func(msg protocol.Message) error {
			return writeMessage(ctx, c, msg)
		}, func() {
			if errors.Is(client.Err(), server.ErrSlowConsumer) {
				c.Close(websocket.StatusPolicyViolation, "slow consumer")
			}
			cancel()
		})

		err = d.Serve(client, func() (protocol.Message, error) {
			return readMessage(ctx, c)
		})

		switch status := websocket.CloseStatus(err); {
		case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
			middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, nil)
			c.Close(websocket.StatusNormalClosure, "")
		case errors.Is(err, protocol.ErrBadFrame):
			middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, err)
			c.Close(BadFrameError, "malformed envelope")
		case errors.Is(ctx.Err(), context.Canceled) && r.Context().Err() == nil:
			middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, client.Err())
			c.Close(ShutdownError, "connection closed by server")
		default:
			middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, err)
		}
	}
}

// readMessage returns the next envelope. Binary frames are ignored.
func readMessage(ctx context.Context, c *websocket.Conn) (protocol.Message, error) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return protocol.Message{}, err
		}
		if typ != websocket.MessageText {
			continue
		}
		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return protocol.Message{}, fmt.Errorf("%w: %v", protocol.ErrBadFrame, err)
		}
		return msg, nil
	}
}

func writeMessage(ctx context.Context, c *websocket.Conn, msg protocol.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Method, err)
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageText, data)
}
