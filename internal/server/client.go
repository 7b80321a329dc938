// internal/server/client.go
package server

import (
	"sync"
	"sync/atomic"

	"github.com/coder/quartz"
	"github.com/jason-s-yu/uno/internal/protocol"
)

// SendQueueSize is the number of outbound messages buffered per client.
const SendQueueSize = 256

// Client is one connected peer, independent of its transport.
//
// Messages are queued with Send and written by a single WritePump
// goroutine, which stamps each with the next outbound id and the clock.
type Client struct {
	ID     int64
	Remote string

	out       chan protocol.Message
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	clock    quartz.Clock
	nextID   int64
	lastSeen atomic.Int64
}

func newClient(id int64, remote string, clock quartz.Clock) *Client {
	c := &Client{
		ID:     id,
		Remote: remote,
		out:    make(chan protocol.Message, SendQueueSize),
		done:   make(chan struct{}),
		clock:  clock,
	}
	c.Touch()
	return c
}

// Send queues msg without blocking. A full queue closes the client.
func (c *Client) Send(msg protocol.Message) error {
	select {
	case <-c.done:
		return ErrDisconnected
	default:
	}
	select {
	case c.out <- msg:
		return nil
	default:
		c.CloseWithError(ErrSlowConsumer)
		return ErrSlowConsumer
	}
}

// WritePump drains the send queue through write until the client closes or
// write fails. closeTransport runs once on exit so a blocked reader wakes up.
func (c *Client) WritePump(write func(protocol.Message) error, closeTransport func()) {
	defer closeTransport()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.out:
			c.nextID++
			msg.ID = c.nextID
			msg.Timestamp = c.clock.Now().UnixMilli()
			if err := write(msg); err != nil {
				c.CloseWithError(err)
				return
			}
		}
	}
}

// Touch records inbound activity.
func (c *Client) Touch() { c.lastSeen.Store(c.clock.Now().UnixMilli()) }

// LastSeen is the time of the last inbound message in unix milliseconds.
func (c *Client) LastSeen() int64 { return c.lastSeen.Load() }

// Done is closed once the client is closed.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close stops the write pump; the transport is closed by the pump.
func (c *Client) Close() { c.CloseWithError(nil) }

// CloseWithError closes the client and records why.
func (c *Client) CloseWithError(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		close(c.done)
	})
}

// Err is the reason the client was closed, if any.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.closeErr
	default:
		return nil
	}
}
