// internal/server/errors.go
package server

import "errors"

var (
	// ErrDisconnected is returned by Client.Send once the client is gone.
	ErrDisconnected = errors.New("client disconnected")
	// ErrSlowConsumer closes a client whose send queue overflowed.
	ErrSlowConsumer = errors.New("client send queue full")
	// ErrServerClosed is returned by Serve after Close.
	ErrServerClosed = errors.New("server closed")
)
