// internal/server/server.go
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jason-s-yu/uno/internal/protocol"
	"github.com/sirupsen/logrus"
)

// writeTimeout bounds a single envelope write to a TCP peer.
const writeTimeout = 10 * time.Second

// Server accepts TCP connections speaking newline-delimited JSON envelopes
// and hands each one to the Dispatcher.
type Server struct {
	addr       string
	dispatcher *Dispatcher
	logger     *logrus.Logger

	mu       sync.Mutex
	listener net.Listener
	running  atomic.Bool
	wg       sync.WaitGroup
}

func NewServer(addr string, dispatcher *Dispatcher, logger *logrus.Logger) *Server {
	return &Server{addr: addr, dispatcher: dispatcher, logger: logger}
}

// Listen binds the listening socket. Serve calls it if needed.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.running.Store(true)
	return nil
}

// Addr is the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Running reports whether the accept loop should keep going.
func (s *Server) Running() bool { return s.running.Load() }

// Serve runs the accept loop until ctx is done or Close is called, then
// waits for every connection handler to finish.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	s.logger.WithField("addr", ln.Addr().String()).Info("tcp server listening")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-stop:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if !s.Running() {
				s.wg.Wait()
				return ErrServerClosed
			}
			s.logger.WithError(err).Error("accept failed")
			s.Close()
			s.wg.Wait()
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Close flips the running flag, closes the listener and every live client.
func (s *Server) Close() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	err := ln.Close()
	s.dispatcher.Hub().CloseAll()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	client := s.dispatcher.Hub().Register(remote)
	log := s.logger.WithFields(logrus.Fields{"client": client.ID, "remote": remote})
	log.Info("client connected")

	if !s.Running() {
		client.Close()
	}

	enc := protocol.NewEncoder(conn)
	var closeConn sync.Once
	closeTransport := func() { closeConn.Do(func() { conn.Close() }) }
	write := func(msg protocol.Message) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
		return enc.Encode(msg)
	}
	go client.WritePump(write, closeTransport)
	// A client closed while its pump is blocked in a write must still
	// release the socket so the read loop below ends.
	go func() {
		<-client.Done()
		closeTransport()
	}()

	dec := protocol.NewDecoder(conn)
	err := s.dispatcher.Serve(client, dec.Decode)
	closeTransport()

	switch {
	case errors.Is(err, io.EOF):
		log.Info("client disconnected")
	case client.Err() != nil:
		log.WithError(client.Err()).Warn("client closed")
	case !s.Running():
		log.Info("client closed by shutdown")
	default:
		log.WithError(err).Warn("client read failed")
	}
}
