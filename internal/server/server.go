// Package server runs the TCP front end. Each connection gets its own
// reader goroutine that forwards raw chunks into one event channel; a
// single event-loop goroutine owns all connection state and does the
// framing, dispatch and response writes. That keeps per-connection
// request/response ordering without any locking around the dispatcher.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"linguahub/internal/dispatch"
	"linguahub/internal/logging"
	"linguahub/internal/protocol"
	"linguahub/internal/store"
)

const (
	// eventBuffer bounds how many raw chunks can queue ahead of the
	// event loop before readers block.
	eventBuffer = 256

	// readChunkSize is the per-read buffer for connection readers.
	readChunkSize = 4096

	// maxReceiveBuffer caps unframed bytes buffered per connection. A
	// peer that never sends a terminator is cut off here.
	maxReceiveBuffer = 64 * 1024
)

type eventKind int

const (
	evOpen eventKind = iota
	evData
	evClosed
)

type event struct {
	kind eventKind
	conn *Connection
	data []byte
	err  error
}

// Options configures a Server. Zero durations fall back to defaults;
// a nil Logger discards output.
type Options struct {
	Host string
	Port int

	IdleTimeout   time.Duration
	SweepInterval time.Duration
	WriteTimeout  time.Duration

	Logger *slog.Logger
	Store  *store.Store
}

// Server accepts connections and pumps their frames through per
// connection dispatchers.
type Server struct {
	opts Options
	log  *slog.Logger

	listener net.Listener
	registry *registry
	events   chan event
	done     chan struct{}

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a Server. Start must be called before it accepts anything.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server requires a store")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 300 * time.Second
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 30 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	return &Server{
		opts:     opts,
		log:      opts.Logger,
		registry: newRegistry(),
		events:   make(chan event, eventBuffer),
		done:     make(chan struct{}),
	}, nil
}

// Start binds the listener and launches the accept and event loops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.log.Info("server listening", "addr", listener.Addr().String())

	s.wg.Add(2)
	go s.acceptLoop()
	go s.runLoop()
	return nil
}

// Stop closes the listener and every live connection, then waits for
// all goroutines to finish. Safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		// Unblock readers stuck in Read.
		for _, c := range s.registry.list() {
			c.conn.Close()
		}
	})
	s.wg.Wait()
	s.log.Info("server stopped")
}

// Addr returns the bound listen address. Valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ConnectionCount reports the number of live connections.
func (s *Server) ConnectionCount() int { return s.registry.count() }

// Connections returns a snapshot of all live connections.
func (s *Server) Connections() []ConnectionInfo { return s.registry.snapshot() }

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		netConn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
			default:
				if !errors.Is(err, net.ErrClosed) {
					s.log.Error("accept failed", "error", err)
				}
			}
			return
		}

		// The dispatcher is bound to the connection's minted identity
		// so session ownership follows the connection.
		c := newConnection(netConn)
		c.dispatcher = dispatch.New(s.opts.Store, s.log, c.ID)

		if !s.post(event{kind: evOpen, conn: c}) {
			netConn.Close()
			return
		}

		s.wg.Add(1)
		go s.readLoop(c)
	}
}

// post delivers an event to the loop unless the server is stopping.
func (s *Server) post(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *Server) readLoop(c *Connection) {
	defer s.wg.Done()

	buf := make([]byte, readChunkSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if !s.post(event{kind: evData, conn: c, data: data}) {
				return
			}
		}
		if err != nil {
			s.post(event{kind: evClosed, conn: c, err: err})
			return
		}
	}
}

func (s *Server) runLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			for _, c := range s.registry.list() {
				s.teardown(c, "server shutdown")
			}
			return
		case ev := <-s.events:
			switch ev.kind {
			case evOpen:
				s.registry.add(ev.conn)
				s.log.Info("connection opened",
					"connection_id", ev.conn.ID,
					"remote_addr", ev.conn.conn.RemoteAddr().String())
			case evData:
				s.handleData(ev.conn, ev.data)
			case evClosed:
				s.teardown(ev.conn, "peer closed")
			}
		case <-ticker.C:
			s.sweepIdle()
		}
	}
}

// handleData appends a raw chunk to the connection's buffer, extracts
// every complete frame and answers each one. Partial trailing frames
// stay buffered for the next chunk.
func (s *Server) handleData(c *Connection, data []byte) {
	c.touch()
	c.recvBuf.Write(data)

	if c.recvBuf.Len() > maxReceiveBuffer {
		s.log.Warn("receive buffer overflow", "connection_id", c.ID,
			"buffered", c.recvBuf.Len())
		s.teardown(c, "receive buffer overflow")
		return
	}

	msgs, dropped := protocol.Extract(&c.recvBuf)
	if dropped > 0 {
		s.log.Warn("invalid frames dropped", "connection_id", c.ID, "count", dropped)
	}

	for _, m := range msgs {
		resp := c.dispatcher.Dispatch(m)
		c.authenticated.Store(c.dispatcher.Authenticated())
		s.write(c, resp)

		if m.Type == protocol.TypeDisconnectNotification {
			s.teardown(c, "client disconnect")
			return
		}
	}
}

// write sends one response frame. Write failures are logged and the
// frame dropped; the connection stays open until its reader reports
// the error.
func (s *Server) write(c *Connection, m protocol.Message) {
	data, err := m.Encode()
	if err != nil {
		s.log.Error("response encoding failed", "connection_id", c.ID,
			"type", fmt.Sprintf("%#04x", uint16(m.Type)), "error", err)
		return
	}

	c.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	if _, err := c.conn.Write(data); err != nil {
		s.log.Warn("response write failed", "connection_id", c.ID, "error", err)
	}
}

func (s *Server) sweepIdle() {
	now := time.Now()
	for _, c := range s.registry.list() {
		if c.idleFor(now) > s.opts.IdleTimeout {
			s.log.Info("closing idle connection", "connection_id", c.ID,
				"idle", c.idleFor(now).Round(time.Second))
			s.teardown(c, "idle timeout")
		}
	}
}

// teardown releases the connection's session and closes the socket.
// The reader's late close event for an already-torn-down connection is
// a no-op.
func (s *Server) teardown(c *Connection, reason string) {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	s.registry.remove(c.ID)
	c.dispatcher.Release()
	c.conn.Close()
	s.log.Info("connection closed", "connection_id", c.ID, "reason", reason)
}
