package server

import (
	"bytes"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"linguahub/internal/dispatch"
)

// Connection is one accepted TCP connection. The receive buffer and
// dispatcher are touched only by the server's event loop; lastActivity
// is atomic because the registry snapshots it from other goroutines.
type Connection struct {
	ID   string
	conn net.Conn

	dispatcher *dispatch.Dispatcher
	recvBuf    bytes.Buffer

	connectedAt   time.Time
	lastActivity  atomic.Int64 // unix nanoseconds
	authenticated atomic.Bool  // mirrors dispatcher state for snapshots
	closed        atomic.Bool
}

func newConnection(conn net.Conn) *Connection {
	c := &Connection{
		ID:          uuid.NewString(),
		conn:        conn,
		connectedAt: time.Now(),
	}
	c.touch()
	return c
}

func (c *Connection) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

func (c *Connection) idleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, c.lastActivity.Load()))
}

// ConnectionInfo is a point-in-time snapshot for introspection.
type ConnectionInfo struct {
	ID           string
	RemoteAddr   string
	State        string // "connected" or "authenticated"
	ConnectedAt  time.Time
	LastActivity time.Time
}

func (c *Connection) info() ConnectionInfo {
	state := "connected"
	if c.authenticated.Load() {
		state = "authenticated"
	}
	return ConnectionInfo{
		ID:           c.ID,
		RemoteAddr:   c.conn.RemoteAddr().String(),
		State:        state,
		ConnectedAt:  c.connectedAt,
		LastActivity: time.Unix(0, c.lastActivity.Load()),
	}
}
