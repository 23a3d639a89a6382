// Package client is the TCP transport used by the CLI and by tests.
// A Client owns one connection and polls it between requests; it is
// not safe for concurrent use by multiple goroutines.
package client

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"linguahub/internal/logging"
	"linguahub/internal/protocol"
)

const readChunkSize = 4096

// Options configures a Client. Zero durations fall back to defaults.
type Options struct {
	Addr string

	DialTimeout  time.Duration
	CallTimeout  time.Duration
	PollInterval time.Duration

	Logger *slog.Logger
}

// Client is a single-connection protocol client.
type Client struct {
	opts Options
	log  *slog.Logger

	conn    net.Conn
	recvBuf bytes.Buffer
	queue   []protocol.Message
	seq     atomic.Uint32
}

// Dial connects to a server.
func Dial(opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 50 * time.Millisecond
	}

	conn, err := net.DialTimeout("tcp", opts.Addr, opts.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Addr, err)
	}
	return &Client{opts: opts, log: opts.Logger, conn: conn}, nil
}

// Close notifies the server and closes the connection. Safe to call
// on an already-closed client.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	// Best effort; the server also handles an abrupt close.
	c.Send(protocol.TypeDisconnectNotification, "")
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Send writes one request frame without waiting for a response and
// returns the sequence number it was sent with.
func (c *Client) Send(t protocol.MessageType, payload string) (uint32, error) {
	if c.conn == nil {
		return 0, ErrNotConnected
	}

	seq := c.seq.Add(1)
	data, err := protocol.NewMessage(t, seq, payload).Encode()
	if err != nil {
		return 0, err
	}
	if _, err := c.conn.Write(data); err != nil {
		return 0, fmt.Errorf("failed to send frame: %w", err)
	}
	return seq, nil
}

// Poll attempts one short read and returns the next buffered message,
// if any. A quiet wire is not an error.
func (c *Client) Poll() (protocol.Message, bool, error) {
	if c.conn == nil {
		return protocol.Message{}, false, ErrNotConnected
	}
	if m, ok := c.pop(); ok {
		return m, true, nil
	}

	c.conn.SetReadDeadline(time.Now().Add(c.opts.PollInterval))
	buf := make([]byte, readChunkSize)
	n, err := c.conn.Read(buf)
	if n > 0 {
		c.recvBuf.Write(buf[:n])
		msgs, dropped := protocol.Extract(&c.recvBuf)
		if dropped > 0 {
			c.log.Warn("invalid frames dropped", "count", dropped)
		}
		c.queue = append(c.queue, msgs...)
	}
	if err != nil {
		if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
			return protocol.Message{}, false, ErrClosed
		}
	}

	m, ok := c.pop()
	return m, ok, nil
}

func (c *Client) pop() (protocol.Message, bool) {
	if len(c.queue) == 0 {
		return protocol.Message{}, false
	}
	m := c.queue[0]
	c.queue = c.queue[1:]
	return m, true
}

// Call sends a request and polls until the matching response arrives
// or the call timeout passes. Responses are matched by sequence
// number; frames for other sequences are discarded.
func (c *Client) Call(t protocol.MessageType, payload string) (protocol.Message, error) {
	seq, err := c.Send(t, payload)
	if err != nil {
		return protocol.Message{}, err
	}

	deadline := time.Now().Add(c.opts.CallTimeout)
	for time.Now().Before(deadline) {
		m, ok, err := c.Poll()
		if err != nil {
			return protocol.Message{}, err
		}
		if !ok {
			continue
		}
		if m.Seq == seq {
			return m, nil
		}
		c.log.Debug("discarding frame for another sequence",
			"got", m.Seq, "want", seq)
	}
	return protocol.Message{}, ErrTimeout
}

// call is Call plus rejection-frame translation: failure frames come
// back as a *ServerError.
func (c *Client) call(t protocol.MessageType, payload string) (protocol.Message, error) {
	m, err := c.Call(t, payload)
	if err != nil {
		return protocol.Message{}, err
	}
	if serr := asServerError(m); serr != nil {
		return m, serr
	}
	return m, nil
}
