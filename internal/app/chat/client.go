/*
Package chat contains the core logic of the room chat server.

This file defines the Client struct, representing one accepted TCP connection.
It manages the connection's lifecycle, the read and write loops, the bound user
id, and the disconnect cleanup that keeps the registries consistent.
*/
package chat

import (
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"roomcast/internal/pkg/logx"
	"roomcast/internal/pkg/randx"
)

const (
	// timeout duration for writing a frame to the connection.
	writeWait = 10 * time.Second

	// sendQueueSize is the capacity of the per-connection outbound queue.
	sendQueueSize = 256
)

// Client represents an active TCP connection and, once identified, its bound user.
type Client struct {
	// id is the connection id, used only for log correlation.
	id string

	// underlying TCP connection.
	conn net.Conn

	// dispatcher routes decoded envelopes to the per-operation handlers.
	dispatcher *Dispatcher

	// userID is the identity bound by the first successful LOGIN, empty while
	// the connection is unidentified. Read and written only by the read loop.
	userID string

	// idleTimeout is the read deadline applied before every frame read.
	idleTimeout time.Duration

	// send is the buffered queue of outbound frames drained by WritePump.
	send chan []byte

	// done is closed exactly once when the connection shuts down.
	done chan struct{}

	closeOnce sync.Once

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an accepted connection.
func NewClient(conn net.Conn, dispatcher *Dispatcher, idleTimeout time.Duration) *Client {
	connID := randx.ConnID()

	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Str("remote_addr", conn.RemoteAddr().String()).
		Logger()

	return &Client{
		id:          connID,
		conn:        conn,
		dispatcher:  dispatcher,
		idleTimeout: idleTimeout,
		send:        make(chan []byte, sendQueueSize),
		done:        make(chan struct{}),
		logger:      clientLogger,
	}
}

// ReadPump reads frames from the connection and dispatches them in arrival
// order. It returns when the peer closes, the idle timer fires, or the frame
// size limit is exceeded, and always runs disconnect cleanup on the way out.
//
// All handler invocations for this connection happen on this goroutine, so no
// two of them ever run concurrently.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	scanner := NewFrameScanner(c.conn)

	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout)); err != nil {
			c.logger.Error().Err(err).Msg("Failed to set read deadline")
			return
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					c.logger.Info().Dur("idle_timeout", c.idleTimeout).Msg("Connection idle timeout reached")
				} else {
					c.logger.Info().Err(err).Msg("Connection read terminated")
				}
			}
			return
		}

		frame := scanner.Bytes()
		if len(frame) == 0 {
			continue
		}

		c.dispatcher.Dispatch(c, frame)
	}
}

// WritePump drains the send queue onto the connection. It exits when the
// connection shuts down or a write fails, closing the connection either way so
// ReadPump unblocks and cleanup runs.
func (c *Client) WritePump() {
	defer func() {
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case <-c.done:
			return

		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if _, err := c.conn.Write(frame); err != nil {
				c.logger.Info().Err(err).Msg("Error writing frame")
				return
			}
		}
	}
}

// Enqueue queues one outbound frame for this connection. Delivery is
// best-effort: a closed connection or a full queue drops the frame and is
// reported to the caller, never to the peer that triggered the write.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping frame")
		return false
	}
}

// EnqueueStatus queues a plain status reply for this connection.
func (c *Client) EnqueueStatus(status string) {
	if !c.Enqueue(StatusFrame(status)) {
		c.logger.Warn().Str("status", status).Msg("Failed to queue status reply")
	}
}

// cleanupOnDisconnect removes this connection's user binding and room
// memberships, then shuts the connection down. Safe to run after LOGOUT has
// already emptied the registries; every step is idempotent.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Str("user_id", c.userID).Msg("Connection cleanup starting")

	if c.userID != "" {
		if c.dispatcher.users.RemoveConn(c.userID, c) {
			c.dispatcher.rooms.LeaveAll(c.userID)
		}
	}

	c.Shutdown()
}

// Shutdown closes the connection exactly once. The done channel unblocks
// WritePump and makes any concurrent Enqueue a no-op.
func (c *Client) Shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error")
		}
	})
}
