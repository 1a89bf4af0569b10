/*
Package chat contains the core logic of the room chat server.

This file defines the Dispatcher, which decodes inbound frames, routes each
envelope to its per-operation handler, and performs SEND_MESSAGE fan-out to
every member of the target room.
*/
package chat

import (
	"github.com/rs/zerolog"

	"roomcast/internal/pkg/errs"
	"roomcast/internal/pkg/logx"
)

// Dispatcher holds the two shared registries and implements every protocol
// operation. A single Dispatcher serves all connections; the registries carry
// all the synchronization it needs.
type Dispatcher struct {
	users *UserRegistry
	rooms *RoomRegistry

	// structured logger with dispatcher context.
	logger zerolog.Logger
}

// NewDispatcher constructs a Dispatcher over the given registries.
func NewDispatcher(users *UserRegistry, rooms *RoomRegistry) *Dispatcher {
	dispatcherLogger := logx.Logger().With().Str("component", "Dispatcher").Logger()

	return &Dispatcher{
		users:  users,
		rooms:  rooms,
		logger: dispatcherLogger,
	}
}

// Dispatch decodes one inbound frame and routes it to the matching handler.
// Protocol errors answer with their status string and keep the connection
// open; they never affect other connections or registry integrity.
func (d *Dispatcher) Dispatch(c *Client, frame []byte) {
	msg, decodeErr := DecodeMessage(frame)
	if decodeErr != nil {
		d.logger.Warn().
			Str("conn_id", c.id).
			Int("frame_len", len(frame)).
			Str("error", decodeErr.Message).
			Msg("Rejected inbound frame")

		c.EnqueueStatus(decodeErr.Reply)
		return
	}

	switch msg.Type {
	case TypeLogin:
		d.handleLogin(c, msg)

	case TypeCreateRoom:
		d.handleCreateRoom(c, msg)

	case TypeJoinRoom:
		d.handleJoinRoom(c, msg)

	case TypeLeaveRoom:
		d.handleLeaveRoom(c, msg)

	case TypeSendMessage:
		d.handleSendMessage(c, msg)

	case TypeLogout:
		d.handleLogout(c, msg)

	default:
		d.logger.Warn().
			Str("conn_id", c.id).
			Str("msg_type", string(msg.Type)).
			Msg("Client sent unsupported message type")

		c.EnqueueStatus(errs.NewError(errs.ErrUnknownType).Reply)
	}
}

// handleLogin binds the asserted user id to this connection.
// Identity is self-asserted; a duplicate LOGIN under the same id replaces the
// earlier binding (last-writer-wins) and the earlier connection is orphaned.
func (d *Dispatcher) handleLogin(c *Client, msg *Message) {
	d.users.Add(msg.UserID, c)
	c.userID = msg.UserID

	d.logger.Info().
		Str("conn_id", c.id).
		Str("user_id", msg.UserID).
		Msg("User logged in")

	c.EnqueueStatus(ReplyLoginSuccessful + msg.UserID)
}

func (d *Dispatcher) handleCreateRoom(c *Client, msg *Message) {
	d.rooms.Join(msg.RoomID, msg.UserID)

	d.logger.Info().
		Str("conn_id", c.id).
		Str("user_id", msg.UserID).
		Str("room_id", msg.RoomID).
		Msg("Room created")

	c.EnqueueStatus(ReplyRoomCreated + msg.RoomID)
}

func (d *Dispatcher) handleJoinRoom(c *Client, msg *Message) {
	d.rooms.Join(msg.RoomID, msg.UserID)

	d.logger.Info().
		Str("conn_id", c.id).
		Str("user_id", msg.UserID).
		Str("room_id", msg.RoomID).
		Msg("User joined room")

	c.EnqueueStatus(ReplyRoomJoined + msg.RoomID)
}

func (d *Dispatcher) handleLeaveRoom(c *Client, msg *Message) {
	d.rooms.Leave(msg.RoomID, msg.UserID)

	d.logger.Info().
		Str("conn_id", c.id).
		Str("user_id", msg.UserID).
		Str("room_id", msg.RoomID).
		Msg("User left room")

	c.EnqueueStatus(ReplyRoomLeft + msg.RoomID)
}

// handleSendMessage fans the envelope out to every member of the target room,
// sender included, preserving the envelope verbatim (datetime in particular).
// Membership of the sender is not checked. Delivery is best-effort: members
// without a live connection are skipped and a full peer queue drops the frame
// without aborting the iteration or producing a reply to the sender.
func (d *Dispatcher) handleSendMessage(c *Client, msg *Message) {
	members := d.rooms.Members(msg.RoomID)

	frame, err := EncodeEnvelope(msg)
	if err != nil {
		d.logger.Error().Err(err).
			Str("conn_id", c.id).
			Str("room_id", msg.RoomID).
			Msg("Failed to encode envelope for fan-out")
		return
	}

	delivered := 0
	for _, memberID := range members {
		peer, lookupErr := d.users.Lookup(memberID)
		if lookupErr != nil {
			d.logger.Warn().
				Str("room_id", msg.RoomID).
				Str("error", lookupErr.Message).
				Msg("Skipping room member with invalid user id")
			continue
		}
		if peer == nil {
			// Member disconnected between snapshot and delivery.
			continue
		}

		if peer.Enqueue(frame) {
			delivered++
		}
	}

	d.logger.Debug().
		Str("conn_id", c.id).
		Str("user_id", msg.UserID).
		Str("room_id", msg.RoomID).
		Int("members", len(members)).
		Int("delivered", delivered).
		Msg("Message fanned out")
}

// handleLogout unbinds the user id and removes it from every room containing
// it, then acknowledges. The transport stays open until the client closes it.
func (d *Dispatcher) handleLogout(c *Client, msg *Message) {
	d.users.Remove(msg.UserID)
	d.rooms.LeaveAll(msg.UserID)

	if c.userID == msg.UserID {
		c.userID = ""
	}

	d.logger.Info().
		Str("conn_id", c.id).
		Str("user_id", msg.UserID).
		Msg("User logged out")

	c.EnqueueStatus(ReplyLogoutSuccessful)
}
