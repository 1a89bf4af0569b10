/*
Package chat contains the core logic of the room chat server: the wire envelope,
the user and room registries, the per-connection lifecycle, and message fan-out.

This file defines the Message envelope shared by the wire protocol and the core,
together with the discriminator set and the inbound decode step.
*/
package chat

import (
	"encoding/json"

	"roomcast/internal/pkg/errs"
)

// MessageType is the envelope discriminator carried in the "type" field.
type MessageType string

const (
	TypeLogin       MessageType = "LOGIN"
	TypeCreateRoom  MessageType = "CREATE_ROOM"
	TypeJoinRoom    MessageType = "JOIN_ROOM"
	TypeLeaveRoom   MessageType = "LEAVE_ROOM"
	TypeSendMessage MessageType = "SEND_MESSAGE"
	TypeLogout      MessageType = "LOGOUT"
)

// Known reports whether t belongs to the enumerated discriminator set.
func (t MessageType) Known() bool {
	switch t {
	case TypeLogin, TypeCreateRoom, TypeJoinRoom, TypeLeaveRoom, TypeSendMessage, TypeLogout:
		return true
	}
	return false
}

// Status strings written back to the sender. Fan-out frames are re-serialized
// envelopes; everything else on the server-to-client path is one of these
// plain UTF-8 lines.
const (
	ReplyLoginSuccessful  = "Login successful: "
	ReplyRoomCreated      = "Room created: "
	ReplyRoomJoined       = "Joined room: "
	ReplyRoomLeft         = "Left room: "
	ReplyLogoutSuccessful = "Logout successful"
)

// Message is the envelope carrying one protocol message in either direction.
//
// Datetime uses the pattern "yyyy-MM-dd HH:mm:ss" in the sender's local time;
// the server treats it as opaque and preserves it on fan-out.
type Message struct {
	Type     MessageType `json:"type"`
	UserID   string      `json:"userId,omitempty"`
	RoomID   string      `json:"roomId,omitempty"`
	Content  string      `json:"content,omitempty"`
	Datetime string      `json:"datetime,omitempty"`
}

// DecodeMessage parses one inbound frame into a Message.
// A frame that is not valid JSON yields ErrInvalidFormat; a frame that parses
// but carries no discriminator yields ErrInvalidType. Discriminators outside
// the enumerated set are left to the dispatcher, which answers ErrUnknownType.
func DecodeMessage(frame []byte) (*Message, *errs.CustomError) {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return nil, errs.NewError(errs.ErrInvalidFormat)
	}

	if msg.Type == "" {
		return nil, errs.NewError(errs.ErrInvalidType)
	}

	return &msg, nil
}
