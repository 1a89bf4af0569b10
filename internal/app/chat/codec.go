/*
Package chat contains the core logic of the room chat server.

This file implements the wire framing: newline-delimited frames over a byte
stream. Each frame is either one JSON object (an envelope) or one plain UTF-8
status string. Partial lines are retained across reads by the scanner; a line
that exceeds the frame size limit terminates the connection.
*/
package chat

import (
	"bufio"
	"encoding/json"
	"io"
)

const (
	// maxFrameSize is the maximum allowed size (in bytes) of a single inbound frame.
	maxFrameSize = 8192

	// frameDelimiter terminates every outbound frame.
	frameDelimiter = '\n'
)

// NewFrameScanner returns a Scanner that yields one frame per line read from r,
// buffering partial frames between reads and capping frames at maxFrameSize.
func NewFrameScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), maxFrameSize)
	return scanner
}

// EncodeEnvelope serializes msg into a single outbound frame, delimiter included.
func EncodeEnvelope(msg *Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return append(payload, frameDelimiter), nil
}

// StatusFrame wraps a plain status string into an outbound frame.
func StatusFrame(status string) []byte {
	frame := make([]byte, 0, len(status)+1)
	frame = append(frame, status...)
	return append(frame, frameDelimiter)
}
