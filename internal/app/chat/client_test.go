package chat

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startPipeClient runs a full Client (both pumps) over a pipe, the way the
// accept loop does, and returns the peer end plus a channel closed when
// ReadPump (and therefore disconnect cleanup) has finished.
func startPipeClient(t *testing.T, d *Dispatcher, idleTimeout time.Duration) (net.Conn, <-chan struct{}) {
	t.Helper()

	server, peer := net.Pipe()
	client := NewClient(server, d, idleTimeout)

	done := make(chan struct{})
	go client.WritePump()
	go func() {
		client.ReadPump()
		close(done)
	}()

	t.Cleanup(func() {
		client.Shutdown()
		peer.Close()
	})

	return peer, done
}

func writeLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()

	require.NoError(t, conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
}

func readLine(t *testing.T, conn net.Conn) string {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, maxFrameSize)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

// Abrupt disconnect: after the peer drops, the bound user is gone from the
// user registry and from every room, and emptied rooms are deleted.
func TestClientDisconnectCleanup(t *testing.T) {
	users, rooms, d := newTestRegistries()
	peer, done := startPipeClient(t, d, time.Minute)

	writeLine(t, peer, `{"type":"LOGIN","userId":"a"}`)
	assert.Equal(t, "Login successful: a\n", readLine(t, peer))

	writeLine(t, peer, `{"type":"JOIN_ROOM","roomId":"r","userId":"a"}`)
	assert.Equal(t, "Joined room: r\n", readLine(t, peer))

	peer.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not run after disconnect")
	}

	bound, _ := users.Lookup("a")
	assert.Nil(t, bound)
	assert.False(t, rooms.Contains("r"))
}

// Idle timeout: a silent connection is closed by the server and cleaned up.
func TestClientIdleTimeout(t *testing.T) {
	users, _, d := newTestRegistries()
	peer, done := startPipeClient(t, d, 100*time.Millisecond)

	writeLine(t, peer, `{"type":"LOGIN","userId":"a"}`)
	assert.Equal(t, "Login successful: a\n", readLine(t, peer))

	// Send nothing further.
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("idle timeout did not fire")
	}

	bound, _ := users.Lookup("a")
	assert.Nil(t, bound)

	// The server closed the transport; the peer sees the stream end.
	// net.Pipe rejects SetReadDeadline once the remote end is closed, and a
	// closed pipe never blocks reads, so the deadline is best-effort here.
	_ = peer.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 16)
	_, err := peer.Read(buf)
	assert.Error(t, err)
}

// Disconnect of a connection orphaned by a duplicate LOGIN must not evict the
// newer binding or the user's room memberships.
func TestClientOrphanedDisconnectKeepsNewBinding(t *testing.T) {
	users, rooms, d := newTestRegistries()
	peer1, done1 := startPipeClient(t, d, time.Minute)
	peer2, _ := startPipeClient(t, d, time.Minute)

	writeLine(t, peer1, `{"type":"LOGIN","userId":"a"}`)
	assert.Equal(t, "Login successful: a\n", readLine(t, peer1))

	writeLine(t, peer2, `{"type":"LOGIN","userId":"a"}`)
	assert.Equal(t, "Login successful: a\n", readLine(t, peer2))

	writeLine(t, peer2, `{"type":"JOIN_ROOM","roomId":"r","userId":"a"}`)
	assert.Equal(t, "Joined room: r\n", readLine(t, peer2))

	peer1.Close()
	select {
	case <-done1:
	case <-time.After(2 * time.Second):
		t.Fatal("orphan cleanup did not run")
	}

	bound, _ := users.Lookup("a")
	assert.NotNil(t, bound, "newer binding must survive the orphan's disconnect")
	assert.ElementsMatch(t, []string{"a"}, rooms.Members("r"))
}

// An oversized frame terminates the connection and runs cleanup.
func TestClientOversizedFrameDisconnects(t *testing.T) {
	users, _, d := newTestRegistries()
	peer, done := startPipeClient(t, d, time.Minute)

	writeLine(t, peer, `{"type":"LOGIN","userId":"a"}`)
	assert.Equal(t, "Login successful: a\n", readLine(t, peer))

	big := make([]byte, maxFrameSize)
	for i := range big {
		big[i] = 'x'
	}
	require.NoError(t, peer.SetWriteDeadline(time.Now().Add(2*time.Second)))
	// The server may close the connection mid-write; the write error is irrelevant.
	peer.Write(big)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("oversized frame did not terminate the connection")
	}

	bound, _ := users.Lookup("a")
	assert.Nil(t, bound)
}
