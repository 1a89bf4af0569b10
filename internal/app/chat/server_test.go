package chat

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomcast/internal/configs"
)

func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Environment: "test",
		Port:        0, // ephemeral
		IdleTimeout: time.Minute,
		AcceptRate:  1000,
		AcceptBurst: 1000,
	}
}

func startTestServer(t *testing.T, cfg *configs.AppConfig) *Server {
	t.Helper()

	srv := NewServer(cfg)
	require.NoError(t, srv.Start())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	return srv
}

func dialTestServer(t *testing.T, srv *Server) (net.Conn, *bufio.Scanner) {
	t.Helper()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, NewFrameScanner(conn)
}

func send(t *testing.T, conn net.Conn, frame string) {
	t.Helper()

	require.NoError(t, conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err := conn.Write([]byte(frame + "\n"))
	require.NoError(t, err)
}

func recv(t *testing.T, conn net.Conn, scanner *bufio.Scanner) string {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.True(t, scanner.Scan(), "expected a frame, got error: %v", scanner.Err())
	return scanner.Text()
}

// End-to-end two-user fan-out over real TCP.
func TestServerTwoUserFanOut(t *testing.T) {
	srv := startTestServer(t, testConfig())

	connA, scanA := dialTestServer(t, srv)
	connB, scanB := dialTestServer(t, srv)

	send(t, connA, `{"type":"LOGIN","userId":"a","datetime":"2024-01-01 00:00:00"}`)
	assert.Equal(t, "Login successful: a", recv(t, connA, scanA))

	send(t, connB, `{"type":"LOGIN","userId":"b","datetime":"2024-01-01 00:00:00"}`)
	assert.Equal(t, "Login successful: b", recv(t, connB, scanB))

	send(t, connA, `{"type":"CREATE_ROOM","roomId":"r","userId":"a","datetime":"2024-01-01 00:00:01"}`)
	assert.Equal(t, "Room created: r", recv(t, connA, scanA))

	send(t, connB, `{"type":"JOIN_ROOM","roomId":"r","userId":"b","datetime":"2024-01-01 00:00:02"}`)
	assert.Equal(t, "Joined room: r", recv(t, connB, scanB))

	send(t, connA, `{"type":"SEND_MESSAGE","roomId":"r","userId":"a","content":"hi","datetime":"2024-01-01 00:00:05"}`)

	for _, peer := range []struct {
		conn net.Conn
		scan *bufio.Scanner
	}{{connA, scanA}, {connB, scanB}} {
		msg, decodeErr := DecodeMessage([]byte(recv(t, peer.conn, peer.scan)))
		require.Nil(t, decodeErr)
		assert.Equal(t, TypeSendMessage, msg.Type)
		assert.Equal(t, "a", msg.UserID)
		assert.Equal(t, "r", msg.RoomID)
		assert.Equal(t, "hi", msg.Content)
	}
}

// Messages from one sender arrive at each recipient in send order.
func TestServerPerSenderOrdering(t *testing.T) {
	srv := startTestServer(t, testConfig())

	connA, scanA := dialTestServer(t, srv)
	connB, scanB := dialTestServer(t, srv)

	send(t, connA, `{"type":"LOGIN","userId":"a"}`)
	recv(t, connA, scanA)
	send(t, connB, `{"type":"LOGIN","userId":"b"}`)
	recv(t, connB, scanB)

	send(t, connB, `{"type":"JOIN_ROOM","roomId":"r","userId":"b"}`)
	recv(t, connB, scanB)

	send(t, connA, `{"type":"SEND_MESSAGE","roomId":"r","userId":"a","content":"one"}`)
	send(t, connA, `{"type":"SEND_MESSAGE","roomId":"r","userId":"a","content":"two"}`)
	send(t, connA, `{"type":"SEND_MESSAGE","roomId":"r","userId":"a","content":"three"}`)

	for _, want := range []string{"one", "two", "three"} {
		msg, decodeErr := DecodeMessage([]byte(recv(t, connB, scanB)))
		require.Nil(t, decodeErr)
		assert.Equal(t, want, msg.Content)
	}
}

// Abrupt disconnect over TCP: cleanup empties both registries in bounded time.
func TestServerDisconnectCleanup(t *testing.T) {
	srv := startTestServer(t, testConfig())

	conn, scanner := dialTestServer(t, srv)

	send(t, conn, `{"type":"LOGIN","userId":"a"}`)
	recv(t, conn, scanner)
	send(t, conn, `{"type":"JOIN_ROOM","roomId":"r","userId":"a"}`)
	recv(t, conn, scanner)

	stats := srv.Stats()
	assert.Equal(t, 1, stats.OnlineUsers)
	assert.Equal(t, 1, stats.RoomCount)

	conn.Close()

	require.Eventually(t, func() bool {
		s := srv.Stats()
		return s.OnlineUsers == 0 && s.RoomCount == 0
	}, 2*time.Second, 20*time.Millisecond)
}

// Idle timeout over TCP: the server closes a silent connection and cleans up.
func TestServerIdleTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTimeout = 150 * time.Millisecond
	srv := startTestServer(t, cfg)

	conn, scanner := dialTestServer(t, srv)

	send(t, conn, `{"type":"LOGIN","userId":"a"}`)
	recv(t, conn, scanner)

	// Send nothing; expect the server to close the connection.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	assert.False(t, scanner.Scan(), "server should have closed the idle connection")

	require.Eventually(t, func() bool {
		return srv.Stats().OnlineUsers == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServerStats(t *testing.T) {
	srv := startTestServer(t, testConfig())

	connA, scanA := dialTestServer(t, srv)
	connB, scanB := dialTestServer(t, srv)

	send(t, connA, `{"type":"LOGIN","userId":"a"}`)
	recv(t, connA, scanA)
	send(t, connB, `{"type":"LOGIN","userId":"b"}`)
	recv(t, connB, scanB)
	send(t, connA, `{"type":"CREATE_ROOM","roomId":"r","userId":"a"}`)
	recv(t, connA, scanA)
	send(t, connB, `{"type":"JOIN_ROOM","roomId":"r","userId":"b"}`)
	recv(t, connB, scanB)

	stats := srv.Stats()
	assert.Equal(t, 2, stats.OnlineUsers)
	assert.Equal(t, 1, stats.RoomCount)
	assert.Equal(t, map[string]int{"r": 2}, stats.RoomSizes)
}

// Shutdown closes live connections and returns before the context expires.
func TestServerShutdown(t *testing.T) {
	srv := startTestServer(t, testConfig())

	conn, scanner := dialTestServer(t, srv)
	send(t, conn, `{"type":"LOGIN","userId":"a"}`)
	recv(t, conn, scanner)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// The peer observes the close.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	assert.False(t, scanner.Scan())
}

// The accept limiter drops connections beyond the per-IP burst.
func TestServerAcceptRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.AcceptRate = 0.001
	cfg.AcceptBurst = 1
	srv := startTestServer(t, cfg)

	connA, scanA := dialTestServer(t, srv)
	send(t, connA, `{"type":"LOGIN","userId":"a"}`)
	assert.Equal(t, "Login successful: a", recv(t, connA, scanA))

	// The second connection from the same IP is admitted by the kernel but
	// closed by the accept loop before any handler starts.
	connB, scanB := dialTestServer(t, srv)
	require.NoError(t, connB.SetReadDeadline(time.Now().Add(2*time.Second)))
	assert.False(t, scanB.Scan(), "rate-limited connection should be closed")
}
