package websocket

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/go-game-backend/internal/server/socket"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func expect(t *testing.T, conn *websocket.Conn, want string) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	messageType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, messageType)
	assert.Equal(t, want, string(data))
}

func send(t *testing.T, conn *websocket.Conn, line string) {
	t.Helper()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(line)))
}

func TestGateway(t *testing.T) {
	// Given: a gateway in front of a game server
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	games := socket.New(logger, socket.Options{BoardSize: 9, TurnTimeout: time.Minute, Banner: "Welcome"}, nil)

	httpServer := httptest.NewServer(New(logger, games, time.Second).Handler())
	defer httpServer.Close()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"

	// When: two clients connect, log in and queue
	henk := dial(t, url)
	piet := dial(t, url)
	expect(t, henk, "HELLO~Welcome")
	expect(t, piet, "HELLO~Welcome")

	send(t, henk, "LOGIN~Henk")
	expect(t, henk, "ACCEPTED~Henk")
	send(t, piet, "LOGIN~Piet")
	expect(t, piet, "ACCEPTED~Piet")

	send(t, henk, "QUEUE")
	expect(t, henk, "QUEUED")
	send(t, piet, "QUEUE")
	expect(t, piet, "QUEUED")

	// Then: they play over text frames
	expect(t, henk, "GAME_STARTED~Henk,Piet~9")
	expect(t, piet, "GAME_STARTED~Henk,Piet~9")
	expect(t, henk, "MAKE_MOVE")

	send(t, henk, "MOVE~4,4")
	expect(t, henk, "MOVE~40~BLACK")
	expect(t, piet, "MOVE~40~BLACK")
	expect(t, piet, "MAKE_MOVE")
}

func TestGateway_OversizedFrameClosesSession(t *testing.T) {
	// Given: a connected client
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	games := socket.New(logger, socket.Options{BoardSize: 9, Banner: "Welcome"}, nil)

	httpServer := httptest.NewServer(New(logger, games, time.Second).Handler())
	defer httpServer.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(httpServer.URL, "http")+"/ws")
	expect(t, conn, "HELLO~Welcome")

	// When: it sends a frame longer than a protocol line may be
	send(t, conn, "LOGIN~"+strings.Repeat("a", socket.MaxLineSize))

	// Then: the server drops the connection instead of reading it
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseMessageTooBig), "unexpected error %v", err)
}
