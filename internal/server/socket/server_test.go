package socket

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/go-game-backend/internal/entity"
)

const (
	testBanner  = "Welcome"
	readTimeout = 2 * time.Second
)

type recorder struct {
	results chan entity.Result
}

func newRecorder() *recorder {
	return &recorder{results: make(chan entity.Result, 8)}
}

func (that *recorder) RecordResult(_ context.Context, result entity.Result) error {
	that.results <- result
	return nil
}

func (that *recorder) next(t *testing.T) entity.Result {
	t.Helper()

	select {
	case result := <-that.results:
		return result
	case <-time.After(readTimeout):
		t.Fatal("no game result recorded")
		return entity.Result{}
	}
}

type testClient struct {
	t     *testing.T
	conn  net.Conn
	lines chan string
}

func newTestClient(t *testing.T, conn net.Conn) *testClient {
	t.Helper()

	client := &testClient{t: t, conn: conn, lines: make(chan string, 64)}

	go func() {
		defer close(client.lines)

		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			client.lines <- scanner.Text()
		}
	}()

	return client
}

func (that *testClient) send(line string) {
	that.t.Helper()

	_, err := that.conn.Write([]byte(line + "\n"))
	require.NoError(that.t, err)
}

func (that *testClient) expect(want string) {
	that.t.Helper()

	select {
	case line, ok := <-that.lines:
		require.True(that.t, ok, "connection closed while waiting for %q", want)
		assert.Equal(that.t, want, line)
	case <-time.After(readTimeout):
		that.t.Fatalf("timed out waiting for %q", want)
	}
}

func (that *testClient) expectClosed() {
	that.t.Helper()

	select {
	case line, ok := <-that.lines:
		require.False(that.t, ok, "unexpected message %q", line)
	case <-time.After(readTimeout):
		that.t.Fatal("connection was not closed")
	}
}

func (that *testClient) login(username string) {
	that.t.Helper()

	that.send("LOGIN~" + username)
	that.expect("ACCEPTED~" + username)
}

func newTestServer(t *testing.T, turnTimeout time.Duration, stats resultRecorder) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(logger, Options{
		BoardSize:    9,
		TurnTimeout:  turnTimeout,
		WriteTimeout: time.Second,
		Banner:       testBanner,
	}, stats)
}

// connect runs a session over an in-memory pipe and consumes the greeting.
func connect(t *testing.T, server *Server) *testClient {
	t.Helper()

	serverSide, clientSide := net.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		server.HandleConn(NewTCPConn(serverSide, time.Second))
	}()

	t.Cleanup(func() {
		_ = clientSide.Close()
		<-done
	})

	client := newTestClient(t, clientSide)
	client.expect("HELLO~" + testBanner)

	return client
}

// startGame logs in Henk and Piet and pairs them with Henk playing black.
func startGame(t *testing.T, server *Server) (*testClient, *testClient) {
	t.Helper()

	henk := connect(t, server)
	piet := connect(t, server)
	henk.login("Henk")
	piet.login("Piet")

	henk.send("QUEUE")
	henk.expect("QUEUED")
	piet.send("QUEUE")
	piet.expect("QUEUED")

	henk.expect("GAME_STARTED~Henk,Piet~9")
	piet.expect("GAME_STARTED~Henk,Piet~9")
	henk.expect("MAKE_MOVE")

	return henk, piet
}

func TestServer_Login(t *testing.T) {
	t.Run("A valid name is accepted", func(t *testing.T) {
		server := newTestServer(t, time.Minute, nil)
		henk := connect(t, server)

		henk.send("login~Henk")

		henk.expect("ACCEPTED~Henk")
	})

	t.Run("A name held by another connection is rejected", func(t *testing.T) {
		// Given: Henk is logged in
		server := newTestServer(t, time.Minute, nil)
		connect(t, server).login("Henk")

		// When: another connection claims the same name
		other := connect(t, server)
		other.send("LOGIN~Henk")

		// Then: it is rejected and may choose another name
		other.expect("REJECTED~User by that name already logged in!")
		other.login("Piet")
	})

	t.Run("Invalid names are rejected", func(t *testing.T) {
		server := newTestServer(t, time.Minute, nil)
		client := connect(t, server)

		client.send("LOGIN~Henk,Piet")

		client.expect("REJECTED~Invalid username!")
	})

	t.Run("A second login is rejected", func(t *testing.T) {
		server := newTestServer(t, time.Minute, nil)
		henk := connect(t, server)
		henk.login("Henk")

		henk.send("LOGIN~Piet")

		henk.expect("REJECTED~Already logged in as Henk!")
	})
}

func TestServer_ProtocolErrors(t *testing.T) {
	t.Run("Malformed lines are reported and the connection stays open", func(t *testing.T) {
		server := newTestServer(t, time.Minute, nil)
		client := connect(t, server)

		client.send("JUMP~3")
		client.expect("ERROR~Unknown command: JUMP")

		client.send("LOGIN")
		client.expect("ERROR~Missing argument for LOGIN!")

		client.login("Henk")
	})

	t.Run("Game commands outside a game are refused", func(t *testing.T) {
		server := newTestServer(t, time.Minute, nil)
		client := connect(t, server)
		client.login("Henk")

		for _, line := range []string{"MOVE~1", "PASS", "RESIGN"} {
			client.send(line)
			client.expect("ERROR~You are not in a game!")
		}
	})

	t.Run("A malformed position is reported", func(t *testing.T) {
		server := newTestServer(t, time.Minute, nil)
		henk, _ := startGame(t, server)

		henk.send("MOVE~abc")

		henk.expect("ERROR~Invalid position: abc")
	})
}

func TestServer_Queue(t *testing.T) {
	t.Run("Queueing requires a login", func(t *testing.T) {
		server := newTestServer(t, time.Minute, nil)
		client := connect(t, server)

		client.send("QUEUE")

		client.expect("ERROR~You must log in first!")
	})

	t.Run("QUEUE toggles the place in the queue", func(t *testing.T) {
		server := newTestServer(t, time.Minute, nil)
		henk := connect(t, server)
		henk.login("Henk")

		henk.send("QUEUE")
		henk.expect("QUEUED")
		henk.send("queue")
		henk.expect("QUEUED~LEFT")
		assert.Zero(t, server.queue.Len())
	})

	t.Run("A player in a game cannot queue", func(t *testing.T) {
		server := newTestServer(t, time.Minute, nil)
		henk, _ := startGame(t, server)

		henk.send("QUEUE")

		henk.expect("ERROR~You are already in a game!")
	})
}

func TestServer_Moves(t *testing.T) {
	// Given: a running game between Henk (black) and Piet (white)
	server := newTestServer(t, time.Minute, nil)
	henk, piet := startGame(t, server)

	// When: Henk plays a linear position
	henk.send("move~1")

	// Then: both see the move and Piet is asked to move
	henk.expect("MOVE~1~BLACK")
	piet.expect("MOVE~1~BLACK")
	piet.expect("MAKE_MOVE")

	// When: Henk tries to move again
	henk.send("MOVE~2")

	// Then: it is refused
	henk.expect("ERROR~It's not your turn!")

	// When: Piet plays a column,row position
	piet.send("MOVE~0,1")

	// Then: it is broadcast as the linear index
	henk.expect("MOVE~9~WHITE")
	piet.expect("MOVE~9~WHITE")
	henk.expect("MAKE_MOVE")

	// When: Henk plays on an occupied cell and off the board
	henk.send("MOVE~9")
	henk.expect("ERROR~Invalid move! Try again.")
	henk.send("MOVE~9,9")
	henk.expect("ERROR~Invalid move! Try again.")

	// Then: Henk still has the turn
	henk.send("MOVE~40")
	henk.expect("MOVE~40~BLACK")
	piet.expect("MOVE~40~BLACK")
	piet.expect("MAKE_MOVE")
}

func TestServer_Passes(t *testing.T) {
	// Given: a game where only Henk has a stone
	stats := newRecorder()
	server := newTestServer(t, time.Minute, stats)
	henk, piet := startGame(t, server)

	henk.send("MOVE~40")
	henk.expect("MOVE~40~BLACK")
	piet.expect("MOVE~40~BLACK")
	piet.expect("MAKE_MOVE")

	// When: both players pass
	piet.send("PASS")
	henk.expect("PASS~WHITE")
	piet.expect("PASS~WHITE")
	henk.expect("MAKE_MOVE")

	henk.send("PASS")
	henk.expect("PASS~BLACK")
	piet.expect("PASS~BLACK")

	// Then: Henk owns the board and wins
	henk.expect("GAME_OVER~Winner~Henk")
	piet.expect("GAME_OVER~Winner~Henk")

	result := stats.next(t)
	assert.Equal(t, entity.ReasonPasses, result.Reason)
	assert.Equal(t, "Henk", result.Winner.Username)
	assert.Equal(t, 81, result.Black.Score)

	// Then: neither player is bound to the game any more
	henk.send("MOVE~1")
	henk.expect("ERROR~You are not in a game!")
	piet.send("QUEUE")
	piet.expect("QUEUED")
}

func TestServer_Draw(t *testing.T) {
	server := newTestServer(t, time.Minute, nil)
	henk, piet := startGame(t, server)

	henk.send("PASS")
	henk.expect("PASS~BLACK")
	piet.expect("PASS~BLACK")
	piet.expect("MAKE_MOVE")

	piet.send("PASS")
	henk.expect("PASS~WHITE")
	piet.expect("PASS~WHITE")

	henk.expect("GAME_OVER~Draw")
	piet.expect("GAME_OVER~Draw")
}

func TestServer_Resign(t *testing.T) {
	t.Run("The player to move resigns", func(t *testing.T) {
		stats := newRecorder()
		server := newTestServer(t, time.Minute, stats)
		henk, piet := startGame(t, server)

		henk.send("RESIGN")

		henk.expect("GAME_OVER~Winner~Piet")
		piet.expect("GAME_OVER~Winner~Piet")
		assert.Equal(t, entity.ReasonResignation, stats.next(t).Reason)

		henk.send("PASS")
		henk.expect("ERROR~You are not in a game!")
		piet.send("RESIGN")
		piet.expect("ERROR~You are not in a game!")
	})

	t.Run("The waiting player resigns", func(t *testing.T) {
		server := newTestServer(t, time.Minute, nil)
		henk, piet := startGame(t, server)

		piet.send("RESIGN")

		henk.expect("GAME_OVER~Winner~Henk")
		piet.expect("GAME_OVER~Winner~Henk")
	})
}

func TestServer_Timeout(t *testing.T) {
	// Given: a short turn timeout
	stats := newRecorder()
	server := newTestServer(t, 50*time.Millisecond, stats)
	henk, piet := startGame(t, server)

	// When: Henk does not move in time

	// Then: both are told and Piet wins
	henk.expect("ERROR~Henk, move timed out!")
	piet.expect("ERROR~Henk, move timed out!")
	henk.expect("GAME_OVER~Winner~Piet")
	piet.expect("GAME_OVER~Winner~Piet")

	result := stats.next(t)
	assert.Equal(t, entity.ReasonTimeout, result.Reason)
	assert.Equal(t, "Piet", result.Winner.Username)
}

func TestServer_TimeoutIsCancelledByMove(t *testing.T) {
	// Given: a turn timeout long enough for a prompt reply
	server := newTestServer(t, 300*time.Millisecond, nil)
	henk, piet := startGame(t, server)

	// When: Henk moves right away
	henk.send("MOVE~40")
	henk.expect("MOVE~40~BLACK")
	piet.expect("MOVE~40~BLACK")
	piet.expect("MAKE_MOVE")

	// Then: the deadline that expires belongs to Piet, not Henk
	henk.expect("ERROR~Piet, move timed out!")
	piet.expect("ERROR~Piet, move timed out!")
	henk.expect("GAME_OVER~Winner~Henk")
}

func TestServer_Disconnect(t *testing.T) {
	// Given: a game and a third logged-in player
	server := newTestServer(t, time.Minute, nil)
	henk, piet := startGame(t, server)
	klaas := connect(t, server)
	klaas.login("Klaas")

	// When: Henk drops the connection
	require.NoError(t, henk.conn.Close())

	// Then: Piet wins and everybody hears that Henk left
	piet.expect("GAME_OVER~Winner~Piet")
	piet.expect("DISCONNECTED~Henk")
	klaas.expect("DISCONNECTED~Henk")

	// Then: the name is free again
	again := connect(t, server)
	again.login("Henk")
}

func TestServer_DisconnectWhileQueued(t *testing.T) {
	server := newTestServer(t, time.Minute, nil)
	henk := connect(t, server)
	henk.login("Henk")
	henk.send("QUEUE")
	henk.expect("QUEUED")

	piet := connect(t, server)
	piet.login("Piet")

	require.NoError(t, henk.conn.Close())
	piet.expect("DISCONNECTED~Henk")

	assert.Zero(t, server.queue.Len())
}

func TestServer_Serve(t *testing.T) {
	// Given: a server on a loopback listener
	server := newTestServer(t, time.Minute, nil)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- server.Serve(ctx, listener)
	}()

	// When: a client connects
	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	client := newTestClient(t, conn)
	client.expect("HELLO~" + testBanner)
	client.login("Henk")

	// Then: cancelling the context closes the session and stops the server
	cancel()
	client.expectClosed()

	select {
	case err = <-served:
		require.NoError(t, err)
	case <-time.After(readTimeout):
		t.Fatal("server did not stop")
	}
	assert.Zero(t, server.Sessions())
}
