// Package websocket carries the line protocol over WebSocket text frames, one
// protocol line per frame.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/go-game-backend/internal/server/socket"
)

const shutdownTimeout = 5 * time.Second

type lineServer interface {
	HandleConn(conn socket.LineConn)
}

type Server struct {
	logger       *slog.Logger
	lines        lineServer
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

func New(logger *slog.Logger, lines lineServer, writeTimeout time.Duration) *Server {
	return &Server{
		logger: logger.With("component", "websocket"),
		lines:  lines,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
	}
}

// Handler serves the gateway on /ws.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.upgradeToWebSocket)

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	that.logger.Info("websocket server started", "port", port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and runs a game session on it.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn.SetReadLimit(socket.MaxLineSize)

	log.Info("WebSocket connection established", "remote_addr", conn.RemoteAddr().String())

	that.lines.HandleConn(&wsConn{conn: conn, writeTimeout: that.writeTimeout})
}

// wsConn adapts a WebSocket connection to socket.LineConn.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func (that *wsConn) ReadLine() (string, error) {
	for {
		messageType, data, err := that.conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("read message: %w", err)
		}

		if messageType != websocket.TextMessage {
			continue
		}

		return strings.TrimRight(string(data), "\r\n"), nil
	}
}

func (that *wsConn) WriteLine(line string) error {
	if that.writeTimeout > 0 {
		if err := that.conn.SetWriteDeadline(time.Now().Add(that.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	if err := that.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	return nil
}

func (that *wsConn) Close() error {
	return that.conn.Close()
}

func (that *wsConn) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}
