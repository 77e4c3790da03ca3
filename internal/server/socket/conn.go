package socket

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// MaxLineSize bounds a single inbound protocol line on every transport.
const MaxLineSize = 4096

// LineConn is a bidirectional stream of protocol lines. ReadLine is only called
// from the session's read loop; WriteLine calls are serialised by the session.
type LineConn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

type tcpConn struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writeTimeout time.Duration
}

// NewTCPConn frames conn by newlines. A write that takes longer than
// writeTimeout fails; zero disables the deadline.
func NewTCPConn(conn net.Conn, writeTimeout time.Duration) LineConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 512), MaxLineSize)

	return &tcpConn{
		conn:         conn,
		scanner:      scanner,
		writeTimeout: writeTimeout,
	}
}

func (that *tcpConn) ReadLine() (string, error) {
	if !that.scanner.Scan() {
		if err := that.scanner.Err(); err != nil {
			return "", fmt.Errorf("read line: %w", err)
		}
		return "", io.EOF
	}

	return strings.TrimRight(that.scanner.Text(), "\r"), nil
}

func (that *tcpConn) WriteLine(line string) error {
	if that.writeTimeout > 0 {
		if err := that.conn.SetWriteDeadline(time.Now().Add(that.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	if _, err := that.conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("write line: %w", err)
	}

	return nil
}

func (that *tcpConn) Close() error {
	return that.conn.Close()
}

func (that *tcpConn) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}
