package transport

import (
	"bufio"
	"fmt"
	"net"

	"github.com/blukai/robots/internal/debug"
	"github.com/blukai/robots/internal/wire"
	"github.com/phuslu/log"
)

// StreamConn carries messages over a reliable byte stream. Messages have no
// framing of their own: each decode continues where the previous one stopped.
type StreamConn struct {
	conn net.Conn
	r    *bufio.Reader
	out  *wire.Encoder

	logger *log.Logger
}

func DialStream(address string, logger *log.Logger) (*StreamConn, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not dial tcp: %w", err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		// messages are tiny and latency matters more than throughput
		if err := tcpConn.SetNoDelay(true); err != nil {
			conn.Close()
			return nil, fmt.Errorf("could not set no delay: %w", err)
		}
	}

	return NewStreamConn(conn, logger), nil
}

func NewStreamConn(conn net.Conn, logger *log.Logger) *StreamConn {
	return &StreamConn{
		conn: conn,
		r:    bufio.NewReaderSize(conn, BufferCapacity),
		out:  wire.NewEncoder(BufferCapacity),

		logger: ensureLogger(logger),
	}
}

func (c *StreamConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *StreamConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *StreamConn) Close() error {
	return c.conn.Close()
}

func (c *StreamConn) recv(decode func(*wire.Decoder) error) error {
	return decode(wire.NewDecoder(c.r))
}

func (c *StreamConn) send(encode func(*wire.Encoder)) error {
	defer c.out.Reset()

	encode(c.out)
	if err := c.out.Err(); err != nil {
		return fmt.Errorf("could not encode: %w", err)
	}

	data := c.out.Bytes()
	c.logger.Debug().
		Int("size", len(data)).
		Msg("send stream")

	n, err := c.conn.Write(data)
	if err != nil {
		return fmt.Errorf("could not write to tcp: %w", err)
	}
	debug.Assert(n == len(data))

	return nil
}
