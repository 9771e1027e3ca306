// Package transport moves wire encoded messages over sockets. StreamConn talks
// to the game server over TCP, DatagramConn talks to the front-end over UDP.
package transport

import (
	"io"

	"github.com/blukai/robots/internal/wire"
	"github.com/phuslu/log"
)

// BufferCapacity bounds both the input and the output buffer of a connection.
// The largest legal message is far smaller.
const BufferCapacity = 64 << 10 // 64 * 1024 = 65536 bytes

// Conn is implemented by StreamConn and DatagramConn.
type Conn interface {
	io.Closer

	recv(decode func(*wire.Decoder) error) error
	send(encode func(*wire.Encoder)) error
}

// Recv decodes the next message from c.
func Recv[T any](c Conn, decode func(*wire.Decoder) (T, error)) (T, error) {
	var v T
	err := c.recv(func(d *wire.Decoder) error {
		var err error
		v, err = decode(d)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Send encodes v into the output buffer of c and flushes it in one write.
// Nothing is written when encoding fails.
func Send[T any](c Conn, encode func(*wire.Encoder, T), v T) error {
	return c.send(func(e *wire.Encoder) {
		encode(e, v)
	})
}

// if logger is nil (which might be true in tests) => use default, but
// silenced logger
func ensureLogger(logger *log.Logger) *log.Logger {
	if logger == nil {
		tmp := log.DefaultLogger
		logger = &tmp
		logger.Writer = &log.IOWriter{Writer: io.Discard}
	}
	return logger
}
