package wire

import (
	"fmt"
	"math"

	"github.com/blukai/robots/internal/byteorder"
)

// Marshaler is implemented by payloads that know how to write themselves.
type Marshaler interface {
	MarshalWire(e *Encoder)
}

// Encoder appends big-endian values to a byte slice of bounded capacity.
//
// The first error is sticky: once set every further write is a no-op, so a
// composite value can be written without checking after each field.
type Encoder struct {
	buf      []byte
	capacity int
	err      error
}

// NewEncoder returns an encoder that refuses to grow past capacity bytes. A
// capacity of 0 means unbounded.
func NewEncoder(capacity int) *Encoder {
	e := &Encoder{capacity: capacity}
	if capacity > 0 {
		e.buf = make([]byte, 0, capacity)
	}
	return e
}

func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) Err() error { return e.err }

// Reset empties the buffer and clears the error, keeping the allocation.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.err = nil
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) reserve(n int) bool {
	if e.err != nil {
		return false
	}
	if e.capacity > 0 && len(e.buf)+n > e.capacity {
		e.fail(fmt.Errorf("%w: need %d more bytes, %d of %d used", ErrBufferFull, n, len(e.buf), e.capacity))
		return false
	}
	return true
}

func (e *Encoder) Uint8(v uint8) {
	if e.reserve(1) {
		e.buf = append(e.buf, v)
	}
}

func (e *Encoder) Uint16(v uint16) {
	if e.reserve(2) {
		e.buf = byteorder.AppendHtons(e.buf, v)
	}
}

func (e *Encoder) Uint32(v uint32) {
	if e.reserve(4) {
		e.buf = byteorder.AppendHtonl(e.buf, v)
	}
}

// String writes a u8 length prefix followed by the raw bytes of s.
func (e *Encoder) String(s string) {
	if e.err != nil {
		return
	}
	if len(s) > math.MaxUint8 {
		e.fail(fmt.Errorf("%w: string of %d bytes", ErrValueTooLong, len(s)))
		return
	}
	if e.reserve(1 + len(s)) {
		e.buf = append(e.buf, uint8(len(s)))
		e.buf = append(e.buf, s...)
	}
}

// Count writes the u32 element count that prefixes every collection.
func (e *Encoder) Count(n int) {
	if e.err != nil {
		return
	}
	if uint64(n) > math.MaxUint32 {
		e.fail(fmt.Errorf("%w: collection of %d elements", ErrValueTooLong, n))
		return
	}
	e.Uint32(uint32(n))
}
