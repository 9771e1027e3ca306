package wire

import (
	"errors"
	"fmt"
	"io"

	"github.com/blukai/robots/internal/byteorder"
)

// Decoder reads big-endian values from an io.Reader. Every read asks for
// exactly the number of bytes the value needs; short reads are retried.
//
// Like Encoder the first error is sticky and reads after it return zero
// values.
type Decoder struct {
	r       io.Reader
	scratch [4]byte
	err     error
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

func (d *Decoder) Err() error { return d.err }

// Fail records err unless an error was already recorded. Decode functions use
// it to report structural problems such as an unknown discriminant.
func (d *Decoder) Fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Decoder) read(dst []byte) bool {
	if d.err != nil {
		return false
	}
	if _, err := io.ReadFull(d.r, dst); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			d.err = fmt.Errorf("%w: want %d bytes: %w", ErrInsufficientData, len(dst), err)
		} else {
			d.err = fmt.Errorf("could not read %d bytes: %w", len(dst), err)
		}
		return false
	}
	return true
}

func (d *Decoder) Uint8() uint8 {
	if !d.read(d.scratch[:1]) {
		return 0
	}
	return d.scratch[0]
}

func (d *Decoder) Uint16() uint16 {
	if !d.read(d.scratch[:2]) {
		return 0
	}
	return byteorder.Ntohs(d.scratch[:2])
}

func (d *Decoder) Uint32() uint32 {
	if !d.read(d.scratch[:4]) {
		return 0
	}
	return byteorder.Ntohl(d.scratch[:4])
}

func (d *Decoder) String() string {
	n := d.Uint8()
	if d.err != nil {
		return ""
	}
	buf := make([]byte, n)
	if !d.read(buf) {
		return ""
	}
	return string(buf)
}

func (d *Decoder) Count() uint32 {
	return d.Uint32()
}
