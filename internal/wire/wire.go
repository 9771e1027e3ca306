// Package wire implements the binary encoding shared by the server and the
// front-end channels: big-endian fixed width integers, u8 length-prefixed
// strings, u32 count-prefixed collections and u8 discriminated variants.
package wire

import (
	"bytes"
	"fmt"
)

// Marshal runs encode against a fresh encoder of the given capacity.
func Marshal(capacity int, encode func(*Encoder)) ([]byte, error) {
	e := NewEncoder(capacity)
	encode(e)
	if err := e.Err(); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Unmarshal decodes exactly one value from data. Bytes left over after the
// value are an ErrTrailingData error.
func Unmarshal[T any](data []byte, decode func(*Decoder) (T, error)) (T, error) {
	var zero T

	r := bytes.NewReader(data)
	v, err := decode(NewDecoder(r))
	if err != nil {
		return zero, err
	}
	if r.Len() > 0 {
		return zero, fmt.Errorf("%w: %d of %d bytes left", ErrTrailingData, r.Len(), len(data))
	}
	return v, nil
}
