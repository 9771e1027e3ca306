package wire_test

import (
	"bytes"
	"cmp"
	"errors"
	"strings"
	"testing"

	"github.com/blukai/robots/internal/wire"
	"github.com/matryer/is"
)

func writeUint8(e *wire.Encoder, v uint8)   { e.Uint8(v) }
func writeUint16(e *wire.Encoder, v uint16) { e.Uint16(v) }
func writeString(e *wire.Encoder, v string) { e.String(v) }
func readUint8(d *wire.Decoder) uint8       { return d.Uint8() }
func readUint16(d *wire.Decoder) uint16     { return d.Uint16() }
func readString(d *wire.Decoder) string     { return d.String() }

func TestIntegersAreBigEndian(t *testing.T) {
	is := is.New(t)

	e := wire.NewEncoder(0)
	e.Uint8(0xab)
	e.Uint16(0x0102)
	e.Uint32(0x03040506)
	is.NoErr(e.Err())
	is.Equal(e.Bytes(), []byte{0xab, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06})

	d := wire.NewDecoder(bytes.NewReader(e.Bytes()))
	is.Equal(d.Uint8(), uint8(0xab))
	is.Equal(d.Uint16(), uint16(0x0102))
	is.Equal(d.Uint32(), uint32(0x03040506))
	is.NoErr(d.Err())
}

func TestTruncatedIntegers(t *testing.T) {
	is := is.New(t)

	d := wire.NewDecoder(bytes.NewReader([]byte{0x01}))
	is.Equal(d.Uint16(), uint16(0))
	is.True(errors.Is(d.Err(), wire.ErrInsufficientData))

	d = wire.NewDecoder(bytes.NewReader(nil))
	d.Uint8()
	is.True(errors.Is(d.Err(), wire.ErrInsufficientData))
}

func TestStrings(t *testing.T) {
	is := is.New(t)

	for _, s := range []string{"", "robot", strings.Repeat("x", 255)} {
		data, err := wire.Marshal(0, func(e *wire.Encoder) { e.String(s) })
		is.NoErr(err)
		is.Equal(len(data), 1+len(s))
		is.Equal(int(data[0]), len(s))

		decoded, err := wire.Unmarshal(data, func(d *wire.Decoder) (string, error) {
			v := d.String()
			return v, d.Err()
		})
		is.NoErr(err)
		is.Equal(decoded, s)
	}

	_, err := wire.Marshal(0, func(e *wire.Encoder) { e.String(strings.Repeat("x", 256)) })
	is.True(errors.Is(err, wire.ErrValueTooLong))

	// length prefix promises more than there is
	d := wire.NewDecoder(bytes.NewReader([]byte{5, 'a', 'b'}))
	is.Equal(d.String(), "")
	is.True(errors.Is(d.Err(), wire.ErrInsufficientData))
}

func TestStickyEncoderError(t *testing.T) {
	is := is.New(t)

	e := wire.NewEncoder(0)
	e.Uint8(1)
	e.String(strings.Repeat("x", 300))
	e.Uint32(7)
	is.True(errors.Is(e.Err(), wire.ErrValueTooLong))
	is.Equal(e.Bytes(), []byte{1})

	e.Reset()
	is.NoErr(e.Err())
	is.Equal(e.Len(), 0)
}

func TestBufferFull(t *testing.T) {
	is := is.New(t)

	e := wire.NewEncoder(3)
	e.Uint16(1)
	is.NoErr(e.Err())
	e.Uint16(2)
	is.True(errors.Is(e.Err(), wire.ErrBufferFull))
	is.Equal(e.Len(), 2)

	e.Reset()
	e.Uint8(1)
	e.Uint16(2)
	is.NoErr(e.Err())
	is.Equal(e.Len(), 3)
}

func TestSeq(t *testing.T) {
	is := is.New(t)

	for _, items := range [][]uint16{{}, {1}, {3, 1, 2}} {
		data, err := wire.Marshal(0, func(e *wire.Encoder) { wire.WriteSeq(e, items, writeUint16) })
		is.NoErr(err)
		is.Equal(len(data), 4+2*len(items))

		decoded, err := wire.Unmarshal(data, func(d *wire.Decoder) ([]uint16, error) {
			v := wire.ReadSeq(d, readUint16)
			return v, d.Err()
		})
		is.NoErr(err)
		is.Equal(decoded, items) // order is preserved
	}
}

func TestSeqWithHugeCountFailsFast(t *testing.T) {
	is := is.New(t)

	d := wire.NewDecoder(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x00}))
	items := wire.ReadSeq(d, readUint16)
	is.True(items == nil)
	is.True(errors.Is(d.Err(), wire.ErrInsufficientData))
}

func TestSet(t *testing.T) {
	is := is.New(t)

	set := map[uint16]struct{}{30: {}, 10: {}, 20: {}}
	data, err := wire.Marshal(0, func(e *wire.Encoder) {
		wire.WriteSet(e, set, cmp.Compare[uint16], writeUint16)
	})
	is.NoErr(err)
	is.Equal(data, []byte{0, 0, 0, 3, 0, 10, 0, 20, 0, 30})

	decoded, err := wire.Unmarshal(data, func(d *wire.Decoder) (map[uint16]struct{}, error) {
		v := wire.ReadSet(d, readUint16)
		return v, d.Err()
	})
	is.NoErr(err)
	is.Equal(decoded, set)

	// duplicates collapse
	dup := []byte{0, 0, 0, 3, 0, 10, 0, 10, 0, 20}
	decoded, err = wire.Unmarshal(dup, func(d *wire.Decoder) (map[uint16]struct{}, error) {
		v := wire.ReadSet(d, readUint16)
		return v, d.Err()
	})
	is.NoErr(err)
	is.Equal(len(decoded), 2)
}

func TestMap(t *testing.T) {
	is := is.New(t)

	decode := func(d *wire.Decoder) (map[uint8]string, error) {
		v := wire.ReadMap(d, readUint8, readString)
		return v, d.Err()
	}

	m := map[uint8]string{2: "b", 0: "a", 1: ""}
	data, err := wire.Marshal(0, func(e *wire.Encoder) { wire.WriteMap(e, m, writeUint8, writeString) })
	is.NoErr(err)
	// keys are written in ascending order
	is.Equal(data, []byte{0, 0, 0, 3, 0, 1, 'a', 1, 0, 2, 1, 'b'})

	decoded, err := wire.Unmarshal(data, decode)
	is.NoErr(err)
	is.Equal(decoded, m)

	empty, err := wire.Marshal(0, func(e *wire.Encoder) { wire.WriteMap(e, map[uint8]string{}, writeUint8, writeString) })
	is.NoErr(err)
	decoded, err = wire.Unmarshal(empty, decode)
	is.NoErr(err)
	is.Equal(len(decoded), 0)
}

func TestMapDuplicateKeyLastWriteWins(t *testing.T) {
	is := is.New(t)

	data := []byte{0, 0, 0, 2, 7, 1, 'x', 7, 1, 'y'}
	decoded, err := wire.Unmarshal(data, func(d *wire.Decoder) (map[uint8]string, error) {
		v := wire.ReadMap(d, readUint8, readString)
		return v, d.Err()
	})
	is.NoErr(err)
	is.Equal(decoded, map[uint8]string{7: "y"})
}

func TestUnmarshalTrailingData(t *testing.T) {
	is := is.New(t)

	decode := func(d *wire.Decoder) (uint16, error) {
		v := d.Uint16()
		return v, d.Err()
	}

	v, err := wire.Unmarshal([]byte{0x00, 0x2a}, decode)
	is.NoErr(err)
	is.Equal(v, uint16(42))

	v, err = wire.Unmarshal([]byte{0x00, 0x2a, 0x00}, decode)
	is.True(errors.Is(err, wire.ErrTrailingData))
	is.Equal(v, uint16(0))
}

func TestUnknownVariantError(t *testing.T) {
	is := is.New(t)

	var err error = &wire.UnknownVariantError{Type: "Event", Index: 9}
	is.True(errors.Is(err, wire.ErrUnknownVariant))
	is.Equal(err.Error(), "unknown Event variant 9")

	var uv *wire.UnknownVariantError
	is.True(errors.As(err, &uv))
	is.Equal(uv.Index, uint8(9))
}
