package byteorder_test

import (
	"testing"

	"github.com/blukai/robots/internal/byteorder"
	"github.com/matryer/is"
)

func TestNetworkOrder(t *testing.T) {
	is := is.New(t)

	buf := byteorder.AppendHtons(nil, 0x0102)
	is.Equal(buf, []byte{0x01, 0x02})
	is.Equal(byteorder.Ntohs(buf), uint16(0x0102))

	buf = byteorder.AppendHtonl(buf[:0], 0x01020304)
	is.Equal(buf, []byte{0x01, 0x02, 0x03, 0x04})
	is.Equal(byteorder.Ntohl(buf), uint32(0x01020304))
}

func TestAppendKeepsPrefix(t *testing.T) {
	is := is.New(t)

	buf := []byte{0xff}
	buf = byteorder.AppendHtons(buf, 7)
	buf = byteorder.AppendHtonl(buf, 9)
	is.Equal(buf, []byte{0xff, 0x00, 0x07, 0x00, 0x00, 0x00, 0x09})
}
