package byteorder

import (
	"encoding/binary"
)

// https://linux.die.net/man/3/ntohs

// decrypt names:
// h = host
// n = network
// s = short = 16 bit
// l = long  = 32 bit
//
// hton* append to dst instead of allocating, ntoh* read from the front of buf
// which must be at least as long as the value.

func AppendHtonl(dst []byte, val uint32) []byte {
	return binary.BigEndian.AppendUint32(dst, val)
}

func AppendHtons(dst []byte, val uint16) []byte {
	return binary.BigEndian.AppendUint16(dst, val)
}

func Ntohl(buf []byte) uint32 {
	return binary.BigEndian.Uint32(buf)
}

func Ntohs(buf []byte) uint16 {
	return binary.BigEndian.Uint16(buf)
}
