package transport

import (
	"fmt"
	"net"

	"github.com/blukai/robots/internal/wire"
	"github.com/cespare/xxhash/v2"
	"github.com/phuslu/log"
)

type addrKey uint64

func makeAddrKey(addr *net.UDPAddr) addrKey {
	return addrKey(xxhash.Sum64String(addr.String()))
}

// maxUnexpectedSenders bounds how many foreign senders are remembered. The
// oldest one is forgotten first.
const maxUnexpectedSenders = 32

// DatagramConn carries one message per datagram. Received datagrams must be
// consumed completely by a single decode, outgoing messages go to a fixed
// peer.
type DatagramConn struct {
	conn    *net.UDPConn
	peer    *net.UDPAddr
	peerKey addrKey
	readBuf []byte
	out     *wire.Encoder

	logger *log.Logger

	// NOTE: only touched by the goroutine that receives. unexpectedOrder
	// holds the keys of unexpected in arrival order.
	unexpected      map[addrKey]struct{}
	unexpectedOrder []addrKey
}

// ListenDatagram binds a UDP socket to port on every interface of the peer's
// address family. Port 0 picks a free port.
func ListenDatagram(port uint16, peerAddress string, logger *log.Logger) (*DatagramConn, error) {
	peer, err := net.ResolveUDPAddr("udp", peerAddress)
	if err != nil {
		return nil, fmt.Errorf("could not resolve udp addr: %w", err)
	}

	network := "udp"
	if peer.IP.To4() != nil {
		network = "udp4"
	}
	conn, err := net.ListenUDP(network, &net.UDPAddr{Port: int(port)})
	if err != nil {
		return nil, fmt.Errorf("could not listen udp: %w", err)
	}

	return &DatagramConn{
		conn:    conn,
		peer:    peer,
		peerKey: makeAddrKey(peer),
		readBuf: make([]byte, BufferCapacity),
		out:     wire.NewEncoder(BufferCapacity),

		logger: ensureLogger(logger),

		unexpected:      make(map[addrKey]struct{}, maxUnexpectedSenders),
		unexpectedOrder: make([]addrKey, 0, maxUnexpectedSenders),
	}, nil
}

// LocalAddr can be useful to retrieve the bound address when the connection
// was created with port 0.
func (c *DatagramConn) LocalAddr() *net.UDPAddr {
	return c.conn.LocalAddr().(*net.UDPAddr)
}

func (c *DatagramConn) Peer() *net.UDPAddr {
	return c.peer
}

func (c *DatagramConn) Close() error {
	return c.conn.Close()
}

// checkSender warns once about every sender other than the peer. Their
// datagrams are still decoded: the front-end may send from another socket
// than the one it draws on.
func (c *DatagramConn) checkSender(addr *net.UDPAddr) {
	key := makeAddrKey(addr)
	if key == c.peerKey {
		return
	}
	if _, ok := c.unexpected[key]; ok {
		return
	}

	if len(c.unexpectedOrder) == maxUnexpectedSenders {
		delete(c.unexpected, c.unexpectedOrder[0])
		c.unexpectedOrder = append(c.unexpectedOrder[:0], c.unexpectedOrder[1:]...)
	}
	c.unexpected[key] = struct{}{}
	c.unexpectedOrder = append(c.unexpectedOrder, key)

	c.logger.Warn().
		Str("addr", addr.String()).
		Str("peer", c.peer.String()).
		Msg("datagram from unexpected sender")
}

func (c *DatagramConn) recv(decode func(*wire.Decoder) error) error {
	n, addr, err := c.conn.ReadFromUDP(c.readBuf)
	if err != nil {
		return fmt.Errorf("could not read from udp: %w", err)
	}
	c.checkSender(addr)

	if e := c.logger.Debug(); e != nil {
		e.Int("size", n).
			Str("addr", addr.String()).
			Msg("recv datagram")
	}

	// a datagram gets exactly one decode attempt; on failure it is dropped
	_, err = wire.Unmarshal(c.readBuf[:n], func(d *wire.Decoder) (struct{}, error) {
		return struct{}{}, decode(d)
	})
	return err
}

func (c *DatagramConn) send(encode func(*wire.Encoder)) error {
	defer c.out.Reset()

	encode(c.out)
	if err := c.out.Err(); err != nil {
		return fmt.Errorf("could not encode: %w", err)
	}

	data := c.out.Bytes()
	// the digest makes repeated identical snapshots easy to spot in logs
	if e := c.logger.Debug(); e != nil {
		e.Uint64("digest", xxhash.Sum64(data)).
			Int("size", len(data)).
			Str("peer", c.peer.String()).
			Msg("send datagram")
	}

	if _, err := c.conn.WriteToUDP(data, c.peer); err != nil {
		return fmt.Errorf("could not write to udp: %w", err)
	}

	return nil
}
