package robotstest_test

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/blukai/robots/internal/game"
	"github.com/blukai/robots/internal/protocol"
	"github.com/blukai/robots/internal/robotsclient"
	"github.com/blukai/robots/internal/transport"
	"github.com/blukai/robots/internal/wire"
	"github.com/matryer/is"
	"github.com/phuslu/log"
)

type pos = protocol.Position

var hello = protocol.Hello{
	ServerName:      "srv",
	PlayersCount:    2,
	SizeX:           5,
	SizeY:           5,
	GameLength:      100,
	ExplosionRadius: 2,
	BombTimer:       10,
}

var (
	playerA = protocol.Player{Name: "A", Address: "127.0.0.1:10001"}
	playerB = protocol.Player{Name: "B", Address: "127.0.0.1:10002"}
	players = map[protocol.PlayerID]protocol.Player{0: playerA, 1: playerB}
)

// session wires a client to a fake server (tcp) and a fake front-end (udp).
type session struct {
	t *testing.T

	server     *transport.StreamConn
	serverConn net.Conn

	gui       *net.UDPConn
	guiTarget *net.UDPAddr

	runErrCh chan error
}

func newSession(t *testing.T, playerName string) *session {
	t.Helper()
	is := is.New(t)

	logger := &log.DefaultLogger
	// https://github.com/phuslu/log?tab=readme-ov-file#pretty-console-writer
	logger.Caller = 1
	logger.TimeFormat = "15:04:05"
	logger.Writer = &log.ConsoleWriter{
		ColorOutput:    true,
		QuoteString:    true,
		EndWithMessage: true,
	}

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	is.NoErr(err)
	defer ln.Close()

	gui, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	is.NoErr(err)

	rc, err := robotsclient.NewRobotsClient(robotsclient.Config{
		PlayerName:    playerName,
		ServerAddress: ln.Addr().String(),
		GUIAddress:    gui.LocalAddr().String(),
	}, logger)
	is.NoErr(err)

	serverConn, err := ln.Accept()
	is.NoErr(err)

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		t: t,

		server:     transport.NewStreamConn(serverConn, nil),
		serverConn: serverConn,

		gui:       gui,
		guiTarget: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: rc.GUIAddr().Port},

		runErrCh: make(chan error, 1),
	}
	go func() { s.runErrCh <- rc.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		serverConn.Close()
		gui.Close()
	})
	return s
}

func (s *session) sendServer(msg protocol.ServerMessage) {
	s.t.Helper()
	if err := transport.Send(s.server, protocol.EncodeServerMessage, msg); err != nil {
		s.t.Fatalf("could not send %T: %v", msg, err)
	}
}

func (s *session) recvClient() protocol.ClientMessage {
	s.t.Helper()
	if err := s.serverConn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		s.t.Fatalf("could not set deadline: %v", err)
	}
	msg, err := transport.Recv(s.server, protocol.DecodeClientMessage)
	if err != nil {
		s.t.Fatalf("could not recv client message: %v", err)
	}
	return msg
}

func (s *session) expectNoClient(wait time.Duration) {
	s.t.Helper()
	if err := s.serverConn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		s.t.Fatalf("could not set deadline: %v", err)
	}
	msg, err := transport.Recv(s.server, protocol.DecodeClientMessage)
	if err == nil {
		s.t.Fatalf("unexpected client message %T", msg)
	}
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		s.t.Fatalf("could not recv client message: %v", err)
	}
}

func (s *session) sendRaw(data []byte) {
	s.t.Helper()
	if _, err := s.gui.WriteToUDP(data, s.guiTarget); err != nil {
		s.t.Fatalf("could not send datagram: %v", err)
	}
}

func (s *session) sendInput(msg protocol.InputMessage) {
	s.t.Helper()
	data, err := wire.Marshal(0, func(e *wire.Encoder) { protocol.EncodeInputMessage(e, msg) })
	if err != nil {
		s.t.Fatalf("could not marshal %T: %v", msg, err)
	}
	s.sendRaw(data)
}

func (s *session) recvDraw() protocol.DrawMessage {
	s.t.Helper()
	if err := s.gui.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		s.t.Fatalf("could not set deadline: %v", err)
	}
	buf := make([]byte, transport.BufferCapacity)
	n, _, err := s.gui.ReadFromUDP(buf)
	if err != nil {
		s.t.Fatalf("could not recv draw message: %v", err)
	}
	msg, err := wire.Unmarshal(buf[:n], protocol.DecodeDrawMessage)
	if err != nil {
		s.t.Fatalf("could not decode draw message: %v", err)
	}
	return msg
}

func (s *session) waitRunErr() error {
	s.t.Helper()
	select {
	case err := <-s.runErrCh:
		return err
	case <-time.After(2 * time.Second):
		s.t.Fatal("client did not stop")
		return nil
	}
}

func TestPlayer(t *testing.T) {
	is := is.New(t)

	s := newSession(t, "A")

	t.Log("hello")
	s.sendServer(hello)
	lobby, ok := s.recvDraw().(protocol.DrawLobby)
	is.True(ok)
	is.Equal(lobby.ServerName, "srv")
	is.Equal(lobby.ExplosionRadius, uint16(2))
	is.Equal(len(lobby.Players), 0)

	t.Log("any input joins from the lobby")
	s.sendInput(protocol.Move{Direction: protocol.Up})
	is.Equal(s.recvClient(), protocol.ClientMessage(protocol.Join{Name: "A"}))

	t.Log("accepted")
	s.sendServer(protocol.AcceptedPlayer{ID: 0, Player: playerA})
	lobby = s.recvDraw().(protocol.DrawLobby)
	is.Equal(lobby.Players, map[protocol.PlayerID]protocol.Player{0: playerA})

	t.Log("game started")
	s.sendServer(protocol.GameStarted{Players: players})
	started, ok := s.recvDraw().(protocol.DrawGame)
	is.True(ok)
	is.Equal(started.Turn, uint16(0))
	is.Equal(started.Scores, map[protocol.PlayerID]protocol.Score{0: 0, 1: 0})

	t.Log("turn 0")
	s.sendServer(protocol.Turn{Number: 0, Events: []protocol.Event{
		protocol.PlayerMoved{ID: 0, Position: pos{X: 1, Y: 1}},
		protocol.PlayerMoved{ID: 1, Position: pos{X: 3, Y: 3}},
		protocol.BombPlaced{ID: 1, Position: pos{X: 2, Y: 2}},
		protocol.BlockPlaced{Position: pos{X: 4, Y: 4}},
	}})
	turn := s.recvDraw().(protocol.DrawGame)
	is.Equal(turn.Turn, uint16(0))
	is.Equal(turn.PlayerPositions, map[protocol.PlayerID]protocol.Position{0: {X: 1, Y: 1}, 1: {X: 3, Y: 3}})
	is.Equal(turn.Bombs, []protocol.Bomb{{Position: pos{X: 2, Y: 2}, Timer: 10}})
	is.Equal(turn.Blocks, []pos{{X: 4, Y: 4}})

	t.Log("actions are forwarded")
	s.sendInput(protocol.Move{Direction: protocol.Right})
	is.Equal(s.recvClient(), protocol.ClientMessage(protocol.Move{Direction: protocol.Right}))
	s.sendInput(protocol.PlaceBomb{})
	is.Equal(s.recvClient(), protocol.ClientMessage(protocol.PlaceBomb{}))

	t.Log("malformed datagrams are dropped")
	s.sendRaw([]byte{protocol.IMsgPlaceBomb, 0xff})
	s.sendRaw([]byte{protocol.IMsgMax})
	s.sendRaw([]byte{})
	s.sendInput(protocol.PlaceBlock{})
	is.Equal(s.recvClient(), protocol.ClientMessage(protocol.PlaceBlock{}))

	t.Log("turn 1")
	s.sendServer(protocol.Turn{Number: 1, Events: []protocol.Event{
		protocol.BombExploded{ID: 1, RobotsDestroyed: []protocol.PlayerID{1}},
	}})
	turn = s.recvDraw().(protocol.DrawGame)
	is.Equal(turn.Turn, uint16(1))
	is.Equal(len(turn.Bombs), 0)
	is.Equal(len(turn.Explosions), 9)
	is.Equal(turn.Scores, map[protocol.PlayerID]protocol.Score{0: 0, 1: 1})
	_, alive := turn.PlayerPositions[1]
	is.True(!alive)

	t.Log("game ended")
	s.sendServer(protocol.GameEnded{Scores: turn.Scores})
	lobby = s.recvDraw().(protocol.DrawLobby)
	is.Equal(len(lobby.Players), 0)
	is.Equal(lobby.BombTimer, uint16(10))

	t.Log("out of order turn is fatal")
	s.sendServer(protocol.AcceptedPlayer{ID: 0, Player: playerA})
	s.recvDraw()
	s.sendServer(protocol.GameStarted{Players: players})
	s.recvDraw()
	s.sendServer(protocol.Turn{Number: 5})
	err := s.waitRunErr()
	is.True(errors.Is(err, game.ErrProtocol))
}

func TestSpectator(t *testing.T) {
	is := is.New(t)

	s := newSession(t, "A")

	s.sendServer(hello)
	s.recvDraw()

	// only B got in
	s.sendServer(protocol.AcceptedPlayer{ID: 1, Player: playerB})
	s.recvDraw()
	s.sendServer(protocol.GameStarted{Players: map[protocol.PlayerID]protocol.Player{1: playerB}})
	s.recvDraw()

	s.sendInput(protocol.PlaceBomb{})
	s.sendInput(protocol.Move{Direction: protocol.Left})
	s.expectNoClient(300 * time.Millisecond)

	s.sendServer(protocol.GameEnded{Scores: map[protocol.PlayerID]protocol.Score{1: 0}})
	_, ok := s.recvDraw().(protocol.DrawLobby)
	is.True(ok)

	s.sendInput(protocol.PlaceBlock{})
	is.Equal(s.recvClient(), protocol.ClientMessage(protocol.Join{Name: "A"}))
}
