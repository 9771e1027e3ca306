package protocol

import (
	"github.com/blukai/robots/internal/wire"
)

// NOTE: S stands for server. Values are the discriminants on the wire.
const (
	SMsgHello uint8 = iota
	SMsgAcceptedPlayer
	SMsgGameStarted
	SMsgTurn
	SMsgGameEnded

	SMsgMax
)

// ServerMessage is one of Hello, AcceptedPlayer, GameStarted, Turn or
// GameEnded.
type ServerMessage interface {
	wire.Marshaler
	serverTag() uint8
}

type Hello struct {
	ServerName      string
	PlayersCount    uint8
	SizeX           uint16
	SizeY           uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
}

func (Hello) serverTag() uint8 { return SMsgHello }

func (m Hello) MarshalWire(e *wire.Encoder) {
	e.String(m.ServerName)
	e.Uint8(m.PlayersCount)
	e.Uint16(m.SizeX)
	e.Uint16(m.SizeY)
	e.Uint16(m.GameLength)
	e.Uint16(m.ExplosionRadius)
	e.Uint16(m.BombTimer)
}

func readHello(d *wire.Decoder) Hello {
	var m Hello
	m.ServerName = d.String()
	m.PlayersCount = d.Uint8()
	m.SizeX = d.Uint16()
	m.SizeY = d.Uint16()
	m.GameLength = d.Uint16()
	m.ExplosionRadius = d.Uint16()
	m.BombTimer = d.Uint16()
	return m
}

type AcceptedPlayer struct {
	ID     PlayerID
	Player Player
}

func (AcceptedPlayer) serverTag() uint8 { return SMsgAcceptedPlayer }

func (m AcceptedPlayer) MarshalWire(e *wire.Encoder) {
	writePlayerID(e, m.ID)
	writePlayer(e, m.Player)
}

type GameStarted struct {
	Players map[PlayerID]Player
}

func (GameStarted) serverTag() uint8 { return SMsgGameStarted }

func (m GameStarted) MarshalWire(e *wire.Encoder) {
	wire.WriteMap(e, m.Players, writePlayerID, writePlayer)
}

type Turn struct {
	Number uint16
	Events []Event
}

func (Turn) serverTag() uint8 { return SMsgTurn }

func (m Turn) MarshalWire(e *wire.Encoder) {
	e.Uint16(m.Number)
	wire.WriteSeq(e, m.Events, writeEvent)
}

type GameEnded struct {
	Scores map[PlayerID]Score
}

func (GameEnded) serverTag() uint8 { return SMsgGameEnded }

func (m GameEnded) MarshalWire(e *wire.Encoder) {
	wire.WriteMap(e, m.Scores, writePlayerID, writeScore)
}

func EncodeServerMessage(e *wire.Encoder, m ServerMessage) {
	e.Uint8(m.serverTag())
	m.MarshalWire(e)
}

func DecodeServerMessage(d *wire.Decoder) (ServerMessage, error) {
	tag := d.Uint8()
	if err := d.Err(); err != nil {
		return nil, err
	}

	var m ServerMessage
	switch tag {
	case SMsgHello:
		m = readHello(d)
	case SMsgAcceptedPlayer:
		id := readPlayerID(d)
		player := readPlayer(d)
		m = AcceptedPlayer{ID: id, Player: player}
	case SMsgGameStarted:
		m = GameStarted{Players: wire.ReadMap(d, readPlayerID, readPlayer)}
	case SMsgTurn:
		number := d.Uint16()
		events := wire.ReadSeq(d, readEvent)
		m = Turn{Number: number, Events: events}
	case SMsgGameEnded:
		m = GameEnded{Scores: wire.ReadMap(d, readPlayerID, readScore)}
	default:
		d.Fail(&wire.UnknownVariantError{Type: "ServerMessage", Index: tag})
	}

	if err := d.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
