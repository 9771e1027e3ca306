package protocol

import (
	"github.com/blukai/robots/internal/wire"
)

// NOTE: D stands for draw (client -> front-end), I for input (front-end ->
// client).
const (
	DMsgLobby uint8 = iota
	DMsgGame

	DMsgMax
)

const (
	IMsgPlaceBomb uint8 = iota
	IMsgPlaceBlock
	IMsgMove

	IMsgMax
)

// DrawMessage is a full snapshot of the client state, DrawLobby or DrawGame.
type DrawMessage interface {
	wire.Marshaler
	drawTag() uint8
}

type DrawLobby struct {
	ServerName      string
	PlayersCount    uint8
	SizeX           uint16
	SizeY           uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
	Players         map[PlayerID]Player
}

func (DrawLobby) drawTag() uint8 { return DMsgLobby }

func (m DrawLobby) MarshalWire(e *wire.Encoder) {
	e.String(m.ServerName)
	e.Uint8(m.PlayersCount)
	e.Uint16(m.SizeX)
	e.Uint16(m.SizeY)
	e.Uint16(m.GameLength)
	e.Uint16(m.ExplosionRadius)
	e.Uint16(m.BombTimer)
	wire.WriteMap(e, m.Players, writePlayerID, writePlayer)
}

func readDrawLobby(d *wire.Decoder) DrawLobby {
	var m DrawLobby
	m.ServerName = d.String()
	m.PlayersCount = d.Uint8()
	m.SizeX = d.Uint16()
	m.SizeY = d.Uint16()
	m.GameLength = d.Uint16()
	m.ExplosionRadius = d.Uint16()
	m.BombTimer = d.Uint16()
	m.Players = wire.ReadMap(d, readPlayerID, readPlayer)
	return m
}

type DrawGame struct {
	ServerName      string
	SizeX           uint16
	SizeY           uint16
	GameLength      uint16
	Turn            uint16
	Players         map[PlayerID]Player
	PlayerPositions map[PlayerID]Position
	Blocks          []Position
	Bombs           []Bomb
	Explosions      map[Position]struct{}
	Scores          map[PlayerID]Score
}

func (DrawGame) drawTag() uint8 { return DMsgGame }

func (m DrawGame) MarshalWire(e *wire.Encoder) {
	e.String(m.ServerName)
	e.Uint16(m.SizeX)
	e.Uint16(m.SizeY)
	e.Uint16(m.GameLength)
	e.Uint16(m.Turn)
	wire.WriteMap(e, m.Players, writePlayerID, writePlayer)
	wire.WriteMap(e, m.PlayerPositions, writePlayerID, writePosition)
	wire.WriteSeq(e, m.Blocks, writePosition)
	wire.WriteSeq(e, m.Bombs, writeBomb)
	wire.WriteSet(e, m.Explosions, ComparePositions, writePosition)
	wire.WriteMap(e, m.Scores, writePlayerID, writeScore)
}

func readDrawGame(d *wire.Decoder) DrawGame {
	var m DrawGame
	m.ServerName = d.String()
	m.SizeX = d.Uint16()
	m.SizeY = d.Uint16()
	m.GameLength = d.Uint16()
	m.Turn = d.Uint16()
	m.Players = wire.ReadMap(d, readPlayerID, readPlayer)
	m.PlayerPositions = wire.ReadMap(d, readPlayerID, readPosition)
	m.Blocks = wire.ReadSeq(d, readPosition)
	m.Bombs = wire.ReadSeq(d, readBomb)
	m.Explosions = wire.ReadSet(d, readPosition)
	m.Scores = wire.ReadMap(d, readPlayerID, readScore)
	return m
}

func EncodeDrawMessage(e *wire.Encoder, m DrawMessage) {
	e.Uint8(m.drawTag())
	m.MarshalWire(e)
}

func DecodeDrawMessage(d *wire.Decoder) (DrawMessage, error) {
	tag := d.Uint8()
	if err := d.Err(); err != nil {
		return nil, err
	}

	var m DrawMessage
	switch tag {
	case DMsgLobby:
		m = readDrawLobby(d)
	case DMsgGame:
		m = readDrawGame(d)
	default:
		d.Fail(&wire.UnknownVariantError{Type: "DrawMessage", Index: tag})
	}

	if err := d.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// InputMessage is one of PlaceBomb, PlaceBlock or Move, as sent by the
// front-end.
type InputMessage interface {
	wire.Marshaler
	inputTag() uint8
}

func (PlaceBomb) inputTag() uint8  { return IMsgPlaceBomb }
func (PlaceBlock) inputTag() uint8 { return IMsgPlaceBlock }
func (Move) inputTag() uint8       { return IMsgMove }

func EncodeInputMessage(e *wire.Encoder, m InputMessage) {
	e.Uint8(m.inputTag())
	m.MarshalWire(e)
}

func DecodeInputMessage(d *wire.Decoder) (InputMessage, error) {
	tag := d.Uint8()
	if err := d.Err(); err != nil {
		return nil, err
	}

	var m InputMessage
	switch tag {
	case IMsgPlaceBomb:
		m = PlaceBomb{}
	case IMsgPlaceBlock:
		m = PlaceBlock{}
	case IMsgMove:
		m = Move{Direction: readDirection(d)}
	default:
		d.Fail(&wire.UnknownVariantError{Type: "InputMessage", Index: tag})
	}

	if err := d.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
