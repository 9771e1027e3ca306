// Package protocol defines the messages exchanged with the game server (over
// a byte stream) and with the front-end (over datagrams), together with their
// wire encodings.
//
// Every message family is a closed sum type: an interface whose unexported tag
// method returns the zero-based discriminant written in front of the payload.
package protocol

import (
	"cmp"

	"github.com/blukai/robots/internal/wire"
)

type (
	PlayerID uint8
	BombID   uint32
	Score    uint32
)

func writePlayerID(e *wire.Encoder, id PlayerID) { e.Uint8(uint8(id)) }
func readPlayerID(d *wire.Decoder) PlayerID      { return PlayerID(d.Uint8()) }
func writeScore(e *wire.Encoder, s Score)        { e.Uint32(uint32(s)) }
func readScore(d *wire.Decoder) Score            { return Score(d.Uint32()) }

type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left

	DirectionMax
)

func (dir Direction) String() string {
	switch dir {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "invalid"
	}
}

func readDirection(d *wire.Decoder) Direction {
	v := d.Uint8()
	if d.Err() == nil && v >= uint8(DirectionMax) {
		d.Fail(&wire.UnknownVariantError{Type: "Direction", Index: v})
	}
	return Direction(v)
}

type Position struct {
	X uint16
	Y uint16
}

// ComparePositions orders positions by x, then by y.
func ComparePositions(a, b Position) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}

// Shift returns the neighbouring cell in the given direction. Up increases y.
// ok is false when the neighbour does not fit in u16 coordinates.
func (p Position) Shift(dir Direction) (next Position, ok bool) {
	switch dir {
	case Up:
		return Position{p.X, p.Y + 1}, p.Y < ^uint16(0)
	case Right:
		return Position{p.X + 1, p.Y}, p.X < ^uint16(0)
	case Down:
		return Position{p.X, p.Y - 1}, p.Y > 0
	case Left:
		return Position{p.X - 1, p.Y}, p.X > 0
	default:
		return p, false
	}
}

func writePosition(e *wire.Encoder, p Position) {
	e.Uint16(p.X)
	e.Uint16(p.Y)
}

func readPosition(d *wire.Decoder) Position {
	x := d.Uint16()
	y := d.Uint16()
	return Position{X: x, Y: y}
}

type Player struct {
	Name    string
	Address string
}

func writePlayer(e *wire.Encoder, p Player) {
	e.String(p.Name)
	e.String(p.Address)
}

func readPlayer(d *wire.Decoder) Player {
	name := d.String()
	address := d.String()
	return Player{Name: name, Address: address}
}

type Bomb struct {
	Position Position
	Timer    uint16
}

func writeBomb(e *wire.Encoder, b Bomb) {
	writePosition(e, b.Position)
	e.Uint16(b.Timer)
}

func readBomb(d *wire.Decoder) Bomb {
	pos := readPosition(d)
	timer := d.Uint16()
	return Bomb{Position: pos, Timer: timer}
}
