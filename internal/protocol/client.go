package protocol

import (
	"github.com/blukai/robots/internal/wire"
)

// NOTE: C stands for client. Values are the discriminants on the wire.
const (
	CMsgJoin uint8 = iota
	CMsgPlaceBomb
	CMsgPlaceBlock
	CMsgMove

	CMsgMax
)

// ClientMessage is one of Join, PlaceBomb, PlaceBlock or Move.
type ClientMessage interface {
	wire.Marshaler
	clientTag() uint8
}

type Join struct {
	Name string
}

func (Join) clientTag() uint8 { return CMsgJoin }

func (m Join) MarshalWire(e *wire.Encoder) {
	e.String(m.Name)
}

// PlaceBomb, PlaceBlock and Move are actions. They are client messages and
// front-end input messages at the same time, with a different discriminant in
// each family.

type PlaceBomb struct{}

func (PlaceBomb) clientTag() uint8 { return CMsgPlaceBomb }

func (PlaceBomb) MarshalWire(*wire.Encoder) {}

type PlaceBlock struct{}

func (PlaceBlock) clientTag() uint8 { return CMsgPlaceBlock }

func (PlaceBlock) MarshalWire(*wire.Encoder) {}

type Move struct {
	Direction Direction
}

func (Move) clientTag() uint8 { return CMsgMove }

func (m Move) MarshalWire(e *wire.Encoder) {
	e.Uint8(uint8(m.Direction))
}

func EncodeClientMessage(e *wire.Encoder, m ClientMessage) {
	e.Uint8(m.clientTag())
	m.MarshalWire(e)
}

func DecodeClientMessage(d *wire.Decoder) (ClientMessage, error) {
	tag := d.Uint8()
	if err := d.Err(); err != nil {
		return nil, err
	}

	var m ClientMessage
	switch tag {
	case CMsgJoin:
		m = Join{Name: d.String()}
	case CMsgPlaceBomb:
		m = PlaceBomb{}
	case CMsgPlaceBlock:
		m = PlaceBlock{}
	case CMsgMove:
		m = Move{Direction: readDirection(d)}
	default:
		d.Fail(&wire.UnknownVariantError{Type: "ClientMessage", Index: tag})
	}

	if err := d.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
