package protocol

import (
	"github.com/blukai/robots/internal/wire"
)

const (
	EventBombPlaced uint8 = iota
	EventBombExploded
	EventPlayerMoved
	EventBlockPlaced

	EventMax
)

// Event is one of BombPlaced, BombExploded, PlayerMoved or BlockPlaced.
type Event interface {
	wire.Marshaler
	eventTag() uint8
}

type BombPlaced struct {
	ID       BombID
	Position Position
}

func (BombPlaced) eventTag() uint8 { return EventBombPlaced }

func (ev BombPlaced) MarshalWire(e *wire.Encoder) {
	e.Uint32(uint32(ev.ID))
	writePosition(e, ev.Position)
}

type BombExploded struct {
	ID              BombID
	RobotsDestroyed []PlayerID
	BlocksDestroyed []Position
}

func (BombExploded) eventTag() uint8 { return EventBombExploded }

func (ev BombExploded) MarshalWire(e *wire.Encoder) {
	e.Uint32(uint32(ev.ID))
	wire.WriteSeq(e, ev.RobotsDestroyed, writePlayerID)
	wire.WriteSeq(e, ev.BlocksDestroyed, writePosition)
}

type PlayerMoved struct {
	ID       PlayerID
	Position Position
}

func (PlayerMoved) eventTag() uint8 { return EventPlayerMoved }

func (ev PlayerMoved) MarshalWire(e *wire.Encoder) {
	writePlayerID(e, ev.ID)
	writePosition(e, ev.Position)
}

type BlockPlaced struct {
	Position Position
}

func (BlockPlaced) eventTag() uint8 { return EventBlockPlaced }

func (ev BlockPlaced) MarshalWire(e *wire.Encoder) {
	writePosition(e, ev.Position)
}

func writeEvent(e *wire.Encoder, ev Event) {
	e.Uint8(ev.eventTag())
	ev.MarshalWire(e)
}

func readEvent(d *wire.Decoder) Event {
	tag := d.Uint8()
	if d.Err() != nil {
		return nil
	}

	switch tag {
	case EventBombPlaced:
		id := BombID(d.Uint32())
		pos := readPosition(d)
		return BombPlaced{ID: id, Position: pos}
	case EventBombExploded:
		id := BombID(d.Uint32())
		robots := wire.ReadSeq(d, readPlayerID)
		blocks := wire.ReadSeq(d, readPosition)
		return BombExploded{ID: id, RobotsDestroyed: robots, BlocksDestroyed: blocks}
	case EventPlayerMoved:
		id := readPlayerID(d)
		pos := readPosition(d)
		return PlayerMoved{ID: id, Position: pos}
	case EventBlockPlaced:
		return BlockPlaced{Position: readPosition(d)}
	default:
		d.Fail(&wire.UnknownVariantError{Type: "Event", Index: tag})
		return nil
	}
}
