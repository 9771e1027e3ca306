package game

import (
	"fmt"
	"maps"
	"slices"

	"github.com/blukai/robots/internal/protocol"
)

// Game is the state of a running game, advanced one server Turn at a time.
type Game struct {
	settings protocol.Hello
	turn     uint16

	players         map[protocol.PlayerID]protocol.Player
	playerPositions map[protocol.PlayerID]protocol.Position
	blockPositions  map[protocol.Position]struct{}
	bombs           map[protocol.BombID]protocol.Bomb
	explosions      map[protocol.Position]struct{}
	scores          map[protocol.PlayerID]protocol.Score

	// rebuilt from blockPositions and bombs after every turn
	blocks   []protocol.Position
	bombList []protocol.Bomb
}

func newGame(settings protocol.Hello, players map[protocol.PlayerID]protocol.Player) *Game {
	g := &Game{
		settings:        settings,
		players:         make(map[protocol.PlayerID]protocol.Player, len(players)),
		playerPositions: make(map[protocol.PlayerID]protocol.Position),
		blockPositions:  make(map[protocol.Position]struct{}),
		bombs:           make(map[protocol.BombID]protocol.Bomb),
		explosions:      make(map[protocol.Position]struct{}),
		scores:          make(map[protocol.PlayerID]protocol.Score, len(players)),
	}
	for id, player := range players {
		g.players[id] = player
		g.scores[id] = 0
	}
	g.rebuild()
	return g
}

func (g *Game) Turn() uint16 {
	return g.turn
}

// IsEnded reports whether the last turn announced by the settings was reached.
// The server's GameEnded stays authoritative.
func (g *Game) IsEnded() bool {
	return g.turn == g.settings.GameLength
}

// ProcessTurn applies the events of t in order. A turn number other than the
// expected one is rejected before anything is touched.
//
// NOTE: a turn is not atomic. When an event fails, the explosions are already
// cleared and the events before it stay applied. The game must be dropped
// after an error; the session treats every error as fatal.
func (g *Game) ProcessTurn(t protocol.Turn) error {
	if t.Number != g.turn {
		return fmt.Errorf("%w: out of order turn (got %d; want %d)", ErrProtocol, t.Number, g.turn)
	}

	clear(g.explosions)
	for i, ev := range t.Events {
		if err := g.applyEvent(ev); err != nil {
			return fmt.Errorf("turn %d event %d: %w", t.Number, i, err)
		}
	}
	g.rebuild()

	return nil
}

func (g *Game) applyEvent(ev protocol.Event) error {
	switch ev := ev.(type) {
	case protocol.BombPlaced:
		g.bombs[ev.ID] = protocol.Bomb{
			Position: ev.Position,
			Timer:    g.settings.BombTimer,
		}
	case protocol.PlayerMoved:
		g.playerPositions[ev.ID] = ev.Position
	case protocol.BlockPlaced:
		g.blockPositions[ev.Position] = struct{}{}
	case protocol.BombExploded:
		bomb, ok := g.bombs[ev.ID]
		if !ok {
			return fmt.Errorf("%w: unknown bomb %d exploded", ErrProtocol, ev.ID)
		}
		g.explode(bomb.Position)
		delete(g.bombs, ev.ID)

		// NOTE: the point goes to the destroyed robot; that is what the
		// server counts.
		for _, id := range ev.RobotsDestroyed {
			delete(g.playerPositions, id)
			g.scores[id]++
		}
		for _, pos := range ev.BlocksDestroyed {
			delete(g.blockPositions, pos)
		}
	default:
		return fmt.Errorf("%w: unexpected event %T", ErrProtocol, ev)
	}
	return nil
}

func (g *Game) isBlock(pos protocol.Position) bool {
	_, ok := g.blockPositions[pos]
	return ok
}

func (g *Game) inBounds(pos protocol.Position) bool {
	return pos.X < g.settings.SizeX && pos.Y < g.settings.SizeY
}

// explode marks the blast of a bomb at center. The blast travels up to the
// explosion radius along each axis; a block is hit (and marked) but stops
// the blast in that direction. A bomb lying on a block only marks its own
// cell.
func (g *Game) explode(center protocol.Position) {
	g.explosions[center] = struct{}{}
	if g.isBlock(center) {
		return
	}

	for dir := protocol.Up; dir < protocol.DirectionMax; dir++ {
		pos := center
		for step := uint16(0); step < g.settings.ExplosionRadius; step++ {
			next, ok := pos.Shift(dir)
			if !ok || !g.inBounds(next) {
				break
			}
			g.explosions[next] = struct{}{}
			if g.isBlock(next) {
				break
			}
			pos = next
		}
	}
}

// NextTurn closes the current turn: the turn counter advances and every bomb
// ticks. A bomb already at zero should have exploded during the turn, so it is
// a protocol error and nothing is changed.
func (g *Game) NextTurn() error {
	for id, bomb := range g.bombs {
		if bomb.Timer == 0 {
			return fmt.Errorf("%w: timer of bomb %d is already zero", ErrProtocol, id)
		}
	}
	for id, bomb := range g.bombs {
		bomb.Timer--
		g.bombs[id] = bomb
	}
	g.turn++
	g.rebuild()

	return nil
}

// EndGame throws away the game and returns an empty lobby with the same
// settings.
func (g *Game) EndGame() *Lobby {
	return NewLobby(g.settings)
}

func (g *Game) rebuild() {
	g.blocks = make([]protocol.Position, 0, len(g.blockPositions))
	for pos := range g.blockPositions {
		g.blocks = append(g.blocks, pos)
	}
	slices.SortFunc(g.blocks, protocol.ComparePositions)

	ids := make([]protocol.BombID, 0, len(g.bombs))
	for id := range g.bombs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	g.bombList = make([]protocol.Bomb, 0, len(ids))
	for _, id := range ids {
		g.bombList = append(g.bombList, g.bombs[id])
	}
}

// Snapshot returns a deep copy of the game as sent to the front-end.
func (g *Game) Snapshot() protocol.DrawGame {
	return protocol.DrawGame{
		ServerName:      g.settings.ServerName,
		SizeX:           g.settings.SizeX,
		SizeY:           g.settings.SizeY,
		GameLength:      g.settings.GameLength,
		Turn:            g.turn,
		Players:         maps.Clone(g.players),
		PlayerPositions: maps.Clone(g.playerPositions),
		Blocks:          slices.Clone(g.blocks),
		Bombs:           slices.Clone(g.bombList),
		Explosions:      maps.Clone(g.explosions),
		Scores:          maps.Clone(g.scores),
	}
}
