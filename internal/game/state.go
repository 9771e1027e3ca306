// Package game tracks the client's view of the game from the messages the
// server announces.
package game

import (
	"errors"
	"fmt"

	"github.com/blukai/robots/internal/debug"
	"github.com/blukai/robots/internal/protocol"
)

// ErrProtocol is wrapped by every error caused by a server message that does
// not fit the current state. The session cannot continue after it.
var ErrProtocol = errors.New("protocol error")

// State is the client state: nothing until Hello arrives, then exactly one of
// a lobby or a game.
//
// State is not safe for concurrent use.
type State struct {
	playerName string
	spectator  bool

	lobby *Lobby
	game  *Game
}

func NewState(playerName string) *State {
	return &State{
		playerName: playerName,
		spectator:  true,
	}
}

func (s *State) Connected() bool {
	return s.lobby != nil || s.game != nil
}

// Lobby returns the lobby or nil when not in one.
func (s *State) Lobby() *Lobby {
	return s.lobby
}

// Game returns the game or nil when not in one.
func (s *State) Game() *Game {
	return s.game
}

// Spectator reports whether the local player is only watching: it was not
// accepted by the server in the current lobby.
func (s *State) Spectator() bool {
	return s.spectator
}

// Apply applies one server message and returns the snapshot to draw. For a
// Turn the snapshot shows the turn as announced; the turn is closed (see
// Game.NextTurn) right after taking it.
func (s *State) Apply(msg protocol.ServerMessage) (protocol.DrawMessage, error) {
	switch {
	case s.lobby != nil:
		return s.applyLobby(msg)
	case s.game != nil:
		return s.applyGame(msg)
	default:
		hello, ok := msg.(protocol.Hello)
		if !ok {
			return nil, fmt.Errorf("%w: first message must be hello, got %T", ErrProtocol, msg)
		}
		s.lobby = NewLobby(hello)
		return s.lobby.Snapshot(), nil
	}
}

func (s *State) applyLobby(msg protocol.ServerMessage) (protocol.DrawMessage, error) {
	switch m := msg.(type) {
	case protocol.AcceptedPlayer:
		s.lobby.AddPlayer(m)
		if m.Player.Name == s.playerName {
			s.spectator = false
		}
		return s.lobby.Snapshot(), nil
	case protocol.GameStarted:
		s.game = s.lobby.StartGame(m)
		s.lobby = nil
		return s.game.Snapshot(), nil
	default:
		return nil, fmt.Errorf("%w: unexpected %T in lobby", ErrProtocol, msg)
	}
}

func (s *State) applyGame(msg protocol.ServerMessage) (protocol.DrawMessage, error) {
	switch m := msg.(type) {
	case protocol.Turn:
		if err := s.game.ProcessTurn(m); err != nil {
			return nil, err
		}
		snapshot := s.game.Snapshot()
		if err := s.game.NextTurn(); err != nil {
			return nil, err
		}
		return snapshot, nil
	case protocol.GameEnded:
		s.lobby = s.game.EndGame()
		s.game = nil
		// players have to join again
		s.spectator = true
		return s.lobby.Snapshot(), nil
	default:
		return nil, fmt.Errorf("%w: unexpected %T in game", ErrProtocol, msg)
	}
}

// Translate decides what an input from the front-end becomes. In a lobby any
// input asks the server to let the local player join; in a game the actions of
// an accepted player are forwarded as they are. ok is false when the input is
// to be dropped.
func (s *State) Translate(in protocol.InputMessage) (out protocol.ClientMessage, ok bool) {
	switch {
	case s.lobby != nil:
		return protocol.Join{Name: s.playerName}, true
	case s.game != nil && !s.spectator:
		out, ok = translateAction(in)
		debug.Assert(ok, fmt.Sprintf("unhandled input %T", in))
		return out, ok
	default:
		return nil, false
	}
}

func translateAction(in protocol.InputMessage) (protocol.ClientMessage, bool) {
	switch m := in.(type) {
	case protocol.PlaceBomb:
		return m, true
	case protocol.PlaceBlock:
		return m, true
	case protocol.Move:
		return m, true
	default:
		return nil, false
	}
}
