package game

import (
	"maps"

	"github.com/blukai/robots/internal/protocol"
)

// Lobby is the state between games: the server settings announced in Hello and
// the players accepted so far.
type Lobby struct {
	settings protocol.Hello
	players  map[protocol.PlayerID]protocol.Player
}

func NewLobby(settings protocol.Hello) *Lobby {
	return &Lobby{
		settings: settings,
		players:  make(map[protocol.PlayerID]protocol.Player),
	}
}

func (l *Lobby) Settings() protocol.Hello {
	return l.settings
}

func (l *Lobby) AddPlayer(m protocol.AcceptedPlayer) {
	l.players[m.ID] = m.Player
}

// StartGame turns the lobby into a game. The lobby must not be used
// afterwards.
func (l *Lobby) StartGame(m protocol.GameStarted) *Game {
	g := newGame(l.settings, m.Players)
	l.players = nil
	return g
}

func (l *Lobby) Snapshot() protocol.DrawLobby {
	return protocol.DrawLobby{
		ServerName:      l.settings.ServerName,
		PlayersCount:    l.settings.PlayersCount,
		SizeX:           l.settings.SizeX,
		SizeY:           l.settings.SizeY,
		GameLength:      l.settings.GameLength,
		ExplosionRadius: l.settings.ExplosionRadius,
		BombTimer:       l.settings.BombTimer,
		Players:         maps.Clone(l.players),
	}
}
