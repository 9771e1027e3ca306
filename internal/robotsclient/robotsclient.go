// Package robotsclient runs a client session: it follows the game announced by
// the server, draws every state change on the front-end and forwards the
// front-end's input to the server.
package robotsclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/blukai/robots/internal/game"
	"github.com/blukai/robots/internal/protocol"
	"github.com/blukai/robots/internal/transport"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/phuslu/log"
)

type Config struct {
	PlayerName    string
	ServerAddress string
	GUIAddress    string
	// Port is where the front-end's datagrams are received. 0 picks a free
	// port.
	Port uint16
}

type RobotsClient struct {
	sessionID uuid.UUID

	server *transport.StreamConn
	gui    *transport.DatagramConn

	logger *log.Logger

	// NOTE: the server loop is the only writer
	mu    sync.RWMutex
	state *game.State
}

func NewRobotsClient(config Config, logger *log.Logger) (*RobotsClient, error) {
	// if logger is nil (which might be true in tests) => use default, but
	// silenced logger
	if logger == nil {
		tmp := log.DefaultLogger
		logger = &tmp
		logger.Writer = &log.IOWriter{Writer: io.Discard}
	}

	sessionID := uuid.New()
	sessionLogger := *logger
	sessionLogger.Context = log.NewContext(nil).Str("session", sessionID.String()).Value()
	logger = &sessionLogger

	gui, err := transport.ListenDatagram(config.Port, config.GUIAddress, logger)
	if err != nil {
		return nil, fmt.Errorf("could not set up front-end conn: %w", err)
	}

	server, err := transport.DialStream(config.ServerAddress, logger)
	if err != nil {
		gui.Close()
		return nil, fmt.Errorf("could not connect to server: %w", err)
	}

	logger.Info().
		Str("player", config.PlayerName).
		Str("server", server.RemoteAddr().String()).
		Str("gui", gui.Peer().String()).
		Str("listen", gui.LocalAddr().String()).
		Msg("connected")

	rc := &RobotsClient{
		sessionID: sessionID,

		server: server,
		gui:    gui,

		logger: logger,

		state: game.NewState(config.PlayerName),
	}

	return rc, nil
}

func (rc *RobotsClient) SessionID() uuid.UUID {
	return rc.sessionID
}

// GUIAddr can be useful to retrieve the front-end listening address when
// Config.Port was 0.
func (rc *RobotsClient) GUIAddr() *net.UDPAddr {
	return rc.gui.LocalAddr()
}

// Run blocks until the server loop fails, the front-end socket is closed or
// ctx is done. Server loop errors are returned: after one the local state can
// no longer be trusted. Both connections are closed when Run returns.
func (rc *RobotsClient) Run(ctx context.Context) error {
	wg := &sync.WaitGroup{}

	serverErrCh := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		serverErrCh <- rc.runServer()
	}()

	guiDoneCh := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(guiDoneCh)
		rc.runGUI()
	}()

	var errs *multierror.Error

	select {
	case <-ctx.Done():
		rc.logger.Info().Msg("stopping")
	case err := <-serverErrCh:
		rc.logger.Error().Err(err).Msg("server loop failed")
		errs = multierror.Append(errs, err)
	case <-guiDoneCh:
		rc.logger.Error().Msg("front-end loop stopped")
	}

	// closing the conns unblocks reads of whichever loop is still running
	if err := rc.server.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		errs = multierror.Append(errs, fmt.Errorf("could not close server conn: %w", err))
	}
	if err := rc.gui.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		errs = multierror.Append(errs, fmt.Errorf("could not close front-end conn: %w", err))
	}
	wg.Wait()

	return errs.ErrorOrNil()
}

func (rc *RobotsClient) runServer() error {
	for {
		msg, err := transport.Recv(rc.server, protocol.DecodeServerMessage)
		if err != nil {
			return fmt.Errorf("could not recv server message: %w", err)
		}

		rc.logger.Debug().
			Any("msg", msg).
			Msgf("recv %T", msg)

		if err := rc.handleServerMessage(msg); err != nil {
			return err
		}
	}
}

// handleServerMessage applies msg and sends the resulting snapshot while
// holding the write lock, so the front-end never sees a state older than what
// the front-end loop decides on.
func (rc *RobotsClient) handleServerMessage(msg protocol.ServerMessage) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	draw, err := rc.state.Apply(msg)
	if err != nil {
		return fmt.Errorf("could not apply %T: %w", msg, err)
	}

	switch m := msg.(type) {
	case protocol.Hello:
		rc.logger.Info().
			Str("server_name", m.ServerName).
			Int("players_count", int(m.PlayersCount)).
			Int("game_length", int(m.GameLength)).
			Msg("hello")
	case protocol.AcceptedPlayer:
		rc.logger.Info().
			Int("id", int(m.ID)).
			Str("name", m.Player.Name).
			Bool("spectator", rc.state.Spectator()).
			Msg("player accepted")
	case protocol.GameStarted:
		rc.logger.Info().
			Int("players", len(m.Players)).
			Bool("spectator", rc.state.Spectator()).
			Msg("game started")
	case protocol.Turn:
		if g := rc.state.Game(); g != nil && g.IsEnded() {
			rc.logger.Debug().
				Int("turn", int(m.Number)).
				Msg("last turn played, waiting for game end")
		}
	case protocol.GameEnded:
		rc.logger.Info().
			Any("scores", m.Scores).
			Msg("game ended")
	}

	if err := transport.Send(rc.gui, protocol.EncodeDrawMessage, draw); err != nil {
		return fmt.Errorf("could not send snapshot: %w", err)
	}

	return nil
}

func (rc *RobotsClient) runGUI() {
	for {
		in, err := transport.Recv(rc.gui, protocol.DecodeInputMessage)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			rc.logger.Warn().
				Err(err).
				Msg("dropped front-end datagram")
			continue
		}

		out, ok := rc.translate(in)
		if !ok {
			rc.logger.Debug().
				Any("input", in).
				Msgf("ignored %T", in)
			continue
		}

		if err := transport.Send(rc.server, protocol.EncodeClientMessage, out); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			rc.logger.Error().
				Err(err).
				Msgf("could not send %T", out)
			continue
		}

		rc.logger.Debug().
			Any("msg", out).
			Msgf("sent %T", out)
	}
}

func (rc *RobotsClient) translate(in protocol.InputMessage) (protocol.ClientMessage, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	return rc.state.Translate(in)
}
