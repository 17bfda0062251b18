// Package server implements the mediator (C5): the TCP listener and
// lobby that accept seats and hand them off to the round state machine
// in internal/game.
package server

import (
	"context"
	"net"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/cyrillknecht/nolimittexasholdem/internal/game"
	"github.com/cyrillknecht/nolimittexasholdem/internal/protocol"
)

// MaxSeats is the table's capacity; the mediator stops accepting once
// this many connections have been seated.
const MaxSeats = 6

// MinSeatsToStart is the fewest ready seats the lobby needs before
// handing off to the round state machine.
const MinSeatsToStart = 2

// Mediator owns the listener and the lobby that precedes a hand: it
// accepts connections up to MaxSeats while concurrently draining
// lobby traffic, starts as soon as at least MinSeatsToStart present
// seats are all ready, then builds the Table and runs its driver loop.
type Mediator struct {
	cfg    Config
	logger *log.Logger
	seed   int64
}

// New builds a mediator bound to cfg. seed drives the round state
// machine's shuffling RNG.
func New(cfg Config, seed int64, logger *log.Logger) *Mediator {
	return &Mediator{cfg: cfg, logger: logger.WithPrefix("mediator"), seed: seed}
}

// Run listens on cfg.Port, seats arriving connections, runs the lobby,
// then drives the table to completion. It returns when the game ends,
// when ctx is canceled, or when the listener cannot be bound.
func (m *Mediator) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("0.0.0.0", strconv.Itoa(m.cfg.Port)))
	if err != nil {
		return err
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	m.logger.Info("listening", "port", m.cfg.Port)

	incoming := make(chan game.Incoming, 64)
	seats, ready := m.acceptAndLobby(ctx, ln, incoming)
	if !ready {
		return nil
	}

	m.logger.Info("starting hand", "seats", len(seats))
	table := game.NewTable(seats, m.cfg.SmallBlind, incoming, m.seed, m.logger)
	table.Run(ctx)
	return nil
}

// acceptAndLobby races accepting new connections against draining
// lobby-phase messages (set_display_name / is_ready) for the seats
// already present, exactly as the original's
// `accept_players(...).race(wait_for_ready(...))`: the table must be
// able to start as soon as every present seat is ready, without
// waiting for MaxSeats connections or for Accept to return again.
// Only this loop ever touches seats, so no lock is needed — the
// accept goroutine hands off raw connections on a channel and never
// looks at seats itself.
//
// It returns once the lobby is ready, MaxSeats is reached and
// lobbyReady flips true, or ctx is canceled (ready=false).
func (m *Mediator) acceptAndLobby(ctx context.Context, ln net.Listener, incoming chan game.Incoming) ([]*game.Seat, bool) {
	conns := make(chan net.Conn)
	go func() {
		defer close(conns)
		for accepted := 0; accepted < MaxSeats; accepted++ {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			select {
			case conns <- conn:
			case <-ctx.Done():
				_ = conn.Close()
				return
			}
		}
	}()

	var seats []*game.Seat
	nextID := 0

	for {
		select {
		case conn, ok := <-conns:
			if !ok {
				conns = nil
				continue
			}
			if len(seats) >= MaxSeats {
				_ = conn.Close()
				continue
			}
			seat := game.NewSeat(nextID, conn, m.cfg.StartMoney, m.logger)
			nextID++
			seats = append(seats, seat)
			seat.StartReader(incoming)
			m.logger.Info("seat joined", "seat_id", seat.ID, "remote", conn.RemoteAddr())
			for _, s := range seats {
				s.Write(game.LobbyGameState(s, seats))
			}
			if m.lobbyReady(seats) {
				return seats, true
			}
		case in := <-incoming:
			m.handleLobbyMessage(seats, in)
			if m.lobbyReady(seats) {
				return seats, true
			}
		case <-ctx.Done():
			return seats, false
		}
	}
}

// handleLobbyMessage applies one lobby-phase message (set_display_name,
// is_ready) to the seat it's tagged with, then re-broadcasts the lobby
// game_state to everyone present.
func (m *Mediator) handleLobbyMessage(seats []*game.Seat, in game.Incoming) {
	seat := seatByID(seats, in.SeatID)
	if seat == nil {
		return
	}
	switch in.Msg.Type {
	case protocol.TypeSetDisplayName:
		seat.DisplayName = in.Msg.PlayerName
	case protocol.TypeIsReady:
		seat.Ready = true
	case protocol.TypeConnectionEnded:
		// seat already marked disconnected by its reader
	}
	for _, s := range seats {
		s.Write(game.LobbyGameState(s, seats))
	}
}

// lobbyReady implements the exit condition verbatim: at least
// MinSeatsToStart seats present, and every present seat has sent
// is_ready.
func (m *Mediator) lobbyReady(seats []*game.Seat) bool {
	if len(seats) < MinSeatsToStart {
		return false
	}
	for _, s := range seats {
		if !s.Ready {
			return false
		}
	}
	return true
}

func seatByID(seats []*game.Seat, id int) *game.Seat {
	for _, s := range seats {
		if s.ID == id {
			return s
		}
	}
	return nil
}
