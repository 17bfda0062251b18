package server

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/cyrillknecht/nolimittexasholdem/internal/game"
	"github.com/cyrillknecht/nolimittexasholdem/internal/protocol"
)

func TestLobbyReadyRequiresAllPresentSeatsReady(t *testing.T) {
	m := &Mediator{logger: log.New(io.Discard)}
	a := game.NewSeat(0, nil, 100, m.logger)
	b := game.NewSeat(1, nil, 100, m.logger)

	require.False(t, m.lobbyReady([]*game.Seat{a}))
	require.False(t, m.lobbyReady([]*game.Seat{a, b}))

	a.Ready = true
	require.False(t, m.lobbyReady([]*game.Seat{a, b}))

	b.Ready = true
	require.True(t, m.lobbyReady([]*game.Seat{a, b}))
}

func drainConn(c net.Conn) {
	buf := make([]byte, 4096)
	for {
		if _, err := c.Read(buf); err != nil {
			return
		}
	}
}

func TestHandleLobbyMessageRecordsReadyAndDisplayName(t *testing.T) {
	m := &Mediator{logger: log.New(io.Discard)}
	clientA, serverA := net.Pipe()
	t.Cleanup(func() { _ = clientA.Close() })
	go drainConn(clientA)
	a := game.NewSeat(0, serverA, 100, m.logger)
	seats := []*game.Seat{a}

	m.handleLobbyMessage(seats, game.Incoming{SeatID: 0, Msg: protocol.SetDisplayName("Ada")})
	require.Equal(t, "Ada", a.DisplayName)

	m.handleLobbyMessage(seats, game.Incoming{SeatID: 0, Msg: protocol.IsReady()})
	require.True(t, a.Ready)
}

// TestAcceptAndLobbyStartsAsSoonAsPresentSeatsReady drives acceptAndLobby
// over a real listener with only 2 of the 6 possible seats connecting: the
// lobby must start the moment those two are ready, without ever blocking on
// Accept for a third connection that never comes (regression: an earlier
// version only drained lobby messages after the accept loop exited, so any
// table with fewer than MaxSeats players could never start).
func TestAcceptAndLobbyStartsAsSoonAsPresentSeatsReady(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	m := &Mediator{cfg: Config{StartMoney: 100}, logger: log.New(io.Discard)}
	incoming := make(chan game.Incoming, 64)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		seats []*game.Seat
		ready bool
	}
	done := make(chan result, 1)
	go func() {
		seats, ready := m.acceptAndLobby(ctx, ln, incoming)
		done <- result{seats, ready}
	}()

	clients := make([]net.Conn, 2)
	for i := range clients {
		conn, err := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		go drainConn(conn)
		clients[i] = conn
	}
	for _, c := range clients {
		require.NoError(t, protocol.WriteTo(c, protocol.IsReady()))
	}

	select {
	case r := <-done:
		require.True(t, r.ready)
		require.Len(t, r.seats, 2)
		for _, s := range r.seats {
			require.True(t, s.Ready)
		}
	case <-ctx.Done():
		t.Fatal("acceptAndLobby did not start with fewer than MaxSeats connections")
	}
}
