package game

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cyrillknecht/nolimittexasholdem/internal/deck"
	"github.com/cyrillknecht/nolimittexasholdem/internal/evaluator"
	"github.com/cyrillknecht/nolimittexasholdem/internal/protocol"
)

// readerLivenessTimeout is the long read deadline the reader goroutine
// treats as a liveness check: any read, including a dropped heartbeat,
// pushes it out again.
const readerLivenessTimeout = 2 * time.Minute

// Incoming is one message arriving on the mediator's fan-in channel,
// tagged with the seat that sent it.
type Incoming struct {
	SeatID int
	Msg    protocol.Envelope
}

// Seat is the per-client aggregate: identity, chips, cards, betting and
// connection state, plus the socket this seat is reachable through.
type Seat struct {
	ID          int
	DisplayName string
	Ready       bool

	Chips       uint64
	HoleCards   [2]deck.Card
	hasCards    bool
	CurrentBet  uint64
	HasFolded   bool
	IsOut       bool
	RevealedValue *evaluator.Value

	conn      net.Conn
	connected atomic.Bool
	logger    *log.Logger
}

// NewSeat wraps an accepted connection as a seat. The seat starts
// connected; its reader goroutine is started separately via StartReader.
func NewSeat(id int, conn net.Conn, chips uint64, logger *log.Logger) *Seat {
	s := &Seat{
		ID:     id,
		Chips:  chips,
		conn:   conn,
		logger: logger.WithPrefix("seat").With("seat_id", id),
	}
	s.connected.Store(true)
	return s
}

// Connected reports whether the seat's socket is believed alive. It is set
// by the reader goroutine and read by the driver; it is the only state that
// crosses between those two goroutines.
func (s *Seat) Connected() bool { return s.connected.Load() }

func (s *Seat) setDisconnected() {
	if s.connected.CompareAndSwap(true, false) {
		_ = s.conn.Close()
	}
}

// Write serializes and sends msg. On I/O failure the seat is marked
// disconnected and the message is dropped silently; there is no retry.
func (s *Seat) Write(msg protocol.Envelope) {
	if !s.Connected() {
		return
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := protocol.WriteTo(s.conn, msg); err != nil {
		s.logger.Warn("write failed, disconnecting seat", "error", err)
		s.setDisconnected()
	}
}

// SetHoleCards deals two cards face down to the seat.
func (s *Seat) SetHoleCards(a, b deck.Card) {
	s.HoleCards = [2]deck.Card{a, b}
	s.hasCards = true
}

// ClearHand resets per-hand state when a new hand begins or the current
// hand ends.
func (s *Seat) ClearHand() {
	s.hasCards = false
	s.HasFolded = false
	s.CurrentBet = 0
	s.RevealedValue = nil
}

// DeductToBet moves amount from chips into CurrentBet. Precondition:
// amount <= Chips+CurrentBet. Any chips already posted this round are
// rolled back into Chips first so the move is always a clean deduction of
// the full target amount.
func (s *Seat) DeductToBet(amount uint64) {
	available := s.Chips + s.CurrentBet
	if amount > available {
		panic("game: DeductToBet amount exceeds chips+current bet")
	}
	s.Chips = available
	s.CurrentBet = amount
	s.Chips -= amount
}

// TakeBet collects up to cap of the seat's current bet into a pot,
// refunding any surplus back to chips, and returns the amount collected.
// This is how a winner collects up to their own matched bet and how
// excess over-bets are refunded to over-bettors under single main-pot
// semantics.
func (s *Seat) TakeBet(cap uint64) uint64 {
	taken := s.CurrentBet
	if taken > cap {
		taken = cap
	}
	surplus := s.CurrentBet - taken
	s.Chips += surplus
	s.CurrentBet = 0
	return taken
}

// AddChips unconditionally credits n chips, e.g. when a seat wins a pot.
func (s *Seat) AddChips(n uint64) {
	s.Chips += n
}

// StartReader spawns the seat's reader goroutine. It parses frames,
// drops heartbeats, and forwards everything else onto out tagged with the
// seat's id. On any read error or timeout it shuts the socket, marks the
// seat disconnected, and posts a synthetic connection_ended.
func (s *Seat) StartReader(out chan<- Incoming) {
	go func() {
		r := protocol.NewReader(s.conn)
		for {
			_ = s.conn.SetReadDeadline(time.Now().Add(readerLivenessTimeout))
			msg, err := r.ReadMessage()
			if err != nil {
				s.logger.Debug("reader closing", "error", err)
				s.setDisconnected()
				out <- Incoming{SeatID: s.ID, Msg: protocol.Envelope{Type: protocol.TypeConnectionEnded}}
				return
			}
			if msg.Type == protocol.TypeHeartbeat {
				continue
			}
			out <- Incoming{SeatID: s.ID, Msg: msg}
		}
	}()
}
