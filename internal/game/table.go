// Package game implements the round state machine (C6): dealing, the
// 8-phase betting cycle, pot management, showdown, and dealer/blind
// rotation, plus the Seat aggregate (C4) it drives.
package game

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cyrillknecht/nolimittexasholdem/internal/deck"
	"github.com/cyrillknecht/nolimittexasholdem/internal/protocol"
)

// DefaultTurnTimeout is the hard wall-clock budget for a player's turn.
// The design notes call this out as effectively unbounded while retaining
// the timeout-as-fold / disconnect-as-all-in contract.
const DefaultTurnTimeout = 10_000 * time.Second

// DefaultRevealDuration is how long the showdown/hand-end broadcast is
// held before the next hand begins, giving clients time to render it.
const DefaultRevealDuration = 10 * time.Second

// Table is the aggregate the round state machine owns: the seat list,
// community cards, the live deck, and the per-hand bookkeeping needed to
// drive blinds, acting order, and dealer rotation.
type Table struct {
	Seats          []*Seat
	CommunityCards []deck.Card
	Deck           *deck.Deck
	RoundNumber    int
	PlayersInHand  []int
	Dealer         int
	SmallBlind     uint64

	turnTimeout    time.Duration
	revealDuration time.Duration

	rng    *rand.Rand
	clock  quartz.Clock
	logger *log.Logger

	incoming <-chan Incoming
}

// NewTable builds the round state machine over seats, consuming the
// mediator's fan-in channel for player responses. seed drives the
// driver-owned shuffling RNG.
func NewTable(seats []*Seat, smallBlind uint64, incoming <-chan Incoming, seed int64, logger *log.Logger) *Table {
	return &Table{
		Seats:          seats,
		Deck:           deck.New(),
		SmallBlind:     smallBlind,
		turnTimeout:    DefaultTurnTimeout,
		revealDuration: DefaultRevealDuration,
		rng:            rand.New(rand.NewSource(seed)),
		clock:          quartz.NewReal(),
		logger:         logger.WithPrefix("round"),
		incoming:       incoming,
	}
}

// WithClock overrides the table's clock, e.g. with quartz.NewMock(), so
// turn timeouts and reveal sleeps follow an injected clock instead of
// real time.
func (t *Table) WithClock(c quartz.Clock) *Table {
	t.clock = c
	return t
}

func (t *Table) seatByID(id int) *Seat {
	for _, s := range t.Seats {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// highestBet is the largest CurrentBet among seats still in the hand,
// folded or not: a fold doesn't lower the bar a caller must clear.
func (t *Table) highestBet() uint64 {
	var max uint64
	for _, id := range t.PlayersInHand {
		if bet := t.seatByID(id).CurrentBet; bet > max {
			max = bet
		}
	}
	return max
}

// nonFoldedSurvivors returns the seats in PlayersInHand that have not
// folded, in acting order.
func (t *Table) nonFoldedSurvivors() []*Seat {
	var out []*Seat
	for _, id := range t.PlayersInHand {
		if s := t.seatByID(id); !s.HasFolded {
			out = append(out, s)
		}
	}
	return out
}

// computePlayersInHand orders seats starting one seat clockwise from the
// dealer, ending with the dealer; is_out seats never appear.
func (t *Table) computePlayersInHand() []int {
	n := len(t.Seats)
	var ids []int
	for i := 1; i <= n; i++ {
		idx := (t.Dealer + i) % n
		seat := t.Seats[idx]
		if !seat.IsOut {
			ids = append(ids, seat.ID)
		}
	}
	return ids
}

// qualifiedSeats returns seats that are connected and not out: the pool
// eligible to continue the game.
func (t *Table) qualifiedSeats() []*Seat {
	var out []*Seat
	for _, s := range t.Seats {
		if s.Connected() && !s.IsOut {
			out = append(out, s)
		}
	}
	return out
}

// buildGameState renders the personalized game_state payload for seat.
func (t *Table) buildGameState(seat *Seat, showdown bool, handWinner int8) protocol.Envelope {
	env := protocol.Envelope{
		Type:        protocol.TypeGameState,
		PersonalID:  seat.ID,
		MiddleCards: cardsToWire(t.CommunityCards),
		RoundNumber: t.RoundNumber,
		IsStarted:   true,
		HandWinner:  handWinner,
		IsShowdown:  showdown,
	}
	if seat.hasCards {
		env.PersonalCards = HoleCards{uint8(seat.HoleCards[0]), uint8(seat.HoleCards[1])}
	}

	for _, s := range t.Seats {
		env.PlayerNames = append(env.PlayerNames, s.DisplayName)
		env.PlayerBettingAmount = append(env.PlayerBettingAmount, s.CurrentBet)
		env.PlayerMoney = append(env.PlayerMoney, s.Chips)
		env.PlayerHasFolded = append(env.PlayerHasFolded, s.HasFolded)
		env.PlayerIsOut = append(env.PlayerIsOut, s.IsOut)

		var cards *HoleCards
		if s.RevealedValue != nil && s.hasCards {
			cards = &HoleCards{uint8(s.HoleCards[0]), uint8(s.HoleCards[1])}
		}
		env.PlayerCards = append(env.PlayerCards, cards)
	}
	return env
}

// HoleCards is re-exported for readability at call sites in this package.
type HoleCards = protocol.HoleCards

func cardsToWire(cards []deck.Card) []uint8 {
	out := make([]uint8, len(cards))
	for i, c := range cards {
		out[i] = uint8(c)
	}
	return out
}

// broadcastGameState sends every seat its own personalized game_state.
func (t *Table) broadcastGameState(showdown bool, handWinner int8) {
	for _, s := range t.Seats {
		s.Write(t.buildGameState(s, showdown, handWinner))
	}
}

// LobbyGameState is the empty game_state (is_started=false) sent to a
// freshly accepted connection so the client can render the lobby.
func LobbyGameState(seat *Seat, allSeats []*Seat) protocol.Envelope {
	env := protocol.Envelope{
		Type:       protocol.TypeGameState,
		PersonalID: seat.ID,
		IsStarted:  false,
		HandWinner: -1,
	}
	for _, s := range allSeats {
		env.PlayerNames = append(env.PlayerNames, s.DisplayName)
		env.PlayerMoney = append(env.PlayerMoney, s.Chips)
		env.PlayerHasFolded = append(env.PlayerHasFolded, s.HasFolded)
		env.PlayerIsOut = append(env.PlayerIsOut, s.IsOut)
		env.PlayerBettingAmount = append(env.PlayerBettingAmount, 0)
		env.PlayerCards = append(env.PlayerCards, nil)
	}
	return env
}
