package game

import (
	"context"
	"math"
	"time"

	"github.com/cyrillknecht/nolimittexasholdem/internal/deck"
	"github.com/cyrillknecht/nolimittexasholdem/internal/evaluator"
	"github.com/cyrillknecht/nolimittexasholdem/internal/protocol"
)

// phaseKind distinguishes the two alternating phases of a betting round:
// bet phase (everyone still in acts once) and equalize phase (everyone
// below the current high bet gets one more chance to call, raise, or
// fold).
type phaseKind int

const (
	phaseBet phaseKind = iota
	phaseEqualize
)

// Run drives hands until fewer than two qualified seats remain, then
// broadcasts game_end and returns.
func (t *Table) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		qualified := t.qualifiedSeats()
		if len(qualified) < 2 {
			t.broadcastGameEnd(qualified)
			return
		}
		t.playHand(ctx)
		t.eliminate()
	}
}

func (t *Table) broadcastGameEnd(qualified []*Seat) {
	var winner *int
	if len(qualified) == 1 {
		id := qualified[0].ID
		winner = &id
	}
	env := protocol.GameEnd(winner)
	for _, s := range t.Seats {
		s.Write(env)
	}
}

// eliminate marks seats with zero chips or dead sockets as out. Run this
// after every hand.
func (t *Table) eliminate() {
	for _, s := range t.Seats {
		if s.Chips == 0 || !s.Connected() {
			s.IsOut = true
		}
	}
}

func (t *Table) playHand(ctx context.Context) {
	t.RoundNumber = 0
	t.CommunityCards = nil
	t.Deck.Shuffle(t.rng)
	t.PlayersInHand = t.computePlayersInHand()

	for _, id := range t.PlayersInHand {
		t.seatByID(id).ClearHand()
	}
	for _, id := range t.PlayersInHand {
		seat := t.seatByID(id)
		a, _ := t.Deck.Deal()
		b, _ := t.Deck.Deal()
		seat.SetHoleCards(a, b)
	}

	t.postBlinds()
	t.broadcastGameState(false, -1)

	phases := []phaseKind{phaseBet, phaseEqualize, phaseBet, phaseEqualize, phaseBet, phaseEqualize, phaseBet, phaseEqualize}
	for round, kind := range phases {
		t.RoundNumber = round
		t.runPhase(ctx, kind)
		if t.earlyTerminationCheck() {
			t.rotateDealer()
			return
		}
		switch round {
		case 1:
			t.revealCommunity(3)
		case 3, 5:
			t.revealCommunity(1)
		}
	}

	t.showdown()
	t.rotateDealer()
}

// postBlinds charges the first two seats in acting order the small and
// big blind, using the same clamping rules as any other bet.
func (t *Table) postBlinds() {
	if len(t.PlayersInHand) < 2 {
		return
	}
	sb := t.seatByID(t.PlayersInHand[0])
	bb := t.seatByID(t.PlayersInHand[1])
	t.applyRaiseTo(sb, t.SmallBlind)
	t.applyRaiseTo(bb, 2*t.SmallBlind)
}

func (t *Table) revealCommunity(n int) {
	for i := 0; i < n; i++ {
		c, ok := t.Deck.Deal()
		if !ok {
			return
		}
		t.CommunityCards = append(t.CommunityCards, c)
	}
	t.broadcastGameState(false, -1)
}

// clamp enforces the betting invariants on a requested raise-to amount:
// never below the seat's own current bet or the table's current high
// bet, rounded up to the nearest small_blind multiple, and capped at the
// seat's full stack (an all-in).
func (t *Table) clamp(seat *Seat, requested uint64) uint64 {
	floor := seat.CurrentBet
	if hb := t.highestBet(); hb > floor {
		floor = hb
	}
	amount := requested
	if amount < floor {
		amount = floor
	}
	if u := t.SmallBlind; u > 0 {
		if rem := amount % u; rem != 0 {
			if amount > math.MaxUint64-(u-rem) {
				amount -= rem
			} else {
				amount += u - rem
			}
		}
	}
	if stack := seat.Chips + seat.CurrentBet; amount > stack {
		amount = stack
	}
	return amount
}

func (t *Table) applyRaiseTo(seat *Seat, requested uint64) {
	seat.DeductToBet(t.clamp(seat, requested))
}

// awaitSeat sends awaiting_player and blocks on the fan-in channel for
// that seat's reply, discarding out-of-turn traffic from other seats. It
// returns ok=false on timeout or channel closure.
func (t *Table) awaitSeat(ctx context.Context, seat *Seat, timeout time.Duration) (protocol.Envelope, bool) {
	seat.Write(protocol.AwaitingPlayer())
	deadline := t.clock.After(timeout)
	for {
		select {
		case in, chOK := <-t.incoming:
			if !chOK {
				return protocol.Envelope{}, false
			}
			if in.SeatID != seat.ID {
				continue
			}
			return in.Msg, true
		case <-deadline:
			return protocol.Envelope{}, false
		case <-ctx.Done():
			return protocol.Envelope{}, false
		}
	}
}

// runPhase drives one bet or equalize phase over every non-folded,
// non-out seat in PlayersInHand, broadcasting state after each turn and
// stopping early if the hand is decided.
func (t *Table) runPhase(ctx context.Context, kind phaseKind) {
	for _, id := range t.PlayersInHand {
		seat := t.seatByID(id)
		if seat.HasFolded || seat.IsOut {
			continue
		}
		if kind == phaseEqualize && seat.CurrentBet == t.highestBet() {
			continue
		}

		switch {
		case !seat.Connected():
			t.applyRaiseTo(seat, math.MaxUint64)
		default:
			msg, ok := t.awaitSeat(ctx, seat, t.turnTimeout)
			t.applyResponse(seat, msg, ok)
		}

		t.broadcastGameState(false, -1)
		if len(t.nonFoldedSurvivors()) <= 1 {
			return
		}
	}
}

func (t *Table) applyResponse(seat *Seat, msg protocol.Envelope, ok bool) {
	if !ok || msg.Type != protocol.TypeResponse {
		seat.HasFolded = true
		return
	}
	switch msg.Action {
	case protocol.ActionRaiseTo:
		t.applyRaiseTo(seat, msg.Amount)
	case protocol.ActionPass:
		t.applyRaiseTo(seat, t.highestBet())
	default:
		seat.HasFolded = true
	}
}

// earlyTerminationCheck ends the hand immediately if at most one seat in
// PlayersInHand has not folded, awarding the pot (or refunding it, when
// zero survivors somehow remain) and broadcasting the hand-end state.
func (t *Table) earlyTerminationCheck() bool {
	survivors := t.nonFoldedSurvivors()
	if len(survivors) > 1 {
		return false
	}

	if len(survivors) == 1 {
		survivor := survivors[0]
		capAmt := survivor.CurrentBet
		var pot uint64
		for _, id := range t.PlayersInHand {
			pot += t.seatByID(id).TakeBet(capAmt)
		}
		survivor.AddChips(pot)
		t.broadcastGameState(true, int8(survivor.ID))
	} else {
		for _, id := range t.PlayersInHand {
			t.seatByID(id).TakeBet(0)
		}
		t.broadcastGameState(true, -1)
	}

	t.clock.Sleep(t.revealDuration)
	for _, id := range t.PlayersInHand {
		t.seatByID(id).ClearHand()
	}
	return true
}

// showdown evaluates every non-folded hand, awards the pot to the strict
// best (refunding everyone with no winner on an exact tie), and broadcasts
// the showdown with every contender's hole cards revealed before clearing
// for the next deal.
func (t *Table) showdown() {
	var contenders []*Seat
	best := evaluator.Value(-1)
	var winners []*Seat

	for _, id := range t.PlayersInHand {
		seat := t.seatByID(id)
		if seat.HasFolded {
			continue
		}
		hand := append([]deck.Card{seat.HoleCards[0], seat.HoleCards[1]}, t.CommunityCards...)
		v := evaluator.Evaluate(hand)
		seat.RevealedValue = &v
		contenders = append(contenders, seat)
		switch {
		case v > best:
			best = v
			winners = []*Seat{seat}
		case v == best:
			winners = append(winners, seat)
		}
	}
	if len(contenders) == 0 {
		return
	}

	handWinner := int8(-1)
	if len(winners) == 1 {
		winner := winners[0]
		capAmt := winner.CurrentBet
		var pot uint64
		for _, id := range t.PlayersInHand {
			pot += t.seatByID(id).TakeBet(capAmt)
		}
		winner.AddChips(pot)
		handWinner = int8(winner.ID)
	} else {
		for _, id := range t.PlayersInHand {
			t.seatByID(id).TakeBet(0)
		}
	}

	t.broadcastGameState(true, handWinner)
	t.clock.Sleep(t.revealDuration)
	for _, id := range t.PlayersInHand {
		t.seatByID(id).ClearHand()
	}
}

// rotateDealer advances the dealer pointer to the next non-out seat,
// doubling small_blind each time the pointer wraps through index 0.
func (t *Table) rotateDealer() {
	n := len(t.Seats)
	next := t.Dealer
	wrapped := false
	for {
		next = (next + 1) % n
		if next == 0 {
			wrapped = true
		}
		if !t.Seats[next].IsOut {
			break
		}
	}
	t.Dealer = next
	if wrapped {
		t.SmallBlind *= 2
	}
}
