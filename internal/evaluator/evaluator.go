// Package evaluator ranks a 7-card Texas Hold'em hand (2 hole + 5 community)
// to a single comparable Value. Evaluate never fails on well-formed input;
// callers passing anything but exactly 7 cards have violated the contract
// and it panics, matching the "fatal assertion" policy for C2 contract
// violations.
package evaluator

import (
	"fmt"
	"sort"

	"github.com/cyrillknecht/nolimittexasholdem/internal/deck"
)

// Evaluate ranks exactly 7 cards. Each hand category is computed
// independently from the rank-sorted sequence; the returned Value is the
// maximum across all nine categories.
func Evaluate(cards []deck.Card) Value {
	if len(cards) != 7 {
		panic(fmt.Sprintf("evaluator: Evaluate requires exactly 7 cards, got %d", len(cards)))
	}

	sorted := make([]deck.Card, 7)
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank() < sorted[j].Rank()
	})

	ranks := make([]int, 7)
	for i, c := range sorted {
		ranks[i] = int(c.Rank())
	}

	best := highCard(ranks)
	if v, ok := pair(ranks); ok && v > best {
		best = v
	}
	if v, ok := twoPair(ranks); ok && v > best {
		best = v
	}
	if v, ok := threeOfAKind(ranks); ok && v > best {
		best = v
	}
	if v, ok := straight(ranks); ok && v > best {
		best = v
	}
	if v, ok := flush(sorted); ok && v > best {
		best = v
	}
	if v, ok := fullHouse(ranks); ok && v > best {
		best = v
	}
	if v, ok := fourOfAKind(ranks); ok && v > best {
		best = v
	}
	if v, ok := straightFlush(sorted); ok && v > best {
		best = v
	}
	return best
}

// highCard packs the top 5 of the 7 sorted ranks; always applicable.
func highCard(ranks []int) Value {
	return encode(HighCardOffset, ranks[6], ranks[5], ranks[4], ranks[3], ranks[2])
}

// pair scans high to low for the first adjacent equal pair in the
// rank-sorted sequence; the three highest remaining ranks are kickers.
// The four meaningful orders (pair_rank, k1, k2, k3) occupy the four
// lowest base-13 digits; the leading digit is unused and zero.
func pair(ranks []int) (Value, bool) {
	for i := 6; i >= 1; i-- {
		if ranks[i] == ranks[i-1] {
			kickers := remaining(ranks, i, i-1)
			return encode(PairOffset, 0, ranks[i], kickers[0], kickers[1], kickers[2]), true
		}
	}
	return 0, false
}

// twoPair scans top-down for two disjoint adjacent pairs; the kicker is the
// highest remaining rank outside either pair.
func twoPair(ranks []int) (Value, bool) {
	first := -1
	var used [7]bool
	for i := 6; i >= 1; i-- {
		if used[i] || used[i-1] {
			continue
		}
		if ranks[i] == ranks[i-1] {
			if first == -1 {
				first = ranks[i]
				used[i], used[i-1] = true, true
				continue
			}
			second := ranks[i]
			used[i], used[i-1] = true, true
			kicker := 0
			for j := 6; j >= 0; j-- {
				if !used[j] {
					kicker = ranks[j]
					break
				}
			}
			return encode(TwoPairOffset, 0, 0, first, second, kicker), true
		}
	}
	return 0, false
}

// threeOfAKind scans high to low for three consecutive equal ranks; the two
// highest remaining ranks are kickers.
func threeOfAKind(ranks []int) (Value, bool) {
	for i := 6; i >= 2; i-- {
		if ranks[i] == ranks[i-1] && ranks[i-1] == ranks[i-2] {
			kickers := remaining(ranks, i, i-1, i-2)
			return encode(ThreeOfAKindOffset, 0, 0, ranks[i], kickers[0], kickers[1]), true
		}
	}
	return 0, false
}

// fullHouse accepts the highest triple, then the highest pair (which may be
// a second triple's two cards) among the remaining four ranks.
func fullHouse(ranks []int) (Value, bool) {
	for i := 6; i >= 2; i-- {
		if ranks[i] != ranks[i-1] || ranks[i-1] != ranks[i-2] {
			continue
		}
		tripleRank := ranks[i]
		rest := remaining(ranks, i, i-1, i-2)
		for j := 1; j < len(rest); j++ {
			if rest[j] == rest[j-1] {
				return encode(FullHouseOffset, 0, 0, 0, tripleRank, rest[j]), true
			}
		}
		return 0, false
	}
	return 0, false
}

// fourOfAKind requires four equal ranks; the kicker is the top remaining rank.
func fourOfAKind(ranks []int) (Value, bool) {
	for i := 6; i >= 3; i-- {
		if ranks[i] == ranks[i-1] && ranks[i-1] == ranks[i-2] && ranks[i-2] == ranks[i-3] {
			kickers := remaining(ranks, i, i-1, i-2, i-3)
			return encode(FourOfAKindOffset, 0, 0, 0, ranks[i], kickers[0]), true
		}
	}
	return 0, false
}

// straight checks the three candidate highs at the top of the sorted
// sequence, plus the ace-low wheel (A,2,3,4,5 high=3).
func straight(ranks []int) (Value, bool) {
	var present [13]bool
	for _, r := range ranks {
		present[r] = true
	}
	for _, i := range []int{ranks[6], ranks[5], ranks[4]} {
		if i >= 4 && present[i] && present[i-1] && present[i-2] && present[i-3] && present[i-4] {
			return encode(StraightOffset, 0, 0, 0, 0, i), true
		}
	}
	if present[12] && present[0] && present[1] && present[2] && present[3] {
		return encode(StraightOffset, 0, 0, 0, 0, 3), true
	}
	return 0, false
}

// flush requires 5+ cards of one suit; the top five ranks of that suit pack
// as five orders.
func flush(sorted []deck.Card) (Value, bool) {
	var bySuit [4][]int
	for _, c := range sorted {
		bySuit[c.Suit()] = append(bySuit[c.Suit()], int(c.Rank()))
	}
	for _, suitRanks := range bySuit {
		if len(suitRanks) < 5 {
			continue
		}
		top := topN(suitRanks, 5)
		return encode(FlushOffset, top[0], top[1], top[2], top[3], top[4]), true
	}
	return 0, false
}

// straightFlush uses the robust formulation from the design notes: a suit S
// and a high rank h in [4,12] such that {h-4..h} x {S} are all present,
// plus the wheel-in-suit case. This is deliberately NOT the "five
// consecutive array positions" shortcut, which misses straight flushes
// straddled by an equal-ranked off-suit card that reshuffles adjacency
// under a stable sort.
func straightFlush(sorted []deck.Card) (Value, bool) {
	var maskBySuit [4][13]bool
	for _, c := range sorted {
		maskBySuit[c.Suit()][c.Rank()] = true
	}

	best := -1
	for _, mask := range maskBySuit {
		for h := 12; h >= 4; h-- {
			if mask[h] && mask[h-1] && mask[h-2] && mask[h-3] && mask[h-4] {
				if h > best {
					best = h
				}
				break
			}
		}
		if mask[12] && mask[0] && mask[1] && mask[2] && mask[3] && best < 3 {
			best = 3
		}
	}
	if best < 0 {
		return 0, false
	}
	return encode(StraightFlushOffset, 0, 0, 0, 0, best), true
}

// remaining returns the ranks not at the given sorted-array indices, as a
// descending-sorted slice.
func remaining(ranks []int, exclude ...int) []int {
	excluded := make(map[int]bool, len(exclude))
	for _, i := range exclude {
		excluded[i] = true
	}
	out := make([]int, 0, 7-len(exclude))
	for i, r := range ranks {
		if !excluded[i] {
			out = append(out, r)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// topN returns the n highest values from ranks, descending.
func topN(ranks []int, n int) []int {
	out := make([]int, len(ranks))
	copy(out, ranks)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out[:n]
}
